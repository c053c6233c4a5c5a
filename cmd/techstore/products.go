package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jrmnl/yandex-techstore/catalog"
	"github.com/jrmnl/yandex-techstore/filter"
)

type productsOptions struct {
	category  string
	search    string
	minPrice  float64
	maxPrice  float64
	inStock   bool
	minRating float64
	brands    []string
}

func NewProductsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &productsOptions{}

	cmd := &cobra.Command{
		Use:   "products",
		Short: "Показать товары каталога, прошедшие фильтр",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria, err := opts.criteria(cmd)
			if err != nil {
				return WrapExitError(ExitCommandError, "Некорректный фильтр", err)
			}
			return runProducts(cmd, rootOpts, criteria)
		},
	}

	cmd.Flags().StringVar(&opts.category, "category", string(catalog.CategoryAll), "категория или all")
	cmd.Flags().StringVar(&opts.search, "search", "", "подстрока в названии, описании, бренде или характеристиках")
	cmd.Flags().Float64Var(&opts.minPrice, "min-price", 0, "минимальная цена")
	cmd.Flags().Float64Var(&opts.maxPrice, "max-price", 0, "максимальная цена")
	cmd.Flags().BoolVar(&opts.inStock, "in-stock", false, "только товары в наличии (--in-stock=false только отсутствующие)")
	cmd.Flags().Float64Var(&opts.minRating, "min-rating", 0, "минимальный рейтинг")
	cmd.Flags().StringSliceVar(&opts.brands, "brand", nil, "бренды, можно несколько")

	return cmd
}

// criteria builds the filter from the flags actually given, so an explicit
// --max-price 0 is an active bound.
func (o *productsOptions) criteria(cmd *cobra.Command) (filter.Criteria, error) {
	var c filter.Criteria
	if err := c.SetCategory(catalog.Category(o.category)); err != nil {
		return c, err
	}
	c.SetSearch(o.search)

	var minPrice, maxPrice *float64
	if cmd.Flags().Changed("min-price") {
		minPrice = &o.minPrice
	}
	if cmd.Flags().Changed("max-price") {
		maxPrice = &o.maxPrice
	}
	if err := c.SetPriceRange(minPrice, maxPrice); err != nil {
		return c, err
	}
	if cmd.Flags().Changed("in-stock") {
		c.SetStock(&o.inStock)
	}
	if err := c.SetMinRating(o.minRating); err != nil {
		return c, err
	}
	for _, b := range o.brands {
		c.ToggleBrand(b)
	}
	return c, nil
}

func runProducts(cmd *cobra.Command, opts *RootOptions, criteria filter.Criteria) error {
	store, err := loadStore(cmd.Context(), opts.CatalogPath)
	if err != nil {
		return err
	}

	products := filter.Apply(store.Products(), criteria)
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return formatter.Success(products, func(w io.Writer) {
		for _, p := range products {
			stock := "в наличии"
			if !p.InStock {
				stock = "нет в наличии"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.2f %s\t%s\t%.1f\n",
				p.ID, p.Name, p.Category, p.Brand, p.Price, p.Currency, stock, p.Rating)
		}
		fmt.Fprintf(w, "Найдено товаров: %d\n", len(products))
	})
}
