package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/jrmnl/yandex-techstore/promo"
	"github.com/jrmnl/yandex-techstore/session"
)

type TotalsLine struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Qty      int     `json:"qty"`
	Subtotal float64 `json:"subtotal"`
}

type TotalsReport struct {
	Lines  []TotalsLine `json:"lines"`
	Totals promo.Totals `json:"totals"`
}

type cartItem struct {
	id  int
	qty int
}

func parseItems(args []string) ([]cartItem, error) {
	items := make([]cartItem, 0, len(args))
	for _, arg := range args {
		idText, qtyText, ok := strings.Cut(arg, "=")
		if !ok {
			qtyText = "1"
		}
		id, err := cast.ToIntE(idText)
		if err != nil {
			return nil, fmt.Errorf("позиция %q: id: %w", arg, err)
		}
		qty, err := cast.ToIntE(qtyText)
		if err != nil {
			return nil, fmt.Errorf("позиция %q: количество: %w", arg, err)
		}
		if qty < 1 {
			return nil, fmt.Errorf("позиция %q: количество должно быть не меньше 1", arg)
		}
		items = append(items, cartItem{id: id, qty: qty})
	}
	return items, nil
}

func NewTotalsCommand(rootOpts *RootOptions) *cobra.Command {
	var code string

	cmd := &cobra.Command{
		Use:   "totals <id=qty>...",
		Short: "Посчитать корзину с промокодом",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := parseItems(args)
			if err != nil {
				return WrapExitError(ExitCommandError, "Некорректная корзина", err)
			}
			return runTotals(cmd, rootOpts, items, code)
		},
	}
	cmd.Flags().StringVar(&code, "promo", "", "промокод")
	return cmd
}

func runTotals(cmd *cobra.Command, opts *RootOptions, items []cartItem, code string) error {
	store, err := loadStore(cmd.Context(), opts.CatalogPath)
	if err != nil {
		return err
	}
	promos, err := loadPromos(opts.PromoPath)
	if err != nil {
		return err
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	s := session.New("cli", store, promos, nil)
	for _, item := range items {
		for i := range item.qty {
			if _, err := s.AddToCart(item.id, i == 0); err != nil {
				_ = formatter.Error(err.Error())
				return WrapExitError(ExitFailure, "Товар не добавлен в корзину", err)
			}
		}
	}

	if code != "" {
		if _, err := s.ApplyPromo(code); errors.Is(err, promo.ErrUnknownCode) {
			_ = formatter.Error(err.Error())
			return WrapExitError(ExitFailure, "Промокод не применен", err)
		}
	}
	lines, totals := s.Cart()

	report := TotalsReport{Lines: make([]TotalsLine, 0, len(lines)), Totals: totals}
	for _, l := range lines {
		report.Lines = append(report.Lines, TotalsLine{
			ID:       l.Product.ID,
			Name:     l.Product.Name,
			Qty:      l.Qty,
			Subtotal: promo.LineTotal(l),
		})
	}

	return formatter.Success(report, func(w io.Writer) {
		for _, l := range report.Lines {
			fmt.Fprintf(w, "%s × %d = %.2f\n", l.Name, l.Qty, l.Subtotal)
		}
		fmt.Fprintf(w, "Товаров: %d\n", totals.Items)
		fmt.Fprintf(w, "Сумма: %.2f\n", totals.Amount)
		fmt.Fprintf(w, "Скидка (%d%%): %.2f\n", totals.Percent, totals.Discount)
		fmt.Fprintf(w, "Итого: %.2f\n", totals.GrandTotal)
	})
}
