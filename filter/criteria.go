package filter

import (
	"errors"
	"fmt"
	"slices"

	"github.com/jrmnl/yandex-techstore/catalog"
)

var (
	ErrUnknownCategory = errors.New("неизвестная категория")
	ErrInvalidPrice    = errors.New("некорректный диапазон цен")
	ErrInvalidRating   = errors.New("рейтинг должен быть в диапазоне [0,5]")
)

// Criteria is the filter state of one storefront session. Nil pointers and
// zero values are inactive criteria.
type Criteria struct {
	Category    catalog.Category `json:"category"`
	SearchQuery string           `json:"searchQuery"`
	MinPrice    *float64         `json:"minPrice,omitempty"`
	MaxPrice    *float64         `json:"maxPrice,omitempty"`
	InStock     *bool            `json:"inStock,omitempty"`
	MinRating   float64          `json:"minRating"`
	Brands      []string         `json:"brands"`
}

// Cleared returns the canonical cleared criteria for a catalog with the given
// price bounds. The upper bound is the catalog maximum so nothing is excluded.
func Cleared(bounds catalog.PriceBounds) Criteria {
	return Criteria{
		Category:  catalog.CategoryAll,
		MinPrice:  ptr(0.0),
		MaxPrice:  ptr(bounds.Max),
		MinRating: 0,
		Brands:    []string{},
	}
}

// Clone returns a copy sharing no pointers or slices with c.
func (c Criteria) Clone() Criteria {
	if c.MinPrice != nil {
		c.MinPrice = ptr(*c.MinPrice)
	}
	if c.MaxPrice != nil {
		c.MaxPrice = ptr(*c.MaxPrice)
	}
	if c.InStock != nil {
		c.InStock = ptr(*c.InStock)
	}
	c.Brands = slices.Clone(c.Brands)
	if c.Brands == nil {
		c.Brands = []string{}
	}
	return c
}

// Validate checks the invariants the setters enforce, for criteria that
// arrive as a whole.
func (c Criteria) Validate() error {
	if c.Category != "" && c.Category != catalog.CategoryAll && !c.Category.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, c.Category)
	}
	if err := checkPrices(c.MinPrice, c.MaxPrice); err != nil {
		return err
	}
	if c.MinRating < 0 || c.MinRating > 5 {
		return ErrInvalidRating
	}
	return nil
}

func (c *Criteria) SetCategory(category catalog.Category) error {
	if category != catalog.CategoryAll && !category.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	c.Category = category
	return nil
}

func (c *Criteria) SetSearch(query string) {
	c.SearchQuery = query
}

// SetPriceRange replaces both price bounds. Nil unsets a bound.
func (c *Criteria) SetPriceRange(minPrice, maxPrice *float64) error {
	if err := checkPrices(minPrice, maxPrice); err != nil {
		return err
	}
	c.MinPrice = minPrice
	c.MaxPrice = maxPrice
	return nil
}

// SetStock sets the availability filter. Nil means any.
func (c *Criteria) SetStock(inStock *bool) {
	c.InStock = inStock
}

func (c *Criteria) SetMinRating(rating float64) error {
	if rating < 0 || rating > 5 {
		return ErrInvalidRating
	}
	c.MinRating = rating
	return nil
}

// ToggleBrand adds the brand to the selection, or removes it when present.
func (c *Criteria) ToggleBrand(brand string) {
	if i := slices.Index(c.Brands, brand); i >= 0 {
		c.Brands = slices.Delete(slices.Clone(c.Brands), i, i+1)
		return
	}
	c.Brands = append(slices.Clone(c.Brands), brand)
}

func checkPrices(minPrice, maxPrice *float64) error {
	if minPrice != nil && *minPrice < 0 {
		return fmt.Errorf("%w: минимальная цена %v", ErrInvalidPrice, *minPrice)
	}
	if maxPrice != nil && *maxPrice < 0 {
		return fmt.Errorf("%w: максимальная цена %v", ErrInvalidPrice, *maxPrice)
	}
	if minPrice != nil && maxPrice != nil && *minPrice > *maxPrice {
		return fmt.Errorf("%w: %v > %v", ErrInvalidPrice, *minPrice, *maxPrice)
	}
	return nil
}

func ptr[T any](v T) *T {
	return &v
}
