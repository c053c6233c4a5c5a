package filter

import (
	"slices"
	"strings"

	"github.com/jrmnl/yandex-techstore/catalog"
)

// Matches reports whether the product passes every active criterion.
func Matches(p catalog.Product, c Criteria) bool {
	if c.Category != "" && c.Category != catalog.CategoryAll && p.Category != c.Category {
		return false
	}

	if c.SearchQuery != "" && !matchesSearch(p, strings.ToLower(c.SearchQuery)) {
		return false
	}

	if c.MinPrice != nil && p.Price < *c.MinPrice {
		return false
	}

	if c.MaxPrice != nil && p.Price > *c.MaxPrice {
		return false
	}

	if c.InStock != nil && p.InStock != *c.InStock {
		return false
	}

	if c.MinRating > 0 && p.Rating < c.MinRating {
		return false
	}

	if len(c.Brands) > 0 && !slices.Contains(c.Brands, p.Brand) {
		return false
	}

	return true
}

// query must already be lower case.
func matchesSearch(p catalog.Product, query string) bool {
	fields := append([]string{p.Name, p.Description, p.Brand}, p.Features...)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), query) {
			return true
		}
	}
	return false
}

// Apply returns the matching products in input order. The input is
// not modified and the result is never nil.
func Apply(products []catalog.Product, c Criteria) []catalog.Product {
	out := make([]catalog.Product, 0, len(products))
	for _, p := range products {
		if Matches(p, c) {
			out = append(out, p)
		}
	}
	return out
}
