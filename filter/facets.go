package filter

import "github.com/jrmnl/yandex-techstore/catalog"

type Count struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Facets summarizes a product list for the filter panel.
type Facets struct {
	Total      int                 `json:"total"`
	Price      catalog.PriceBounds `json:"price"`
	InStock    int                 `json:"inStock"`
	OutOfStock int                 `json:"outOfStock"`
	Categories []Count             `json:"categories"`
	Brands     []Count             `json:"brands"`
}

// ComputeFacets counts categories and brands in first-seen order.
func ComputeFacets(products []catalog.Product) Facets {
	f := Facets{
		Total:      len(products),
		Categories: []Count{},
		Brands:     []Count{},
	}
	cats := map[string]int{}
	brands := map[string]int{}

	for i, p := range products {
		if i == 0 {
			f.Price = catalog.PriceBounds{Min: p.Price, Max: p.Price}
		} else {
			f.Price.Min = min(f.Price.Min, p.Price)
			f.Price.Max = max(f.Price.Max, p.Price)
		}

		if p.InStock {
			f.InStock++
		} else {
			f.OutOfStock++
		}

		f.Categories = bump(f.Categories, cats, string(p.Category))
		if p.Brand != "" {
			f.Brands = bump(f.Brands, brands, p.Brand)
		}
	}
	return f
}

func bump(counts []Count, index map[string]int, value string) []Count {
	if i, ok := index[value]; ok {
		counts[i].Count++
		return counts
	}
	index[value] = len(counts)
	return append(counts, Count{Value: value, Count: 1})
}
