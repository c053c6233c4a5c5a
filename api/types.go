package api

import (
	"github.com/jrmnl/yandex-techstore/catalog"
	"github.com/jrmnl/yandex-techstore/filter"
	"github.com/jrmnl/yandex-techstore/promo"
	"github.com/jrmnl/yandex-techstore/review"
)

// Schema types shared with the domain packages.
type (
	Product  = catalog.Product
	Review   = catalog.Review
	Criteria = filter.Criteria
	Facets   = filter.Facets
	Totals   = promo.Totals
)

type Health struct {
	Status     string             `json:"status"`
	Products   int                `json:"products"`
	Sessions   int                `json:"sessions"`
	Loading    bool               `json:"loading"`
	Categories []catalog.Category `json:"categories"`
	Brands     []string           `json:"brands"`
}

type SessionCreated struct {
	SessionId string `json:"sessionId"`
}

type Error struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

type ProductDetails struct {
	Product       Product        `json:"product"`
	DisplayPrice  string         `json:"displayPrice"`
	ReviewSummary review.Summary `json:"reviewSummary"`
}

type PromoRequest struct {
	Code string `json:"code"`
}

type Quantity struct {
	ProductId int `json:"productId"`
	Quantity  int `json:"quantity"`
}

type CartLine struct {
	Product  Product `json:"product"`
	Qty      int     `json:"qty"`
	Subtotal float64 `json:"subtotal"`
}

type CartDisplay struct {
	Amount     string `json:"amount"`
	Discount   string `json:"discount"`
	GrandTotal string `json:"grandTotal"`
}

type Cart struct {
	Lines   []CartLine  `json:"lines"`
	Totals  Totals      `json:"totals"`
	Display CartDisplay `json:"display"`
}

// ListProductsParams defines parameters for ListProducts.
type ListProductsParams struct {
	Category   *string  `form:"category,omitempty" json:"category,omitempty"`
	Q          *string  `form:"q,omitempty" json:"q,omitempty"`
	MinPrice   *float64 `form:"minPrice,omitempty" json:"minPrice,omitempty"`
	MaxPrice   *float64 `form:"maxPrice,omitempty" json:"maxPrice,omitempty"`
	InStock    *bool    `form:"inStock,omitempty" json:"inStock,omitempty"`
	MinRating  *float64 `form:"minRating,omitempty" json:"minRating,omitempty"`
	Brand      []string `form:"brand,omitempty" json:"brand,omitempty"`
	XSessionId string   `json:"X-Session-Id"`
}

// SessionParams carries the session header every stateful operation needs.
type SessionParams struct {
	XSessionId string `json:"X-Session-Id"`
}

// AddCartItemParams defines parameters for AddCartItem.
type AddCartItemParams struct {
	NewLine    *bool  `form:"newLine,omitempty" json:"newLine,omitempty"`
	XSessionId string `json:"X-Session-Id"`
}

// RemoveCartItemParams defines parameters for RemoveCartItem.
type RemoveCartItemParams struct {
	Entire     *bool  `form:"entire,omitempty" json:"entire,omitempty"`
	XSessionId string `json:"X-Session-Id"`
}
