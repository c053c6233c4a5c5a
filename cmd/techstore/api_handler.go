package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jrmnl/yandex-techstore/api"
	"github.com/jrmnl/yandex-techstore/cart"
	"github.com/jrmnl/yandex-techstore/catalog"
	"github.com/jrmnl/yandex-techstore/filter"
	"github.com/jrmnl/yandex-techstore/money"
	"github.com/jrmnl/yandex-techstore/promo"
	"github.com/jrmnl/yandex-techstore/review"
	"github.com/jrmnl/yandex-techstore/session"
)

type ApiHandler struct {
	store    *catalog.Store
	sessions *session.Registry
}

func NewApiHandler(store *catalog.Store, sessions *session.Registry) *ApiHandler {
	return &ApiHandler{store: store, sessions: sessions}
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, cart.ErrLineNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrOutOfStock):
		return http.StatusConflict
	case errors.Is(err, promo.ErrUnknownCode):
		return http.StatusUnprocessableEntity
	case errors.Is(err, review.ErrInvalidReview),
		errors.Is(err, filter.ErrUnknownCategory),
		errors.Is(err, filter.ErrInvalidPrice),
		errors.Is(err, filter.ErrInvalidRating):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (h *ApiHandler) fail(c *gin.Context, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		zap.L().Error("Ошибка обработки запроса", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	c.JSON(status, api.Error{Error: err.Error(), Fields: review.Fields(err)})
}

func (h *ApiHandler) lookup(c *gin.Context, id string) (*session.Session, bool) {
	s, err := h.sessions.Get(id)
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return s, true
}

// (GET /health)
func (h *ApiHandler) Health(c *gin.Context) {
	loading := h.store.Loading()
	status := "ok"
	switch {
	case loading:
		status = "loading"
	case h.store.Err() != nil:
		status = "degraded"
	}
	c.JSON(http.StatusOK, api.Health{
		Status:     status,
		Products:   h.store.Len(),
		Sessions:   h.sessions.Len(),
		Loading:    loading,
		Categories: h.store.Categories(),
		Brands:     h.store.Brands(),
	})
}

// (POST /sessions)
func (h *ApiHandler) CreateSession(c *gin.Context) {
	s := h.sessions.Create()
	c.JSON(http.StatusCreated, api.SessionCreated{SessionId: s.ID()})
}

// (GET /products)
func (h *ApiHandler) ListProducts(c *gin.Context, params api.ListProductsParams) {
	s, ok := h.lookup(c, params.XSessionId)
	if !ok {
		return
	}

	if !hasOverrides(params) {
		c.JSON(http.StatusOK, s.FilteredProducts())
		return
	}

	criteria := s.Criteria()
	if params.Category != nil {
		criteria.Category = catalog.Category(*params.Category)
	}
	if params.Q != nil {
		criteria.SearchQuery = *params.Q
	}
	if params.MinPrice != nil {
		criteria.MinPrice = params.MinPrice
	}
	if params.MaxPrice != nil {
		criteria.MaxPrice = params.MaxPrice
	}
	if params.InStock != nil {
		criteria.InStock = params.InStock
	}
	if params.MinRating != nil {
		criteria.MinRating = *params.MinRating
	}
	if params.Brand != nil {
		criteria.Brands = params.Brand
	}

	products, err := s.Preview(criteria)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func hasOverrides(p api.ListProductsParams) bool {
	return p.Category != nil || p.Q != nil || p.MinPrice != nil || p.MaxPrice != nil ||
		p.InStock != nil || p.MinRating != nil || p.Brand != nil
}

// (GET /products/facets)
func (h *ApiHandler) GetFacets(c *gin.Context, params api.SessionParams) {
	s, ok := h.lookup(c, params.XSessionId)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.Facets())
}

func details(p catalog.Product) api.ProductDetails {
	return api.ProductDetails{
		Product:       p,
		DisplayPrice:  money.Format(p.Price, p.Currency),
		ReviewSummary: review.Summarize(p),
	}
}

// (GET /products/{id})
func (h *ApiHandler) GetProduct(c *gin.Context, id int) {
	p, ok := h.store.FindByID(id)
	if !ok {
		h.fail(c, catalog.ErrProductNotFound)
		return
	}
	c.JSON(http.StatusOK, details(p))
}

// (POST /products/{id}/reviews)
func (h *ApiHandler) SubmitReview(c *gin.Context, id int, params api.SessionParams) {
	s, ok := h.lookup(c, params.XSessionId)
	if !ok {
		return
	}
	var req api.Review
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.Error{Error: err.Error()})
		return
	}
	p, err := s.SubmitReview(id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, details(p))
}

// (GET /filters)
func (h *ApiHandler) GetFilters(c *gin.Context, params api.SessionParams) {
	s, ok := h.lookup(c, params.XSessionId)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.Criteria())
}

// (PUT /filters)
func (h *ApiHandler) ReplaceFilters(c *gin.Context, params api.SessionParams) {
	s, ok := h.lookup(c, params.XSessionId)
	if !ok {
		return
	}
	var req api.Criteria
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.Error{Error: err.Error()})
		return
	}
	criteria, err := s.ReplaceFilters(req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, criteria)
}

// (DELETE /filters)
func (h *ApiHandler) ClearFilters(c *gin.Context, params api.SessionParams) {
	s, ok := h.lookup(c, params.XSessionId)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.ClearFilters())
}

func cartView(lines []cart.Line, totals promo.Totals) api.Cart {
	view := api.Cart{Lines: make([]api.CartLine, 0, len(lines)), Totals: totals}
	currency := catalog.USD
	for i, l := range lines {
		if i == 0 {
			currency = l.Product.Currency
		}
		view.Lines = append(view.Lines, api.CartLine{Product: l.Product, Qty: l.Qty, Subtotal: promo.LineTotal(l)})
	}
	view.Display = api.CartDisplay{
		Amount:     money.Format(totals.Amount, currency),
		Discount:   money.Format(totals.Discount, currency),
		GrandTotal: money.Format(totals.GrandTotal, currency),
	}
	return view
}

// (GET /cart)
func (h *ApiHandler) GetCart(c *gin.Context, params api.SessionParams) {
	s, ok := h.lookup(c, params.XSessionId)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, cartView(s.Cart()))
}

// (DELETE /cart)
func (h *ApiHandler) ClearCart(c *gin.Context, params api.SessionParams) {
	s, ok := h.lookup(c, params.XSessionId)
	if !ok {
		return
	}
	if removed := s.ClearCart(); removed > 0 {
		zap.L().Debug("Корзина очищена", zap.String("session", s.ID()), zap.Int("items", removed))
	}
	c.JSON(http.StatusOK, cartView(s.Cart()))
}

// (GET /cart/items/{id})
func (h *ApiHandler) GetCartItem(c *gin.Context, id int, params api.SessionParams) {
	s, ok := h.lookup(c, params.XSessionId)
	if !ok {
		return
	}
	if _, found := h.store.FindByID(id); !found {
		h.fail(c, catalog.ErrProductNotFound)
		return
	}
	c.JSON(http.StatusOK, api.Quantity{ProductId: id, Quantity: s.QuantityOf(id)})
}

// (POST /cart/items/{id})
func (h *ApiHandler) AddCartItem(c *gin.Context, id int, params api.AddCartItemParams) {
	s, ok := h.lookup(c, params.XSessionId)
	if !ok {
		return
	}
	newLine := params.NewLine != nil && *params.NewLine
	qty, err := s.AddToCart(id, newLine)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.Quantity{ProductId: id, Quantity: qty})
}

// (DELETE /cart/items/{id})
func (h *ApiHandler) RemoveCartItem(c *gin.Context, id int, params api.RemoveCartItemParams) {
	s, ok := h.lookup(c, params.XSessionId)
	if !ok {
		return
	}
	entire := params.Entire != nil && *params.Entire
	qty, err := s.RemoveFromCart(id, entire)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.Quantity{ProductId: id, Quantity: qty})
}

// (POST /cart/promo)
func (h *ApiHandler) ApplyPromo(c *gin.Context, params api.SessionParams) {
	s, ok := h.lookup(c, params.XSessionId)
	if !ok {
		return
	}
	var req api.PromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.Error{Error: err.Error()})
		return
	}
	_, err := s.ApplyPromo(req.Code)
	status := http.StatusOK
	if err != nil {
		if !errors.Is(err, promo.ErrUnknownCode) {
			h.fail(c, err)
			return
		}
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, cartView(s.Cart()))
}
