// Package api serves openapi.yaml. The handler interface and the parameter
// binding follow the oapi-codegen gin-server layout but are maintained by
// hand: routes here must change together with the document.
package api

import (
	_ "embed"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"
)

//go:embed openapi.yaml
var document []byte

// Document returns the raw OpenAPI document.
func Document() []byte {
	return document
}

// GetSwagger parses the embedded OpenAPI document.
func GetSwagger() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	swagger, err := loader.LoadFromData(document)
	if err != nil {
		return nil, fmt.Errorf("error loading swagger document: %w", err)
	}
	return swagger, nil
}

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// (GET /health)
	Health(c *gin.Context)
	// (POST /sessions)
	CreateSession(c *gin.Context)
	// (GET /products)
	ListProducts(c *gin.Context, params ListProductsParams)
	// (GET /products/facets)
	GetFacets(c *gin.Context, params SessionParams)
	// (GET /products/{id})
	GetProduct(c *gin.Context, id int)
	// (POST /products/{id}/reviews)
	SubmitReview(c *gin.Context, id int, params SessionParams)
	// (GET /filters)
	GetFilters(c *gin.Context, params SessionParams)
	// (PUT /filters)
	ReplaceFilters(c *gin.Context, params SessionParams)
	// (DELETE /filters)
	ClearFilters(c *gin.Context, params SessionParams)
	// (GET /cart)
	GetCart(c *gin.Context, params SessionParams)
	// (DELETE /cart)
	ClearCart(c *gin.Context, params SessionParams)
	// (GET /cart/items/{id})
	GetCartItem(c *gin.Context, id int, params SessionParams)
	// (POST /cart/items/{id})
	AddCartItem(c *gin.Context, id int, params AddCartItemParams)
	// (DELETE /cart/items/{id})
	RemoveCartItem(c *gin.Context, id int, params RemoveCartItemParams)
	// (POST /cart/promo)
	ApplyPromo(c *gin.Context, params SessionParams)
}

// ServerInterfaceWrapper converts gin contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler      ServerInterface
	ErrorHandler func(*gin.Context, error, int)
}

func (siw *ServerInterfaceWrapper) Health(c *gin.Context) {
	siw.Handler.Health(c)
}

func (siw *ServerInterfaceWrapper) CreateSession(c *gin.Context) {
	siw.Handler.CreateSession(c)
}

func (siw *ServerInterfaceWrapper) ListProducts(c *gin.Context) {
	var params ListProductsParams
	var ok bool
	if params.XSessionId, ok = siw.sessionHeader(c); !ok {
		return
	}

	query := c.Request.URL.Query()
	bind := []struct {
		name string
		dest any
	}{
		{"category", &params.Category},
		{"q", &params.Q},
		{"minPrice", &params.MinPrice},
		{"maxPrice", &params.MaxPrice},
		{"inStock", &params.InStock},
		{"minRating", &params.MinRating},
		{"brand", &params.Brand},
	}
	for _, b := range bind {
		if err := runtime.BindQueryParameter("form", true, false, b.name, query, b.dest); err != nil {
			siw.ErrorHandler(c, fmt.Errorf("Invalid format for parameter %s: %w", b.name, err), http.StatusBadRequest)
			return
		}
	}

	siw.Handler.ListProducts(c, params)
}

func (siw *ServerInterfaceWrapper) GetFacets(c *gin.Context) {
	if params, ok := siw.sessionParams(c); ok {
		siw.Handler.GetFacets(c, params)
	}
}

func (siw *ServerInterfaceWrapper) GetProduct(c *gin.Context) {
	if id, ok := siw.productID(c); ok {
		siw.Handler.GetProduct(c, id)
	}
}

func (siw *ServerInterfaceWrapper) SubmitReview(c *gin.Context) {
	id, ok := siw.productID(c)
	if !ok {
		return
	}
	if params, ok := siw.sessionParams(c); ok {
		siw.Handler.SubmitReview(c, id, params)
	}
}

func (siw *ServerInterfaceWrapper) GetFilters(c *gin.Context) {
	if params, ok := siw.sessionParams(c); ok {
		siw.Handler.GetFilters(c, params)
	}
}

func (siw *ServerInterfaceWrapper) ReplaceFilters(c *gin.Context) {
	if params, ok := siw.sessionParams(c); ok {
		siw.Handler.ReplaceFilters(c, params)
	}
}

func (siw *ServerInterfaceWrapper) ClearFilters(c *gin.Context) {
	if params, ok := siw.sessionParams(c); ok {
		siw.Handler.ClearFilters(c, params)
	}
}

func (siw *ServerInterfaceWrapper) GetCart(c *gin.Context) {
	if params, ok := siw.sessionParams(c); ok {
		siw.Handler.GetCart(c, params)
	}
}

func (siw *ServerInterfaceWrapper) ClearCart(c *gin.Context) {
	if params, ok := siw.sessionParams(c); ok {
		siw.Handler.ClearCart(c, params)
	}
}

func (siw *ServerInterfaceWrapper) GetCartItem(c *gin.Context) {
	id, ok := siw.productID(c)
	if !ok {
		return
	}
	if params, ok := siw.sessionParams(c); ok {
		siw.Handler.GetCartItem(c, id, params)
	}
}

func (siw *ServerInterfaceWrapper) AddCartItem(c *gin.Context) {
	id, ok := siw.productID(c)
	if !ok {
		return
	}
	var params AddCartItemParams
	if params.XSessionId, ok = siw.sessionHeader(c); !ok {
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "newLine", c.Request.URL.Query(), &params.NewLine); err != nil {
		siw.ErrorHandler(c, fmt.Errorf("Invalid format for parameter newLine: %w", err), http.StatusBadRequest)
		return
	}
	siw.Handler.AddCartItem(c, id, params)
}

func (siw *ServerInterfaceWrapper) RemoveCartItem(c *gin.Context) {
	id, ok := siw.productID(c)
	if !ok {
		return
	}
	var params RemoveCartItemParams
	if params.XSessionId, ok = siw.sessionHeader(c); !ok {
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "entire", c.Request.URL.Query(), &params.Entire); err != nil {
		siw.ErrorHandler(c, fmt.Errorf("Invalid format for parameter entire: %w", err), http.StatusBadRequest)
		return
	}
	siw.Handler.RemoveCartItem(c, id, params)
}

func (siw *ServerInterfaceWrapper) ApplyPromo(c *gin.Context) {
	if params, ok := siw.sessionParams(c); ok {
		siw.Handler.ApplyPromo(c, params)
	}
}

func (siw *ServerInterfaceWrapper) productID(c *gin.Context) (int, bool) {
	var id int
	err := runtime.BindStyledParameterWithLocation("simple", false, "id", runtime.ParamLocationPath, c.Param("id"), &id)
	if err != nil {
		siw.ErrorHandler(c, fmt.Errorf("Invalid format for parameter id: %w", err), http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (siw *ServerInterfaceWrapper) sessionHeader(c *gin.Context) (string, bool) {
	valueList, found := c.Request.Header[http.CanonicalHeaderKey("X-Session-Id")]
	if !found {
		siw.ErrorHandler(c, fmt.Errorf("Header parameter X-Session-Id is required, but not found"), http.StatusBadRequest)
		return "", false
	}
	if n := len(valueList); n != 1 {
		siw.ErrorHandler(c, fmt.Errorf("Expected one value for X-Session-Id, got %d", n), http.StatusBadRequest)
		return "", false
	}
	var sessionID string
	err := runtime.BindStyledParameterWithLocation("simple", false, "X-Session-Id", runtime.ParamLocationHeader, valueList[0], &sessionID)
	if err != nil {
		siw.ErrorHandler(c, fmt.Errorf("Invalid format for parameter X-Session-Id: %w", err), http.StatusBadRequest)
		return "", false
	}
	return sessionID, true
}

func (siw *ServerInterfaceWrapper) sessionParams(c *gin.Context) (SessionParams, bool) {
	id, ok := siw.sessionHeader(c)
	return SessionParams{XSessionId: id}, ok
}

// GinServerOptions provides options for the Gin server.
type GinServerOptions struct {
	BaseURL      string
	ErrorHandler func(*gin.Context, error, int)
}

// RegisterHandlers creates http.Handler with routing matching the OpenAPI document.
func RegisterHandlers(router gin.IRouter, si ServerInterface) {
	RegisterHandlersWithOptions(router, si, GinServerOptions{})
}

// RegisterHandlersWithOptions creates http.Handler with additional options
func RegisterHandlersWithOptions(router gin.IRouter, si ServerInterface, options GinServerOptions) {
	errorHandler := options.ErrorHandler
	if errorHandler == nil {
		errorHandler = func(c *gin.Context, err error, statusCode int) {
			c.JSON(statusCode, Error{Error: err.Error()})
		}
	}

	wrapper := ServerInterfaceWrapper{
		Handler:      si,
		ErrorHandler: errorHandler,
	}

	router.GET(options.BaseURL+"/health", wrapper.Health)
	router.POST(options.BaseURL+"/sessions", wrapper.CreateSession)
	router.GET(options.BaseURL+"/products", wrapper.ListProducts)
	router.GET(options.BaseURL+"/products/facets", wrapper.GetFacets)
	router.GET(options.BaseURL+"/products/:id", wrapper.GetProduct)
	router.POST(options.BaseURL+"/products/:id/reviews", wrapper.SubmitReview)
	router.GET(options.BaseURL+"/filters", wrapper.GetFilters)
	router.PUT(options.BaseURL+"/filters", wrapper.ReplaceFilters)
	router.DELETE(options.BaseURL+"/filters", wrapper.ClearFilters)
	router.GET(options.BaseURL+"/cart", wrapper.GetCart)
	router.DELETE(options.BaseURL+"/cart", wrapper.ClearCart)
	router.GET(options.BaseURL+"/cart/items/:id", wrapper.GetCartItem)
	router.POST(options.BaseURL+"/cart/items/:id", wrapper.AddCartItem)
	router.DELETE(options.BaseURL+"/cart/items/:id", wrapper.RemoveCartItem)
	router.POST(options.BaseURL+"/cart/promo", wrapper.ApplyPromo)
}
