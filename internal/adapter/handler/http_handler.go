package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/rl1809/storefront/internal/core/catalog"
	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/service"
)

type HTTPHandler struct {
	catalog  *service.CatalogService
	sessions *service.SessionService
	logger   zerolog.Logger
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type FilterRequest struct {
	Category *string `json:"category"`
	Query    *string `json:"query"`
}

type SessionResponse struct {
	SessionID string             `json:"session_id"`
	Filter    domain.FilterState `json:"filter"`
}

type SessionProductsResponse struct {
	SessionID string                 `json:"session_id"`
	Filter    domain.FilterState     `json:"filter"`
	Tick      uint64                 `json:"tick"`
	Products  []domain.PricedProduct `json:"products"`
}

type CartRequest struct {
	Color    string `json:"color"`
	Quantity *int   `json:"quantity"`
}

type RateLimit struct {
	RPS   float64
	Burst int
}

func NewHTTPHandler(catalogService *service.CatalogService, sessions *service.SessionService, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		catalog:  catalogService,
		sessions: sessions,
		logger:   logger.With().Str("component", "http").Logger(),
	}
}

// NewServer builds the echo instance with middleware and routes.
func NewServer(h *HTTPHandler, limit RateLimit) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ev := h.logger.Info()
			if v.Error != nil {
				ev = h.logger.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("http_request")
			return nil
		},
	}))
	if limit.RPS > 0 {
		e.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Skipper: middleware.DefaultSkipper,
			Store: middleware.NewRateLimiterMemoryStoreWithConfig(
				middleware.RateLimiterMemoryStoreConfig{
					Rate:      rate.Limit(limit.RPS),
					Burst:     limit.Burst,
					ExpiresIn: 3 * time.Minute,
				}),
			IdentifierExtractor: func(c echo.Context) (string, error) {
				return c.RealIP(), nil
			},
			ErrorHandler: func(c echo.Context, err error) error {
				return c.JSON(http.StatusForbidden, ErrorResponse{Error: "unable to identify client"})
			},
			DenyHandler: func(c echo.Context, identifier string, err error) error {
				return c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "rate limit exceeded"})
			},
		}))
	}

	h.Register(e)
	return e
}

func (h *HTTPHandler) Register(e *echo.Echo) {
	e.GET("/health", h.HealthCheck)

	api := e.Group("/api")
	api.GET("/categories", h.Categories)
	api.GET("/products", h.ListProducts)
	api.GET("/products/:id", h.GetProduct)
	api.POST("/products/:id/cart", h.AddToCart)

	api.POST("/sessions", h.OpenSession)
	api.GET("/sessions/:id/products", h.SessionProducts)
	api.PUT("/sessions/:id/filter", h.UpdateFilter)
	api.GET("/sessions/:id/prices", h.SessionPrices)
	api.DELETE("/sessions/:id", h.CloseSession)
}

func (h *HTTPHandler) HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":   "ok",
		"products": h.catalog.Catalog().Len(),
		"sessions": h.sessions.Count(),
		"time":     time.Now().UTC().Format(time.RFC3339),
	})
}

// Categories returns the category selector choices --> /api/categories
func (h *HTTPHandler) Categories(c echo.Context) error {
	return c.JSON(http.StatusOK, h.catalog.Categories())
}

// ListProducts filters the catalog without a session --> /api/products?category=&q=
func (h *HTTPHandler) ListProducts(c echo.Context) error {
	filter := domain.FilterState{
		Category: c.QueryParam("category"),
		Query:    c.QueryParam("q"),
	}
	return c.JSON(http.StatusOK, h.catalog.List(filter))
}

// GetProduct returns the detail view of a product --> /api/products/:id
func (h *HTTPHandler) GetProduct(c echo.Context) error {
	view, err := h.catalog.Detail(c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// AddToCart accepts an add-to-cart intent --> /api/products/:id/cart
func (h *HTTPHandler) AddToCart(c echo.Context) error {
	var req CartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	intent, err := h.catalog.AddToCart(c.Request().Context(), c.Param("id"), req.Color, quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusAccepted, intent)
}

// OpenSession starts a browsing session --> /api/sessions
func (h *HTTPHandler) OpenSession(c echo.Context) error {
	var req FilterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	filter := domain.DefaultFilter()
	if category := c.QueryParam("category"); category != "" {
		filter.Category = category
	}
	applyFilter(&filter, req)

	vs, err := h.sessions.Open(c.Request().Context(), filter)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, SessionResponse{SessionID: vs.ID(), Filter: vs.Filter()})
}

// SessionProducts lists the session's filtered products with display prices --> /api/sessions/:id/products
func (h *HTTPHandler) SessionProducts(c echo.Context) error {
	vs, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	products, err := vs.Products()
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SessionProductsResponse{
		SessionID: vs.ID(),
		Filter:    vs.Filter(),
		Tick:      vs.Prices().Tick,
		Products:  products,
	})
}

// UpdateFilter changes category and/or query --> /api/sessions/:id/filter
func (h *HTTPHandler) UpdateFilter(c echo.Context) error {
	var req FilterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	vs, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	filter := vs.Filter()
	applyFilter(&filter, req)
	if err := vs.SetFilter(filter); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SessionResponse{SessionID: vs.ID(), Filter: vs.Filter()})
}

// SessionPrices returns the latest price snapshot --> /api/sessions/:id/prices
func (h *HTTPHandler) SessionPrices(c echo.Context) error {
	vs, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, vs.Prices())
}

// CloseSession tears the session down --> /api/sessions/:id
func (h *HTTPHandler) CloseSession(c echo.Context) error {
	if err := h.sessions.Close(c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func applyFilter(f *domain.FilterState, req FilterRequest) {
	if req.Category != nil {
		f.Category = *req.Category
	}
	if req.Query != nil {
		f.Query = *req.Query
	}
}

func writeError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		status, message = http.StatusNotFound, "product not found"
	case errors.Is(err, service.ErrSessionNotFound):
		status, message = http.StatusNotFound, "session not found"
	case errors.Is(err, service.ErrSessionClosed):
		status, message = http.StatusGone, "session closed"
	case errors.Is(err, service.ErrTooManySessions):
		status, message = http.StatusServiceUnavailable, "too many sessions"
	case errors.Is(err, service.ErrInvalidCartIntent):
		status, message = http.StatusBadRequest, "invalid color or quantity"
	}

	return c.JSON(status, ErrorResponse{Error: message})
}
