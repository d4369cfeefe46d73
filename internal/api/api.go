// Package api exposes the HTTP surface: authentication, product and offer
// CRUD, and the order workflow.
package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/xenking/storefront/internal/domain/auth"
	"github.com/xenking/storefront/internal/domain/offer"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
)

// Handler wires the domain services to HTTP routes.
type Handler struct {
	auth     *auth.Service
	tokens   *auth.TokenIssuer
	products product.Repository
	offers   offer.Repository
	orders   *order.Service
	now      func() time.Time
}

// Option configures optional Handler behavior.
type Option func(*Handler)

// WithClock overrides the time source used for offer expiry checks.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		h.now = now
	}
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	authSvc *auth.Service,
	tokens *auth.TokenIssuer,
	products product.Repository,
	offers offer.Repository,
	orders *order.Service,
	opts ...Option,
) *Handler {
	h := &Handler{
		auth:     authSvc,
		tokens:   tokens,
		products: products,
		offers:   offers,
		orders:   orders,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes builds the API router. Callers mount it under /api.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/user/register", h.registerUser)
	r.Post("/user/login", h.loginUser)
	r.Post("/owner/register", h.registerOwner)
	r.Post("/owner/login", h.loginOwner)

	r.Group(func(r chi.Router) {
		r.Use(h.requireRole(auth.RoleUser, auth.RoleOwner))
		r.Get("/products", h.listProducts)
		r.Get("/products/{id}", h.getProduct)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.requireRole(auth.RoleOwner))
		r.Post("/products", h.createProduct)
		r.Delete("/products/{id}", h.deleteProduct)
		r.Post("/offers", h.createOffer)
		r.Put("/offers/{id}", h.updateOffer)
		r.Delete("/offers/{id}", h.deleteOffer)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.requireRole(auth.RoleUser))
		r.Post("/orders", h.placeOrder)
		r.Get("/orders/{id}", h.getOrder)
		r.Put("/orders/{id}", h.updateOrder)
		r.Delete("/orders/{id}", h.deleteOrder)
		r.Post("/orders/{id}/products", h.addProductToOrder)
	})

	return r
}

// claimsKey is the context key for verified token claims.
type claimsKey struct{}

// claimsFrom extracts the verified claims stored by requireRole.
func claimsFrom(ctx context.Context) *auth.Claims {
	c, _ := ctx.Value(claimsKey{}).(*auth.Claims)
	return c
}

// requireRole verifies the bearer token and admits only the listed roles.
func (h *Handler) requireRole(roles ...auth.Role) func(http.Handler) http.Handler {
	allowed := make(map[auth.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			claims, err := h.tokens.Verify(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			if _, ok := allowed[claims.Role]; !ok {
				writeError(w, http.StatusForbidden, "insufficient role")
				return
			}
			ctx := context.WithValue(r.Context(), claimsKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	const prefix = "Bearer "
	header := r.Header.Get("Authorization")
	if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
		return "", false
	}
	return header[len(prefix):], true
}

// pathID parses the {id} route parameter.
func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
