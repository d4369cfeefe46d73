package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/domain/auth"
	"github.com/xenking/storefront/internal/domain/offer"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/owner"
	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/domain/user"
)

// decodeJSON reads the request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes the structured error envelope {"code": N, "message": S}.
func writeError(w http.ResponseWriter, status int, message string) {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("code", func(e *jx.Encoder) { e.Int(status) })
		e.Field("message", func(e *jx.Encoder) { e.Str(message) })
	})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeDomainError maps domain errors to HTTP responses. Unrecognized errors
// are logged and surfaced as an opaque 500, never with internal detail.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := classify(err)
	if status == http.StatusInternalServerError {
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		message = "internal error"
	}
	writeError(w, status, message)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, user.ErrNotFound),
		errors.Is(err, owner.ErrNotFound),
		errors.Is(err, product.ErrNotFound),
		errors.Is(err, offer.ErrNotFound),
		errors.Is(err, order.ErrNotFound):
		return http.StatusNotFound, err.Error()

	case errors.Is(err, user.ErrNameTaken),
		errors.Is(err, owner.ErrNameTaken),
		errors.Is(err, product.ErrNameTaken),
		errors.Is(err, offer.ErrCodeTaken):
		return http.StatusConflict, err.Error()

	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, err.Error()

	case errors.Is(err, order.ErrNotAuthorized):
		return http.StatusForbidden, err.Error()

	case errors.Is(err, order.ErrClosedDay),
		errors.Is(err, order.ErrInsufficientStock),
		errors.Is(err, order.ErrInvalidQuantity),
		errors.Is(err, offer.ErrExpired),
		errors.Is(err, offer.ErrAlreadyUsed),
		errors.Is(err, offer.ErrNotApplicable),
		errors.Is(err, offer.ErrExpiryInPast):
		return http.StatusUnprocessableEntity, err.Error()
	}

	var rangeErr *order.AmountOutOfRangeError
	if errors.As(err, &rangeErr) {
		return http.StatusUnprocessableEntity, rangeErr.Error()
	}

	return http.StatusInternalServerError, ""
}
