package api

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/offer"
)

type offerRequest struct {
	Code          string          `json:"code"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	IsPercentage  bool            `json:"is_percentage"`
	ExpiresAt     time.Time       `json:"expires_at"`
	ProductID     *int64          `json:"product_id,omitempty"`
}

type offerUpdateRequest struct {
	Code          *string          `json:"code,omitempty"`
	DiscountValue *decimal.Decimal `json:"discount_value,omitempty"`
	IsPercentage  *bool            `json:"is_percentage,omitempty"`
	ExpiresAt     *time.Time       `json:"expires_at,omitempty"`
	ProductID     *int64           `json:"product_id,omitempty"`
}

type offerResponse struct {
	ID            int64   `json:"id"`
	Code          string  `json:"code"`
	DiscountValue float64 `json:"discount_value"`
	IsPercentage  bool    `json:"is_percentage"`
	ExpiresAt     string  `json:"expires_at"`
	ProductID     *int64  `json:"product_id,omitempty"`
}

func toOfferResponse(o offer.Offer) offerResponse {
	return offerResponse{
		ID:            o.ID,
		Code:          o.Code,
		DiscountValue: o.DiscountValue.InexactFloat64(),
		IsPercentage:  o.IsPercentage,
		ExpiresAt:     o.ExpiresAt.UTC().Format(time.RFC3339),
		ProductID:     o.ProductID,
	}
}

func (h *Handler) createOffer(w http.ResponseWriter, r *http.Request) {
	var req offerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}
	if req.ExpiresAt.Before(h.now().UTC()) {
		writeDomainError(w, r, offer.ErrExpiryInPast)
		return
	}

	claims := claimsFrom(r.Context())
	o := &offer.Offer{
		Code:          req.Code,
		DiscountValue: req.DiscountValue,
		IsPercentage:  req.IsPercentage,
		ExpiresAt:     req.ExpiresAt.UTC(),
		ProductID:     req.ProductID,
		OwnerID:       claims.AccountID,
	}
	if err := h.offers.Create(r.Context(), o); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOfferResponse(*o))
}

func (h *Handler) updateOffer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid offer id")
		return
	}

	var req offerUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	o, err := h.offers.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	claims := claimsFrom(r.Context())
	if o.OwnerID != claims.AccountID {
		writeError(w, http.StatusForbidden, "not authorized for this offer")
		return
	}

	if req.ExpiresAt != nil && req.ExpiresAt.Before(h.now().UTC()) {
		writeDomainError(w, r, offer.ErrExpiryInPast)
		return
	}

	o.Merge(offer.Update{
		Code:          req.Code,
		DiscountValue: req.DiscountValue,
		IsPercentage:  req.IsPercentage,
		ExpiresAt:     req.ExpiresAt,
		ProductID:     req.ProductID,
	})
	if err := h.offers.Update(r.Context(), o); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOfferResponse(*o))
}

func (h *Handler) deleteOffer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid offer id")
		return
	}

	o, err := h.offers.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	claims := claimsFrom(r.Context())
	if o.OwnerID != claims.AccountID {
		writeError(w, http.StatusForbidden, "not authorized for this offer")
		return
	}

	if err := h.offers.Delete(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
