package api

import (
	"net/http"
	"time"

	"github.com/xenking/storefront/internal/domain/order"
)

type orderRequest struct {
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	OfferCode string `json:"offer_code,omitempty"`
}

type orderUpdateRequest struct {
	ProductID *int64 `json:"product_id,omitempty"`
	Quantity  *int   `json:"quantity,omitempty"`
}

type addProductRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type orderResponse struct {
	OrderID        int64   `json:"order_id"`
	UserID         int64   `json:"user_id"`
	ProductID      int64   `json:"product_id"`
	Quantity       int     `json:"quantity"`
	OfferCode      string  `json:"offer_code,omitempty"`
	TotalAmount    float64 `json:"total_amount"`
	DiscountAmount float64 `json:"discount_amount"`
	FinalAmount    float64 `json:"final_amount"`
	CreatedAt      string  `json:"created_at"`
}

func toOrderResponse(o order.Order) orderResponse {
	return orderResponse{
		OrderID:        o.ID,
		UserID:         o.UserID,
		ProductID:      o.ProductID,
		Quantity:       o.Quantity,
		OfferCode:      o.OfferCode,
		TotalAmount:    o.TotalAmount.InexactFloat64(),
		DiscountAmount: o.DiscountAmount.InexactFloat64(),
		FinalAmount:    o.FinalAmount.InexactFloat64(),
		CreatedAt:      o.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := claimsFrom(r.Context())
	o, err := h.orders.PlaceOrder(r.Context(), claims.AccountID, order.PlaceOrderRequest{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		OfferCode: req.OfferCode,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(*o))
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	claims := claimsFrom(r.Context())
	o, err := h.orders.Get(r.Context(), claims.AccountID, id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(*o))
}

func (h *Handler) updateOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req orderUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := claimsFrom(r.Context())
	o, err := h.orders.Update(r.Context(), claims.AccountID, id, order.UpdateOrderRequest{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(*o))
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	claims := claimsFrom(r.Context())
	if err := h.orders.Delete(r.Context(), claims.AccountID, id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addProductToOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req addProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := claimsFrom(r.Context())
	o, err := h.orders.AddProduct(r.Context(), claims.AccountID, id, req.ProductID, req.Quantity)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(*o))
}
