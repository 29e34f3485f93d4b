package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/storelab/checkout/internal/catalog"
	"github.com/storelab/checkout/internal/order/application"
	"github.com/storelab/checkout/internal/order/domain"
)

// StockPeeker exposes the ledger's read-only counter for display layers.
type StockPeeker interface {
	Peek(ctx context.Context, productID string) (int, error)
}

type Handler struct {
	log     *slog.Logger
	service *application.Service
	stock   StockPeeker
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service, stock StockPeeker) *Handler {
	return &Handler{
		log:     log,
		service: service,
		stock:   stock,
		tracer:  otel.Tracer("order-http"),
	}
}

// Routes builds the router. createOrderMW applies to order creation only, so
// dedup of retried POSTs never touches the read or transition paths.
func (h *Handler) Routes(createOrderMW ...func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.With(createOrderMW...).Post("/orders", h.createOrder)
	r.Get("/orders", h.listOrders)
	r.Get("/orders/{id}", h.getOrder)
	r.Put("/orders/{id}/status", h.updateStatus)
	r.Get("/products/{id}/stock", h.stockLevel)
	return r
}

type itemReq struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type createOrderReq struct {
	Items           []itemReq `json:"items"`
	ShippingAddress string    `json:"shippingAddress"`
	PaymentMethod   string    `json:"paymentMethod"`
}

type statusReq struct {
	Status string `json:"status"`
}

type itemResp struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unitPriceAtPurchase"`
}

type orderResp struct {
	ID              string     `json:"id"`
	UserID          string     `json:"userId"`
	Items           []itemResp `json:"items"`
	ShippingAddress string     `json:"shippingAddress"`
	PaymentMethod   string     `json:"paymentMethod"`
	Total           string     `json:"totalAmount"`
	Status          string     `json:"status"`
	Version         int64      `json:"version"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func toOrderResp(o domain.Order) orderResp {
	items := make([]itemResp, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, itemResp{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice.String(),
		})
	}
	return orderResp{
		ID:              o.ID,
		UserID:          o.UserID,
		Items:           items,
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   o.PaymentMethod,
		Total:           o.Total.String(),
		Status:          string(o.Status),
		Version:         o.Version,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateOrder")
	defer span.End()

	userID := callerID(r)
	if userID == "" {
		writeErrorCode(w, http.StatusUnauthorized, "missing_caller_identity", nil)
		return
	}

	var req createOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "invalid_body", nil)
		return
	}

	items := make([]application.CartItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, application.CartItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	o, err := h.service.CreateOrder(ctx, userID, items, req.ShippingAddress, req.PaymentMethod)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResp(o))
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetOrder")
	defer span.End()

	o, err := h.service.GetOrder(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResp(o))
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListOrders")
	defer span.End()

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		userID = callerID(r)
	}
	if userID == "" {
		writeErrorCode(w, http.StatusBadRequest, "missing_user_id", nil)
		return
	}

	orders, err := h.service.ListOrders(ctx, userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]orderResp, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResp(o))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "TransitionStatus")
	defer span.End()

	var req statusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "invalid_body", nil)
		return
	}
	status := domain.Status(req.Status)
	if !status.Valid() {
		writeErrorCode(w, http.StatusUnprocessableEntity, "unknown_status", map[string]any{"status": req.Status})
		return
	}

	o, err := h.service.TransitionStatus(ctx, chi.URLParam(r, "id"), status)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResp(o))
}

func (h *Handler) stockLevel(w http.ResponseWriter, r *http.Request) {
	stock, err := h.stock.Peek(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"productId": chi.URLParam(r, "id"), "stock": stock})
}

// callerID is the identity established by the surrounding auth layer; this
// core trusts the header it injects.
func callerID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var (
		invalidItem  domain.InvalidItemError
		insufficient domain.InsufficientStockError
		invalidTrans domain.InvalidTransitionError
	)
	switch {
	case errors.Is(err, domain.ErrEmptyCart):
		writeErrorCode(w, http.StatusBadRequest, "empty_cart", nil)
	case errors.As(err, &invalidItem):
		writeErrorCode(w, http.StatusBadRequest, "invalid_item", map[string]any{
			"productId": invalidItem.ProductID,
			"quantity":  invalidItem.Quantity,
		})
	case errors.Is(err, catalog.ErrProductNotFound):
		writeErrorCode(w, http.StatusBadRequest, "unknown_product", nil)
	case errors.As(err, &insufficient):
		writeErrorCode(w, http.StatusConflict, "insufficient_stock", map[string]any{
			"productId": insufficient.ProductID,
			"requested": insufficient.Requested,
			"available": insufficient.Available,
		})
	case errors.Is(err, domain.ErrOrderNotFound):
		writeErrorCode(w, http.StatusNotFound, "order_not_found", nil)
	case errors.Is(err, domain.ErrConcurrencyConflict):
		writeErrorCode(w, http.StatusConflict, "concurrency_conflict", nil)
	case errors.As(err, &invalidTrans):
		writeErrorCode(w, http.StatusUnprocessableEntity, "invalid_transition", map[string]any{
			"from": string(invalidTrans.From),
			"to":   string(invalidTrans.To),
		})
	default:
		h.log.Error("request failed", "err", err)
		writeErrorCode(w, http.StatusInternalServerError, "internal", nil)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeErrorCode(w http.ResponseWriter, status int, code string, details map[string]any) {
	e := map[string]any{"code": code}
	for k, v := range details {
		e[k] = v
	}
	writeJSON(w, status, map[string]any{"error": e})
}
