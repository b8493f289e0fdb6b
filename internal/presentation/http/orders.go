package httppresentation

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	appOrder "github.com/Zhima-Mochi/minishop-checkout/internal/application/order"
	domainOrder "github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
	"github.com/go-chi/chi/v5"
)

type orderResponse struct {
	ID               string                     `json:"id"`
	Origin           string                     `json:"origin"`
	PaymentReference string                     `json:"paymentReference,omitempty"`
	CustomerName     string                     `json:"customerName"`
	CustomerEmail    string                     `json:"customerEmail"`
	CustomerPhone    string                     `json:"customerPhone"`
	DeliveryAddress  string                     `json:"deliveryAddress"`
	Items            []domainOrder.LineSnapshot `json:"items"`
	Subtotal         string                     `json:"subtotal"`
	Shipping         string                     `json:"shipping"`
	Total            string                     `json:"total"`
	Status           domainOrder.Status         `json:"status"`
	PaymentStatus    domainOrder.PaymentStatus  `json:"paymentStatus"`
	CreatedAt        time.Time                  `json:"createdAt"`
	UpdatedAt        time.Time                  `json:"updatedAt"`
}

func toOrderResponse(o *domainOrder.Order) orderResponse {
	return orderResponse{
		ID:               o.ID,
		Origin:           o.Origin.String(),
		PaymentReference: o.PaymentReference(),
		CustomerName:     o.Customer.Name,
		CustomerEmail:    o.Customer.Email,
		CustomerPhone:    o.Customer.Phone,
		DeliveryAddress:  o.Customer.DeliveryAddress,
		Items:            o.Items,
		Subtotal:         o.Subtotal.StringFixed(2),
		Shipping:         o.Shipping.StringFixed(2),
		Total:            o.Total.StringFixed(2),
		Status:           o.Status,
		PaymentStatus:    o.PaymentStatus,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}

// createOrderRequest mirrors the storefront's manual checkout form. Amounts
// arrive as JSON numbers or decimal strings.
type createOrderRequest struct {
	CustomerName    string          `json:"customerName"`
	CustomerEmail   string          `json:"customerEmail"`
	CustomerPhone   string          `json:"customerPhone"`
	DeliveryAddress string          `json:"deliveryAddress"`
	Items           json.RawMessage `json:"items"`
	Subtotal        json.RawMessage `json:"subtotal"`
	Shipping        json.RawMessage `json:"shipping"`
	Total           json.RawMessage `json:"total"`
	Status          string          `json:"status"`
	PaymentStatus   string          `json:"paymentStatus"`
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.deps.PlaceOrder.Execute(r.Context(), appOrder.PlaceManualOrderInput{
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		DeliveryAddress: req.DeliveryAddress,
		Items:           rawText(req.Items),
		Subtotal:        rawText(req.Subtotal),
		Shipping:        rawText(req.Shipping),
		Total:           rawText(req.Total),
		Status:          req.Status,
		PaymentStatus:   req.PaymentStatus,
	})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(o))
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	list, err := h.deps.Orders.List(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	out := make([]orderResponse, 0, len(list))
	for _, o := range list {
		out = append(out, toOrderResponse(o))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.deps.Orders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	o, err := h.deps.UpdateStatus.Execute(r.Context(), appOrder.UpdateStatusInput{
		OrderID: chi.URLParam(r, "id"),
		Status:  req.Status,
	})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

// rawText unwraps a JSON string, or returns any other JSON value verbatim.
// The storefront sends items as an encoded string and amounts either way.
func rawText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(string(raw))
}
