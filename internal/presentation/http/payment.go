package httppresentation

import (
	"encoding/json"
	"net/http"

	appPayment "github.com/Zhima-Mochi/minishop-checkout/internal/application/payment"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability/logctx"
	"github.com/shopspring/decimal"
)

type initializePaymentRequest struct {
	Email string `json:"email"`
	// Amount is in major units, as a JSON number or decimal string.
	Amount   decimal.Decimal `json:"amount"`
	Metadata json.RawMessage `json:"metadata"`
}

type initializePaymentData struct {
	AuthorizationURL string `json:"authorizationUrl"`
	AccessCode       string `json:"accessCode"`
	Reference        string `json:"reference"`
}

type initializePaymentResponse struct {
	Status  bool                   `json:"status"`
	Message string                 `json:"message,omitempty"`
	Data    *initializePaymentData `json:"data,omitempty"`
}

func (h *Handler) handleInitializePayment(w http.ResponseWriter, r *http.Request) {
	var req initializePaymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, initializePaymentResponse{Message: err.Error()})
		return
	}

	res, err := h.deps.InitializePayment.Execute(r.Context(), appPayment.InitializePaymentInput{
		Email:    req.Email,
		Amount:   req.Amount,
		Metadata: req.Metadata,
	})
	if err != nil {
		status := statusFor(err)
		msg := err.Error()
		if status == http.StatusInternalServerError {
			logctx.FromOr(r.Context(), h.log).Error("http_internal_error", observability.E(err))
			msg = "internal error"
		}
		writeJSON(w, status, initializePaymentResponse{Message: msg})
		return
	}

	writeJSON(w, http.StatusOK, initializePaymentResponse{
		Status: true,
		Data: &initializePaymentData{
			AuthorizationURL: res.AuthorizationURL,
			AccessCode:       res.AccessCode,
			Reference:        res.Reference,
		},
	})
}

// handlePaymentCallback is where the gateway sends the shopper back. Whatever
// happens, the shopper lands on the storefront with a payment flag.
func (h *Handler) handlePaymentCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	reference := q.Get("reference")
	if reference == "" {
		reference = q.Get("trxref")
	}

	res, err := h.deps.ReconcilePayment.Execute(r.Context(), appPayment.ReconcilePaymentInput{Reference: reference})
	outcome := appPayment.OutcomeFor(err)

	orderID := ""
	if res != nil && res.Order != nil {
		orderID = res.Order.ID
	}
	logctx.FromOr(r.Context(), h.log).Info("payment_callback_redirect",
		observability.F("outcome", string(outcome)),
		observability.F("order_id", orderID),
	)
	http.Redirect(w, r, appPayment.RedirectURL(h.deps.StorefrontURL, outcome, orderID), http.StatusFound)
}
