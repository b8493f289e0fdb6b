package httppresentation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Zhima-Mochi/minishop-checkout/internal/application"
	appOrder "github.com/Zhima-Mochi/minishop-checkout/internal/application/order"
	appPayment "github.com/Zhima-Mochi/minishop-checkout/internal/application/payment"
	domainCatalog "github.com/Zhima-Mochi/minishop-checkout/internal/domain/catalog"
	domainInventory "github.com/Zhima-Mochi/minishop-checkout/internal/domain/inventory"
	domainOrder "github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
	domainPayment "github.com/Zhima-Mochi/minishop-checkout/internal/domain/payment"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability/logctx"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	componentHTTPHandler = "http_server"
	headerRequestID      = "X-Request-ID"
	maxBodyBytes         = 1 << 20
)

// OrderReader serves the order read endpoints.
type OrderReader interface {
	Get(ctx context.Context, id string) (*domainOrder.Order, error)
	List(ctx context.Context) ([]*domainOrder.Order, error)
}

type ProductReader interface {
	Get(ctx context.Context, id string) (*domainCatalog.Product, error)
	List(ctx context.Context) ([]*domainCatalog.Product, error)
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	PlaceOrder        application.UseCase[appOrder.PlaceManualOrderInput, *domainOrder.Order]
	UpdateStatus      application.UseCase[appOrder.UpdateStatusInput, *domainOrder.Order]
	Orders            OrderReader
	Products          ProductReader
	InitializePayment application.UseCase[appPayment.InitializePaymentInput, *appPayment.InitializePaymentResult]
	ReconcilePayment  application.UseCase[appPayment.ReconcilePaymentInput, *appPayment.ReconcilePaymentResult]
	// StorefrontURL receives the shopper after a payment callback.
	StorefrontURL string
	Health        Pinger
}

type Handler struct {
	deps Deps
	log  observability.Logger
	tel  observability.Observability
}

func NewHandler(deps Deps, tel observability.Observability) *Handler {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Handler{
		deps: deps,
		log:  tel.Logger().With(observability.F("component", componentHTTPHandler)),
		tel:  tel,
	}
}

// Router wires every route behind Recoverer and the observability middleware
// (server span, request logger, HTTP metrics, access log).
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(ObservabilityMiddleware(h.log, func(r *http.Request) string {
		return r.Header.Get(headerRequestID)
	}, h.tel))

	r.Get("/health", h.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Post("/", h.handleCreateOrder)
			r.Get("/", h.handleListOrders)
			r.Get("/{id}", h.handleGetOrder)
			r.Patch("/{id}/status", h.handleUpdateStatus)
		})
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.handleListProducts)
			r.Get("/{id}", h.handleGetProduct)
		})
		r.Route("/payment", func(r chi.Router) {
			r.Post("/initialize", h.handleInitializePayment)
			r.Get("/callback", h.handlePaymentCallback)
		})
	})
	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.deps.Health != nil {
		if err := h.deps.Health.Ping(r.Context()); err != nil {
			logctx.FromOr(r.Context(), h.log).Warn("health_check_failed", observability.E(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor classifies application errors for the HTTP edge.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domainOrder.ErrValidation),
		errors.Is(err, domainPayment.ErrInvalidMetadata),
		errors.Is(err, domainPayment.ErrMissingReference),
		errors.Is(err, domainPayment.ErrInvalidAmount),
		errors.Is(err, domainPayment.ErrAmountMismatch),
		errors.Is(err, domainInventory.ErrInvalidQuantity):
		return http.StatusBadRequest
	case errors.Is(err, domainOrder.ErrNotFound),
		errors.Is(err, domainCatalog.ErrNotFound),
		errors.Is(err, domainInventory.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domainInventory.ErrInsufficientStock),
		errors.Is(err, domainOrder.ErrConflict),
		errors.Is(err, domainOrder.ErrInvalidStateTransition),
		errors.Is(err, domainPayment.ErrReconciliationInProgress):
		return http.StatusConflict
	case errors.Is(err, domainPayment.ErrGateway),
		errors.Is(err, domainPayment.ErrDeclined):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeDomainError hides internal failures behind a generic message and logs them.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logctx.FromOr(r.Context(), h.log).Error("http_internal_error", observability.E(err))
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}
