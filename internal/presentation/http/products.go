package httppresentation

import (
	"net/http"

	domainCatalog "github.com/Zhima-Mochi/minishop-checkout/internal/domain/catalog"
	"github.com/go-chi/chi/v5"
)

type productResponse struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Price             string `json:"price"`
	Stock             int    `json:"stock"`
	ImageRef          string `json:"imageRef"`
	LowStock          bool   `json:"lowStock"`
	LowStockThreshold int    `json:"lowStockThreshold"`
}

func toProductResponse(p *domainCatalog.Product) productResponse {
	return productResponse{
		ID:                p.ID,
		Name:              p.Name,
		Price:             p.Price.StringFixed(2),
		Stock:             p.Stock,
		ImageRef:          p.ImageRef,
		LowStock:          p.IsLowStock(),
		LowStockThreshold: p.LowStockThreshold,
	}
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	list, err := h.deps.Products.List(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	out := make([]productResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toProductResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.deps.Products.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}
