package http

import (
	"context"
	"net/http"
	"time"

	"github.com/ajinkyamaster/storefront/internal/catalog"
	"go.uber.org/zap"
)

type ProductHandler struct {
	repo    catalog.Repository
	timeout time.Duration
	logger  *zap.Logger
}

func NewProductHandler(repo catalog.Repository, timeout time.Duration, logger *zap.Logger) *ProductHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductHandler{
		repo:    repo,
		timeout: timeout,
		logger:  logger,
	}
}

// ProductResponse is the public shape of a product; stored fields such as
// the description are left out.
type ProductResponse struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Image string  `json:"image"`
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.repo.ListProducts(ctx)
	if err != nil {
		respondError(w, h.logger, internal(MsgFetchProductsFailed, err))
		return
	}

	res := make([]ProductResponse, len(products))
	for i, p := range products {
		res[i] = ProductResponse{
			ID:    p.ID,
			Name:  p.Name,
			Price: p.Price,
			Image: p.Image,
		}
	}

	respondJSON(w, http.StatusOK, res)
}
