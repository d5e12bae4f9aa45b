package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/ajinkyamaster/storefront/internal/domain"
	"go.uber.org/zap"
)

// Submitter turns validated cart items into a receipt.
type Submitter interface {
	Submit(ctx context.Context, items []domain.SubmittedItem) (*domain.Receipt, error)
}

type CartHandler struct {
	submitter Submitter
	logger    *zap.Logger
}

func NewCartHandler(submitter Submitter, logger *zap.Logger) *CartHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartHandler{
		submitter: submitter,
		logger:    logger,
	}
}

// Submit expects ValidateCartRequest to have run first.
func (h *CartHandler) Submit(w http.ResponseWriter, r *http.Request) {
	items, ok := cartItemsFromContext(r.Context())
	if !ok {
		respondError(w, h.logger, internal(MsgSubmitCartFailed, errors.New("cart items missing from request context")))
		return
	}

	receipt, err := h.submitter.Submit(r.Context(), items)
	if err != nil {
		respondError(w, h.logger, internal(MsgSubmitCartFailed, err))
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{
		Success: true,
		Message: MsgCartSubmitted,
		Data:    receipt,
	})
}
