// Package submission accepts validated carts and recomputes their totals.
package submission

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/ajinkyamaster/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Publisher hands an accepted submission to a downstream consumer.
type Publisher interface {
	Publish(ctx context.Context, receipt *domain.Receipt) error
}

type Service struct {
	publisher Publisher
	now       func() time.Time
	logger    *zap.Logger
}

type Option func(*Service)

// WithPublisher forwards every accepted submission to p.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithClock overrides the clock used for SubmittedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit computes the authoritative totals for items and stamps the
// submission time. Client supplied totals are never consulted. Nothing is
// stored; every failure is reported as ErrSubmitFailed.
func (s *Service) Submit(ctx context.Context, items []domain.SubmittedItem) (*domain.Receipt, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrSubmitFailed, ErrNoItems)
	}

	totalPrice := decimal.Zero
	totalItems := 0
	for _, item := range items {
		if item.Quantity > math.MaxInt-totalItems {
			return nil, fmt.Errorf("%w: %w", ErrSubmitFailed, ErrTotalOutOfRange)
		}
		totalPrice = totalPrice.Add(decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity))))
		totalItems += item.Quantity
	}

	price := totalPrice.InexactFloat64()
	if math.IsInf(price, 0) || math.IsNaN(price) {
		return nil, fmt.Errorf("%w: %w", ErrSubmitFailed, ErrTotalOutOfRange)
	}

	receipt := &domain.Receipt{
		Items:       items,
		TotalPrice:  price,
		TotalItems:  totalItems,
		SubmittedAt: s.now().UTC(),
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, receipt); err != nil {
			s.logger.Error("publish cart submission", zap.Error(err), zap.Int("total_items", totalItems))
			return nil, fmt.Errorf("%w: %w", ErrSubmitFailed, err)
		}
	}

	s.logger.Info("cart submitted",
		zap.Int("line_items", len(items)),
		zap.Int("total_items", totalItems),
		zap.Float64("total_price", receipt.TotalPrice),
	)
	return receipt, nil
}
