package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ajinkyamaster/storefront/internal/domain"
	"github.com/ajinkyamaster/storefront/internal/validation"
	"github.com/ajinkyamaster/storefront/pkg/logger"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type ctxKey int

const cartItemsKey ctxKey = iota

// RequestLogger logs one line per request.
func RequestLogger(l *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.WithTrace(r.Context(), l).Info("HTTP request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

// Recoverer turns a panic into a generic 500 through the central responder.
func Recoverer(l *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					l.Error("panic recovered",
						zap.Any("error", rec),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
					)
					respondError(w, l, internal(MsgInternal, fmt.Errorf("panic: %v", rec)))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// ValidateCartRequest rejects malformed cart submissions with 400 before the
// handler runs. Valid items are passed on in the request context.
func ValidateCartRequest(maxBodySize int64, l *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					respondError(w, l, &APIError{Status: http.StatusRequestEntityTooLarge, Message: "Request body too large"})
					return
				}
				respondError(w, l, badRequest(validation.MsgInvalidJSON))
				return
			}

			items, err := validation.ValidateCart(body)
			if err != nil {
				respondError(w, l, badRequest(err.Error()))
				return
			}

			ctx := context.WithValue(r.Context(), cartItemsKey, items)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func cartItemsFromContext(ctx context.Context) ([]domain.SubmittedItem, bool) {
	items, ok := ctx.Value(cartItemsKey).([]domain.SubmittedItem)
	return items, ok
}
