package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

const (
	MsgFetchProductsFailed = "Failed to fetch products"
	MsgSubmitCartFailed    = "Failed to submit cart"
	MsgCartSubmitted       = "Cart submitted successfully"
	MsgInternal            = "Internal server error"
	MsgNotFound            = "Not found"
	MsgMethodNotAllowed    = "Method not allowed"
)

// APIError is the only error shape that reaches the HTTP response. Message
// is returned to the caller verbatim; the underlying cause never is.
type APIError struct {
	Status  int
	Message string
	Cause   error
}

func (e *APIError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

func badRequest(msg string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Message: msg}
}

func internal(msg string, cause error) *APIError {
	return &APIError{Status: http.StatusInternalServerError, Message: msg, Cause: cause}
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// respondJSON encodes data before writing the header, so an unencodable value
// becomes a 500 instead of a truncated response.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		zap.L().Error("failed to encode response", zap.Error(err))
		status = http.StatusInternalServerError
		buf.Reset()
		_ = json.NewEncoder(&buf).Encode(ErrorResponse{Success: false, Message: MsgInternal})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		zap.L().Warn("failed to write response", zap.Error(err))
	}
}

// respondError is the single place where failures become HTTP responses.
func respondError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		apiErr = internal(MsgInternal, err)
	}

	if apiErr.Status >= http.StatusInternalServerError {
		logger.Error("request failed", zap.Int("status", apiErr.Status), zap.Error(err))
	} else {
		logger.Debug("request rejected", zap.Int("status", apiErr.Status), zap.String("message", apiErr.Message))
	}

	respondJSON(w, apiErr.Status, ErrorResponse{Success: false, Message: apiErr.Message})
}
