package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/maxcasase/BDPW-Back-End/pkg/errors"
	"github.com/maxcasase/BDPW-Back-End/pkg/logger"
	"github.com/maxcasase/BDPW-Back-End/pkg/pagination"
	"github.com/maxcasase/BDPW-Back-End/pkg/validator"
)

// Response is the standard JSON response envelope.
type Response struct {
	Data  any            `json:"data,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

// ErrorResponse represents an error in the standard response format.
type ErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps err onto the error envelope. AppErrors keep their code,
// message and status; bare sentinels get a generic message; anything else
// becomes a 500 whose detail only reaches the log. It prefers the
// request-scoped logger from context over fallback.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() && fallback != nil {
		l = fallback
	}
	requestID := logger.CorrelationIDFromContext(r.Context())

	status := apperrors.HTTPStatus(err)
	code, message := "INTERNAL_ERROR", "an internal error occurred"

	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		code, message = appErr.Code, appErr.Message
	case errors.Is(err, apperrors.ErrNotFound):
		code, message = "NOT_FOUND", "resource not found"
	case errors.Is(err, apperrors.ErrAlreadyExists):
		code, message = "ALREADY_EXISTS", "resource already exists"
	case errors.Is(err, apperrors.ErrInvalidInput):
		code, message = "INVALID_INPUT", err.Error()
	case errors.Is(err, apperrors.ErrServiceUnavail):
		code, message = "TRANSIENT", "a backing store is temporarily unavailable, please retry"
	default:
		status = http.StatusInternalServerError
	}

	switch {
	case status == http.StatusServiceUnavailable:
		l.WarnContext(r.Context(), "transient failure",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	case status >= http.StatusInternalServerError:
		l.ErrorContext(r.Context(), "internal error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	WriteJSON(w, status, Response{
		Error: &ErrorResponse{Code: code, Message: message, RequestID: requestID},
	})
}

// ListResponse is the envelope for one page of a list. Count is the number
// of items in Data, not a collection total.
type ListResponse[T any] struct {
	Data  []T `json:"data"`
	Count int `json:"count"`
	Page  int `json:"page,omitempty"`
	Limit int `json:"limit"`
}

// NewListResponse builds a ListResponse for data fetched with p. A nil slice
// is encoded as an empty array.
func NewListResponse[T any](data []T, p pagination.Params) ListResponse[T] {
	if data == nil {
		data = []T{}
	}
	return ListResponse[T]{
		Data:  data,
		Count: len(data),
		Page:  p.Page,
		Limit: p.PerPage,
	}
}

// WriteValidationError writes a 400 with field-level details when err came
// from the validator package, or the plain message otherwise.
func WriteValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteJSON(w, http.StatusBadRequest, Response{
			Error: &ErrorResponse{
				Code:    "VALIDATION_ERROR",
				Message: "request validation failed",
				Fields:  valErr.Fields(),
			},
		})
		return
	}

	WriteJSON(w, http.StatusBadRequest, Response{
		Error: &ErrorResponse{Code: "INVALID_INPUT", Message: err.Error()},
	})
}
