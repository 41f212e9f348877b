package httpclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/maxcasase/BDPW-Back-End/pkg/errors"
)

const maxBodyBytes = 1 << 20

// downstreamErrorResponse mirrors httputil.ErrorResponse.
type downstreamErrorResponse struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseResponseError consumes and closes the body of a non-2xx response and
// turns it into an AppError carrying the downstream status.
func ParseResponseError(resp *http.Response, serviceName string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", serviceName, resp.StatusCode, err)
	}

	code := http.StatusText(resp.StatusCode)
	message := string(body)
	var downstream downstreamErrorResponse
	if json.Unmarshal(body, &downstream) == nil && downstream.Error != nil {
		code, message = downstream.Error.Code, downstream.Error.Message
	}
	return mapDownstreamError(resp.StatusCode, code, message, serviceName)
}

func mapDownstreamError(status int, code, message, serviceName string) error {
	msg := fmt.Sprintf("%s: %s", serviceName, message)

	switch {
	case status == http.StatusNotFound:
		return &apperrors.AppError{Code: "NOT_FOUND", Message: msg, Status: status, Err: apperrors.ErrNotFound}
	case status == http.StatusBadRequest:
		return apperrors.InvalidInput(msg)
	case status == http.StatusUnauthorized:
		return apperrors.Unauthorized(msg)
	case status == http.StatusForbidden:
		return apperrors.Forbidden(msg)
	case status == http.StatusConflict:
		return apperrors.Conflict(code, msg)
	case status == http.StatusServiceUnavailable:
		return apperrors.Transient(errors.New(msg))
	case status >= 500:
		return fmt.Errorf("%s server error (%d/%s): %s", serviceName, status, code, message)
	default:
		return &apperrors.AppError{Code: code, Message: msg, Status: status}
	}
}

// IsClientError reports whether err carries a 4xx downstream status.
func IsClientError(err error) bool {
	var appErr *apperrors.AppError
	return errors.As(err, &appErr) && appErr.Status >= 400 && appErr.Status < 500
}
