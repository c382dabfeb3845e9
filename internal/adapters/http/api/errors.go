package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/laurel/internal/adapters/mq/queue"
	service "github.com/okian/laurel/internal/app"
	"github.com/okian/laurel/internal/domain/errkind"
	"github.com/okian/laurel/pkg/logger"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrBackpressure = errors.New("backpressure")
	ErrUnavailable  = errors.New("service unavailable")
)

const internalMessage = "internal error, retry later"

type errorResponse struct {
	Code    string `json:"code"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// badRequest marks a transport-level decode or validation failure.
func badRequest(op string, err error) error {
	return errkind.WrapKind(op, errkind.Validation, fmt.Errorf("%w: %w", ErrBadRequest, err))
}

// classify maps an operation error onto a status code and a stable code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, queue.ErrQueueFull):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, queue.ErrQueueClosed), errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	}
	switch errkind.KindOf(err) {
	case errkind.Validation:
		return http.StatusBadRequest, "bad_request"
	case errkind.NotFound:
		return http.StatusNotFound, "not_found"
	case errkind.Conflict:
		return http.StatusConflict, "conflict"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeError answers with {code, kind, message}. Internal failures get a
// generic message and are logged with their cause.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		logger.Get().Error(r.Context(), "request failed",
			logger.String("path", r.URL.Path),
			logger.Int("status", status),
			logger.Error(err))
		msg = internalMessage
		if status == http.StatusServiceUnavailable {
			msg = ErrUnavailable.Error()
		}
	}
	writeJSON(w, status, errorResponse{Code: code, Kind: errkind.KindOf(err).String(), Message: msg})
}
