package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"socloud/internal/apperr"
	"socloud/internal/logging"
)

// ErrInvalidUpload rejects a file that exceeds its size limit or has a
// disallowed content type.
var ErrInvalidUpload = fmt.Errorf("%w: invalid upload", apperr.ErrValidation)

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrInvalidCredentials), errors.Is(err, apperr.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrDuplicateCredential), errors.Is(err, apperr.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidUpload):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrStorageUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps err onto a status code. Internal failures are logged and
// answered with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	message := err.Error()

	logger := logging.WithContext(r.Context())
	switch {
	case status >= 500:
		logger.Error().Err(err).Int("status_code", status).Msg("request failed")
		if status == http.StatusInternalServerError {
			message = "internal server error"
		}
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		logger.Debug().Err(err).Int("status_code", status).Msg("request rejected")
	}

	writeJSON(w, status, errorResponse{Error: message})
}
