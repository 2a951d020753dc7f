package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/ivankudzin/sparkmatch/internal/pkg/apperr"
)

// Envelope is the body of every response, success or failure.
type Envelope struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func Write(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Envelope{
		Status:  status,
		Message: message,
		Data:    data,
	})
}

func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindInvalidArgument:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindQuotaExceeded:
		return http.StatusForbidden
	case apperr.KindRateLimited:
		return http.StatusTooManyRequests
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// WriteError renders err in the envelope. Internal causes never reach the
// client; only the message and details of an *apperr.Error do.
func WriteError(w http.ResponseWriter, err error) {
	var appErr *apperr.Error
	if !stderrors.As(err, &appErr) {
		Write(w, http.StatusInternalServerError, "internal server error", nil)
		return
	}
	message := appErr.Message
	if message == "" {
		message = http.StatusText(StatusFor(appErr.Kind))
	}
	Write(w, StatusFor(appErr.Kind), message, appErr.Details)
}
