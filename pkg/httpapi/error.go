package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/orgkit/presence/pkg/composables"
	"github.com/orgkit/presence/pkg/serrors"
)

// ErrorEnvelope standardizes JSON error responses for API namespaces.
type ErrorEnvelope struct {
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Meta    map[string]string `json:"meta,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	if w == nil {
		return nil
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, code, message string, meta map[string]string) error {
	return WriteJSON(w, status, &ErrorEnvelope{
		Code:    code,
		Message: message,
		Meta:    meta,
	})
}

// WriteFailure maps a service error onto the wire. Persistence causes are
// never leaked to clients; they go to the request-scoped logger instead.
func WriteFailure(ctx context.Context, w http.ResponseWriter, err error) error {
	var se *serrors.Error
	if !errors.As(err, &se) {
		composables.UseLogger(ctx).WithError(err).Error("unclassified failure")
		return WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
	}

	status := http.StatusInternalServerError
	message := se.Message
	switch se.Kind {
	case serrors.KindValidation:
		status = http.StatusBadRequest
	case serrors.KindConflict:
		status = http.StatusConflict
	case serrors.KindNotFound:
		status = http.StatusNotFound
	case serrors.KindAuthorization:
		status = http.StatusForbidden
	case serrors.KindPersistence:
		message = "internal error"
		composables.UseLogger(ctx).WithError(se).Error("persistence failure")
	}
	return WriteError(w, status, se.Code, message, nil)
}
