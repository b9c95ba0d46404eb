package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/dzakcloud/internal/common"
)

// envelope is a JSON response body. Every response carries "success".
type envelope map[string]any

const msgInternal = "Internal server error"

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeSuccess(w http.ResponseWriter, status int, body envelope) {
	if body == nil {
		body = envelope{}
	}
	body["success"] = true
	writeJSON(w, status, body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{"success": false, "message": msg})
}

// errorMessages are the per-route texts for each error class. Empty
// fields fall back to generic wording.
type errorMessages struct {
	validation   string
	unauthorized string
	notFound     string
	conflict     string
}

// writeServiceError maps a service error to a status code. Unknown errors
// are logged and answered with a generic 500.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, m errorMessages) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		writeError(w, http.StatusBadRequest, orDefault(m.validation, "Invalid request"))
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrTokenRevoked):
		writeError(w, http.StatusUnauthorized, orDefault(m.unauthorized, "Unauthorized"))
	case errors.Is(err, common.ErrorForbidden):
		writeError(w, http.StatusForbidden, "Forbidden")
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, orDefault(m.notFound, "Not found"))
	case errors.Is(err, common.ErrorAlreadyExists):
		writeError(w, http.StatusConflict, orDefault(m.conflict, "Already exists"))
	default:
		h.requestLogger(r).Error(r.Context(), "request failed", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// decodeJSON reads a JSON request body of at most maxBodyBytes.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

const maxBodyBytes = 1 << 20
