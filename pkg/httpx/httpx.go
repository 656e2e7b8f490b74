package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/Nikhil2261/iot-backend/internal/apperr"
)

func NewRequestID() string { return "req_" + uuid.NewString() }

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func ReadJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func WriteError(w http.ResponseWriter, status int, code, message string, details any) {
	resp := map[string]any{
		"request_id": NewRequestID(),
		"error": map[string]any{
			"code": code, "message": message, "details": details,
		},
	}
	WriteJSON(w, status, resp)
}

// WriteAppError maps an error's kind tag to an HTTP status and writes the
// standard error envelope. Internal errors are surfaced opaquely.
func WriteAppError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	status, ok := statusByKind[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	message := err.Error()
	if kind == apperr.KindInternal {
		message = "internal error"
	}
	WriteError(w, status, string(kind), message, nil)
}

var statusByKind = map[apperr.Kind]int{
	apperr.KindInvalidRequest: http.StatusBadRequest,
	apperr.KindUnauthorized:   http.StatusUnauthorized,
	apperr.KindTokenExpired:   http.StatusUnauthorized,
	apperr.KindTokenMismatch:  http.StatusUnauthorized,
	apperr.KindNotFound:       http.StatusNotFound,
	apperr.KindConflict:       http.StatusConflict,
	apperr.KindTransient:      http.StatusServiceUnavailable,
	apperr.KindInternal:       http.StatusInternalServerError,
}
