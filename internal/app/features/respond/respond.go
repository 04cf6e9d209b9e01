// Package respond holds the JSON helpers shared by the API features.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// JSON writes v as the response body with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes a JSON error body: {"error": message}.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// Internal logs err and answers 500 without leaking the cause.
func Internal(w http.ResponseWriter, log *zap.Logger, operation string, err error) {
	log.Error(operation+" failed", zap.Error(err))
	Error(w, http.StatusInternalServerError, "internal error")
}

// Decode reads the request body into dst, capping its size.
func Decode(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.New("invalid request body")
	}
	return nil
}
