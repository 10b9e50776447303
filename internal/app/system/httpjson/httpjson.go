// internal/app/system/httpjson/httpjson.go

// Package httpjson implements the JSON envelope every API endpoint
// uses: {"data": ..., "error": ...}. Reads return data plus a null
// error; failures return a null data field, an error message, and for
// validation failures the aggregated list of violated rules.
package httpjson

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fixtrack/fixtrack/internal/app/system/inputval"
	"github.com/fixtrack/fixtrack/internal/app/system/limits"
	"go.uber.org/zap"
)

// Envelope is the wire shape for every response.
type Envelope struct {
	Data   any      `json:"data"`
	Error  string   `json:"error,omitempty"`
	Errors []string `json:"errors,omitempty"` // per-rule validation messages
}

// Write sends data with a 200 (or the given status) and a null error.
func Write(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Envelope{Data: data})
}

// WriteError sends an error envelope with the given status.
func WriteError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Envelope{Error: msg})
}

// WriteFromErr maps a store error onto the wire: validation failures
// become 422 with the full rule list, not-found sentinels become 404,
// and anything else is logged and returned as an opaque 500.
func WriteFromErr(w http.ResponseWriter, err error, notFound error, log *zap.Logger) {
	if ve := inputval.AsValidationError(err); ve != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(Envelope{Error: "validation failed", Errors: ve.Errors})
		return
	}
	if notFound != nil && errors.Is(err, notFound) {
		WriteError(w, http.StatusNotFound, "not found")
		return
	}
	if log != nil {
		log.Error("request failed", zap.Error(err))
	}
	WriteError(w, http.StatusInternalServerError, "internal error")
}

// Decode reads a JSON request body into dst, rejecting unknown fields.
// Bodies over limits.MaxJSONBodySize fail to decode.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, limits.MaxJSONBodySize))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
