package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/flashflow-ai/flashflow/internal/assist"
	"github.com/flashflow-ai/flashflow/internal/auth"
	"github.com/flashflow-ai/flashflow/internal/engine"
	"github.com/flashflow-ai/flashflow/pkg/profile"
	"github.com/flashflow-ai/flashflow/pkg/provider/tts"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
}

// writeJSON encodes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "err", err)
	}
}

// writeError maps err to an HTTP status and writes a JSON error body.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := err.Error()

	switch {
	case errors.Is(err, engine.ErrNotFound):
		status = http.StatusConflict
		msg = "original text not found in document"
	case errors.Is(err, assist.ErrBusy):
		status = http.StatusTooManyRequests
	case errors.Is(err, assist.ErrNoProvider):
		status = http.StatusServiceUnavailable
		msg = "provider not configured"
	case errors.Is(err, assist.ErrEmptyInput):
		status = http.StatusBadRequest
	case errors.Is(err, tts.ErrUnknownVoice):
		status = http.StatusBadRequest
	case errors.Is(err, profile.ErrEmailTaken):
		status = http.StatusConflict
	case errors.Is(err, profile.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		status = http.StatusUnauthorized
		msg = "invalid credentials"
	case errors.Is(err, auth.ErrWeakPassword):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		slog.Error("request failed", "err", err)
		msg = "internal error"
	}
	writeJSON(w, status, errorBody{Error: msg})
}

// decodeJSON decodes the request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	return nil
}
