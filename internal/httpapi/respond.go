package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/chroniclehq/chronicle/internal/genai"
	"github.com/chroniclehq/chronicle/internal/store"
)

type errorBody struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorEnvelope{Error: errorBody{Message: message}})
}

// writeFieldErrors reports per-field validation failures as a 400.
func writeFieldErrors(w http.ResponseWriter, fields map[string]string) {
	writeJSON(w, http.StatusBadRequest, errorEnvelope{Error: errorBody{
		Message: "validation failed",
		Fields:  fields,
	}})
}

// writeDomainError maps store and upstream errors onto the REST error
// contract. Anything unrecognized is logged and reported as a 500.
func writeDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrWorkspaceNotFound),
		errors.Is(err, store.ErrPostNotFound),
		errors.Is(err, store.ErrReminderNotFound),
		errors.Is(err, store.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrEmailTaken),
		errors.Is(err, store.ErrAlreadyMember),
		errors.Is(err, store.ErrNotMember):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, genai.ErrUnavailable),
		errors.Is(err, genai.ErrSchemaViolation):
		zerolog.Ctx(ctx).Error().Err(err).Msg("upstream generation failure")
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		zerolog.Ctx(ctx).Error().Err(err).Msg("internal error")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeBody decodes a JSON request body, reporting malformed payloads as
// a 400. Returns false when a response has already been written.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
