package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	svcErr "github.com/emberdate/ember-server/internal/errors"
	"github.com/emberdate/ember-server/internal/logger"
)

// writeJSON encodes payload with the given status.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// errorBody is the stable error envelope: a generic message per taxonomy
// kind, never raw storage details.
type errorBody struct {
	Error string `json:"error"`
}

// writeError maps a service error onto its HTTP status and generic
// message. The full error is logged server-side only.
func writeError(w http.ResponseWriter, err error) {
	status := svcErr.Status(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, errorBody{Error: svcErr.Message(err)})
}

// decodeJSON decodes a request body into dst, rejecting trailing garbage.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected trailing data")
	}
	_, _ = io.Copy(io.Discard, r.Body)
	return nil
}

// uintParam parses a numeric chi URL parameter. A malformed id is a 400,
// not a 404.
func uintParam(r *http.Request, name string) (uint64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, svcErr.InvalidArgument(name + " must be a positive integer")
	}
	return id, nil
}
