package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"fiscus/internal/core"
	"fiscus/internal/log"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError maps the core error taxonomy onto HTTP statuses. Anything
// unrecognized is a 500 with a generic body so internals never leak.
func writeError(w http.ResponseWriter, logger *log.Logger, err error) {
	var (
		vErr   *core.ValidationError
		nfErr  *core.NotFoundError
		cfgErr *core.ConfigurationError
		tErr   *core.TransportError
	)

	switch {
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: vErr.Error()})
	case errors.As(err, &nfErr):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: nfErr.Error()})
	case errors.As(err, &cfgErr):
		logger.Error("configuration error", log.FieldError, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: cfgErr.Error()})
	case errors.As(err, &tErr):
		logger.Error("upstream failure", log.FieldOp, tErr.Op, log.FieldError, err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "upstream service unavailable"})
	default:
		logger.Error("unhandled error", log.FieldError, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}
