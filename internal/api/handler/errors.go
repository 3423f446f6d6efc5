package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/mcoot/pokerleague/internal/api/apierr"
	"github.com/mcoot/pokerleague/internal/middleware"
)

// maxBodyBytes caps request bodies; the largest is a bulk roster of IDs
const maxBodyBytes = 1 << 20

func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// writeError writes err, logging it first when it maps to a 5xx
func writeError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	if apierr.Status(err) >= http.StatusInternalServerError {
		logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
			slog.Any("error", err))
	}
	WriteError(w, err)
}

// decode reads one JSON value into v. An empty body leaves v untouched;
// trailing data or an oversized body is rejected.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return NewInvalidRequestError("Request body too large")
		}
		return NewInvalidRequestError("Invalid JSON body")
	}
	if dec.More() {
		return NewInvalidRequestError("Invalid JSON body")
	}
	return nil
}
