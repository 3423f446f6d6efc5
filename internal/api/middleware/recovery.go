package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/pokerleague/internal/api/apierr"
	"github.com/mcoot/pokerleague/internal/middleware"
)

// Recovery answers a panicking API handler with the INTERNAL_ERROR envelope
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, func(w http.ResponseWriter, _ *http.Request, _ any) {
		apierr.WriteError(w, apierr.NewInternalError())
	})
}
