package middleware

import (
	"net/http"
	"strings"

	"github.com/mcoot/pokerleague/internal/api/apierr"
	"github.com/mcoot/pokerleague/internal/services/auth"
)

// Admin guards write routes with the admin token. When the service has no
// token configured every request passes.
func Admin(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := authService.Verify(BearerToken(r)); err != nil {
				apierr.WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// BearerToken returns the credentials of an "Authorization: Bearer" header,
// or "" for any other scheme. The scheme name is case-insensitive.
func BearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
