package api

import (
	"net/http"
	"strings"

	"app/pkg/ctxstore"
)

// AuthMiddleware resolves the caller's identity from the Authorization
// header. A missing token is unauthorized, a bad or expired one forbidden.
func (api *API) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			api.respondError(w, http.StatusUnauthorized, "missing authorization header")

			return
		}

		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok {
			api.respondError(w, http.StatusUnauthorized, "malformed authorization header")

			return
		}

		userID, err := api.auth.VerifyToken(token)
		if err != nil {
			api.respondError(w, http.StatusForbidden, "invalid or expired token")

			return
		}

		next.ServeHTTP(w, r.WithContext(ctxstore.WithUserID(r.Context(), userID)))
	})
}
