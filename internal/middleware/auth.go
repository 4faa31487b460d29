package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Heritiana-Nofy/task-manager-mern/internal/apperr"
	"github.com/Heritiana-Nofy/task-manager-mern/internal/models"
)

const principalKey contextKey = "principal"

// PrincipalResolver verifies a bearer token and loads the current
// user behind it.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, token string) (models.Principal, error)
}

// AuthMiddleware guards a route group: it extracts the Bearer token,
// resolves the principal and attaches it to the request context.
// Missing or invalid tokens end the request with 401.
func AuthMiddleware(resolver PrincipalResolver, log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logEntry := log.WithFields(logrus.Fields{
				"component":  "auth_middleware",
				"request_id": GetRequestID(r.Context()),
			})

			token := bearerToken(r)
			if token == "" {
				logEntry.Warn("authorization header missing")
				writeAuthError(w, http.StatusUnauthorized, "not authorized to access this route")
				return
			}

			principal, err := resolver.ResolvePrincipal(r.Context(), token)
			if err != nil {
				if apperr.IsKind(err, apperr.KindAuthentication) {
					logEntry.Warn("invalid token attempt")
					writeAuthError(w, http.StatusUnauthorized, "not authorized to access this route")
					return
				}
				logEntry.WithError(err).Error("failed to resolve principal")
				writeAuthError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			logEntry.WithField("subject", principal.ID).Debug("token verified successfully")
			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetPrincipal returns the principal attached by AuthMiddleware. The
// second result is false on unprotected routes.
func GetPrincipal(ctx context.Context) (models.Principal, bool) {
	p, ok := ctx.Value(principalKey).(models.Principal)
	return p, ok
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"success":false,"error":"` + msg + `"}`))
}
