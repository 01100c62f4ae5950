package middleware

import (
	"net/http"
	"strings"

	"github.com/josh-kwaku/cashdata/internal/auth"
	"github.com/josh-kwaku/cashdata/internal/handler"
	"github.com/josh-kwaku/cashdata/internal/logging"
)

// Auth accepts "Authorization: Bearer <jwt>" with the scheme matched
// case-insensitively. Rejections carry a WWW-Authenticate challenge.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="cashdata"`)
				handler.RespondAppError(w, handler.ErrMissingToken, nil)
				return
			}

			scheme, token, _ := strings.Cut(header, " ")
			token = strings.TrimSpace(token)
			if !strings.EqualFold(scheme, "Bearer") || token == "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="cashdata", error="invalid_request"`)
				handler.RespondAppError(w, handler.ErrInvalidToken, nil)
				return
			}

			claims, err := auth.ValidateToken(token, secret)
			if err != nil {
				logging.FromContext(r.Context()).Debug("token rejected", "error", err)
				w.Header().Set("WWW-Authenticate", `Bearer realm="cashdata", error="invalid_token"`)
				handler.RespondAppError(w, handler.ErrInvalidToken, nil)
				return
			}

			ctx := auth.ContextWithUserID(r.Context(), claims.UserID)
			ctx = logging.WithLogger(ctx, logging.FromContext(ctx).With("user_id", claims.UserID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
