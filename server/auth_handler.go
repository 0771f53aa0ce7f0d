package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"jdlmedia/core/apperr"
	"jdlmedia/core/auth"
	"jdlmedia/core/ident"
	"jdlmedia/logger"
)

type contextKey string

const ownerIDKey contextKey = "ownerID"

// tokenFromRequest Authorization: Bearer 优先，其次是 ?token=（WebSocket 握手无法带头部）
func tokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

// AuthMiddleware 校验令牌并把用户ID放入请求上下文
func (s *Server) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := auth.ParseToken(s.cfg.JWTSecret, tokenFromRequest(r))
		if err == nil && !ident.IsValid(claims.UserID) {
			err = auth.ErrInvalidToken
		}
		if err != nil {
			logger.Debug("rejected request",
				logger.String("path", r.URL.Path),
				logger.String("remote", r.RemoteAddr),
				logger.ErrorField(err))
			writeJSON(w, http.StatusUnauthorized, Response{
				Event:  EventServerError,
				Errors: apperr.List{apperr.BadToken},
			})
			return
		}

		ctx := context.WithValue(r.Context(), ownerIDKey, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// OwnerIDFromContext 取出已认证的用户ID
func OwnerIDFromContext(ctx context.Context) (string, error) {
	ownerID, ok := ctx.Value(ownerIDKey).(string)
	if !ok || ownerID == "" {
		return "", errors.New("owner ID not found in context")
	}
	return ownerID, nil
}
