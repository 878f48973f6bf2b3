package rest

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/heirloom/internal/common"
	"github.com/dmitrijs2005/heirloom/internal/server/auth"
)

type ctxKey string

const callerKey ctxKey = "caller"

// authMiddleware resolves the access token to an account address and stores
// it in the request context. Protocol handlers never see the token itself.
func (s *RestServer) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(common.AccessTokenHeaderName)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing token")
			return
		}
		address, err := auth.GetAddressFromToken(token, s.jwtSecret)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		ctx := context.WithValue(r.Context(), callerKey, address)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// caller returns the authenticated account address from the request context.
func caller(r *http.Request) string {
	address, _ := r.Context().Value(callerKey).(string)
	return address
}
