// Package auth verifies bearer tokens and carries the caller's user id
// through the request context. Tokens are issued elsewhere; this package
// never mints them.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"reviewhub/internal/handler/http/respond"
)

type ctxKey string

const ctxViewer ctxKey = "viewer"

var (
	errMissingToken = errors.New("missing bearer token")
	errInvalidToken = errors.New("invalid token")
	errInvalidSub   = errors.New("invalid sub claim")
)

// Authn requires a valid HS256 bearer token whose sub claim is a positive
// user id, and stores that id in the request context. exp is mandatory.
func Authn(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			viewerID, err := validateJWT(r.Header.Get("Authorization"), secret)
			RecordAuthDuration(time.Since(start).Seconds())
			if err != nil {
				RecordAuthRequest("failure")
				w.Header().Set("WWW-Authenticate", `Bearer realm="reviewhub"`)
				respond.Error(w, http.StatusUnauthorized, fmt.Sprintf("unauthorized: %v", err))
				return
			}
			RecordAuthRequest("success")
			next.ServeHTTP(w, r.WithContext(WithViewer(r.Context(), viewerID)))
		})
	}
}

// WithViewer returns a copy of ctx carrying viewerID.
func WithViewer(ctx context.Context, viewerID int64) context.Context {
	return context.WithValue(ctx, ctxViewer, viewerID)
}

// ViewerFromContext returns the authenticated user id, if any.
func ViewerFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(ctxViewer).(int64)
	return id, ok
}

func validateJWT(authz string, secret []byte) (int64, error) {
	const prefix = "Bearer "
	if !strings.HasPrefix(authz, prefix) {
		return 0, errMissingToken
	}
	tokenString := strings.TrimSpace(strings.TrimPrefix(authz, prefix))

	var claims jwt.RegisteredClaims
	tok, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !tok.Valid {
		return 0, errInvalidToken
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidSub
	}
	return id, nil
}
