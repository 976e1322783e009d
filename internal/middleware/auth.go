package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/navidved/bulletin/internal/identity"
	"github.com/navidved/bulletin/internal/response"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

// callerKey is the context key for the authenticated member's email.
const callerKey contextKey = "caller"

// NickNameKey is the context key for the authenticated member's nickname.
const NickNameKey contextKey = "nickName"

var errNoToken = errors.New("no bearer token")

// Caller returns the identity attached to the request context by RequireAuth or
// OptionalAuth. It is anonymous when no valid token was presented.
func Caller(ctx context.Context) identity.Caller {
	email, _ := ctx.Value(callerKey).(string)
	return identity.Of(email)
}

// WithCaller returns a copy of ctx carrying the given member email.
func WithCaller(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, callerKey, email)
}

// RequireAuth returns middleware that validates a Bearer JWT and injects
// member claims into the request context. Requests without a valid token are rejected.
func RequireAuth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, err := authenticate(r, jwtSecret)
			if errors.Is(err, errNoToken) {
				response.Unauthorized(w, "authorization header required")
				return
			}
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth is like RequireAuth but lets requests without an Authorization
// header through as anonymous. A present but invalid token is still rejected.
func OptionalAuth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, err := authenticate(r, jwtSecret)
			if errors.Is(err, errNoToken) {
				next.ServeHTTP(w, r)
				return
			}
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(r *http.Request, jwtSecret string) (context.Context, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, errNoToken
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, errors.New("invalid authorization header format")
	}

	token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	email, _ := claims["sub"].(string)
	if email == "" {
		return nil, errors.New("invalid token claims")
	}
	nickName, _ := claims["nickName"].(string)

	ctx := WithCaller(r.Context(), email)
	ctx = context.WithValue(ctx, NickNameKey, nickName)
	return ctx, nil
}
