package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/codegen-studio/engine/internal/api/types"
	"github.com/codegen-studio/engine/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type userKeyType string

const UserIDKey userKeyType = "user_id"

func bearerToken(r *http.Request) (string, bool) {
	ah := r.Header.Get("Authorization")
	if len(ah) < len("Bearer ") || !strings.EqualFold(ah[:len("Bearer ")], "bearer ") {
		return "", false
	}
	return strings.TrimSpace(ah[len("Bearer "):]), true
}

func parseUserToken(hmacSecret []byte, tokenStr string) (uuid.UUID, bool) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return hmacSecret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, false
	}
	sub, err := token.Claims.GetSubject()
	if err != nil {
		return uuid.Nil, false
	}
	uid, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, false
	}
	return uid, true
}

func unauthorized(w http.ResponseWriter) {
	types.WriteError(w, http.StatusUnauthorized, "unauthorized", http.StatusText(http.StatusUnauthorized))
}

// Auth validates a Bearer JWT using the provided HMAC secret and adds user id to context.
func Auth(hmacSecret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := bearerToken(r)
			if !ok {
				unauthorized(w)
				return
			}
			uid, ok := parseUserToken(hmacSecret, tokenStr)
			if !ok {
				unauthorized(w)
				return
			}
			ctx := context.WithValue(r.Context(), UserIDKey, uid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth is Auth for routes that also serve anonymous callers. A
// request without credentials passes through; a bad token is still rejected.
func OptionalAuth(hmacSecret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		required := Auth(hmacSecret)(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}
			required.ServeHTTP(w, r)
		})
	}
}

// PipelineAuth accepts only callback tokens scoped to the project in the
// {id} URL parameter.
func PipelineAuth(hmacSecret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := bearerToken(r)
			if !ok {
				unauthorized(w)
				return
			}
			projectID, err := pipeline.VerifyCallbackToken(hmacSecret, tokenStr)
			if err != nil {
				unauthorized(w)
				return
			}
			if projectID.String() != strings.ToLower(chi.URLParam(r, "id")) {
				types.WriteError(w, http.StatusForbidden, "forbidden", "token is not valid for this project")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetUserID returns the authenticated user, or nil for anonymous requests.
func GetUserID(ctx context.Context) *uuid.UUID {
	if v, ok := ctx.Value(UserIDKey).(uuid.UUID); ok {
		return &v
	}
	return nil
}
