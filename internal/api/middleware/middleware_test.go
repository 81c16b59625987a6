package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/codegen-studio/engine/internal/pipeline"
	"github.com/codegen-studio/engine/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func TestMain(m *testing.M) {
	if _, err := logger.Init("error", "json"); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	os.Exit(m.Run())
}

func userToken(t *testing.T, sub string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(secret)
	require.NoError(t, err)
	return tok
}

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if uid := GetUserID(r.Context()); uid != nil {
			_, _ = w.Write([]byte(uid.String()))
			return
		}
		_, _ = w.Write([]byte("anonymous"))
	})
}

func TestOptionalAuth(t *testing.T) {
	h := OptionalAuth(secret)(echoUser())
	uid := uuid.New()

	cases := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"anonymous", "", http.StatusOK, "anonymous"},
		{"valid token", "Bearer " + userToken(t, uid.String()), http.StatusOK, uid.String()},
		{"lowercase scheme", "bearer " + userToken(t, uid.String()), http.StatusOK, uid.String()},
		{"garbage token", "Bearer nope", http.StatusUnauthorized, ""},
		{"non uuid subject", "Bearer " + userToken(t, "pipeline"), http.StatusUnauthorized, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			require.Equal(t, tc.status, rr.Code)
			if tc.body != "" {
				assert.Equal(t, tc.body, rr.Body.String())
			}
		})
	}
}

func TestAuthRequiresToken(t *testing.T) {
	rr := httptest.NewRecorder()
	Auth(secret)(echoUser()).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), `"code":"unauthorized"`)
}

func TestPipelineAuthScopesToProject(t *testing.T) {
	id := uuid.New()
	tok, err := pipeline.IssueCallbackToken(secret, id, time.Hour)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Route("/p/{id}", func(pr chi.Router) {
		pr.Use(PipelineAuth(secret))
		pr.Put("/status", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	})

	do := func(target, auth string) int {
		req := httptest.NewRequest(http.MethodPut, target, nil)
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusNoContent, do("/p/"+id.String()+"/status", "Bearer "+tok))
	assert.Equal(t, http.StatusForbidden, do("/p/"+uuid.NewString()+"/status", "Bearer "+tok))
	assert.Equal(t, http.StatusUnauthorized, do("/p/"+id.String()+"/status", "Bearer "+userToken(t, uuid.NewString())))
	assert.Equal(t, http.StatusUnauthorized, do("/p/"+id.String()+"/status", ""))
}

func TestRateLimitPerInstance(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	a := RateLimit(1, 1)(ok)
	b := RateLimit(1, 1)(ok)

	hit := func(h http.Handler) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr
	}

	require.Equal(t, http.StatusOK, hit(a).Code)
	limited := hit(a)
	require.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "1", limited.Header().Get("Retry-After"))

	require.Equal(t, http.StatusOK, hit(b).Code)
}

func TestRequestIDPropagates(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "abc", seen)
	assert.Equal(t, "abc", rr.Header().Get(RequestIDHeader))

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rr.Header().Get(RequestIDHeader))
}

func TestRecoveryAnswers500(t *testing.T) {
	h := Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { panic("boom") }))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
