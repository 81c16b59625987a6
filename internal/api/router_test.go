package api

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/codegen-studio/engine/internal/api/handlers"
	"github.com/codegen-studio/engine/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	if _, err := logger.Init("error", "json"); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	os.Exit(m.Run())
}

func TestRouterGuards(t *testing.T) {
	r := NewRouter(Dependencies{
		HMACSecret:      []byte("secret"),
		RateLimitRPS:    100,
		RateLimitBurst:  100,
		AuthHandler:     &handlers.AuthHandler{},
		ProjectsHandler: &handlers.ProjectsHandler{},
		FilesHandler:    &handlers.FilesHandler{},
		PipelineHandler: &handlers.PipelineHandler{},
	})

	cases := []struct {
		method, target, auth string
		status               int
	}{
		{http.MethodGet, "/healthz", "", http.StatusOK},
		{http.MethodGet, "/readyz", "", http.StatusOK},
		{http.MethodGet, "/api/projects", "Bearer not-a-jwt", http.StatusUnauthorized},
		{http.MethodPut, "/api/pipeline/projects/" + uuid.NewString() + "/status", "", http.StatusUnauthorized},
		{http.MethodGet, "/api/nowhere", "", http.StatusNotFound},
		{http.MethodOptions, "/api/projects", "", http.StatusNoContent},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.target, nil)
		if tc.auth != "" {
			req.Header.Set("Authorization", tc.auth)
		}
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		assert.Equal(t, tc.status, rr.Code, "%s %s", tc.method, tc.target)
	}
}
