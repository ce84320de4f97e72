package proxy

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/events-factory/mededafrica-abstract-submission-sub000/config"
)

func proxyRouter(backendURL string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(config.BackendConfig{BaseURL: backendURL}, nil)
	r.Any("/api/proxy/*path", h.Forward)
	return r
}

func TestForwardPassesMethodBodyAndAuth(t *testing.T) {
	var gotMethod, gotPath, gotAuth, gotBody string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"created":true}`))
	}))
	defer backend.Close()

	router := proxyRouter(backend.URL)
	req := httptest.NewRequest(http.MethodPut, "/api/proxy/delegates/42", strings.NewReader(`{"name":"Awa"}`))
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/delegates/42", gotPath)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, `{"name":"Awa"}`, gotBody)

	// Backend status and body come back untouched.
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, `{"created":true}`, w.Body.String())
}

func TestForwardPreservesBackendErrors(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message":"already registered"}`))
	}))
	defer backend.Close()

	router := proxyRouter(backend.URL)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/proxy/registrations", nil))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, `{"message":"already registered"}`, w.Body.String())
}

func TestForwardKeepsQueryString(t *testing.T) {
	var gotQuery string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
	}))
	defer backend.Close()

	router := proxyRouter(backend.URL)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/proxy/abstracts?status=pending&page=2", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "status=pending&page=2", gotQuery)
}

func TestForwardUnreachableBackend(t *testing.T) {
	// Closed port: the request itself errors.
	router := proxyRouter("http://127.0.0.1:1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/proxy/anything", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"message":"Proxy error"`)
	assert.Contains(t, w.Body.String(), `"error"`)
}
