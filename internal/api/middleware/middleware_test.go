package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	apierrors "media2text/internal/api/errors"
	apperrors "media2text/internal/app/errors"
)

func newRouter(logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), StructuredLogging(logger), ErrorHandler(logger), CORS(DefaultCORSConfig()))
	return r
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRequestID(t *testing.T) {
	r := newRouter(zap.NewNop())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Equal(t, w.Header().Get(RequestIDHeader), w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
}

func TestCORS_Preflight(t *testing.T) {
	r := newRouter(zap.NewNop())
	r.POST("/transcribe", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/transcribe", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "3600", w.Header().Get("Access-Control-Max-Age"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
}

func TestCORS_SpecificOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS(CORSConfig{AllowOrigins: []string{"https://ok.example"}}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "https://ok.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://ok.example", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestErrorHandler_Panic(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	r := newRouter(zap.New(core))
	r.GET("/boom", func(c *gin.Context) { panic(fmt.Errorf("nil map write")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Internal server error", body["error"])
	assert.NotEmpty(t, body["request_id"])
	assert.GreaterOrEqual(t, logs.FilterMessage("Internal server error").Len(), 1)
}

func TestHandleError(t *testing.T) {
	r := newRouter(zap.NewNop())
	r.GET("/missing-key", func(c *gin.Context) {
		HandleError(c, apperrors.New(apperrors.KindMissingCredential, "validate", "API key is required"))
	})
	r.GET("/api-error", func(c *gin.Context) {
		HandleError(c, apierrors.NewBadRequestError("bad input"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing-key", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "API key is required", decode(t, w)["error"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api-error", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "bad_request", decode(t, w)["kind"])
}

func TestStructuredLogging(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := newRouter(zap.New(core))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/other", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/other", nil))

	entries := logs.FilterMessage("HTTP Request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
	assert.Equal(t, "/other", entries[0].ContextMap()["path"])
}

type sample struct {
	URL  string `json:"url" binding:"omitempty,url"`
	Name string `json:"name" binding:"required"`
}

func TestValidateRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name string
		body string
		kind apierrors.ErrorKind
		ok   bool
	}{
		{name: "valid", body: `{"name":"x","url":"https://youtu.be/a"}`, ok: true},
		{name: "not json", body: `api_key=1`, kind: apierrors.KindBadRequest},
		{name: "bad url", body: `{"name":"x","url":"nope"}`, kind: apierrors.KindValidation},
		{name: "missing required", body: `{}`, kind: apierrors.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var s sample
			err := ValidateRequest(c, &s)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			var apiErr *apierrors.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.kind, apiErr.Kind)
		})
	}
}
