package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SaicharanT-tech/eventra/pkg/logger"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testAuth = &AuthConfig{Secret: "test-secret", Issuer: "eventra"}

func signed(t *testing.T, role string, ttl time.Duration) string {
	t.Helper()
	tok, err := SignToken(testAuth, Claims{UserID: "user-1", Name: "Alice", Role: role, Department: "CS"}, ttl)
	require.NoError(t, err)
	return tok
}

func TestJWTAuth(t *testing.T) {
	otherIssuer, err := SignToken(&AuthConfig{Secret: "test-secret", Issuer: "someone-else"}, Claims{UserID: "u", Role: "HOD"}, time.Hour)
	require.NoError(t, err)
	wrongSecret, err := SignToken(&AuthConfig{Secret: "nope", Issuer: "eventra"}, Claims{UserID: "u", Role: "HOD"}, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name           string
		header         string
		expectedStatus int
		expectedBody   string
	}{
		{"valid token", "Bearer " + signed(t, "HOD", time.Hour), http.StatusOK, "user-1|HOD"},
		{"missing header", "", http.StatusUnauthorized, "MISSING_TOKEN"},
		{"no bearer prefix", signed(t, "HOD", time.Hour), http.StatusUnauthorized, "INVALID_TOKEN"},
		{"expired", "Bearer " + signed(t, "HOD", -time.Minute), http.StatusUnauthorized, "INVALID_TOKEN"},
		{"wrong secret", "Bearer " + wrongSecret, http.StatusUnauthorized, "INVALID_TOKEN"},
		{"wrong issuer", "Bearer " + otherIssuer, http.StatusUnauthorized, "INVALID_TOKEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(JWTAuth(testAuth))
			r.GET("/me", func(c *gin.Context) {
				id, _ := GetUserID(c)
				role, _ := GetRole(c)
				c.String(http.StatusOK, id+"|"+role)
			})

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
		})
	}
}

func TestRequireRoles(t *testing.T) {
	tests := []struct {
		name           string
		role           string
		expectedStatus int
	}{
		{"allowed", "Admin/ITC", http.StatusOK},
		{"forbidden", "Event Coordinator", http.StatusForbidden},
		{"no role", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(func(c *gin.Context) {
				if tt.role != "" {
					c.Set(ContextKeyRole, tt.role)
				}
				c.Next()
			})
			r.POST("/venues", RequireRoles("Admin/ITC"), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/venues", nil))
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Equal(t, w.Header().Get(RequestIDHeader), w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(RequestIDHeader, "existing-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "existing-123", w.Body.String())
}

func TestCORS_Preflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS())
	r.OPTIONS("/events", func(c *gin.Context) {})

	req := httptest.NewRequest(http.MethodOptions, "/events", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))
}

func TestCORS_RestrictedOrigin(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = []string{"https://events.example.edu"}
	r := gin.New()
	r.Use(CORSWithConfig(cfg))
	r.GET("/events", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestLogger_LevelsByStatus(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := gin.New()
	r.Use(RequestID(), Logger(logger.FromZap(zap.New(core))))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, p := range []string{"/ok", "/bad", "/boom"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
}

func newIdempotentRouter(t *testing.T, status int, calls *int32) (*gin.Engine, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	r := gin.New()
	r.Use(Idempotency(DefaultIdempotencyConfig(client)))
	r.POST("/events", func(c *gin.Context) {
		n := atomic.AddInt32(calls, 1)
		c.JSON(status, gin.H{"call": n})
	})
	return r, mr
}

func postWithKey(r *gin.Engine, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(body))
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotency_ReplaysCompletedResponse(t *testing.T) {
	var calls int32
	r, _ := newIdempotentRouter(t, http.StatusCreated, &calls)

	first := postWithKey(r, "key-1", `{"title":"Hackathon"}`)
	second := postWithKey(r, "key-1", `{"title":"Hackathon"}`)

	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get(ReplayHeader))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestIdempotency_KeyReusedWithDifferentBody(t *testing.T) {
	var calls int32
	r, _ := newIdempotentRouter(t, http.StatusCreated, &calls)

	postWithKey(r, "key-1", `{"title":"A"}`)
	w := postWithKey(r, "key-1", `{"title":"B"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "IDEMPOTENCY_KEY_REUSED")
}

func TestIdempotency_NoKeyPassesThrough(t *testing.T) {
	var calls int32
	r, _ := newIdempotentRouter(t, http.StatusCreated, &calls)

	postWithKey(r, "", `{}`)
	postWithKey(r, "", `{}`)

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestIdempotency_ServerErrorsNotCached(t *testing.T) {
	var calls int32
	r, mr := newIdempotentRouter(t, http.StatusServiceUnavailable, &calls)

	postWithKey(r, "key-1", `{}`)
	assert.False(t, mr.Exists(IdempotencyKeyPrefix+"key-1"))

	postWithKey(r, "key-1", `{}`)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestIdempotency_FailsOpenWhenRedisDown(t *testing.T) {
	var calls int32
	r, mr := newIdempotentRouter(t, http.StatusCreated, &calls)
	mr.Close()

	w := postWithKey(r, "key-1", `{}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
