package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/safepack/tracking-service/middleware"
	"github.com/safepack/tracking-service/models"
	"github.com/safepack/tracking-service/services"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubAuth struct {
	sessions map[string]*models.Session
}

func (s *stubAuth) Login(context.Context, models.LoginRequest) (*models.Session, error) {
	return nil, services.ErrInvalidCredentials
}

func (s *stubAuth) Logout(context.Context, string) error { return nil }

func (s *stubAuth) Session(_ context.Context, id string) (*models.Session, error) {
	if sess, ok := s.sessions[id]; ok {
		return sess, nil
	}
	return nil, services.ErrUnauthenticated
}

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func TestRequestID_GeneratedAndEchoed(t *testing.T) {
	r := newEngine()
	r.Use(middleware.RequestID(), middleware.RequestLogger(zap.NewNop()))
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(middleware.RequestIDKey))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, w.Header().Get(middleware.RequestIDHeader), w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(middleware.RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
}

func TestTimeout_SetsDeadline(t *testing.T) {
	r := newEngine()
	r.Use(middleware.Timeout(time.Second))
	r.GET("/ping", func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		assert.True(t, ok)
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRateLimit_RejectsBurst(t *testing.T) {
	rl := middleware.NewRateLimiter(middleware.PerMinute(1), 2, time.Minute)
	defer rl.Stop()

	r := newEngine()
	r.POST("/login", middleware.RateLimit(rl), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	rl := middleware.NewRateLimiter(middleware.PerMinute(1), 1, time.Minute)
	defer rl.Stop()

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"))
}

func TestRequireSession(t *testing.T) {
	sess := &models.Session{ID: "s1", Username: "admin", Token: "tok"}
	auth := &stubAuth{sessions: map[string]*models.Session{"s1": sess}}

	r := newEngine()
	r.GET("/admin", middleware.RequireSession(auth, zap.NewNop()), func(c *gin.Context) {
		c.String(http.StatusOK, middleware.CurrentSession(c).Username)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(middleware.SessionHeader, "s1")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "s1"})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORS_AllowsConfiguredOrigin(t *testing.T) {
	r := newEngine()
	r.Use(middleware.CORS([]string{"https://track.example.com/"}))
	r.GET("/tracking/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/tracking/x", nil)
	req.Header.Set("Origin", "https://track.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://track.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/tracking/x", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
