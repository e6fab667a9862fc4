package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/safepack/tracking-service/middleware"
	"github.com/safepack/tracking-service/models"
	"github.com/safepack/tracking-service/services"
)

// AuthController handles admin login and logout.
type AuthController struct {
	auth         services.AuthService
	secureCookie bool
}

func NewAuthController(auth services.AuthService, secureCookie bool) *AuthController {
	return &AuthController{auth: auth, secureCookie: secureCookie}
}

// Login handles POST /admin/login
func (ac *AuthController) Login(ctx *gin.Context) {
	var req models.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	session, err := ac.auth.Login(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	maxAge := 0
	if !session.ExpiresAt.IsZero() {
		maxAge = int(time.Until(session.ExpiresAt).Seconds())
	}
	ctx.SetSameSite(http.SameSiteStrictMode)
	ctx.SetCookie(middleware.SessionCookie, session.ID, maxAge, "/", "", ac.secureCookie, true)
	ctx.JSON(http.StatusOK, gin.H{
		"session_id": session.ID,
		"username":   session.Username,
		"expires_at": session.ExpiresAt,
	})
}

// Logout handles POST /admin/logout
func (ac *AuthController) Logout(ctx *gin.Context) {
	if err := ac.auth.Logout(ctx.Request.Context(), middleware.SessionID(ctx)); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.SetCookie(middleware.SessionCookie, "", -1, "/", "", ac.secureCookie, true)
	ctx.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me handles GET /admin/session
func (ac *AuthController) Me(ctx *gin.Context) {
	s := middleware.CurrentSession(ctx)
	if s == nil {
		respondError(ctx, services.ErrUnauthenticated)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"username": s.Username, "expires_at": s.ExpiresAt})
}
