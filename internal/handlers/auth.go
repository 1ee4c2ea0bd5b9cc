package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/enterprise-core-api/internal/dto"
	apierrors "github.com/yukikurage/enterprise-core-api/internal/errors"
	"github.com/yukikurage/enterprise-core-api/internal/middleware"
	"github.com/yukikurage/enterprise-core-api/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
	log         logrus.FieldLogger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		log:         log,
	}
}

// Register opens a new tenant and signs its first user in.
func (h *AuthHandler) Register(c *gin.Context) {
	type RegisterRequest struct {
		TenantName string `json:"tenant_name" binding:"required"`
		Email      string `json:"email" binding:"required,email"`
		Password   string `json:"password" binding:"required"`
		FirstName  string `json:"first_name"`
		LastName   string `json:"last_name"`
	}

	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Register(c.Request.Context(), services.RegisterInput{
		TenantName: req.TenantName,
		Email:      req.Email,
		Password:   req.Password,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
	})
	if err != nil {
		apierrors.Respond(c, h.log, err)
		return
	}

	h.log.WithFields(logrus.Fields{
		"tenant_id": result.User.TenantID,
		"user_id":   result.User.ID,
	}).Info("Tenant registered")
	c.JSON(http.StatusCreated, dto.ToAuthResponse(result))
}

// Login authenticates a user and issues a credential.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		apierrors.Respond(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAuthResponse(result))
}

// Refresh rotates a refresh token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	type RefreshRequest struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}

	var req RefreshRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		apierrors.Respond(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAuthResponse(result))
}

// Logout revokes the caller's refresh token.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), middleware.CurrentCaller(c)); err != nil {
		apierrors.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Me returns the authenticated user, its tenant and its permission claims.
func (h *AuthHandler) Me(c *gin.Context) {
	result, err := h.authService.Me(c.Request.Context(), middleware.CurrentCaller(c))
	if err != nil {
		apierrors.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToMeResponse(result))
}
