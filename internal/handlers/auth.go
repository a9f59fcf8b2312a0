package handlers

import (
	"errors"
	"net/http"
	"time"

	"focusflow/backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AuthHandler struct {
	db          *gorm.DB
	authService services.AuthService
	expiresIn   int64
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	User         gin.H  `json:"user"`
}

func NewAuthHandler(db *gorm.DB, authService services.AuthService, accessTokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{db: db, authService: authService, expiresIn: int64(accessTokenTTL.Seconds())}
}

func (h *AuthHandler) Token(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	user, err := h.authService.LoginUser(h.db, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrEmailNotVerified) {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "email_not_verified",
				"message": "Please verify your email before logging in",
			})
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "invalid_credentials",
			"message": "Invalid email or password",
		})
		return
	}

	accessToken, refreshToken, err := h.authService.GenerateToken(h.db, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "token_generation_failed",
			"message": "Failed to generate authentication tokens",
		})
		return
	}

	// The timestamp is informational; login succeeds even if it fails.
	now := time.Now()
	user.LastLoginAt = &now
	h.db.Model(user).Update("last_login_at", now)

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    h.expiresIn,
		User: gin.H{
			"id":             user.ID.String(),
			"email":          user.Email,
			"email_verified": user.EmailVerified,
			"last_login_at":  user.LastLoginAt,
		},
	})
}
