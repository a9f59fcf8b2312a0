package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"focusflow/backend/internal/notify"
	"focusflow/backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RegisterHandler struct {
	db              *gorm.DB
	registerService services.RegisterService
	verification    services.VerificationService
	mailer          *notify.Mailer
	baseURL         string
	logger          *slog.Logger
}

func NewRegisterHandler(db *gorm.DB, registerService services.RegisterService, verification services.VerificationService, mailer *notify.Mailer, baseURL string, logger *slog.Logger) *RegisterHandler {
	return &RegisterHandler{
		db:              db,
		registerService: registerService,
		verification:    verification,
		mailer:          mailer,
		baseURL:         baseURL,
		logger:          logger,
	}
}

func (h *RegisterHandler) confirmURL(tok string) string {
	return fmt.Sprintf("%s/api/v1/auth/verify?token=%s", h.baseURL, tok)
}

// Registration creates the account and mails the verification link. A mail
// failure does not undo the account; the user can ask for a resend.
func (h *RegisterHandler) Registration(c *gin.Context) {
	var req services.RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	user, err := h.registerService.RegisterUser(h.db, req)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{
				"error":   "registration_failed",
				"message": "An account with this email already exists",
			})
			return
		}
		h.logger.Error("registration failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "registration_failed",
			"message": "An unexpected error occurred. Please try again later.",
		})
		return
	}

	message := "Registration successful! Please check your email to verify your account."

	tok, err := h.verification.IssueToken(user.Email)
	if err == nil {
		err = h.mailer.SendVerificationEmail(user.Email, h.confirmURL(tok))
	}
	if err != nil {
		h.logger.Error("verification email failed",
			slog.String("email", user.Email),
			slog.String("error", err.Error()))
		message = "Account created but the verification email could not be sent. Please request a new one."
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": message,
		"user": gin.H{
			"id":             user.ID.String(),
			"email":          user.Email,
			"email_verified": user.EmailVerified,
		},
	})
}

type ResendRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (h *RegisterHandler) ResendVerification(c *gin.Context) {
	var req ResendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "details": err.Error()})
		return
	}

	tok, err := h.verification.ResendToken(h.db, req.Email)
	switch {
	case errors.Is(err, services.ErrAlreadyVerified):
		c.JSON(http.StatusOK, gin.H{"message": "This email is already verified. Please log in."})
		return
	case errors.Is(err, services.ErrUserNotFound):
		// Same response as success: resend must not confirm which
		// addresses have accounts.
		c.JSON(http.StatusOK, gin.H{"message": "If an account exists, a verification email has been sent."})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "resend_failed"})
		return
	}

	if err := h.mailer.SendVerificationEmail(req.Email, h.confirmURL(tok)); err != nil {
		h.logger.Error("verification email failed",
			slog.String("email", req.Email),
			slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "email_send_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "If an account exists, a verification email has been sent."})
}
