package handlers

import (
	"errors"
	"net/http"

	"focusflow/backend/internal/services"
	"focusflow/backend/internal/token"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type VerifyHandler struct {
	db           *gorm.DB
	verification services.VerificationService
}

func NewVerifyHandler(db *gorm.DB, verification services.VerificationService) *VerifyHandler {
	return &VerifyHandler{db: db, verification: verification}
}

// VerifyEmail consumes the token from the emailed confirm link. Invalid and
// expired tokens get the same answer; verifying twice succeeds both times.
func (h *VerifyHandler) VerifyEmail(c *gin.Context) {
	tok := c.Query("token")
	if tok == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "missing_token",
			"message": "The verification link is missing its token",
		})
		return
	}

	user, err := h.verification.VerifyEmail(h.db, tok)
	switch {
	case errors.Is(err, token.ErrInvalidOrExpired):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_or_expired",
			"message": "The verification link is invalid or has expired. Please request a new one.",
		})
		return
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "unknown_account",
			"message": "No account matches this verification link",
		})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "verification_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Email verified. You can now log in.",
		"email":   user.Email,
	})
}
