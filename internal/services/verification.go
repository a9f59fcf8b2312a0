package services

import (
	"errors"
	"strings"
	"time"

	"focusflow/backend/internal/models"
	"focusflow/backend/internal/token"

	"gorm.io/gorm"
)

type VerificationService interface {
	IssueToken(email string) (string, error)
	ResendToken(db *gorm.DB, email string) (string, error)
	VerifyEmail(db *gorm.DB, tokenStr string) (*models.User, error)
}

type VerificationServiceImpl struct {
	issuer *token.Issuer
	maxAge time.Duration
}

func NewVerificationService(issuer *token.Issuer, maxAge time.Duration) *VerificationServiceImpl {
	return &VerificationServiceImpl{issuer: issuer, maxAge: maxAge}
}

func (s *VerificationServiceImpl) IssueToken(email string) (string, error) {
	return s.issuer.Issue(email)
}

// ResendToken reissues a verification token for an account that has not
// confirmed yet. The email is normalized the same way registration and
// login normalize it, so the lookup matches however the caller cased it.
func (s *VerificationServiceImpl) ResendToken(db *gorm.DB, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}
	if user.EmailVerified {
		return "", ErrAlreadyVerified
	}
	return s.issuer.Issue(user.Email)
}

// VerifyEmail consumes a verification token and flips the account's
// verified flag. Re-presenting a still-valid token after the flag is set
// is a success no-op; expiry alone bounds the usable window.
func (s *VerificationServiceImpl) VerifyEmail(db *gorm.DB, tokenStr string) (*models.User, error) {
	email, err := s.issuer.Check(tokenStr, s.maxAge)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if user.EmailVerified {
		return &user, nil
	}

	if err := db.Model(&user).Update("email_verified", true).Error; err != nil {
		return nil, err
	}
	user.EmailVerified = true
	return &user, nil
}
