package services

import "errors"

var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrUserNotFound     = errors.New("user not found")

	// ErrForbidden marks access to a record owned by somebody else. It is
	// deliberately distinct from not-found so handlers can answer 403.
	ErrForbidden = errors.New("permission denied")

	ErrContentRequired  = errors.New("task content is required")
	ErrEmailTaken       = errors.New("email already registered")
	ErrCategoryTaken    = errors.New("category name already exists")
	ErrEmailNotVerified = errors.New("email not verified")
	ErrAlreadyVerified  = errors.New("email already verified")

	ErrInvalidCredentials = errors.New("invalid email or password")
)
