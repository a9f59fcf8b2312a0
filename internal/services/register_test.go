package services_test

import (
	"testing"

	"focusflow/backend/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRegisterUser_CreatesUnverifiedAccount(t *testing.T) {
	db := setupDB(t)
	svc := services.NewRegisterService(bcrypt.MinCost)

	user, err := svc.RegisterUser(db, services.RegistrationRequest{
		Email:    "Alice@Example.COM",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", user.Email)
	assert.False(t, user.EmailVerified)
	assert.NotEqual(t, "hunter2hunter2", user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("hunter2hunter2")))
}

func TestRegisterUser_DuplicateEmail(t *testing.T) {
	db := setupDB(t)
	svc := services.NewRegisterService(bcrypt.MinCost)

	_, err := svc.RegisterUser(db, services.RegistrationRequest{
		Email:    "dup@example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	_, err = svc.RegisterUser(db, services.RegistrationRequest{
		Email:    "DUP@example.com",
		Password: "anotherpassword",
	})
	assert.ErrorIs(t, err, services.ErrEmailTaken)
}

func TestNewRegisterService_ClampsBcryptCost(t *testing.T) {
	db := setupDB(t)

	// An out-of-range cost falls back to the bcrypt default and must not
	// break hashing.
	svc := services.NewRegisterService(99)
	user, err := svc.RegisterUser(db, services.RegistrationRequest{
		Email:    "cost@example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("hunter2hunter2")))
}
