// internal/auth/auth_test.go
package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "assessment-service/internal/common/errors"
	"assessment-service/internal/store"
)

func TestRegisterAndLogin(t *testing.T) {
	svc := NewService(store.NewMemoryStore(), "test-secret", time.Hour)
	ctx := context.Background()

	u, err := svc.Register(ctx, "dev@example.com", "long-enough-pw")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.NotEqual(t, "long-enough-pw", u.PasswordHash)

	token, err := svc.Login(ctx, "dev@example.com", "long-enough-pw")
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, "dev@example.com", claims.Email)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := NewService(store.NewMemoryStore(), "test-secret", time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, "dev@example.com", "long-enough-pw")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "dev@example.com", "wrong-password")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvalidCredentials, apperrors.CodeOf(err))

	_, err = svc.Login(ctx, "nobody@example.com", "whatever")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvalidCredentials, apperrors.CodeOf(err))
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc := NewService(store.NewMemoryStore(), "test-secret", time.Hour)
	_, err := svc.Register(context.Background(), "dev@example.com", "short")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeValidationFailed, apperrors.CodeOf(err))
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewService(st, "test-secret", time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, "dev@example.com", "long-enough-pw")
	require.NoError(t, err)

	// Issue a token two hours in the past so it is already expired.
	svc.now = func() time.Time { return time.Now().UTC().Add(-2 * time.Hour) }
	token, err := svc.Login(ctx, "dev@example.com", "long-enough-pw")
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().UTC() }
	_, err = svc.Verify(token)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeUnauthorized, apperrors.CodeOf(err))
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	st := store.NewMemoryStore()
	issuer := NewService(st, "secret-a", time.Hour)
	verifier := NewService(st, "secret-b", time.Hour)
	ctx := context.Background()

	_, err := issuer.Register(ctx, "dev@example.com", "long-enough-pw")
	require.NoError(t, err)
	token, err := issuer.Login(ctx, "dev@example.com", "long-enough-pw")
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeUnauthorized, apperrors.CodeOf(err))
}
