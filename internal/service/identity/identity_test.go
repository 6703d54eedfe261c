package identity

import (
	"context"
	"testing"
	"time"

	"github.com/ghalbir/trading-client/internal/entity"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	return NewService(NewUserStore(), NewMemoryTokenStore(), "test-signing-key", "ghalbir", time.Hour)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	t.Run("password mismatch", func(t *testing.T) {
		_, err := svc.Register(ctx, "user@example.com", "secret123", "secret124", "Demo User")
		assert.ErrorIs(t, err, ErrPasswordMismatch)
	})

	t.Run("success issues token and pending kyc", func(t *testing.T) {
		result, err := svc.Register(ctx, "User@Example.com", "secret123", "secret123", "Demo User")
		require.NoError(t, err)

		assert.NotEmpty(t, result.Token)
		assert.Equal(t, "user@example.com", result.Profile.Email)
		assert.Equal(t, entity.KYCStatusPending, result.Profile.KYCStatus)
		assert.False(t, result.Profile.TwoFactorEnabled)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Register(ctx, "user@example.com", "secret123", "secret123", "Demo User")
		assert.ErrorIs(t, err, ErrEmailTaken)
	})
}

func TestLoginAndValidate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	_, err := svc.Register(ctx, "user@example.com", "secret123", "secret123", "Demo User")
	require.NoError(t, err)

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "user@example.com", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, "nobody@example.com", "secret123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("login then validate", func(t *testing.T) {
		result, err := svc.Login(ctx, "user@example.com", "secret123")
		require.NoError(t, err)

		profile, err := svc.ValidateToken(ctx, result.Token)
		require.NoError(t, err)
		assert.Equal(t, result.Profile.ID, profile.ID)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.ValidateToken(ctx, "not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("logout revokes", func(t *testing.T) {
		result, err := svc.Login(ctx, "user@example.com", "secret123")
		require.NoError(t, err)

		require.NoError(t, svc.Logout(ctx, result.Token))

		_, err = svc.ValidateToken(ctx, result.Token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	_, err := svc.Register(ctx, "user@example.com", "secret123", "secret123", "Demo User")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ChangePassword(ctx, "user@example.com", "secret123", "next1234", "other"), ErrPasswordMismatch)
	assert.ErrorIs(t, svc.ChangePassword(ctx, "user@example.com", "wrong", "next1234", "next1234"), ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(ctx, "user@example.com", "secret123", "next1234", "next1234"))

	_, err = svc.Login(ctx, "user@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "user@example.com", "next1234")
	assert.NoError(t, err)
}

func TestTwoFactorSetup(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	_, err := svc.Register(ctx, "user@example.com", "secret123", "secret123", "Demo User")
	require.NoError(t, err)

	setup, err := svc.Setup2FA(ctx, "user@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, setup.Secret)
	assert.Contains(t, setup.URL, "otpauth://")

	t.Run("rejects malformed codes", func(t *testing.T) {
		for _, code := range []string{"", "12345", "1234567", "abcdef"} {
			assert.ErrorIs(t, svc.Verify2FA(ctx, "user@example.com", code), ErrInvalid2FACode)
		}
	})

	t.Run("rejects wrong code", func(t *testing.T) {
		assert.ErrorIs(t, svc.Verify2FA(ctx, "user@example.com", "000000"), ErrInvalid2FACode)
	})

	t.Run("valid code enables 2fa", func(t *testing.T) {
		code, err := totp.GenerateCode(setup.Secret, time.Now())
		require.NoError(t, err)

		require.NoError(t, svc.Verify2FA(ctx, "user@example.com", code))

		result, err := svc.Login(ctx, "user@example.com", "secret123")
		require.NoError(t, err)
		assert.True(t, result.Profile.TwoFactorEnabled)
	})
}
