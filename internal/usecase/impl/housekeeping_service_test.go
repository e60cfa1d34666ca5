package impl

import (
	"context"
	"testing"
	"time"

	"sentinel/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHousekeepingService_PurgeExpired(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "alice", "alice@example.com")
	token := f.requestReset(t, "alice@example.com")
	_, err := f.auth.ResetPassword(context.Background(), &usecase.ResetPasswordInput{Token: token, NewPassword: newTestPassword})
	require.NoError(t, err)

	// Nothing has been unusable for longer than the retention yet
	result, err := f.cleanup.PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &usecase.PurgeResult{}, result)

	// Every row is now past expiry plus the one hour retention
	f.clock.Advance(8 * 24 * time.Hour)
	result, err = f.cleanup.PurgeExpired(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1), result.RefreshTokens)
	assert.Equal(t, int64(1), result.PasswordResets)
	assert.Equal(t, int64(1), result.EmailVerifications)
	assert.Empty(t, f.store.sessions)
	assert.Empty(t, f.store.passwordResets)
	assert.Empty(t, f.store.emailVerifications)
}
