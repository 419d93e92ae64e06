package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "tokenhost/pkg/domain-errors"
)

func TestTokenRoundTrip(t *testing.T) {
	service := NewService("test-signing-key", "tokenhost")

	token, err := service.GenerateToken("alice", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Account)
}

func TestValidateToken(t *testing.T) {
	service := NewService("test-signing-key", "tokenhost")

	t.Run("rejects an expired token", func(t *testing.T) {
		token, err := service.GenerateToken("alice", -time.Minute)
		require.NoError(t, err)

		_, err = service.ValidateToken(token)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("rejects a token signed with another key", func(t *testing.T) {
		other := NewService("different-key", "tokenhost")
		token, err := other.GenerateToken("alice", time.Hour)
		require.NoError(t, err)

		_, err = service.ValidateToken(token)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := service.ValidateToken("not.a.token")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}
