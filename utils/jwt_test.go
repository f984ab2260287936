package utils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swachhrail/coachclean-app/utils"
)

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := utils.GenerateToken(12, "supervisor")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := utils.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(12), claims.UserID)
	assert.Equal(t, "supervisor", claims.Role)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	token, err := utils.GenerateToken(12, "laborer")
	require.NoError(t, err)

	_, err = utils.ValidateToken(token + "x")
	assert.Error(t, err)
}

func TestBlacklistedTokenFailsValidation(t *testing.T) {
	token, err := utils.GenerateToken(13, "laborer")
	require.NoError(t, err)

	utils.BlacklistToken(token)
	assert.True(t, utils.IsTokenBlacklisted(token))

	_, err = utils.ValidateToken(token)
	assert.Error(t, err)
}
