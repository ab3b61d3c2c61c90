package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordRoundTrip(t *testing.T) {
	hashed, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hashed)

	assert.True(t, VerifyPassword(hashed, "hunter2"))
	assert.False(t, VerifyPassword(hashed, "wrong"))
	assert.False(t, VerifyPassword("not-a-hash", "hunter2"))
}

func TestEditorTokenRoundTrip(t *testing.T) {
	token, err := GenerateEditorToken("proj1", "editor", "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "proj1", claims["projectId"])
	assert.Equal(t, "editor", RoleFromClaims(claims))
}

func TestValidateJWTRejectsWrongSecret(t *testing.T) {
	token, err := GenerateEditorToken("proj1", "admin", "secret", time.Hour)
	require.NoError(t, err)

	_, err = ValidateJWT(token, "other-secret")
	assert.Error(t, err)
}

func TestValidateJWTRejectsExpired(t *testing.T) {
	token, err := GenerateEditorToken("proj1", "admin", "secret", -time.Minute)
	require.NoError(t, err)

	_, err = ValidateJWT(token, "secret")
	assert.Error(t, err)
}

func TestGenerateULID(t *testing.T) {
	a := GenerateULID()
	b := GenerateULID()

	assert.Len(t, a, 26)
	assert.NotEqual(t, a, b)
}
