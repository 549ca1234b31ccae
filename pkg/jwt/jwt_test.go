package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateParse(t *testing.T) {
	token, err := Generate("s3cret", "user-1", "admin", "pos-api", 5)
	require.NoError(t, err)

	userID, role, err := Parse("s3cret", token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	assert.Equal(t, "admin", role)
}

func TestParse_Errors(t *testing.T) {
	expired, err := Generate("s3cret", "user-1", "admin", "pos-api", -5)
	require.NoError(t, err)
	valid, err := Generate("s3cret", "user-1", "admin", "pos-api", 5)
	require.NoError(t, err)

	_, _, err = Parse("s3cret", expired)
	assert.ErrorIs(t, err, ErrExpired)

	_, _, err = Parse("s3cret", "no-es-un-token")
	assert.ErrorIs(t, err, ErrMalformed)

	_, _, err = Parse("otro", valid)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestGenerate_EmptySecret(t *testing.T) {
	_, err := Generate("", "user-1", "admin", "pos-api", 5)
	assert.Error(t, err)
}
