package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("correct horse", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("ana@club.es"))
	assert.True(t, IsValidEmail(" j.perez+padel@mail.example.com "))
	assert.False(t, IsValidEmail("no-at-sign"))
	assert.False(t, IsValidEmail("a@b"))
	assert.Equal(t, "ana@club.es", NormalizeEmail("  Ana@Club.ES "))
}
