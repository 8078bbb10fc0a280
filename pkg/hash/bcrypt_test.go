package hash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hashed, err := HashPassword("Abc123")
	require.NoError(t, err)

	assert.NotEqual(t, "Abc123", hashed)
	assert.True(t, strings.HasPrefix(hashed, "$2a$10$"), "unexpected hash prefix: %s", hashed)
}

func TestHashPassword_Salted(t *testing.T) {
	h1, err := HashPassword("samePassword")
	require.NoError(t, err)
	h2, err := HashPassword("samePassword")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestCheckPassword(t *testing.T) {
	hashed, err := HashPassword("Secret1")
	require.NoError(t, err)

	tests := []struct {
		name   string
		hashed string
		plain  string
		want   bool
	}{
		{"correct password", hashed, "Secret1", true},
		{"wrong password", hashed, "Secret2", false},
		{"different case", hashed, "SECRET1", false},
		{"empty password", hashed, "", false},
		{"malformed hash", "not-a-hash", "Secret1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckPassword(tt.hashed, tt.plain))
		})
	}
}
