package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{
			name:     "valid password",
			password: "s3cretpassw0rd",
		},
		{
			name:     "empty password",
			password: "",
			wantErr:  ErrNoEmptyString,
		},
		{
			name:     "unicode password",
			password: "contraseña-ñ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPasswordWithCost(tt.password, 4)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, hash)
			assert.NotEqual(t, tt.password, hash)
			assert.NoError(t, ComparePasswordAndHash(tt.password, hash))
		})
	}
}

func TestHashPasswordProducesDistinctHashes(t *testing.T) {
	first, err := HashPasswordWithCost("same-password", 4)
	require.NoError(t, err)
	second, err := HashPasswordWithCost("same-password", 4)
	require.NoError(t, err)

	// bcrypt salts every hash
	assert.NotEqual(t, first, second)
}

func TestComparePasswordAndHash(t *testing.T) {
	hash, err := HashPasswordWithCost("correct-password", 4)
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		hash     string
		wantErr  error
	}{
		{
			name:     "matching password",
			password: "correct-password",
			hash:     hash,
		},
		{
			name:     "wrong password",
			password: "wrong-password",
			hash:     hash,
			wantErr:  ErrMismatchedHashAndPassword,
		},
		{
			name:     "malformed hash",
			password: "correct-password",
			hash:     "not-a-bcrypt-hash",
			wantErr:  ErrMismatchedHashAndPassword,
		},
		{
			name:     "empty hash",
			password: "correct-password",
			hash:     "",
			wantErr:  ErrMismatchedHashAndPassword,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ComparePasswordAndHash(tt.password, tt.hash)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
