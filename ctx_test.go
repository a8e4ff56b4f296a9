package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserContextRoundTrip(t *testing.T) {
	user := &User{ID: uuid.New(), Email: "ann@example.com", Name: "Ann"}

	ctx := WithContext(context.Background(), user)
	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, user, got)

	_, ok = FromContext(context.Background())
	assert.False(t, ok)
}

func TestClaimsContextRoundTrip(t *testing.T) {
	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserEmail: "ann@example.com",
		UserName:  "Ann",
	}

	ctx := WithClaimsContext(context.Background(), claims)
	got, ok := GetClaims(ctx)
	require.True(t, ok)
	assert.Equal(t, "user-1", got.Subject())
	assert.Equal(t, "ann@example.com", got.Email())

	_, ok = GetClaims(context.Background())
	assert.False(t, ok)
}
