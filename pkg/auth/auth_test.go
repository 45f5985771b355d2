package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	Cost = bcrypt.MinCost
}

func TestIssuer_SignParse(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)

	token, exp, err := iss.Sign(1, "张三", "user")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := iss.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.UserID)
	assert.Equal(t, "张三", claims.Name)
	assert.NotEmpty(t, claims.ID)
}

func TestIssuer_RejectsForeignAndExpired(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	other := NewIssuer("other", time.Hour)

	token, _, err := other.Sign(1, "a", "user")
	require.NoError(t, err)
	_, err = iss.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = iss.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	past := time.Now().Add(-2 * time.Hour)
	iss.now = func() time.Time { return past }
	old, _, err := iss.Sign(1, "a", "user")
	require.NoError(t, err)
	iss.now = time.Now
	_, err = iss.Parse(old)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_Revoke(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	token, _, err := iss.Sign(3, "admin", "admin")
	require.NoError(t, err)

	assert.True(t, iss.Revoke(token))
	_, err = iss.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.False(t, iss.Revoke(token), "already revoked")
	assert.False(t, iss.Revoke("garbage"))
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("nspass123")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "nspass123"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.False(t, CheckPassword("", "nspass123"))
}
