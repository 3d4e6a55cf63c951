package tokens

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-jwt-secret")

func TestIssue_SetsExpectedClaims(t *testing.T) {
	t.Parallel()

	userID := uuid.NewString()
	token, err := Issue(userID, "shop_owner", 30*24*time.Hour, secret)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := AccessClaimsFromToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.Subject)
	assert.Equal(t, "shop_owner", claims.Role)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestAccessClaimsFromToken_Rejects(t *testing.T) {
	t.Parallel()

	expired, err := Issue(uuid.NewString(), "customer", -time.Minute, secret)
	require.NoError(t, err)
	_, err = AccessClaimsFromToken(expired, secret)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)

	other, err := Issue(uuid.NewString(), "customer", time.Hour, []byte("other"))
	require.NoError(t, err)
	_, err = AccessClaimsFromToken(other, secret)
	require.Error(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, AccessClaims{Role: "customer"})
	raw, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = AccessClaimsFromToken(raw, secret)
	require.Error(t, err)

	_, err = AccessClaimsFromToken("garbage", secret)
	require.Error(t, err)
}
