package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	s := New("secret", time.Hour)

	token, err := s.GenerateToken(7, 1, RoleCustomer, "sess-1")
	require.NoError(t, err)

	claims, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.CustomerID)
	assert.Equal(t, int64(1), claims.StoreID)
	assert.Equal(t, RoleCustomer, claims.Role)
	assert.Equal(t, "sess-1", claims.SessionID)
}

func TestValidateRejects(t *testing.T) {
	s := New("secret", time.Hour)

	other, err := New("other", time.Hour).GenerateToken(7, 1, RoleCustomer, "sess-1")
	require.NoError(t, err)
	_, err = s.ValidateToken(other)
	assert.Error(t, err)

	expired, err := New("secret", -time.Minute).GenerateToken(7, 1, RoleCustomer, "sess-1")
	require.NoError(t, err)
	_, err = s.ValidateToken(expired)
	assert.Error(t, err)

	noSession, err := s.GenerateToken(7, 1, RoleCustomer, "")
	require.NoError(t, err)
	_, err = s.ValidateToken(noSession)
	assert.Error(t, err)

	_, err = s.ValidateToken("not-a-token")
	assert.Error(t, err)
}
