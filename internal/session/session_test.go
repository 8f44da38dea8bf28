package session

import (
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YelzhanWeb/floreria/internal/domain"
)

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("any-key"))
	require.NoError(t, err)
	return token
}

func TestFromTokenRoles(t *testing.T) {
	tests := []struct {
		name   string
		claims jwt.MapClaims
		want   domain.Role
	}{
		{"admin role_id", jwt.MapClaims{"role_id": 1}, domain.RoleAdmin},
		{"delivery role", jwt.MapClaims{"role": 3}, domain.RoleDelivery},
		{"string role", jwt.MapClaims{"role_id": "3"}, domain.RoleDelivery},
		{"role_id wins", jwt.MapClaims{"role_id": 1, "role": 3}, domain.RoleAdmin},
		{"zero role_id falls back to role", jwt.MapClaims{"role_id": 0, "role": 1}, domain.RoleAdmin},
		{"zero everywhere", jwt.MapClaims{"role_id": 0, "role": "0"}, domain.RoleCustomer},
		{"missing role", jwt.MapClaims{"sub": "x"}, domain.RoleCustomer},
		{"unknown role", jwt.MapClaims{"role_id": 42}, domain.RoleCustomer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess, err := FromToken(sign(t, tt.claims))
			require.NoError(t, err)
			assert.Equal(t, tt.want, sess.Role)
			assert.True(t, sess.Authenticated())
		})
	}
}

func TestFromTokenSubject(t *testing.T) {
	sess, err := FromToken(sign(t, jwt.MapClaims{"role_id": 3, "email": "reparto@floreria.mx"}))
	require.NoError(t, err)
	assert.Equal(t, "reparto@floreria.mx", sess.Subject)
	assert.Equal(t, "delivery:reparto@floreria.mx", sess.Actor())
}

func TestFromTokenErrors(t *testing.T) {
	_, err := FromToken("  ")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = FromToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestFromRequest(t *testing.T) {
	req := httptest.NewRequest("GET", "/orders/1", nil)
	_, err := FromRequest(req)
	assert.ErrorIs(t, err, ErrMissingToken)

	req.Header.Set("Authorization", "Bearer "+sign(t, jwt.MapClaims{"role_id": 1}))
	sess, err := FromRequest(req)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, sess.Role)
}

func TestAnonymous(t *testing.T) {
	sess := Anonymous()
	assert.False(t, sess.Authenticated())
	assert.Equal(t, domain.RoleCustomer, sess.Role)
	assert.Equal(t, "customer", sess.Actor())
}
