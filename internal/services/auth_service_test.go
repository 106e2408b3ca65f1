package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adarsh-MG101/VerifyCert2/internal/config"
	"github.com/Adarsh-MG101/VerifyCert2/internal/models"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	return NewAuthService(newTestDB(t), config.Config{JWTSecret: "test-secret"})
}

func TestAuthService_RegisterFirstUserBecomesAdmin(t *testing.T) {
	svc := newAuthService(t)

	first, err := svc.Register("Jane", "jane@example.com", "s3cret!", "Acme University")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, first.Role)
	require.NotNil(t, first.OrganizationID)

	second, err := svc.Register("Joe", "joe@example.com", "s3cret!", "Acme University")
	require.NoError(t, err)
	assert.Equal(t, models.RoleMember, second.Role)
	assert.Equal(t, *first.OrganizationID, *second.OrganizationID)
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.Register("Jane", "jane@example.com", "s3cret!", "Acme")
	require.NoError(t, err)

	_, err = svc.Register("Jane Again", "Jane@Example.com", "other", "Acme")
	assert.True(t, IsValidation(err))
}

func TestAuthService_LoginAndParseToken(t *testing.T) {
	svc := newAuthService(t)

	user, err := svc.Register("Jane", "jane@example.com", "s3cret!", "Acme")
	require.NoError(t, err)

	token, loggedIn, err := svc.Login("jane@example.com", "s3cret!")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotNil(t, loggedIn.LastLogin)

	claims, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, *user.OrganizationID, claims.OrganizationID)
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.Register("Jane", "jane@example.com", "s3cret!", "Acme")
	require.NoError(t, err)

	_, _, err = svc.Login("jane@example.com", "wrong")
	assert.True(t, IsValidation(err))
}

func TestAuthService_ParseTokenRejectsGarbage(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.ParseToken("not.a.token")
	assert.Error(t, err)
}
