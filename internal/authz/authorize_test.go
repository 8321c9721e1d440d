package authz

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorizeEmptyAllowListAdmitsAnyRole(t *testing.T) {
	for _, r := range AllRoles() {
		assert.NoError(t, Authorize(Account{ID: 1, Role: r}, nil))
		assert.NoError(t, Authorize(Account{ID: 1, Role: r}, Roles()))
	}
}

func TestAuthorizeInsufficientRole(t *testing.T) {
	account := Account{ID: 3, Role: RoleClient}
	allowed := Roles(RoleSeller, RoleSystemAdmin)

	err := Authorize(account, allowed)
	require.Error(t, err)
	assert.ErrorIs(t, err, KindInsufficientRole)

	var authErr *Error
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, []Role{RoleSystemAdmin, RoleSeller}, authErr.Required)
	assert.Equal(t, RoleClient, authErr.Actual)
}

func TestAuthorizeIsIdempotent(t *testing.T) {
	account := Account{ID: 3, Role: RoleSeller}
	allowed := Roles(RoleRealEstateAdmin)

	first := Authorize(account, allowed)
	second := Authorize(account, allowed)
	assert.Equal(t, first, second)

	assert.NoError(t, Authorize(Account{Role: RoleRealEstateAdmin}, allowed))
	assert.NoError(t, Authorize(Account{Role: RoleRealEstateAdmin}, allowed))
}
