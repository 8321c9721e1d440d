package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, r := range AllRoles() {
		got, err := ParseRole(string(r))
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}

	for _, name := range []string{"", "admin", "System_Admin", "sellers", "real-estate-admin"} {
		_, err := ParseRole(name)
		assert.ErrorIs(t, err, ErrUnknownRole, name)
	}
}

func TestRoleRankOrdering(t *testing.T) {
	assert.Greater(t, RoleSystemAdmin.Rank(), RoleRealEstateAdmin.Rank())
	assert.Greater(t, RoleRealEstateAdmin.Rank(), RoleSeller.Rank())
	assert.Greater(t, RoleSeller.Rank(), RoleClient.Rank())
	assert.False(t, Role("root").Valid())
}

func TestRoleSetSorted(t *testing.T) {
	set := Roles(RoleClient, RoleSystemAdmin, RoleSeller)
	assert.Equal(t, []Role{RoleSystemAdmin, RoleSeller, RoleClient}, set.Sorted())
	assert.True(t, set.Contains(RoleSeller))
	assert.False(t, set.Contains(RoleRealEstateAdmin))
}
