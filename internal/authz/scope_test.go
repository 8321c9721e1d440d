package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver() (*ScopeResolver, *fakeRealEstates, *fakeClients) {
	realEstates := &fakeRealEstates{ids: map[int64]bool{1: true, 2: true}}
	clients := &fakeClients{sellers: map[int64]int64{42: 7, 99: 8}}
	return NewScopeResolver(realEstates, clients), realEstates, clients
}

func TestResolveSystemAdminNeverLooksUp(t *testing.T) {
	s, realEstates, clients := newTestResolver()
	admin := Account{ID: 1, Role: RoleSystemAdmin}

	refs := []EntityRef{
		Ref(EntityRealEstate, 1),
		Ref(EntityRealEstate, 12345),
		Ref(EntityClient, 99),
		Ref(EntityClient, 0),
		NoEntity(EntityClient),
	}
	for _, ref := range refs {
		assert.NoError(t, s.Resolve(context.Background(), admin, ref))
	}
	assert.Zero(t, realEstates.calls)
	assert.Zero(t, clients.calls)
}

func TestResolveRealEstateAdmin(t *testing.T) {
	s, realEstates, _ := newTestResolver()
	admin := Account{ID: 2, Role: RoleRealEstateAdmin}
	ctx := context.Background()

	assert.NoError(t, s.Resolve(ctx, admin, Ref(EntityRealEstate, 2)))
	assert.NoError(t, s.Resolve(ctx, admin, NoEntity(EntityRealEstate)))

	err := s.Resolve(ctx, admin, Ref(EntityRealEstate, 404))
	require.Error(t, err)
	assert.ErrorIs(t, err, KindScopeDenied)

	var authErr *Error
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, EntityRealEstate, authErr.EntityKind)
	assert.Equal(t, int64(404), authErr.EntityID)
	assert.Equal(t, RoleRealEstateAdmin, authErr.Actual)

	assert.Equal(t, 2, realEstates.calls)
}

func TestResolveSeller(t *testing.T) {
	s, _, clients := newTestResolver()
	seller := Account{ID: 7, Role: RoleSeller}
	ctx := context.Background()

	assert.NoError(t, s.Resolve(ctx, seller, Ref(EntityClient, 42)))
	assert.NoError(t, s.Resolve(ctx, seller, NoEntity(EntityClient)))
	assert.ErrorIs(t, s.Resolve(ctx, seller, Ref(EntityClient, 99)), KindScopeDenied)
	assert.ErrorIs(t, s.Resolve(ctx, seller, Ref(EntityClient, 1000)), KindScopeDenied)
	assert.Equal(t, 3, clients.calls)
}

func TestResolveInvalidIDIsDeniedWithoutLookup(t *testing.T) {
	s, realEstates, clients := newTestResolver()
	ctx := context.Background()

	assert.ErrorIs(t, s.Resolve(ctx, Account{ID: 7, Role: RoleSeller}, Ref(EntityClient, 0)), KindScopeDenied)
	assert.ErrorIs(t, s.Resolve(ctx, Account{ID: 2, Role: RoleRealEstateAdmin}, Ref(EntityRealEstate, -1)), KindScopeDenied)
	assert.Zero(t, realEstates.calls)
	assert.Zero(t, clients.calls)
}

func TestResolveClientRoleIsNotScopedHere(t *testing.T) {
	s, realEstates, clients := newTestResolver()
	client := Account{ID: 50, Role: RoleClient}

	assert.NoError(t, s.Resolve(context.Background(), client, Ref(EntityClient, 99)))
	assert.NoError(t, s.Resolve(context.Background(), client, Ref(EntityRealEstate, 404)))
	assert.Zero(t, realEstates.calls+clients.calls)
}

func TestResolveUnruledKindIsPermitted(t *testing.T) {
	s, realEstates, clients := newTestResolver()

	assert.NoError(t, s.Resolve(context.Background(), Account{ID: 7, Role: RoleSeller}, Ref(EntityRealEstate, 404)))
	assert.NoError(t, s.Resolve(context.Background(), Account{ID: 2, Role: RoleRealEstateAdmin}, Ref(EntityClient, 99)))
	assert.Zero(t, realEstates.calls+clients.calls)
}

func TestResolveUnknownRoleIsDenied(t *testing.T) {
	s, _, _ := newTestResolver()
	err := s.Resolve(context.Background(), Account{ID: 1, Role: Role("root")}, NoEntity(EntityClient))
	assert.ErrorIs(t, err, KindScopeDenied)
}

func TestResolveLookupFailureIsInternal(t *testing.T) {
	s, _, clients := newTestResolver()
	clients.err = errors.New("timeout")

	err := s.Resolve(context.Background(), Account{ID: 7, Role: RoleSeller}, Ref(EntityClient, 42))
	assert.ErrorIs(t, err, KindInternal)
	assert.ErrorIs(t, err, clients.err)
}
