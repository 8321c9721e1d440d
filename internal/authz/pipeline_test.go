package authz

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stageRecord struct {
	stage State
	err   error
}

func newTestPipeline() (*Pipeline, *fakeAccounts, *fakeClients, *[]stageRecord) {
	accounts := &fakeAccounts{rows: map[int64]AccountRecord{
		7: {ID: 7, Email: "seller@example.com", Name: "Sam", RoleName: "seller"},
		1: {ID: 1, Email: "root@example.com", Name: "Root", RoleName: "system_admin"},
	}}
	tokens := fakeTokens{ids: map[string]int64{"tok-seller": 7, "tok-admin": 1, "tok-gone": 3}}
	clients := &fakeClients{sellers: map[int64]int64{42: 7, 99: 8}}
	realEstates := &fakeRealEstates{ids: map[int64]bool{1: true}}

	var records []stageRecord
	p := NewPipeline(
		NewVerifier(tokens, accounts),
		NewScopeResolver(realEstates, clients),
		WithObserver(func(stage State, err error) {
			records = append(records, stageRecord{stage: stage, err: err})
		}),
	)
	return p, accounts, clients, &records
}

func TestAdmitSellerOwnClient(t *testing.T) {
	p, _, _, records := newTestPipeline()

	d, err := p.Admit(context.Background(), Request{
		Token:   "tok-seller",
		Allowed: Roles(RoleSeller),
		Entity:  Ref(EntityClient, 42),
	})
	require.NoError(t, err)
	assert.True(t, d.Admitted())
	assert.Equal(t, StateAdmitted, d.State)
	assert.Equal(t, int64(7), d.Account.ID)
	assert.Zero(t, d.Reason)

	stages := make([]State, 0, len(*records))
	for _, r := range *records {
		assert.NoError(t, r.err)
		stages = append(stages, r.stage)
	}
	assert.Equal(t, []State{StateUnauthenticated, StateAuthenticated, StateRoleChecked, StateScopeChecked}, stages)
}

func TestAdmitSellerForeignClient(t *testing.T) {
	p, _, _, _ := newTestPipeline()

	d, err := p.Admit(context.Background(), Request{
		Token:   "tok-seller",
		Allowed: Roles(RoleSeller),
		Entity:  Ref(EntityClient, 99),
	})
	require.Error(t, err)
	assert.Equal(t, StateRejected, d.State)
	assert.Equal(t, KindScopeDenied, d.Reason)
	assert.Equal(t, http.StatusForbidden, d.Reason.HTTPStatus())
	assert.Equal(t, int64(7), d.Account.ID)
}

func TestAdmitMissingTokenShortCircuits(t *testing.T) {
	p, accounts, clients, records := newTestPipeline()

	d, err := p.Admit(context.Background(), Request{Allowed: Roles(RoleSeller), Entity: Ref(EntityClient, 42)})
	require.Error(t, err)
	assert.Equal(t, KindMissingToken, d.Reason)
	assert.Zero(t, accounts.calls)
	assert.Zero(t, clients.calls)
	require.Len(t, *records, 1)
	assert.Equal(t, StateUnauthenticated, (*records)[0].stage)
}

func TestAdmitInactiveAccount(t *testing.T) {
	p, _, clients, _ := newTestPipeline()

	d, err := p.Admit(context.Background(), Request{Token: "tok-gone"})
	require.Error(t, err)
	assert.Equal(t, KindInactiveOrUnknownAccount, d.Reason)
	assert.Equal(t, http.StatusUnauthorized, d.Reason.HTTPStatus())
	assert.Zero(t, clients.calls)
}

func TestAdmitRoleFailureSkipsScope(t *testing.T) {
	p, _, clients, _ := newTestPipeline()

	d, err := p.Admit(context.Background(), Request{
		Token:   "tok-seller",
		Allowed: Roles(RoleSystemAdmin, RoleRealEstateAdmin),
		Entity:  Ref(EntityClient, 42),
	})
	require.Error(t, err)
	assert.Equal(t, KindInsufficientRole, d.Reason)
	assert.Zero(t, clients.calls)
}

func TestAdmitSystemAdminAnyEntity(t *testing.T) {
	p, _, clients, _ := newTestPipeline()

	d, err := p.Admit(context.Background(), Request{Token: "tok-admin", Entity: Ref(EntityClient, 99)})
	require.NoError(t, err)
	assert.True(t, d.Admitted())
	assert.Zero(t, clients.calls)
}

func TestAdmitLocatesEntityAfterRoleCheck(t *testing.T) {
	p, _, _, _ := newTestPipeline()

	calls := 0
	locate := func() EntityRef {
		calls++
		return Ref(EntityClient, 99)
	}

	_, err := p.Admit(context.Background(), Request{Allowed: Roles(RoleSeller), Locate: locate})
	assert.Equal(t, KindMissingToken, KindOf(err))
	_, err = p.Admit(context.Background(), Request{Token: "forged", Allowed: Roles(RoleSeller), Locate: locate})
	assert.Equal(t, KindInvalidOrExpiredToken, KindOf(err))
	_, err = p.Admit(context.Background(), Request{Token: "tok-seller", Allowed: Roles(RoleSystemAdmin), Locate: locate})
	assert.Equal(t, KindInsufficientRole, KindOf(err))
	assert.Zero(t, calls)

	d, err := p.Admit(context.Background(), Request{Token: "tok-seller", Allowed: Roles(RoleSeller), Entity: Ref(EntityClient, 42), Locate: locate})
	require.Error(t, err)
	assert.Equal(t, KindScopeDenied, d.Reason)
	assert.Equal(t, 1, calls)
}
