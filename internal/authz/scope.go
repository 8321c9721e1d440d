package authz

import (
	"context"
	"fmt"
)

type EntityKind string

const (
	EntityRealEstate EntityKind = "real_estate"
	EntityClient     EntityKind = "client"
)

// EntityRef names the entity instance a request acts on. Present is false
// when the request carried no id for Kind.
type EntityRef struct {
	Kind    EntityKind
	ID      int64
	Present bool
}

func Ref(kind EntityKind, id int64) EntityRef {
	return EntityRef{Kind: kind, ID: id, Present: true}
}

func NoEntity(kind EntityKind) EntityRef {
	return EntityRef{Kind: kind}
}

type RealEstateLookup interface {
	RealEstateExists(ctx context.Context, id int64) (bool, error)
}

type ClientLookup interface {
	ClientAssignedToSeller(ctx context.Context, clientID, sellerID int64) (bool, error)
}

type ScopeResolver struct {
	realEstates RealEstateLookup
	clients     ClientLookup
}

func NewScopeResolver(realEstates RealEstateLookup, clients ClientLookup) *ScopeResolver {
	return &ScopeResolver{realEstates: realEstates, clients: clients}
}

// Resolve decides whether account may act on ref.
//
// system_admin is always in scope. real_estate_admin is in scope of any real
// estate that exists; membership of the admin in that real estate is not
// recorded anywhere and is not checked. seller is in scope of a client only
// when it is the client's assigned seller. client scope is enforced by the
// data-access layer on the account id. A request that names no entity of the
// kind a role is scoped by is in scope.
func (s *ScopeResolver) Resolve(ctx context.Context, account Account, ref EntityRef) error {
	switch account.Role {
	case RoleSystemAdmin:
		return nil
	case RoleRealEstateAdmin:
		if ref.Kind != EntityRealEstate || !ref.Present {
			return nil
		}
		if ref.ID <= 0 {
			return denied(account, ref)
		}
		ok, err := s.realEstates.RealEstateExists(ctx, ref.ID)
		if err != nil {
			return internal(fmt.Errorf("check real estate %d: %w", ref.ID, err))
		}
		if !ok {
			return denied(account, ref)
		}
		return nil
	case RoleSeller:
		if ref.Kind != EntityClient || !ref.Present {
			return nil
		}
		if ref.ID <= 0 {
			return denied(account, ref)
		}
		ok, err := s.clients.ClientAssignedToSeller(ctx, ref.ID, account.ID)
		if err != nil {
			return internal(fmt.Errorf("check client %d seller: %w", ref.ID, err))
		}
		if !ok {
			return denied(account, ref)
		}
		return nil
	case RoleClient:
		return nil
	default:
		return denied(account, ref)
	}
}

func denied(account Account, ref EntityRef) error {
	return &Error{
		Kind:       KindScopeDenied,
		Actual:     account.Role,
		EntityKind: ref.Kind,
		EntityID:   ref.ID,
	}
}
