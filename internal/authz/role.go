// Package authz decides whether an inbound request may reach a handler.
//
// A decision is made in three stages that always run in the same order:
// the bearer credential is verified and resolved to an active account, the
// account's role is checked against the route's allow-list, and finally the
// account's scope over the entity named by the request is resolved. Each
// stage is usable on its own; Pipeline composes them.
package authz

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

type Role string

const (
	RoleSystemAdmin     Role = "system_admin"
	RoleRealEstateAdmin Role = "real_estate_admin"
	RoleSeller          Role = "seller"
	RoleClient          Role = "client"
)

var ErrUnknownRole = errors.New("unknown role")

// ParseRole maps a stored role name onto the closed Role set. Names are
// matched exactly; anything else is rejected.
func ParseRole(name string) (Role, error) {
	switch r := Role(strings.TrimSpace(name)); r {
	case RoleSystemAdmin, RoleRealEstateAdmin, RoleSeller, RoleClient:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, name)
	}
}

// Rank orders roles by privilege. Unknown roles rank below every real role.
func (r Role) Rank() int {
	switch r {
	case RoleSystemAdmin:
		return 4
	case RoleRealEstateAdmin:
		return 3
	case RoleSeller:
		return 2
	case RoleClient:
		return 1
	default:
		return 0
	}
}

func (r Role) Valid() bool { return r.Rank() > 0 }

func (r Role) String() string { return string(r) }

// AllRoles returns every role, most privileged first.
func AllRoles() []Role {
	return []Role{RoleSystemAdmin, RoleRealEstateAdmin, RoleSeller, RoleClient}
}

// RoleSet is a static allow-list attached to a route. The empty set admits
// any authenticated account.
type RoleSet map[Role]struct{}

func Roles(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

func (s RoleSet) Contains(r Role) bool {
	_, ok := s[r]
	return ok
}

// Sorted lists the set most privileged first.
func (s RoleSet) Sorted() []Role {
	out := make([]Role, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rank() != out[j].Rank() {
			return out[i].Rank() > out[j].Rank()
		}
		return out[i] < out[j]
	})
	return out
}
