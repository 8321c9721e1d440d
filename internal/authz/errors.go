package authz

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a rejected decision. A Kind is itself an error so callers
// can write errors.Is(err, authz.KindScopeDenied).
type Kind int

const (
	KindMissingToken Kind = iota + 1
	KindInvalidOrExpiredToken
	KindInactiveOrUnknownAccount
	KindInsufficientRole
	KindScopeDenied
	KindInternal
)

// String returns the wire code reported to clients.
func (k Kind) String() string {
	switch k {
	case KindMissingToken:
		return "missing_token"
	case KindInvalidOrExpiredToken:
		return "invalid_token"
	case KindInactiveOrUnknownAccount:
		return "inactive_or_unknown_account"
	case KindInsufficientRole:
		return "insufficient_role"
	case KindScopeDenied:
		return "scope_denied"
	case KindInternal:
		return "internal_error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func (k Kind) Error() string {
	return "authz: " + strings.ReplaceAll(k.String(), "_", " ")
}

// HTTPStatus is 401 for authentication failures and 403 for role or scope
// failures.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindMissingToken, KindInvalidOrExpiredToken, KindInactiveOrUnknownAccount:
		return http.StatusUnauthorized
	case KindInsufficientRole, KindScopeDenied:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Error carries the context of a rejection. Required and Actual are set for
// KindInsufficientRole; Actual, EntityKind and EntityID for KindScopeDenied.
type Error struct {
	Kind       Kind
	Required   []Role
	Actual     Role
	EntityKind EntityKind
	EntityID   int64
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	switch e.Kind {
	case KindInsufficientRole:
		fmt.Fprintf(&b, ": role %s not in %v", e.Actual, e.Required)
	case KindScopeDenied:
		fmt.Fprintf(&b, ": role %s on %s %d", e.Actual, e.EntityKind, e.EntityID)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// KindOf reports the Kind of err. Errors that did not originate in this
// package are KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func internal(err error) error {
	return &Error{Kind: KindInternal, Err: err}
}
