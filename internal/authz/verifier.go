package authz

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrAccountNotFound is returned by an AccountLookup when no active account
// has the requested id.
var ErrAccountNotFound = errors.New("authz: account not found")

// Account is the caller as resolved by the Verifier. Only active accounts
// are ever produced.
type Account struct {
	ID    int64
	Email string
	Name  string
	Role  Role
}

// AccountRecord is an active account row joined with its role name.
type AccountRecord struct {
	ID       int64
	Email    string
	Name     string
	RoleName string
}

// TokenParser checks a token's signature and expiry and returns the account
// id it is bound to.
type TokenParser interface {
	ParseAccountID(token string) (int64, error)
}

// AccountLookup returns the active account with the given id or
// ErrAccountNotFound.
type AccountLookup interface {
	ActiveAccountByID(ctx context.Context, id int64) (AccountRecord, error)
}

type Verifier struct {
	tokens   TokenParser
	accounts AccountLookup
}

func NewVerifier(tokens TokenParser, accounts AccountLookup) *Verifier {
	return &Verifier{tokens: tokens, accounts: accounts}
}

// Verify resolves a bearer token to an active account. The token is fully
// verified before any account lookup is made.
func (v *Verifier) Verify(ctx context.Context, token string) (Account, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Account{}, &Error{Kind: KindMissingToken}
	}

	id, err := v.tokens.ParseAccountID(token)
	if err != nil {
		return Account{}, &Error{Kind: KindInvalidOrExpiredToken, Err: err}
	}

	rec, err := v.accounts.ActiveAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return Account{}, &Error{Kind: KindInactiveOrUnknownAccount, Err: err}
		}
		return Account{}, internal(fmt.Errorf("lookup account %d: %w", id, err))
	}

	role, err := ParseRole(rec.RoleName)
	if err != nil {
		return Account{}, &Error{Kind: KindInactiveOrUnknownAccount, Err: err}
	}

	return Account{
		ID:    rec.ID,
		Email: rec.Email,
		Name:  rec.Name,
		Role:  role,
	}, nil
}
