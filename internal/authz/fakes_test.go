package authz

import (
	"context"
	"errors"
)

var errBadToken = errors.New("token signature is invalid")

type fakeTokens struct {
	ids map[string]int64
}

func (f fakeTokens) ParseAccountID(token string) (int64, error) {
	id, ok := f.ids[token]
	if !ok {
		return 0, errBadToken
	}
	return id, nil
}

type fakeAccounts struct {
	rows  map[int64]AccountRecord
	err   error
	calls int
}

func (f *fakeAccounts) ActiveAccountByID(_ context.Context, id int64) (AccountRecord, error) {
	f.calls++
	if f.err != nil {
		return AccountRecord{}, f.err
	}
	rec, ok := f.rows[id]
	if !ok {
		return AccountRecord{}, ErrAccountNotFound
	}
	return rec, nil
}

type fakeRealEstates struct {
	ids   map[int64]bool
	err   error
	calls int
}

func (f *fakeRealEstates) RealEstateExists(_ context.Context, id int64) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	return f.ids[id], nil
}

type fakeClients struct {
	// client id -> assigned seller id
	sellers map[int64]int64
	err     error
	calls   int
}

func (f *fakeClients) ClientAssignedToSeller(_ context.Context, clientID, sellerID int64) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	assigned, ok := f.sellers[clientID]
	return ok && assigned == sellerID, nil
}
