package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"time"

	"cuotas/api/internal/authz"
	"cuotas/api/internal/models"
	"cuotas/api/internal/repository"
	"cuotas/api/internal/tasks"
)

type fakeAccounts struct {
	byID   map[int64]models.Account
	nextID int64
}

func newFakeAccounts(accounts ...models.Account) *fakeAccounts {
	f := &fakeAccounts{byID: map[int64]models.Account{}, nextID: 100}
	for _, a := range accounts {
		f.byID[a.ID] = a
	}
	return f
}

func (f *fakeAccounts) Create(_ context.Context, a *models.Account) error {
	for _, existing := range f.byID {
		if existing.Email == a.Email {
			return repository.ErrEmailTaken
		}
	}
	f.nextID++
	a.ID = f.nextID
	a.CreatedAt = time.Now()
	f.byID[a.ID] = *a
	return nil
}

func (f *fakeAccounts) FindByEmail(_ context.Context, email string) (models.Account, error) {
	for _, a := range f.byID {
		if a.Email == email {
			return a, nil
		}
	}
	return models.Account{}, authz.ErrAccountNotFound
}

func (f *fakeAccounts) GetByID(_ context.Context, id int64) (models.Account, error) {
	a, ok := f.byID[id]
	if !ok {
		return models.Account{}, authz.ErrAccountNotFound
	}
	return a, nil
}

func (f *fakeAccounts) List(_ context.Context, role authz.Role, _, _ int) ([]models.Account, error) {
	var out []models.Account
	for _, a := range f.byID {
		if role == "" || a.Role == role {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeAccounts) Deactivate(_ context.Context, id int64) error {
	a, ok := f.byID[id]
	if !ok {
		return authz.ErrAccountNotFound
	}
	a.Active = false
	f.byID[id] = a
	return nil
}

type fakeTokens struct{}

func (fakeTokens) Issue(accountID int64, role string) (string, time.Time, error) {
	return "token-" + role, time.Unix(1700000000, 0), nil
}

type fakeProperties map[int64]models.Property

func (f fakeProperties) GetByID(_ context.Context, id int64) (models.Property, error) {
	p, ok := f[id]
	if !ok {
		return models.Property{}, repository.ErrPropertyNotFound
	}
	return p, nil
}

type fakeClients struct {
	byID    map[int64]models.Client
	nextID  int64
	created int
	filter  repository.ClientFilter
}

func newFakeClients(clients ...models.Client) *fakeClients {
	f := &fakeClients{byID: map[int64]models.Client{}, nextID: 10}
	for _, c := range clients {
		f.byID[c.ID] = c
	}
	return f
}

func (f *fakeClients) Create(_ context.Context, c *models.Client) error {
	f.nextID++
	f.created++
	c.ID = f.nextID
	f.byID[c.ID] = *c
	return nil
}

func (f *fakeClients) GetByID(_ context.Context, id int64) (models.Client, error) {
	c, ok := f.byID[id]
	if !ok {
		return models.Client{}, repository.ErrClientNotFound
	}
	return c, nil
}

func (f *fakeClients) GetByAccountID(_ context.Context, accountID int64) (models.Client, error) {
	for _, c := range f.byID {
		if c.AccountID == accountID {
			return c, nil
		}
	}
	return models.Client{}, repository.ErrClientNotFound
}

func (f *fakeClients) List(_ context.Context, filter repository.ClientFilter) ([]models.Client, error) {
	f.filter = filter
	var out []models.Client
	for _, c := range f.byID {
		if filter.SellerID != 0 && (c.SellerID == nil || *c.SellerID != filter.SellerID) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeClients) UpdateSeller(_ context.Context, clientID int64, sellerID *int64) error {
	c, ok := f.byID[clientID]
	if !ok {
		return repository.ErrClientNotFound
	}
	c.SellerID = sellerID
	f.byID[clientID] = c
	return nil
}

type fakeInstallments struct {
	rows    map[int64]models.Installment
	updates map[int64]models.InstallmentStatus
	nextID  int64
}

func newFakeInstallments(rows ...models.Installment) *fakeInstallments {
	f := &fakeInstallments{rows: map[int64]models.Installment{}, updates: map[int64]models.InstallmentStatus{}}
	for _, r := range rows {
		f.rows[r.ID] = r
	}
	return f
}

func (f *fakeInstallments) CreatePlan(_ context.Context, clientID int64, plan []models.Installment) error {
	for _, r := range f.rows {
		if r.ClientID == clientID {
			return repository.ErrPlanExists
		}
	}
	for _, i := range plan {
		f.nextID++
		i.ID = f.nextID
		f.rows[i.ID] = i
	}
	return nil
}

func (f *fakeInstallments) GetByID(_ context.Context, id int64) (models.Installment, error) {
	r, ok := f.rows[id]
	if !ok {
		return models.Installment{}, repository.ErrInstallmentNotFound
	}
	return r, nil
}

func (f *fakeInstallments) ListByClient(_ context.Context, clientID int64) ([]models.Installment, error) {
	var out []models.Installment
	for _, r := range f.rows {
		if r.ClientID == clientID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (f *fakeInstallments) ListOpen(_ context.Context, dueBy time.Time) ([]models.Installment, error) {
	var out []models.Installment
	for _, r := range f.rows {
		if r.Status != models.InstallmentStatusPaid && !r.DueDate.After(dueBy) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeInstallments) UpdateStatus(_ context.Context, id int64, status models.InstallmentStatus) error {
	r, ok := f.rows[id]
	if !ok {
		return repository.ErrInstallmentNotFound
	}
	r.Status = status
	f.rows[id] = r
	f.updates[id] = status
	return nil
}

type fakeNotifier struct {
	sent []tasks.Notification
	err  error
}

func (f *fakeNotifier) Notify(_ context.Context, n tasks.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, n)
	return nil
}

type fakePayments struct {
	rows      map[int64]models.Payment
	createErr error
	reviewed  repository.ReviewInput
	reviewOut models.Installment
	reviewErr error
	nextID    int64
}

func (f *fakePayments) Create(_ context.Context, p *models.Payment) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.rows == nil {
		f.rows = map[int64]models.Payment{}
	}
	f.nextID++
	p.ID = f.nextID
	p.Status = models.PaymentStatusPending
	f.rows[p.ID] = *p
	return nil
}

func (f *fakePayments) GetByID(_ context.Context, id int64) (models.Payment, error) {
	p, ok := f.rows[id]
	if !ok {
		return models.Payment{}, repository.ErrPaymentNotFound
	}
	return p, nil
}

func (f *fakePayments) ListByInstallment(context.Context, int64) ([]models.Payment, error) {
	return nil, nil
}

func (f *fakePayments) ListByClient(context.Context, int64) ([]models.Payment, error) {
	return nil, nil
}

func (f *fakePayments) Review(_ context.Context, in repository.ReviewInput) (models.Payment, models.Installment, error) {
	f.reviewed = in
	if f.reviewErr != nil {
		return models.Payment{}, models.Installment{}, f.reviewErr
	}
	p := models.Payment{ID: in.PaymentID, Status: models.PaymentStatusRejected, ReviewNote: in.Note}
	if in.Approve {
		p.Status = models.PaymentStatusApproved
	}
	return p, f.reviewOut, nil
}

type storedProof struct {
	contentType string
	data        []byte
}

type fakeProofs struct {
	objects map[string]storedProof
	removed []string
	putErr  error
}

func (f *fakeProofs) PutProof(_ context.Context, key, contentType string, r io.Reader, size int64) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	var buf bytes.Buffer
	n, err := io.Copy(&buf, r)
	if err != nil {
		return "", err
	}
	if n != size {
		return "", errors.New("size mismatch")
	}
	if f.objects == nil {
		f.objects = map[string]storedProof{}
	}
	f.objects[key] = storedProof{contentType: contentType, data: buf.Bytes()}
	return "payment-proofs", nil
}

func (f *fakeProofs) RemoveProof(_ context.Context, _, key string) error {
	delete(f.objects, key)
	f.removed = append(f.removed, key)
	return nil
}

func (f *fakeProofs) PresignProof(_ context.Context, bucket, key string) (string, error) {
	return "https://minio.local/" + bucket + "/" + key, nil
}
