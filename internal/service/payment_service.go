package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"cuotas/api/internal/ids"
	"cuotas/api/internal/media/sniffer"
	"cuotas/api/internal/models"
	"cuotas/api/internal/repository"
	"cuotas/api/internal/tasks"
)

type PaymentStore interface {
	Create(ctx context.Context, p *models.Payment) error
	GetByID(ctx context.Context, id int64) (models.Payment, error)
	ListByInstallment(ctx context.Context, installmentID int64) ([]models.Payment, error)
	ListByClient(ctx context.Context, clientID int64) ([]models.Payment, error)
	Review(ctx context.Context, in repository.ReviewInput) (models.Payment, models.Installment, error)
}

type ProofStore interface {
	PutProof(ctx context.Context, key, contentType string, r io.Reader, size int64) (string, error)
	RemoveProof(ctx context.Context, bucket, key string) error
	PresignProof(ctx context.Context, bucket, key string) (string, error)
}

type PaymentService struct {
	payments PaymentStore
	clients  ClientReader
	proofs   ProofStore
	notifier Notifier
	maxBytes int64
	log      zerolog.Logger
	now      func() time.Time
}

func NewPaymentService(
	payments PaymentStore,
	clients ClientReader,
	proofs ProofStore,
	notifier Notifier,
	maxBytes int64,
	log zerolog.Logger,
) *PaymentService {
	return &PaymentService{
		payments: payments,
		clients:  clients,
		proofs:   proofs,
		notifier: notifier,
		maxBytes: maxBytes,
		log:      log,
		now:      time.Now,
	}
}

type SubmitInput struct {
	Installment  models.Installment
	Client       models.Client
	SubmittedBy  int64
	AmountCents  int64
	PaidAt       time.Time
	Proof        io.Reader
	DeclaredMIME string
}

// Submit validates and stores the proof, then records a pending payment.
// The proof object is removed again if the payment row cannot be saved.
func (s *PaymentService) Submit(ctx context.Context, input SubmitInput) (models.Payment, error) {
	if input.Installment.Status == models.InstallmentStatusPaid {
		return models.Payment{}, ErrInstallmentPaid
	}
	if input.AmountCents <= 0 {
		return models.Payment{}, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	if input.PaidAt.IsZero() {
		return models.Payment{}, fmt.Errorf("%w: paidAt required", ErrInvalidInput)
	}
	if input.PaidAt.After(s.now().Add(24 * time.Hour)) {
		return models.Payment{}, fmt.Errorf("%w: paidAt is in the future", ErrInvalidInput)
	}

	data, detected, err := s.readProof(input.Proof, input.DeclaredMIME)
	if err != nil {
		return models.Payment{}, err
	}

	key := s.objectKey(detected.Extension())
	bucket, err := s.proofs.PutProof(ctx, key, detected.MIME, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return models.Payment{}, fmt.Errorf("store proof: %w", err)
	}

	payment := models.Payment{
		InstallmentID: input.Installment.ID,
		SubmittedBy:   input.SubmittedBy,
		AmountCents:   input.AmountCents,
		PaidAt:        input.PaidAt.UTC(),
		ProofBucket:   bucket,
		ProofKey:      key,
		ProofMIME:     detected.MIME,
		ProofSize:     int64(len(data)),
	}
	if err := s.payments.Create(ctx, &payment); err != nil {
		if rmErr := s.proofs.RemoveProof(ctx, bucket, key); rmErr != nil {
			s.log.Warn().Err(rmErr).Str("key", key).Msg("remove orphaned proof failed")
		}
		return models.Payment{}, fmt.Errorf("save payment: %w", err)
	}

	s.notify(ctx, tasks.Notification{
		AccountID: input.Client.AccountID,
		Kind:      models.NotificationPaymentSubmitted,
		Title:     fmt.Sprintf("Payment received for installment %d", input.Installment.Number),
		Body:      "Your payment is awaiting review.",
		DedupeKey: fmt.Sprintf("payment:%d:submitted", payment.ID),
	})

	s.log.Info().
		Int64("payment_id", payment.ID).
		Int64("installment_id", payment.InstallmentID).
		Int64("submitted_by", payment.SubmittedBy).
		Str("mime", payment.ProofMIME).
		Msg("payment submitted")
	return payment, nil
}

func (s *PaymentService) readProof(r io.Reader, declared string) ([]byte, sniffer.Result, error) {
	if r == nil {
		return nil, sniffer.Result{}, ErrProofRequired
	}
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, sniffer.Result{}, fmt.Errorf("read proof: %w", err)
	}
	if len(data) == 0 {
		return nil, sniffer.Result{}, ErrProofRequired
	}
	if int64(len(data)) > s.maxBytes {
		return nil, sniffer.Result{}, ErrProofTooLarge
	}

	head := data
	if len(head) > sniffer.HeadSize {
		head = head[:sniffer.HeadSize]
	}
	detected, err := sniffer.DetectHead(head)
	if errors.Is(err, sniffer.ErrUnknownType) {
		return nil, sniffer.Result{}, ErrProofUnsupported
	}
	if err != nil {
		return nil, sniffer.Result{}, err
	}

	declared = strings.ToLower(strings.TrimSpace(declared))
	if declared != "" && declared != detected.MIME {
		return nil, sniffer.Result{}, fmt.Errorf("%w: declared %s, detected %s", ErrProofMismatch, declared, detected.MIME)
	}
	return data, detected, nil
}

func (s *PaymentService) objectKey(ext string) string {
	datePrefix := s.now().UTC().Format("2006/01/02")
	return path.Join(datePrefix, fmt.Sprintf("%s.%s", ids.New(), ext))
}

type ReviewInput struct {
	PaymentID  int64
	Approve    bool
	ReviewerID int64
	Note       string
}

// Review approves or rejects a pending payment and notifies the client.
func (s *PaymentService) Review(ctx context.Context, input ReviewInput) (models.Payment, models.Installment, error) {
	payment, installment, err := s.payments.Review(ctx, repository.ReviewInput{
		PaymentID:  input.PaymentID,
		Approve:    input.Approve,
		ReviewerID: input.ReviewerID,
		Note:       strings.TrimSpace(input.Note),
		Now:        s.now().UTC(),
	})
	if err != nil {
		return models.Payment{}, models.Installment{}, err
	}

	n := tasks.Notification{
		Kind:      models.NotificationPaymentRejected,
		Title:     fmt.Sprintf("Payment for installment %d was rejected", installment.Number),
		Body:      payment.ReviewNote,
		DedupeKey: fmt.Sprintf("payment:%d:reviewed", payment.ID),
	}
	if input.Approve {
		n.Kind = models.NotificationPaymentApproved
		n.Title = fmt.Sprintf("Payment for installment %d was approved", installment.Number)
	}
	if client, err := s.clients.GetByID(ctx, installment.ClientID); err != nil {
		s.log.Warn().Err(err).Int64("client_id", installment.ClientID).Msg("resolve client for review notification failed")
	} else {
		n.AccountID = client.AccountID
		s.notify(ctx, n)
	}

	s.log.Info().
		Int64("payment_id", payment.ID).
		Str("status", string(payment.Status)).
		Str("installment_status", string(installment.Status)).
		Int64("reviewer_id", input.ReviewerID).
		Msg("payment reviewed")
	return payment, installment, nil
}

func (s *PaymentService) Get(ctx context.Context, id int64) (models.Payment, error) {
	return s.payments.GetByID(ctx, id)
}

func (s *PaymentService) ListByInstallment(ctx context.Context, installmentID int64) ([]models.Payment, error) {
	return s.payments.ListByInstallment(ctx, installmentID)
}

func (s *PaymentService) ListForAccount(ctx context.Context, accountID int64) ([]models.Payment, error) {
	client, err := s.clients.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return s.payments.ListByClient(ctx, client.ID)
}

// ProofURL returns a short-lived download link for the payment's proof.
func (s *PaymentService) ProofURL(ctx context.Context, p models.Payment) (string, error) {
	return s.proofs.PresignProof(ctx, p.ProofBucket, p.ProofKey)
}

// notify enqueues best-effort. The payment is already committed.
func (s *PaymentService) notify(ctx context.Context, n tasks.Notification) {
	if s.notifier == nil || n.AccountID == 0 {
		return
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.log.Warn().Err(err).Str("dedupe_key", n.DedupeKey).Msg("enqueue notification failed")
	}
}
