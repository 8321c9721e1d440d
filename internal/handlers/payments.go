package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"cuotas/api/internal/media/sniffer"
	"cuotas/api/internal/models"
	"cuotas/api/internal/service"
)

const (
	// multipartOverhead bounds the form fields sent alongside the proof.
	multipartOverhead = 1 << 20
	formMemory        = 8 << 20
)

func (h HandlerSet) SubmitPayment(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.Uploads.MaxBytes+multipartOverhead)

	inst, record, ok := h.installmentInScope(c)
	if !ok {
		return
	}

	if err := c.Request.ParseMultipartForm(formMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(c, service.ErrProofTooLarge)
			return
		}
		h.badRequest(c, "multipart form required")
		return
	}

	amount, err := strconv.ParseInt(strings.TrimSpace(c.PostForm("amount")), 10, 64)
	if err != nil {
		h.badRequest(c, "amount must be an integer number of cents")
		return
	}
	paidAt, err := parsePaidAt(c.PostForm("paidAt"))
	if err != nil {
		h.badRequest(c, "paidAt must be RFC 3339 or YYYY-MM-DD")
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		h.fail(c, service.ErrProofRequired)
		return
	}
	file, err := header.Open()
	if err != nil {
		h.fail(c, err)
		return
	}
	defer file.Close()

	payment, err := h.deps.Payments.Submit(c.Request.Context(), service.SubmitInput{
		Installment:  inst,
		Client:       record,
		SubmittedBy:  currentAccount(c).ID,
		AmountCents:  amount,
		PaidAt:       paidAt,
		Proof:        file,
		DeclaredMIME: sniffer.DeclaredMIME(header.Header),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, newPaymentResponse(payment))
}

func parsePaidAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, raw)
}

func (h HandlerSet) ListInstallmentPayments(c *gin.Context) {
	inst, _, ok := h.installmentInScope(c)
	if !ok {
		return
	}
	items, err := h.deps.Payments.ListByInstallment(c.Request.Context(), inst.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": newPaymentList(items)})
}

// paymentInScope loads the payment named by the id path parameter and
// checks the caller's access through the owning client.
func (h HandlerSet) paymentInScope(c *gin.Context) (models.Payment, bool) {
	id, ok := pathID(c, "id")
	if !ok {
		h.badRequest(c, "invalid payment id")
		return models.Payment{}, false
	}
	payment, err := h.deps.Payments.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return models.Payment{}, false
	}
	inst, err := h.deps.Installments.Get(c.Request.Context(), payment.InstallmentID)
	if err != nil {
		h.fail(c, err)
		return models.Payment{}, false
	}
	record, err := h.deps.Clients.Get(c.Request.Context(), inst.ClientID)
	if err != nil {
		h.fail(c, err)
		return models.Payment{}, false
	}
	if !h.clientInScope(c, record) {
		return models.Payment{}, false
	}
	return payment, true
}

func (h HandlerSet) GetPayment(c *gin.Context) {
	payment, ok := h.paymentInScope(c)
	if !ok {
		return
	}
	resp := newPaymentResponse(payment)
	url, err := h.deps.Payments.ProofURL(c.Request.Context(), payment)
	if err != nil {
		h.log.Warn().Err(err).Int64("payment_id", payment.ID).Msg("presign proof failed")
	} else {
		resp.ProofURL = url
	}
	c.JSON(http.StatusOK, resp)
}

type reviewRequest struct {
	Decision string `json:"decision" binding:"required"`
	Note     string `json:"note"`
}

func (h HandlerSet) ReviewPayment(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err.Error())
		return
	}
	var approve bool
	switch strings.ToLower(strings.TrimSpace(req.Decision)) {
	case "approve":
		approve = true
	case "reject":
	default:
		h.badRequest(c, "decision must be approve or reject")
		return
	}

	payment, ok := h.paymentInScope(c)
	if !ok {
		return
	}

	reviewed, inst, err := h.deps.Payments.Review(c.Request.Context(), service.ReviewInput{
		PaymentID:  payment.ID,
		Approve:    approve,
		ReviewerID: currentAccount(c).ID,
		Note:       req.Note,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"payment":     newPaymentResponse(reviewed),
		"installment": newInstallmentResponse(inst),
	})
}

func (h HandlerSet) MyPayments(c *gin.Context) {
	items, err := h.deps.Payments.ListForAccount(c.Request.Context(), currentAccount(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": newPaymentList(items)})
}
