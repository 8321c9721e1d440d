package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cuotas/api/internal/authz"
	"cuotas/api/internal/repository"
	"cuotas/api/internal/service"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

// errorTable is matched in order with errors.Is.
var errorTable = []errorMapping{
	{service.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{service.ErrAccountInactive, http.StatusForbidden, "account_inactive"},
	{service.ErrNotOwner, http.StatusForbidden, "not_owner"},
	{service.ErrClientRoleRequired, http.StatusUnprocessableEntity, "client_role_required"},
	{service.ErrSellerRoleRequired, http.StatusUnprocessableEntity, "seller_role_required"},
	{service.ErrPropertyOutsideRealEstate, http.StatusUnprocessableEntity, "property_outside_real_estate"},
	{service.ErrInstallmentPaid, http.StatusConflict, "installment_paid"},
	{service.ErrProofRequired, http.StatusBadRequest, "proof_required"},
	{service.ErrProofTooLarge, http.StatusRequestEntityTooLarge, "proof_too_large"},
	{service.ErrProofUnsupported, http.StatusUnsupportedMediaType, "proof_unsupported"},
	{service.ErrProofMismatch, http.StatusUnsupportedMediaType, "proof_type_mismatch"},
	{authz.ErrAccountNotFound, http.StatusNotFound, "account_not_found"},
	{authz.ErrUnknownRole, http.StatusBadRequest, "unknown_role"},
	{repository.ErrEmailTaken, http.StatusConflict, "email_taken"},
	{repository.ErrRealEstateNotFound, http.StatusNotFound, "real_estate_not_found"},
	{repository.ErrRealEstateInUse, http.StatusConflict, "real_estate_in_use"},
	{repository.ErrPropertyNotFound, http.StatusNotFound, "property_not_found"},
	{repository.ErrPropertyUnavailable, http.StatusConflict, "property_unavailable"},
	{repository.ErrClientNotFound, http.StatusNotFound, "client_not_found"},
	{repository.ErrClientExists, http.StatusConflict, "client_exists"},
	{repository.ErrInstallmentNotFound, http.StatusNotFound, "installment_not_found"},
	{repository.ErrPlanExists, http.StatusConflict, "plan_exists"},
	{repository.ErrPaymentNotFound, http.StatusNotFound, "payment_not_found"},
	{repository.ErrPaymentReviewed, http.StatusConflict, "payment_reviewed"},
	{repository.ErrNotificationNotFound, http.StatusNotFound, "notification_not_found"},
}

// fail writes err as a JSON error. Authorization errors go through the
// gatekeeper so they carry the same body and logging as gate rejections.
func (h HandlerSet) fail(c *gin.Context, err error) {
	var denied *authz.Error
	if errors.As(err, &denied) {
		h.gate.Reject(c, err)
		return
	}

	for _, m := range errorTable {
		if !errors.Is(err, m.err) {
			continue
		}
		body := gin.H{"error": m.code}
		if m.status == http.StatusBadRequest || m.status == http.StatusUnsupportedMediaType {
			body["detail"] = err.Error()
		}
		c.AbortWithStatusJSON(m.status, body)
		return
	}

	h.log.Error().
		Err(err).
		Str("path", c.FullPath()).
		Str("method", c.Request.Method).
		Msg("request failed")
	body := gin.H{"error": "internal_error"}
	if !h.cfg.IsProduction() {
		body["detail"] = err.Error()
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, body)
}

func (h HandlerSet) badRequest(c *gin.Context, detail string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_input", "detail": detail})
}
