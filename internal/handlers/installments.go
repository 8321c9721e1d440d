package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cuotas/api/internal/service"
)

type createPlanRequest struct {
	Count        int    `json:"count" binding:"required"`
	TotalAmount  int64  `json:"totalAmount" binding:"required"`
	FirstDueDate string `json:"firstDueDate" binding:"required"`
}

func (h HandlerSet) CreatePlan(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		h.badRequest(c, "invalid client id")
		return
	}
	var req createPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err.Error())
		return
	}
	firstDue, err := time.Parse(time.DateOnly, req.FirstDueDate)
	if err != nil {
		h.badRequest(c, "firstDueDate must be YYYY-MM-DD")
		return
	}

	record, err := h.deps.Clients.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !h.clientInScope(c, record) {
		return
	}

	plan, err := h.deps.Installments.CreatePlan(c.Request.Context(), service.CreatePlanInput{
		ClientID:    id,
		Count:       req.Count,
		TotalCents:  req.TotalAmount,
		FirstDueDay: firstDue,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"items": newInstallmentList(plan)})
}

func (h HandlerSet) ListClientInstallments(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		h.badRequest(c, "invalid client id")
		return
	}
	record, err := h.deps.Clients.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !h.clientInScope(c, record) {
		return
	}

	items, err := h.deps.Installments.ListForClient(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": newInstallmentList(items)})
}

func (h HandlerSet) GetInstallment(c *gin.Context) {
	inst, _, ok := h.installmentInScope(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newInstallmentResponse(inst))
}

// MyInstallments lists the plan of the client record linked to the caller.
func (h HandlerSet) MyInstallments(c *gin.Context) {
	items, err := h.deps.Installments.ListForAccount(c.Request.Context(), currentAccount(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": newInstallmentList(items)})
}
