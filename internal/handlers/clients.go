package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cuotas/api/internal/repository"
	"cuotas/api/internal/service"
)

type createClientRequest struct {
	RealEstateID int64  `json:"realEstateId" binding:"required"`
	AccountID    int64  `json:"accountId" binding:"required"`
	PropertyID   int64  `json:"propertyId" binding:"required"`
	SellerID     *int64 `json:"sellerId"`
}

func (h HandlerSet) CreateClient(c *gin.Context) {
	var req createClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err.Error())
		return
	}

	record, err := h.deps.Clients.Create(c.Request.Context(), service.CreateClientInput{
		RealEstateID: req.RealEstateID,
		AccountID:    req.AccountID,
		PropertyID:   req.PropertyID,
		SellerID:     req.SellerID,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, newClientResponse(record))
}

func (h HandlerSet) ListClients(c *gin.Context) {
	limit, offset := paging(c)
	filter := repository.ClientFilter{Limit: limit, Offset: offset}
	var ok bool
	if filter.RealEstateID, ok = queryID(c, "realEstateId"); !ok {
		h.badRequest(c, "invalid realEstateId")
		return
	}
	if filter.SellerID, ok = queryID(c, "sellerId"); !ok {
		h.badRequest(c, "invalid sellerId")
		return
	}

	items, err := h.deps.Clients.List(c.Request.Context(), currentAccount(c), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]clientResponse, 0, len(items))
	for _, record := range items {
		out = append(out, newClientResponse(record))
	}
	c.JSON(http.StatusOK, gin.H{"items": out})
}

func (h HandlerSet) GetClient(c *gin.Context) {
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
	c.JSON(http.StatusOK, newClientResponse(record))
}

type assignSellerRequest struct {
	SellerID *int64 `json:"sellerId"`
}

func (h HandlerSet) AssignSeller(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		h.badRequest(c, "invalid client id")
		return
	}
	var req assignSellerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err.Error())
		return
	}
	current, err := h.deps.Clients.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !h.clientInScope(c, current) {
		return
	}

	record, err := h.deps.Clients.AssignSeller(c.Request.Context(), id, req.SellerID)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.log.Info().
		Int64("client_id", record.ID).
		Int64("account_id", currentAccount(c).ID).
		Msg("client seller reassigned")
	c.JSON(http.StatusOK, newClientResponse(record))
}
