package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"cuotas/api/internal/authz"
	"cuotas/api/internal/models"
)

type realEstateRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

func (r realEstateRequest) apply(re *models.RealEstate) {
	re.Name = strings.TrimSpace(r.Name)
	re.Address = strings.TrimSpace(r.Address)
	re.Phone = strings.TrimSpace(r.Phone)
	re.Email = strings.TrimSpace(r.Email)
}

func (h HandlerSet) ListRealEstates(c *gin.Context) {
	limit, offset := paging(c)
	items, err := h.deps.RealEstates.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]realEstateResponse, 0, len(items))
	for _, re := range items {
		out = append(out, newRealEstateResponse(re))
	}
	c.JSON(http.StatusOK, gin.H{"items": out})
}

func (h HandlerSet) CreateRealEstate(c *gin.Context) {
	var req realEstateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err.Error())
		return
	}
	var re models.RealEstate
	req.apply(&re)
	if re.Name == "" {
		h.badRequest(c, "name required")
		return
	}
	if err := h.deps.RealEstates.Create(c.Request.Context(), &re); err != nil {
		h.fail(c, err)
		return
	}
	h.log.Info().Int64("real_estate_id", re.ID).Int64("account_id", currentAccount(c).ID).Msg("real estate created")
	c.JSON(http.StatusCreated, newRealEstateResponse(re))
}

func (h HandlerSet) GetRealEstate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		h.badRequest(c, "invalid real estate id")
		return
	}
	re, err := h.deps.RealEstates.GetByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newRealEstateResponse(re))
}

func (h HandlerSet) UpdateRealEstate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		h.badRequest(c, "invalid real estate id")
		return
	}
	var req realEstateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err.Error())
		return
	}
	re := models.RealEstate{ID: id}
	req.apply(&re)
	if re.Name == "" {
		h.badRequest(c, "name required")
		return
	}
	if err := h.deps.RealEstates.Update(c.Request.Context(), &re); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newRealEstateResponse(re))
}

func (h HandlerSet) DeleteRealEstate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		h.badRequest(c, "invalid real estate id")
		return
	}
	if err := h.deps.RealEstates.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	h.log.Info().Int64("real_estate_id", id).Int64("account_id", currentAccount(c).ID).Msg("real estate deleted")
	c.Status(http.StatusNoContent)
}

type propertyRequest struct {
	Title   string `json:"title" binding:"required"`
	Address string `json:"address"`
	Price   int64  `json:"price"`
	Status  string `json:"status"`
}

func (r propertyRequest) apply(p *models.Property) bool {
	p.Title = strings.TrimSpace(r.Title)
	p.Address = strings.TrimSpace(r.Address)
	p.PriceCents = r.Price
	p.Status = models.PropertyStatus(r.Status)
	if p.Status == "" {
		p.Status = models.PropertyStatusAvailable
	}
	return p.Title != "" && p.PriceCents >= 0 && p.Status.Valid()
}

func (h HandlerSet) ListProperties(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		h.badRequest(c, "invalid real estate id")
		return
	}
	status := models.PropertyStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		h.badRequest(c, "unknown property status")
		return
	}
	items, err := h.deps.Properties.ListByRealEstate(c.Request.Context(), id, status)
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]propertyResponse, 0, len(items))
	for _, p := range items {
		out = append(out, newPropertyResponse(p))
	}
	c.JSON(http.StatusOK, gin.H{"items": out})
}

func (h HandlerSet) CreateProperty(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		h.badRequest(c, "invalid real estate id")
		return
	}
	var req propertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err.Error())
		return
	}
	p := models.Property{RealEstateID: id}
	if !req.apply(&p) {
		h.badRequest(c, "title, non-negative price and a known status required")
		return
	}
	if err := h.deps.Properties.Create(c.Request.Context(), &p); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, newPropertyResponse(p))
}

// propertyInScope loads the property named by the id path parameter and
// checks the caller's scope over its real estate.
func (h HandlerSet) propertyInScope(c *gin.Context) (models.Property, bool) {
	id, ok := pathID(c, "id")
	if !ok {
		h.badRequest(c, "invalid property id")
		return models.Property{}, false
	}
	p, err := h.deps.Properties.GetByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return models.Property{}, false
	}
	if !h.gate.Scope(c, authz.Ref(authz.EntityRealEstate, p.RealEstateID)) {
		return models.Property{}, false
	}
	return p, true
}

func (h HandlerSet) GetProperty(c *gin.Context) {
	p, ok := h.propertyInScope(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newPropertyResponse(p))
}

func (h HandlerSet) UpdateProperty(c *gin.Context) {
	p, ok := h.propertyInScope(c)
	if !ok {
		return
	}
	var req propertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err.Error())
		return
	}
	if req.Status == "" {
		req.Status = string(p.Status)
	}
	if !req.apply(&p) {
		h.badRequest(c, "title, non-negative price and a known status required")
		return
	}
	if err := h.deps.Properties.Update(c.Request.Context(), &p); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newPropertyResponse(p))
}
