package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cuotas/api/internal/authz"
	"cuotas/api/internal/models"
	"cuotas/api/internal/service"
)

func (h HandlerSet) ListAccounts(c *gin.Context) {
	role := authz.Role(c.Query("role"))
	limit, offset := paging(c)

	accounts, err := h.deps.Auth.ListAccounts(c.Request.Context(), role, limit, offset)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": accountList(accounts, false)})
}

// ListSellers lists active sellers for assignment pickers.
func (h HandlerSet) ListSellers(c *gin.Context) {
	limit, offset := paging(c)
	accounts, err := h.deps.Auth.ListAccounts(c.Request.Context(), authz.RoleSeller, limit, offset)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": accountList(accounts, true)})
}

func accountList(accounts []models.Account, activeOnly bool) []accountResponse {
	items := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		if activeOnly && !a.Active {
			continue
		}
		items = append(items, newAccountResponse(a))
	}
	return items
}

type createAccountRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

func (h HandlerSet) CreateAccount(c *gin.Context) {
	var req createAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err.Error())
		return
	}
	role, err := authz.ParseRole(req.Role)
	if err != nil {
		h.fail(c, err)
		return
	}

	account, err := h.deps.Auth.CreateAccount(c.Request.Context(), service.CreateAccountInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     role,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, newAccountResponse(account))
}

func (h HandlerSet) DeactivateAccount(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		h.badRequest(c, "invalid account id")
		return
	}
	if id == currentAccount(c).ID {
		h.badRequest(c, "cannot deactivate own account")
		return
	}
	if err := h.deps.Auth.Deactivate(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
