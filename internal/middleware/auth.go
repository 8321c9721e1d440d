package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"cuotas/api/internal/authz"
)

const (
	bearerPrefix      = "Bearer "
	currentAccountKey = "current_account"
)

// BearerToken returns the token of an "Authorization: Bearer <token>"
// header. Any other scheme, spelling or an absent header yields "".
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return ""
	}
	return strings.TrimPrefix(header, bearerPrefix)
}

func setCurrentAccount(c *gin.Context, account authz.Account) {
	c.Set(currentAccountKey, account)
}

// CurrentAccount returns the account admitted by a gate earlier in the
// chain.
func CurrentAccount(c *gin.Context) (authz.Account, bool) {
	v, ok := c.Get(currentAccountKey)
	if !ok {
		return authz.Account{}, false
	}
	account, ok := v.(authz.Account)
	return account, ok
}
