package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"cuotas/api/internal/authz"
)

// Gatekeeper turns the admission pipeline into per-route gin gates.
type Gatekeeper struct {
	pipeline     *authz.Pipeline
	log          zerolog.Logger
	exposeDetail bool
	observe      authz.Observer
}

// NewGatekeeper builds gates over pipeline. exposeDetail adds the cause of
// internal errors to responses and must be false in production. observe,
// when set, also sees scope checks made by handlers through Scope.
func NewGatekeeper(pipeline *authz.Pipeline, log zerolog.Logger, exposeDetail bool, observe authz.Observer) *Gatekeeper {
	if observe == nil {
		observe = func(authz.State, error) {}
	}
	return &Gatekeeper{
		pipeline:     pipeline,
		log:          log,
		exposeDetail: exposeDetail,
		observe:      observe,
	}
}

// Require admits callers holding one of roles. No roles means any
// authenticated account.
func (g *Gatekeeper) Require(roles ...authz.Role) gin.HandlerFunc {
	return g.gate(authz.Roles(roles...), nil)
}

// RequireScoped admits callers holding one of roles whose scope covers the
// entity the request names through src.
func (g *Gatekeeper) RequireScoped(src EntitySource, roles ...authz.Role) gin.HandlerFunc {
	return g.gate(authz.Roles(roles...), &src)
}

func (g *Gatekeeper) gate(allowed authz.RoleSet, src *EntitySource) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := authz.Request{
			Token:   BearerToken(c),
			Allowed: allowed,
		}
		if src != nil {
			req.Locate = func() authz.EntityRef { return EntityFrom(c, *src) }
		}

		decision, err := g.pipeline.Admit(c.Request.Context(), req)
		if err != nil {
			g.reject(c, decision.Account, err)
			return
		}

		setCurrentAccount(c, decision.Account)
		c.Next()
	}
}

// Scope checks the current account against an entity a handler resolved
// itself, such as the client owning a loaded installment. It writes the
// rejection and returns false when the account is out of scope.
func (g *Gatekeeper) Scope(c *gin.Context, ref authz.EntityRef) bool {
	account, ok := CurrentAccount(c)
	if !ok {
		g.reject(c, authz.Account{}, &authz.Error{Kind: authz.KindMissingToken})
		return false
	}
	err := g.pipeline.Scopes().Resolve(c.Request.Context(), account, ref)
	g.observe(authz.StateRoleChecked, err)
	if err != nil {
		g.reject(c, account, err)
		return false
	}
	return true
}

// Reject writes err as an authorization failure for the current account.
func (g *Gatekeeper) Reject(c *gin.Context, err error) {
	account, _ := CurrentAccount(c)
	g.reject(c, account, err)
}

func (g *Gatekeeper) reject(c *gin.Context, account authz.Account, err error) {
	kind := authz.KindOf(err)

	event := g.log.Warn()
	if kind == authz.KindInternal {
		event = g.log.Error().Err(err)
	}
	event.
		Str("reason", kind.String()).
		Int64("account_id", account.ID).
		Str("role", account.Role.String()).
		Str("path", c.FullPath()).
		Str("request_id", RequestIDFrom(c)).
		Msg("request rejected")

	if kind.HTTPStatus() == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	c.AbortWithStatusJSON(kind.HTTPStatus(), g.body(err, kind))
}

func (g *Gatekeeper) body(err error, kind authz.Kind) gin.H {
	body := gin.H{"error": kind.String()}

	var detail *authz.Error
	errors.As(err, &detail)
	switch kind {
	case authz.KindInsufficientRole:
		if detail != nil {
			required := make([]string, len(detail.Required))
			for i, r := range detail.Required {
				required[i] = r.String()
			}
			body["required"] = required
			body["actual"] = detail.Actual.String()
		}
	case authz.KindScopeDenied:
		if detail != nil {
			body["role"] = detail.Actual.String()
			body["entityKind"] = string(detail.EntityKind)
			body["entityId"] = detail.EntityID
		}
	case authz.KindInternal:
		if g.exposeDetail && err != nil {
			body["detail"] = err.Error()
		}
	}
	return body
}
