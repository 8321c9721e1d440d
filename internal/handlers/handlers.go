package handlers

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"cuotas/api/internal/authz"
	"cuotas/api/internal/config"
	"cuotas/api/internal/middleware"
	"cuotas/api/internal/models"
	"cuotas/api/internal/obs"
	"cuotas/api/internal/service"
)

type RealEstateStore interface {
	Create(ctx context.Context, re *models.RealEstate) error
	GetByID(ctx context.Context, id int64) (models.RealEstate, error)
	List(ctx context.Context, limit, offset int) ([]models.RealEstate, error)
	Update(ctx context.Context, re *models.RealEstate) error
	Delete(ctx context.Context, id int64) error
}

type PropertyStore interface {
	Create(ctx context.Context, p *models.Property) error
	GetByID(ctx context.Context, id int64) (models.Property, error)
	ListByRealEstate(ctx context.Context, realEstateID int64, status models.PropertyStatus) ([]models.Property, error)
	Update(ctx context.Context, p *models.Property) error
}

type NotificationStore interface {
	ListByAccount(ctx context.Context, accountID int64, unreadOnly bool, limit, offset int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, accountID int64) error
}

// HealthCheck reports whether one backing service is reachable.
type HealthCheck func(ctx context.Context) error

type Dependencies struct {
	Gate          *middleware.Gatekeeper
	Auth          *service.AuthService
	Clients       *service.ClientService
	Installments  *service.InstallmentService
	Payments      *service.PaymentService
	RealEstates   RealEstateStore
	Properties    PropertyStore
	Notifications NotificationStore
	Checks        map[string]HealthCheck
}

type HandlerSet struct {
	log  zerolog.Logger
	cfg  *config.AppConfig
	deps Dependencies
	gate *middleware.Gatekeeper
}

func NewHandlerSet(log zerolog.Logger, cfg *config.AppConfig, deps Dependencies) HandlerSet {
	return HandlerSet{
		log:  log,
		cfg:  cfg,
		deps: deps,
		gate: deps.Gate,
	}
}

const (
	sysAdmin = authz.RoleSystemAdmin
	reAdmin  = authz.RoleRealEstateAdmin
	seller   = authz.RoleSeller
	client   = authz.RoleClient
)

func (h HandlerSet) Register(router *gin.RouterGroup) {
	g := h.gate
	v1 := router.Group("/v1")

	v1.GET("/healthz", h.Health)
	v1.GET("/metrics", gin.WrapH(obs.Handler()))

	auth := v1.Group("/auth")
	{
		limit := middleware.RateLimit(h.cfg.Security.LoginRatePerSecond, h.cfg.Security.LoginBurst)
		auth.POST("/register", limit, h.SignUp)
		auth.POST("/login", limit, h.Login)
		auth.GET("/me", g.Require(), h.Me)
	}

	v1.GET("/accounts", g.Require(sysAdmin, reAdmin), h.ListAccounts)
	v1.POST("/accounts", g.Require(sysAdmin), h.CreateAccount)
	v1.POST("/accounts/:id/deactivate", g.Require(sysAdmin), h.DeactivateAccount)
	v1.GET("/sellers", g.Require(sysAdmin, reAdmin), h.ListSellers)

	v1.GET("/real-estates", g.Require(sysAdmin, reAdmin), h.ListRealEstates)
	v1.POST("/real-estates", g.Require(sysAdmin), h.CreateRealEstate)
	v1.GET("/real-estates/:id", g.RequireScoped(middleware.RealEstateParam("id"), sysAdmin, reAdmin), h.GetRealEstate)
	v1.PUT("/real-estates/:id", g.RequireScoped(middleware.RealEstateParam("id"), sysAdmin, reAdmin), h.UpdateRealEstate)
	v1.DELETE("/real-estates/:id", g.Require(sysAdmin), h.DeleteRealEstate)

	v1.GET("/real-estates/:id/properties", g.RequireScoped(middleware.RealEstateParam("id"), sysAdmin, reAdmin), h.ListProperties)
	v1.POST("/real-estates/:id/properties", g.RequireScoped(middleware.RealEstateParam("id"), sysAdmin, reAdmin), h.CreateProperty)
	v1.GET("/properties/:id", g.Require(sysAdmin, reAdmin), h.GetProperty)
	v1.PUT("/properties/:id", g.Require(sysAdmin, reAdmin), h.UpdateProperty)

	v1.POST("/clients", g.RequireScoped(middleware.RealEstateParam(""), sysAdmin, reAdmin), h.CreateClient)
	v1.GET("/clients", g.RequireScoped(middleware.RealEstateParam(""), sysAdmin, reAdmin, seller), h.ListClients)
	v1.GET("/clients/:id", g.RequireScoped(middleware.ClientParam("id"), sysAdmin, reAdmin, seller), h.GetClient)
	v1.PUT("/clients/:id/seller", g.RequireScoped(middleware.ClientParam("id"), sysAdmin, reAdmin), h.AssignSeller)

	v1.POST("/clients/:id/installments", g.RequireScoped(middleware.ClientParam("id"), sysAdmin, reAdmin), h.CreatePlan)
	v1.GET("/clients/:id/installments", g.RequireScoped(middleware.ClientParam("id"), sysAdmin, reAdmin, seller), h.ListClientInstallments)
	v1.GET("/installments/:id", g.Require(), h.GetInstallment)

	v1.POST("/installments/:id/payments", g.Require(sysAdmin, reAdmin, client), h.SubmitPayment)
	v1.GET("/installments/:id/payments", g.Require(), h.ListInstallmentPayments)
	v1.GET("/payments/:id", g.Require(), h.GetPayment)
	v1.POST("/payments/:id/review", g.Require(sysAdmin, reAdmin), h.ReviewPayment)

	me := v1.Group("/me")
	{
		me.GET("/installments", g.Require(client), h.MyInstallments)
		me.GET("/payments", g.Require(client), h.MyPayments)
		me.GET("/notifications", g.Require(), h.MyNotifications)
		me.POST("/notifications/:id/read", g.Require(), h.MarkNotificationRead)
	}
}

// pathID parses a positive integer path parameter.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// queryID parses an optional positive integer query parameter. An absent
// parameter yields zero.
func queryID(c *gin.Context, name string) (int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func paging(c *gin.Context) (limit, offset int) {
	limit = 50
	if perPage := c.Query("perPage"); perPage != "" {
		if v, err := strconv.Atoi(perPage); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}
	if page := c.Query("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 1 {
			offset = (v - 1) * limit
		}
	}
	return limit, offset
}

// clientInScope checks the current account against a loaded client. Clients
// may only reach their own record; other roles go through scope resolution
// on both the client and its real estate.
func (h HandlerSet) clientInScope(c *gin.Context, record models.Client) bool {
	account, ok := middleware.CurrentAccount(c)
	if !ok {
		h.gate.Reject(c, &authz.Error{Kind: authz.KindMissingToken})
		return false
	}
	if account.Role == authz.RoleClient {
		if record.AccountID != account.ID {
			h.fail(c, service.ErrNotOwner)
			return false
		}
		return true
	}
	return h.gate.Scope(c, authz.Ref(authz.EntityClient, record.ID)) &&
		h.gate.Scope(c, authz.Ref(authz.EntityRealEstate, record.RealEstateID))
}

// installmentInScope loads the installment named by the id path parameter
// together with its client and checks the caller may act on it.
func (h HandlerSet) installmentInScope(c *gin.Context) (models.Installment, models.Client, bool) {
	id, ok := pathID(c, "id")
	if !ok {
		h.badRequest(c, "invalid installment id")
		return models.Installment{}, models.Client{}, false
	}
	inst, err := h.deps.Installments.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return models.Installment{}, models.Client{}, false
	}
	record, err := h.deps.Clients.Get(c.Request.Context(), inst.ClientID)
	if err != nil {
		h.fail(c, err)
		return models.Installment{}, models.Client{}, false
	}
	if !h.clientInScope(c, record) {
		return models.Installment{}, models.Client{}, false
	}
	return inst, record, true
}

func currentAccount(c *gin.Context) authz.Account {
	account, _ := middleware.CurrentAccount(c)
	return account
}
