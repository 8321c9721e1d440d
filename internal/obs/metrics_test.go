package obs

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"cuotas/api/internal/authz"
)

func TestObserveAuthz(t *testing.T) {
	before := testutil.ToFloat64(authzDecisions.WithLabelValues("scope", "scope_denied"))
	ObserveAuthz(authz.StateRoleChecked, &authz.Error{Kind: authz.KindScopeDenied})
	ObserveAuthz(authz.StateRoleChecked, &authz.Error{Kind: authz.KindScopeDenied})
	assert.Equal(t, before+2, testutil.ToFloat64(authzDecisions.WithLabelValues("scope", "scope_denied")))

	before = testutil.ToFloat64(authzDecisions.WithLabelValues("verify", "pass"))
	ObserveAuthz(authz.StateUnauthenticated, nil)
	assert.Equal(t, before+1, testutil.ToFloat64(authzDecisions.WithLabelValues("verify", "pass")))

	before = testutil.ToFloat64(authzDecisions.WithLabelValues("role", "internal_error"))
	ObserveAuthz(authz.StateAuthenticated, errors.New("boom"))
	assert.Equal(t, before+1, testutil.ToFloat64(authzDecisions.WithLabelValues("role", "internal_error")))
}

func TestInstrumentUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Instrument())
	r.GET("/clients/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/clients/:id", "204"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/clients/7", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/clients/8", nil))
	assert.Equal(t, before+2, testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/clients/:id", "204")))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.GreaterOrEqual(t, testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "404")), float64(1))
}

func TestInitIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Init()
		Init()
	})
}
