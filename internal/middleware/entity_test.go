package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"cuotas/api/internal/authz"
)

func extract(t *testing.T, target, body string, src EntitySource) authz.EntityRef {
	t.Helper()
	var got authz.EntityRef
	r := gin.New()
	handler := func(c *gin.Context) {
		got = EntityFrom(c, src)
		c.Status(http.StatusNoContent)
	}
	r.POST("/real-estates/:id/items", handler)
	r.POST("/items", handler)

	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	r.ServeHTTP(httptest.NewRecorder(), req)
	return got
}

func TestEntityFromPriority(t *testing.T) {
	src := RealEstateParam("id")

	got := extract(t, "/real-estates/3/items?realEstateId=9", `{"realEstateId": 7}`, src)
	assert.Equal(t, authz.Ref(authz.EntityRealEstate, 3), got, "path wins")

	got = extract(t, "/items?realEstateId=9", `{"realEstateId": 7}`, src)
	assert.Equal(t, authz.Ref(authz.EntityRealEstate, 7), got, "body beats query")

	got = extract(t, "/items?real_estate_id=9", `{"name": "x"}`, src)
	assert.Equal(t, authz.Ref(authz.EntityRealEstate, 9), got, "query fallback")

	got = extract(t, "/items", `{"real_estate_id": "11"}`, src)
	assert.Equal(t, authz.Ref(authz.EntityRealEstate, 11), got, "snake case and string ids")
}

func TestEntityFromAbsentAndInvalid(t *testing.T) {
	src := ClientParam("")

	got := extract(t, "/items", "", src)
	assert.Equal(t, authz.NoEntity(authz.EntityClient), got)
	assert.False(t, got.Present)

	got = extract(t, "/items", `{"clientId": null}`, src)
	assert.False(t, got.Present)

	for _, body := range []string{`{"clientId": "abc"}`, `{"clientId": -4}`, `{"clientId": 1.5}`, `{"clientId": true}`} {
		got = extract(t, "/items", body, src)
		assert.Equal(t, authz.Ref(authz.EntityClient, 0), got, body)
	}

	got = extract(t, "/items?clientId=", "", src)
	assert.Equal(t, authz.Ref(authz.EntityClient, 0), got)
}

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"Bearer abc":  "abc",
		"bearer abc":  "",
		"Bearer  abc": " abc",
		"Basic abc":   "",
		"":            "",
	}
	for header, want := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			c.Request.Header.Set("Authorization", header)
		}
		assert.Equal(t, want, BearerToken(c), header)
	}
}
