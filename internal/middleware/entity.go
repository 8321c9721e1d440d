package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"cuotas/api/internal/authz"
)

// EntitySource tells a gate where a route names the entity it acts on.
// Param is the path parameter bound to Kind, if any. Fields are the names
// looked up in a JSON body and then in the query string.
type EntitySource struct {
	Kind   authz.EntityKind
	Param  string
	Fields []string
}

func RealEstateParam(param string) EntitySource {
	return EntitySource{Kind: authz.EntityRealEstate, Param: param, Fields: []string{"realEstateId", "real_estate_id"}}
}

func ClientParam(param string) EntitySource {
	return EntitySource{Kind: authz.EntityClient, Param: param, Fields: []string{"clientId", "client_id"}}
}

// EntityFrom extracts src's entity id from the path, then the JSON body,
// then the query string. A value that is not a positive integer is still a
// present reference, with id 0, so it is denied rather than ignored. So is
// a JSON body too large to inspect.
func EntityFrom(c *gin.Context, src EntitySource) authz.EntityRef {
	if src.Param != "" {
		if raw := c.Param(src.Param); raw != "" {
			return parseRef(src.Kind, raw)
		}
	}

	fields, tooLarge := jsonBodyFields(c)
	if tooLarge {
		return authz.Ref(src.Kind, 0)
	}
	if fields != nil {
		for _, name := range src.Fields {
			raw, ok := fields[name]
			if !ok {
				continue
			}
			trimmed := bytes.TrimSpace(raw)
			if bytes.Equal(trimmed, []byte("null")) {
				continue
			}
			var s string
			if err := json.Unmarshal(trimmed, &s); err == nil {
				return parseRef(src.Kind, s)
			}
			return parseRef(src.Kind, string(trimmed))
		}
	}

	for _, name := range src.Fields {
		if raw, ok := c.GetQuery(name); ok {
			return parseRef(src.Kind, raw)
		}
	}
	return authz.NoEntity(src.Kind)
}

func parseRef(kind authz.EntityKind, raw string) authz.EntityRef {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return authz.Ref(kind, 0)
	}
	return authz.Ref(kind, id)
}

// maxEntityBody bounds how much of a JSON body is buffered to find an
// entity id.
const maxEntityBody = 1 << 20

type bodyReader struct {
	io.Reader
	io.Closer
}

// jsonBodyFields decodes a JSON object body and puts the body back so the
// handler can bind it again. It returns nil for any other request. A body
// longer than maxEntityBody is restored undecoded and reported as tooLarge.
func jsonBodyFields(c *gin.Context) (fields map[string]json.RawMessage, tooLarge bool) {
	body := c.Request.Body
	if body == nil || body == http.NoBody || c.ContentType() != gin.MIMEJSON {
		return nil, false
	}
	raw, err := io.ReadAll(io.LimitReader(body, maxEntityBody+1))
	c.Request.Body = bodyReader{Reader: io.MultiReader(bytes.NewReader(raw), body), Closer: body}
	if err != nil {
		return nil, false
	}
	if len(raw) > maxEntityBody {
		return nil, true
	}

	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, false
	}
	return fields, false
}
