package ginmw_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	jsoncover "github.com/ShubhamK2003/JSONCover"
	"github.com/ShubhamK2003/JSONCover/jsonvalue"
	ginmw "github.com/ShubhamK2003/JSONCover/middleware/gin"
)

var schema = jsoncover.MustCompile(`{"type":"object","required":["name"],"properties":{"name":{"type":"string","minLength":1}}}`)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/users", ginmw.ValidateJSON(schema, jsoncover.ParseOpt{}), func(c *gin.Context) {
		v, ok := ginmw.GetValue(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		name, _ := v.(*jsonvalue.Object).Get("name")
		c.String(http.StatusOK, name.(string))
	})
	return r
}

func post(r *gin.Engine, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body)))
	return rec
}

func TestValidateJSON(t *testing.T) {
	r := newRouter()

	rec := post(r, `{"name":"ada"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ada", rec.Body.String())

	rec = post(r, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"keywordLocation":"#/required/0"`)

	rec = post(r, `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"parse_error"`)
}
