package ginmw

import (
	"net/http"

	"github.com/gin-gonic/gin"

	jsoncover "github.com/ShubhamK2003/JSONCover"
	"github.com/ShubhamK2003/JSONCover/middleware"
)

// ValidateJSON validates the request body against s (opt, or
// middleware.DefaultParseOpt when zero), stores the parsed value in the
// request context, and aborts with 400 on failure.
func ValidateJSON(s *jsoncover.Schema, opt jsoncover.ParseOpt) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, payload := middleware.DecodeAndValidate(c.Request.Context(), s, c.Request.Body, opt)
		if payload != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, payload)
			return
		}
		c.Request = c.Request.WithContext(middleware.ContextWithValue(c.Request.Context(), v))
		c.Next()
	}
}

// GetValue fetches the validated body from gin.Context.
func GetValue(c *gin.Context) (any, bool) {
	return middleware.ValueFromContext(c.Request.Context())
}
