package echomw

import (
	"net/http"

	"github.com/labstack/echo/v4"

	jsoncover "github.com/ShubhamK2003/JSONCover"
	"github.com/ShubhamK2003/JSONCover/middleware"
)

// ValidateJSON validates the request body against s, stores the parsed value
// in the request context on success, or answers 400 with the failure
// payload. A zero opt means middleware.DefaultParseOpt.
func ValidateJSON(s *jsoncover.Schema, opt jsoncover.ParseOpt) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			v, payload := middleware.DecodeAndValidate(ctx, s, c.Request().Body, opt)
			if payload != nil {
				return c.JSON(http.StatusBadRequest, payload)
			}
			c.SetRequest(c.Request().WithContext(middleware.ContextWithValue(ctx, v)))
			return next(c)
		}
	}
}

// GetValue fetches the validated body from echo.Context.
func GetValue(c echo.Context) (any, bool) {
	return middleware.ValueFromContext(c.Request().Context())
}
