package echomw

import (
	"net/http"

	"github.com/labstack/echo/v4"
	gobind "github.com/reoring/gobind"
	"github.com/reoring/gobind/middleware"
)

// BindJSON decodes request JSON with b, stores Decoded[T] in context on
// success, or returns 400 with the issue payload.
func BindJSON[T any](b *gobind.TypeBinding[T], opt gobind.DecodeOpt) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			db, err := middleware.DecodeRequest(c.Request(), b, opt)
			if err != nil {
				return c.JSON(http.StatusBadRequest, middleware.ErrorBody(err))
			}
			c.SetRequest(c.Request().WithContext(middleware.ContextWithDecoded(c.Request().Context(), db)))
			return next(c)
		}
	}
}

// GetDecoded fetches Decoded[T] from echo.Context.
func GetDecoded[T any](c echo.Context) (gobind.Decoded[T], bool) {
	return middleware.DecodedFromContext[T](c.Request().Context())
}
