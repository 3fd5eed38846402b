package ginmw

import (
	"net/http"

	"github.com/gin-gonic/gin"
	gobind "github.com/reoring/gobind"
	"github.com/reoring/gobind/middleware"
)

// BindJSON decodes the request body with b using opt (or DefaultDecodeOpt when
// zero value), stores Decoded[T] in the context, and on failure returns 400
// with the issue payload.
func BindJSON[T any](b *gobind.TypeBinding[T], opt gobind.DecodeOpt) gin.HandlerFunc {
	return func(c *gin.Context) {
		db, err := middleware.DecodeRequest(c.Request, b, opt)
		if err != nil {
			c.JSON(http.StatusBadRequest, middleware.ErrorBody(err))
			c.Abort()
			return
		}
		c.Request = c.Request.WithContext(middleware.ContextWithDecoded(c.Request.Context(), db))
		c.Next()
	}
}

// GetDecoded fetches Decoded[T] from gin.Context.
func GetDecoded[T any](c *gin.Context) (gobind.Decoded[T], bool) {
	return middleware.DecodedFromContext[T](c.Request.Context())
}
