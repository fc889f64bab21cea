package middleware

import (
	"net/http"
	"regexp"

	"tallerpos/internal/apierror"

	"github.com/gin-gonic/gin"
)

const (
	TerminalIDKey    = "terminal_id"
	TerminalIDHeader = "X-Terminal-ID"
)

var terminalIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// Terminal requires the X-Terminal-ID header that names the till whose cart
// and refund staging the request addresses.
func Terminal() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(TerminalIDHeader)
		if !terminalIDPattern.MatchString(id) {
			c.AbortWithStatusJSON(http.StatusBadRequest, apierror.WithCode("terminal_requerida", "Encabezado X-Terminal-ID ausente o invalido"))
			return
		}
		c.Set(TerminalIDKey, id)
		c.Next()
	}
}

func GetTerminalID(c *gin.Context) string {
	return c.GetString(TerminalIDKey)
}
