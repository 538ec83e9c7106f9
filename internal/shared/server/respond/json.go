package respond

import "github.com/gin-gonic/gin"

// JSON writes payload with the given status. Handlers go through this
// instead of c.JSON so success and error paths share one seam.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}
