package readProbe

import (
	"calorie-tracker/controllers/check"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Probe answers 503 until the database accepts connections.
func Probe(health *check.CheckController) gin.HandlerFunc {
	return func(c *gin.Context) {
		if status := health.PingDatabase(); status != "ok" {
			c.JSON(http.StatusServiceUnavailable, check.AliveResponse{Success: false, Message: status})
			return
		}
		c.JSON(http.StatusOK, check.AliveResponse{Success: true, Message: "probe success"})
	}
}
