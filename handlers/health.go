package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"serenity/utils"
)

// HealthCheck reports the last observed health snapshot. The snapshot
// is refreshed by the background monitor, so this stays cheap.
func HealthCheck(c *gin.Context) {
	status := utils.GetHealthStatus()
	code := http.StatusOK
	if !status.Mongo {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}
