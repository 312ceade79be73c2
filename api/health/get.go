package health

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/LeiShi1313/readrepeat/api/types"
)

// Get handles health check requests
// @Summary      Health check
// @Description  Reports service status and database connectivity
// @Tags         operational
// @Produce      json
// @Success      200 {object} object{status=string,timestamp=string,database=object} "Healthy"
// @Failure      503 {object} object{status=string,timestamp=string,database=object} "Database unreachable"
// @Router       /health [get]
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		response := gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}

		dbStatus := getDatabaseStatus(deps)
		response["database"] = dbStatus
		if dbStatus["status"] == "unhealthy" {
			status = http.StatusServiceUnavailable
			response["status"] = "degraded"
		}

		c.JSON(status, response)
	}
}

// getDatabaseStatus returns the database connection status
func getDatabaseStatus(deps *types.Dependencies) gin.H {
	if deps == nil || deps.DB == nil || deps.DB.DB == nil {
		return gin.H{"status": "not configured"}
	}

	if err := deps.DB.HealthCheck(); err != nil {
		return gin.H{"status": "unhealthy", "error": err.Error()}
	}

	return gin.H{"status": "healthy", "driver": deps.DB.Driver}
}
