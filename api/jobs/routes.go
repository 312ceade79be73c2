package jobs

import (
	"github.com/gin-gonic/gin"

	"github.com/LeiShi1313/readrepeat/api/types"
)

// RegisterRoutes registers the job status routes
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	router.GET("", List(deps))
	router.GET("/:id", Get(deps))
}

// RegisterWorkerRoutes registers the worker poll/report protocol. The group is
// expected to carry worker authentication and rate limiting.
func RegisterWorkerRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	router.GET("/poll", Poll(deps))
	router.POST("/poll", Report(deps))
}
