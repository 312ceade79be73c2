package audiofiles

import (
	"github.com/gin-gonic/gin"

	"github.com/LeiShi1313/readrepeat/api/types"
)

// RegisterRoutes registers audio file routes
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	router.POST("", Create(deps))
	router.GET("", List(deps))
	router.GET("/:id", Get(deps))
	router.DELETE("/:id", Delete(deps))
}
