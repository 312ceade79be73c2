package recordings

import (
	"github.com/gin-gonic/gin"

	"github.com/LeiShi1313/readrepeat/api/types"
)

// RegisterRoutes registers recording routes under /api
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	router.POST("/sentences/:id/recordings", Create(deps))
	router.GET("/sentences/:id/recordings", List(deps))
	router.GET("/recordings/:id", Get(deps))
	router.DELETE("/recordings/:id", Delete(deps))
}
