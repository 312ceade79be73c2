package lessons

import (
	"github.com/gin-gonic/gin"

	"github.com/LeiShi1313/readrepeat/api/types"
)

// RegisterRoutes registers lesson routes
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	router.POST("", Create(deps))
	router.GET("", List(deps))
	router.GET("/:id", Get(deps))
	router.PATCH("/:id", Edit(deps))
	router.DELETE("/:id", Delete(deps))

	// Pipeline actions
	router.POST("/:id/audio", AttachAudio(deps))
	router.POST("/:id/tts", StartSynthesis(deps))
	router.POST("/:id/reprocess", Reprocess(deps))
	router.POST("/:id/cancel", Cancel(deps))
	router.POST("/:id/finetune", SaveFineTune(deps))

	router.GET("/:id/jobs", Jobs(deps))
	router.GET("/:id/waveform", GetWaveform(deps))
}
