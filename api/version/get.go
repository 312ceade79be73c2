package version

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Set at build time with -ldflags "-X github.com/LeiShi1313/readrepeat/api/version.Version=..."
var (
	Version = "0.1.0"
	Commit  = "dev"
)

// Get handles version requests
// @Summary      Service version
// @Tags         operational
// @Produce      json
// @Success      200 {object} object{name=string,version=string,commit=string,description=string,status=string}
// @Router       /version [get]
func Get() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":        "ReadRepeat API",
			"version":     Version,
			"commit":      Commit,
			"description": "Shadow-reading lessons, audio alignment and worker job queue",
			"status":      "running",
		})
	}
}
