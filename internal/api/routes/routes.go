package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/shaobohan917/douyin-toolbox/internal/api/handlers"
)

// Handlers bundles the endpoint handlers the router wires up.
type Handlers struct {
	Video   *handlers.VideoHandler
	History *handlers.HistoryHandler
	Config  *handlers.ConfigHandler
}

// Register mounts all API routes under the given group.
func Register(api *gin.RouterGroup, h Handlers) {
	video := api.Group("/video")
	{
		video.POST("/parse", h.Video.Parse)
		video.POST("/download", h.Video.Download)
		video.GET("/proxy-download", h.Video.ProxyDownload)
		video.POST("/speech-to-text", h.Video.SpeechToText)
	}

	history := api.Group("/history")
	{
		history.GET("", h.History.List)
		history.POST("", h.History.Add)
		history.DELETE("/:id", h.History.Delete)
		history.DELETE("", h.History.Clear)
		history.GET("/stats", h.History.Stats)
		history.GET("/export", h.History.Export)
	}

	config := api.Group("/config")
	{
		config.GET("", h.Config.Get)
		config.POST("", h.Config.Update)
	}
}
