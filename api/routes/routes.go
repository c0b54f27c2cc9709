package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nitinog10/Campus-mitra/api/handlers"
	"github.com/nitinog10/Campus-mitra/api/middleware"
)

// SetupRoutes 配置所有路由
func SetupRoutes(r *gin.Engine, h *handlers.Handlers) {
	// 全局中间件
	r.Use(middleware.CORS())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Campusmitra AI Pipeline is running!"})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Service is healthy"})
	})

	api := r.Group("/api")

	// 文档路由组
	docs := api.Group("/documents")
	{
		docs.POST("/process", h.Document.ProcessDocument)
		docs.GET("/list", h.Document.ListDocuments)
		docs.GET("/status/:docId", h.Document.GetStatus)
		docs.DELETE("/:docId", h.Document.DeleteDocument)
	}

	// 问答路由组
	chat := api.Group("/chat")
	{
		chat.POST("/query", h.Chat.Query)
		chat.POST("/search-multiple", h.Chat.SearchMultiple)
	}
}
