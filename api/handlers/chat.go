package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nitinog10/Campus-mitra/internal/service/chat"
	"github.com/nitinog10/Campus-mitra/pkg/logger"
)

type ChatHandler struct {
	service chat.ChatService
	logger  logger.Logger
}

// ChatRequest 单文档问答请求
type ChatRequest struct {
	Query      string `json:"query" binding:"required"`
	DocumentID string `json:"document_id"`
	SessionID  string `json:"session_id"`
}

// MultiDocumentChatRequest 多文档检索请求
type MultiDocumentChatRequest struct {
	Query       string   `json:"query" binding:"required"`
	DocumentIDs []string `json:"document_ids" binding:"required"`
	SessionID   string   `json:"session_id"`
}

func NewChatHandler(service chat.ChatService, logger logger.Logger) *ChatHandler {
	return &ChatHandler{
		service: service,
		logger:  logger,
	}
}

// Query 处理问答请求。生成失败也返回 200,由 success 字段表达结果。
func (h *ChatHandler) Query(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid chat request",
			logger.String("path", c.Request.URL.Path),
			logger.Error(err),
		)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   err.Error(),
			Message: "Invalid request body",
		})
		return
	}

	result := h.service.Query(c.Request.Context(), req.Query, req.DocumentID, req.SessionID)
	c.JSON(http.StatusOK, result)
}

// SearchMultiple 跨文档检索
func (h *ChatHandler) SearchMultiple(c *gin.Context) {
	var req MultiDocumentChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid multi-document request",
			logger.String("path", c.Request.URL.Path),
			logger.Error(err),
		)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   err.Error(),
			Message: "Invalid request body",
		})
		return
	}

	result := h.service.QueryMulti(c.Request.Context(), req.Query, req.DocumentIDs, req.SessionID)
	c.JSON(http.StatusOK, result)
}
