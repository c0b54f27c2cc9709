package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nitinog10/Campus-mitra/internal/models"
	"github.com/nitinog10/Campus-mitra/internal/service/document"
	"github.com/nitinog10/Campus-mitra/pkg/logger"
)

type DocumentHandler struct {
	service     document.DocumentStore
	logger      logger.Logger
	maxFileSize int64
}

// ErrorResponse 定义错误响应结构
type ErrorResponse struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message"`
}

func NewDocumentHandler(service document.DocumentStore, logger logger.Logger, maxFileSize int64) *DocumentHandler {
	return &DocumentHandler{
		service:     service,
		logger:      logger,
		maxFileSize: maxFileSize,
	}
}

// ProcessDocument 上传并索引一个 PDF
func (h *DocumentHandler) ProcessDocument(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.handleError(c, http.StatusBadRequest, "Invalid file upload", err)
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		h.handleError(c, http.StatusBadRequest, "Only PDF files are supported", nil)
		return
	}
	if header.Size > h.maxFileSize {
		h.handleError(c, http.StatusBadRequest, "File size exceeds 20MB limit", nil)
		return
	}

	content, err := io.ReadAll(io.LimitReader(file, h.maxFileSize+1))
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, "Failed to read uploaded file", err)
		return
	}
	if int64(len(content)) > h.maxFileSize {
		h.handleError(c, http.StatusBadRequest, "File size exceeds 20MB limit", nil)
		return
	}

	docID, err := h.service.Ingest(c.Request.Context(), content, header.Filename)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, models.ErrConfiguration) {
			status = http.StatusServiceUnavailable
		}
		h.handleError(c, status, "Error processing document", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"document_id": docID,
		"message":     fmt.Sprintf("Document %s processed successfully", header.Filename),
	})
}

// ListDocuments 列出所有已索引文档
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	documents := h.service.List()
	if len(documents) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"documents": []models.DocumentSummary{},
			"message":   "No documents found. Upload a PDF to get started.",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"documents": documents,
		"count":     len(documents),
	})
}

// GetStatus 查询文档处理状态
func (h *DocumentHandler) GetStatus(c *gin.Context) {
	docID := c.Param("docId")

	status := h.service.Status(docID)
	if status == models.StatusNotFound {
		h.handleError(c, http.StatusNotFound, fmt.Sprintf("Document not found: %s", docID), nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Document %s status: %s", docID, status),
	})
}

// DeleteDocument 删除文档索引
func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	docID := c.Param("docId")

	if err := h.service.Delete(docID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, models.ErrNotFound) {
			status = http.StatusNotFound
		}
		h.handleError(c, status, "Error deleting document", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Document %s deleted successfully", docID),
	})
}

// handleError 统一错误处理
func (h *DocumentHandler) handleError(c *gin.Context, status int, message string, err error) {
	h.logger.Error(message,
		logger.String("path", c.Request.URL.Path),
		logger.Error(err),
	)

	response := ErrorResponse{
		Message: message,
	}
	if err != nil {
		response.Error = err.Error()
	}

	c.JSON(status, response)
}
