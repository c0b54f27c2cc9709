package handlers

import (
	"github.com/nitinog10/Campus-mitra/internal/service/chat"
	"github.com/nitinog10/Campus-mitra/internal/service/document"
	"github.com/nitinog10/Campus-mitra/pkg/logger"
)

type Handlers struct {
	Document *DocumentHandler
	Chat     *ChatHandler
}

func NewHandlers(
	documentService document.DocumentStore,
	chatService chat.ChatService,
	logger logger.Logger,
	maxFileSize int64,
) *Handlers {
	return &Handlers{
		Document: NewDocumentHandler(documentService, logger, maxFileSize),
		Chat:     NewChatHandler(chatService, logger),
	}
}
