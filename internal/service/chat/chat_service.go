package chat

import (
	"context"

	"github.com/nitinog10/Campus-mitra/internal/llm"
	"github.com/nitinog10/Campus-mitra/internal/models"
)

// ChatService answers natural-language questions, optionally grounded in
// one or more ingested documents. All failures come back as structured
// results so the transport layer has a single shape to render.
type ChatService interface {
	Query(ctx context.Context, query, documentID, sessionID string) *models.ChatResult
	QueryMulti(ctx context.Context, query string, documentIDs []string, sessionID string) *models.ChatResult
}

// PassageRetriever is the slice of the document store the synthesizer
// needs: resolve a document and pull its best-matching passages.
type PassageRetriever interface {
	Retrieve(ctx context.Context, docID, query string, k int) ([]models.Chunk, error)
}

// Generator produces text from chat messages. *llm.Client satisfies this.
type Generator interface {
	Complete(ctx context.Context, model string, messages []llm.Message, maxTokens int) (string, error)
}
