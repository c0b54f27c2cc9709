package chat

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/nitinog10/Campus-mitra/internal/llm"
	"github.com/nitinog10/Campus-mitra/internal/models"
	"github.com/nitinog10/Campus-mitra/pkg/logger"
	"golang.org/x/sync/errgroup"
)

const (
	notConfiguredMsg = "OpenAI API key is not configured. Please set OPENAI_API_KEY environment variable."
	noContentMsg     = "No content found in any of the documents for your query."

	previewLength = 100
)

type Service struct {
	retriever PassageRetriever
	generator Generator
	memory    *Memory
	memoizer  *Memoizer
	logger    logger.Logger
	config    *ServiceConfig
}

type ServiceConfig struct {
	// Configured reports whether the generation credential is available.
	Configured bool
	// ChatModel answers scope-less queries; RAGModel handles
	// document-grounded ones.
	ChatModel string
	RAGModel  string
	// SearchK passages are retrieved per document.
	SearchK int
	// MaxPassages caps the merged context for multi-document queries.
	MaxPassages int
	// HistoryTurns bounds the transcript included in prompts.
	HistoryTurns int
}

func NewService(
	retriever PassageRetriever,
	generator Generator,
	memory *Memory,
	memoizer *Memoizer,
	log logger.Logger,
	cfg *ServiceConfig,
) ChatService {
	if cfg == nil {
		cfg = &ServiceConfig{Configured: true}
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = "gpt-3.5-turbo"
	}
	if cfg.RAGModel == "" {
		cfg.RAGModel = "gpt-4o-mini"
	}
	if cfg.SearchK <= 0 {
		cfg.SearchK = 2
	}
	if cfg.MaxPassages <= 0 {
		cfg.MaxPassages = 10
	}
	if cfg.HistoryTurns <= 0 {
		cfg.HistoryTurns = 3
	}

	return &Service{
		retriever: retriever,
		generator: generator,
		memory:    memory,
		memoizer:  memoizer,
		logger:    log,
		config:    cfg,
	}
}

// Query 回答单文档（或无文档）问题
func (s *Service) Query(ctx context.Context, query, documentID, sessionID string) *models.ChatResult {
	if !s.config.Configured {
		return failure(notConfiguredMsg)
	}

	history := ""
	if sessionID != "" {
		history = s.memory.History(sessionID, s.config.HistoryTurns)
	}

	if documentID == "" {
		return s.generalChat(ctx, query, history, sessionID)
	}

	chunks, err := s.retriever.Retrieve(ctx, documentID, query, s.config.SearchK)
	if err != nil {
		s.logger.Error("Failed to retrieve passages",
			logger.String("docId", documentID),
			logger.Error(err),
		)
		return failure(fmt.Sprintf("Error generating response: %v", err))
	}
	if len(chunks) == 0 {
		return failureWithEmptySources(noContentMsg)
	}

	sources := make([]models.Source, len(chunks))
	extracts := make([]string, len(chunks))
	for i, chunk := range chunks {
		sources[i] = buildSource(chunk, "", rankScore(i))
		extracts[i] = chunk.Content
	}

	key := s.memoizer.Key(query, []string{documentID})
	if cached, ok := s.memoizer.Get(key); ok {
		s.logger.Debug("Using memoized response",
			logger.String("docId", documentID),
		)
		return &cached
	}

	prompt := buildPrompt(historyOrSentinel(history), strings.Join(extracts, "\n"), query)
	raw, err := s.generate(ctx, s.config.RAGModel, ragSystemPrompt, prompt, 1500)
	if err != nil {
		return failure(fmt.Sprintf("Error generating response: %v", err))
	}

	answer, suggestions := parseResponse(raw)
	if sessionID != "" {
		s.memory.Append(sessionID, query, answer)
	}

	result := &models.ChatResult{
		Success:     true,
		Response:    answer,
		ContentType: "markdown",
		Sources:     sources,
		Suggestions: suggestions,
	}
	s.memoizer.Put(key, *result)
	return result
}

// QueryMulti 跨多个文档检索并合并作答。单个文档失败只会被跳过。
func (s *Service) QueryMulti(ctx context.Context, query string, documentIDs []string, sessionID string) *models.ChatResult {
	if !s.config.Configured {
		return failure(notConfiguredMsg)
	}

	type passage struct {
		source  models.Source
		content string
	}

	// Per-document result slots keep the merge deterministic regardless
	// of goroutine completion order.
	perDoc := make([][]passage, len(documentIDs))
	g, gctx := errgroup.WithContext(ctx)
	for i, docID := range documentIDs {
		i, docID := i, docID
		g.Go(func() error {
			chunks, err := s.retriever.Retrieve(gctx, docID, query, s.config.SearchK)
			if err != nil {
				// One missing or corrupt index must not fail the
				// whole request.
				s.logger.Warn("Skipping document in multi-document search",
					logger.String("docId", docID),
					logger.Error(err),
				)
				return nil
			}
			passages := make([]passage, len(chunks))
			for j, chunk := range chunks {
				passages[j] = passage{
					source:  buildSource(chunk, docID, rankScore(j)),
					content: chunk.Content,
				}
			}
			perDoc[i] = passages
			return nil
		})
	}
	_ = g.Wait()

	var merged []passage
	for _, passages := range perDoc {
		merged = append(merged, passages...)
	}
	if len(merged) == 0 {
		return failureWithEmptySources(noContentMsg)
	}

	sort.SliceStable(merged, func(a, b int) bool {
		return merged[a].source.RelevanceScore > merged[b].source.RelevanceScore
	})
	if len(merged) > s.config.MaxPassages {
		merged = merged[:s.config.MaxPassages]
	}

	sources := make([]models.Source, len(merged))
	extracts := make([]string, len(merged))
	for i, p := range merged {
		sources[i] = p.source
		extracts[i] = p.content
	}

	key := s.memoizer.Key(query, documentIDs)
	if cached, ok := s.memoizer.Get(key); ok {
		s.logger.Debug("Using memoized multi-document response")
		return &cached
	}

	history := ""
	if sessionID != "" {
		history = s.memory.History(sessionID, s.config.HistoryTurns)
	}

	prompt := buildPrompt(historyOrSentinel(history), strings.Join(extracts, "\n"), query)
	raw, err := s.generate(ctx, s.config.RAGModel, multiSystemPrompt, prompt, 1500)
	if err != nil {
		return failure(fmt.Sprintf("Error searching multiple documents: %v", err))
	}

	answer, suggestions := parseResponse(raw)
	if sessionID != "" {
		s.memory.Append(sessionID, query, answer)
	}

	result := &models.ChatResult{
		Success:     true,
		Response:    answer,
		ContentType: "markdown",
		Sources:     sources,
		Suggestions: suggestions,
	}
	s.memoizer.Put(key, *result)
	return result
}

// generalChat handles scope-less queries: no retrieval, no citations, raw
// generation output passed through.
func (s *Service) generalChat(ctx context.Context, query, history, sessionID string) *models.ChatResult {
	hasContext := history != "" && history != noContextSentinel

	content := query
	if hasContext {
		content = fmt.Sprintf("Previous conversation context:\n%s\n\nCurrent question: %s", history, query)
	}

	// Memoize only context-free queries; a transcript makes the answer
	// session-specific.
	var key string
	if !hasContext {
		key = s.memoizer.Key(query, nil)
		if cached, ok := s.memoizer.Get(key); ok {
			s.logger.Debug("Using memoized response for general query")
			return &cached
		}
	}

	raw, err := s.generator.Complete(ctx, s.config.ChatModel, []llm.Message{
		{Role: "user", Content: content},
	}, 1024)
	if err != nil {
		s.logger.Error("Generation backend call failed",
			logger.Error(fmt.Errorf("%w: %v", models.ErrGeneration, err)),
		)
		return failure(fmt.Sprintf("Error generating response: %v", err))
	}

	if sessionID != "" {
		s.memory.Append(sessionID, query, raw)
	}

	result := &models.ChatResult{
		Success:     true,
		Response:    raw,
		ContentType: "markdown",
	}
	if !hasContext {
		s.memoizer.Put(key, *result)
	}
	return result
}

func (s *Service) generate(ctx context.Context, model, system, prompt string, maxTokens int) (string, error) {
	raw, err := s.generator.Complete(ctx, model, []llm.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: prompt},
	}, maxTokens)
	if err != nil {
		s.logger.Error("Generation backend call failed",
			logger.Error(fmt.Errorf("%w: %v", models.ErrGeneration, err)),
		)
		return "", err
	}
	return raw, nil
}

// rankScore derives the displayed relevance from rank position: the first
// result gets 1.0, the second 0.9 and so on. The retrieval ranking itself
// is the backend's.
func rankScore(rank int) float64 {
	return 1.0 - float64(rank)*0.1
}

func buildSource(chunk models.Chunk, docID string, score float64) models.Source {
	preview := chunk.Content
	if runes := []rune(preview); len(runes) > previewLength {
		preview = string(runes[:previewLength]) + "..."
	}
	return models.Source{
		Filename:       chunk.Filename,
		Page:           chunk.Page,
		Chunk:          chunk.Index,
		ContentPreview: preview,
		DocumentID:     docID,
		RelevanceScore: score,
		Title:          fmt.Sprintf("%s - Page %d", chunk.Filename, chunk.Page),
	}
}

func historyOrSentinel(history string) string {
	if history == "" {
		return noContextSentinel
	}
	return history
}

func failure(msg string) *models.ChatResult {
	return &models.ChatResult{
		Success:     false,
		Response:    msg,
		ContentType: "markdown",
	}
}

// failureWithEmptySources keeps Sources/Suggestions non-nil so the caller
// can tell "searched and found nothing" from "never searched".
func failureWithEmptySources(msg string) *models.ChatResult {
	return &models.ChatResult{
		Success:     false,
		Response:    msg,
		ContentType: "markdown",
		Sources:     []models.Source{},
		Suggestions: []string{},
	}
}
