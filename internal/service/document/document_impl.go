package document

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/nitinog10/Campus-mitra/internal/cache"
	"github.com/nitinog10/Campus-mitra/internal/models"
	"github.com/nitinog10/Campus-mitra/internal/vectorstore"
	"github.com/nitinog10/Campus-mitra/pkg/logger"
)

type DocumentService struct {
	parser  PageParser
	chunker Chunker
	store   *vectorstore.Store
	cache   *cache.Cache
	logger  logger.Logger
	config  *ServiceConfig
}

type ServiceConfig struct {
	// StorageRoot is the directory holding one index directory per document.
	StorageRoot string
	// Configured reports whether the embedding credential is available.
	// Checked before any chunking work so ingestion fails fast.
	Configured bool
}

func NewService(
	parser PageParser,
	chunker Chunker,
	store *vectorstore.Store,
	c *cache.Cache,
	log logger.Logger,
	cfg *ServiceConfig,
) DocumentStore {
	if cfg == nil {
		cfg = &ServiceConfig{
			StorageRoot: "vector_stores",
		}
	}

	return &DocumentService{
		parser:  parser,
		chunker: chunker,
		store:   store,
		cache:   c,
		logger:  log,
		config:  cfg,
	}
}

// Ingest 处理上传的 PDF：解析 -> 分块 -> 建索引 -> 落盘 -> 注册缓存
func (s *DocumentService) Ingest(ctx context.Context, content []byte, filename string) (string, error) {
	if !s.config.Configured {
		return "", models.ErrConfiguration
	}

	s.logger.Info("Starting document ingestion",
		logger.String("filename", filename),
		logger.Int("size", len(content)),
	)

	pages, err := s.parser.Parse(ctx, content, filename)
	if err != nil {
		return "", err
	}

	chunks := s.chunker.ChunkPages(pages, filename)
	if len(chunks) == 0 {
		return "", fmt.Errorf("%w: no valid document chunks could be created", models.ErrIngest)
	}

	idx, err := s.store.Build(ctx, chunks)
	if err != nil {
		return "", fmt.Errorf("failed to build vector index: %w", err)
	}

	docID := uuid.New().String()
	dir := filepath.Join(s.config.StorageRoot, docID)

	if err := s.store.Persist(idx, dir); err != nil {
		_ = os.RemoveAll(dir)
		return "", fmt.Errorf("failed to persist vector index: %w", err)
	}

	sidecar := models.SidecarMetadata{
		Filename:  filename,
		DocID:     docID,
		Status:    models.StatusProcessed,
		Chunks:    len(chunks),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := writeSidecar(dir, sidecar); err != nil {
		_ = os.RemoveAll(dir)
		return "", fmt.Errorf("failed to write metadata sidecar: %w", err)
	}

	info := models.DocumentInfo{
		Filename: filename,
		Status:   models.StatusProcessed,
		Chunks:   len(chunks),
		Path:     dir,
	}
	if err := s.cache.SetDocument(docID, info); err != nil {
		// The sidecar on disk is authoritative; reconciliation will
		// restore the cache entry.
		s.logger.Error("Failed to register document in cache",
			logger.String("docId", docID),
			logger.Error(err),
		)
	}

	s.logger.Info("Document ingestion completed",
		logger.String("docId", docID),
		logger.String("filename", filename),
		logger.Int("chunkCount", len(chunks)),
	)

	return docID, nil
}

// Resolve 查找并加载文档索引，缓存未命中时回落到磁盘自愈
func (s *DocumentService) Resolve(ctx context.Context, docID string) (*vectorstore.Index, error) {
	dir := filepath.Join(s.config.StorageRoot, docID)

	info, ok := s.cache.GetDocument(docID)
	if ok {
		dir = info.Path
	} else {
		sidecar, err := readSidecar(dir)
		if err == nil {
			// Self-healing lookup: re-register from the sidecar.
			rebuilt := models.DocumentInfo{
				Filename: sidecar.Filename,
				Status:   models.StatusProcessed,
				Chunks:   sidecar.Chunks,
				Path:     dir,
			}
			if rebuilt.Filename == "" {
				rebuilt.Filename = "Unknown Document"
			}
			if cacheErr := s.cache.SetDocument(docID, rebuilt); cacheErr != nil {
				s.logger.Error("Failed to rebuild cache entry",
					logger.String("docId", docID),
					logger.Error(cacheErr),
				)
			} else {
				s.logger.Info("Rebuilt cache entry from sidecar",
					logger.String("docId", docID),
				)
			}
		} else if !vectorstore.HasIndex(dir) {
			return nil, fmt.Errorf("%w: %s", models.ErrNotFound, docID)
		}
	}

	if !vectorstore.HasIndex(dir) {
		return nil, fmt.Errorf("%w: no vector index at %s", models.ErrNotFound, dir)
	}

	idx, err := s.store.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load vector index for %s: %w", docID, err)
	}
	return idx, nil
}

// Retrieve 对单个文档做相似度检索
func (s *DocumentService) Retrieve(ctx context.Context, docID, query string, k int) ([]models.Chunk, error) {
	idx, err := s.Resolve(ctx, docID)
	if err != nil {
		return nil, err
	}
	return s.store.Search(ctx, idx, query, k)
}

// List 只读缓存，不扫磁盘
func (s *DocumentService) List() []models.DocumentSummary {
	docs := s.cache.Documents()

	summaries := make([]models.DocumentSummary, 0, len(docs))
	for id, info := range docs {
		summaries = append(summaries, models.DocumentSummary{
			DocID:    id,
			Filename: info.Filename,
			Status:   info.Status,
			Chunks:   info.Chunks,
			Path:     info.Path,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].DocID < summaries[j].DocID
	})
	return summaries
}

func (s *DocumentService) Status(docID string) models.DocumentStatus {
	info, ok := s.cache.GetDocument(docID)
	if !ok {
		return models.StatusNotFound
	}
	return info.Status
}

// Delete 删除索引目录和缓存条目。目录删除总是尝试，避免磁盘与缓存漂移。
func (s *DocumentService) Delete(docID string) error {
	dir := filepath.Join(s.config.StorageRoot, docID)

	info, cached := s.cache.GetDocument(docID)
	if cached {
		dir = info.Path
	}

	if _, err := os.Stat(dir); err == nil {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("%w: %v", models.ErrDeletion, err)
		}
		s.logger.Info("Deleted vector index directory",
			logger.String("docId", docID),
			logger.String("path", dir),
		)
	} else if !cached {
		return fmt.Errorf("%w: %s", models.ErrNotFound, docID)
	}

	if cached {
		if err := s.cache.DeleteDocument(docID); err != nil {
			s.logger.Error("Failed to remove document from cache",
				logger.String("docId", docID),
				logger.Error(err),
			)
		}
	}

	return nil
}

// ReconcileFromDisk 以磁盘为准重建缓存。缺失或损坏的 sidecar 用默认元数据代替。
func (s *DocumentService) ReconcileFromDisk() (int, error) {
	entries, err := os.ReadDir(s.config.StorageRoot)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Info("No vector store directory found, starting with empty cache")
			return 0, nil
		}
		return 0, fmt.Errorf("failed to scan storage root: %w", err)
	}

	rebuilt := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		docID := entry.Name()
		dir := filepath.Join(s.config.StorageRoot, docID)

		if !vectorstore.HasIndex(dir) {
			continue
		}
		if _, ok := s.cache.GetDocument(docID); ok {
			continue
		}

		info := models.DocumentInfo{
			Filename: "Unknown Document",
			Status:   models.StatusProcessed,
			Chunks:   0,
			Path:     dir,
		}
		if sidecar, err := readSidecar(dir); err == nil {
			if sidecar.Filename != "" {
				info.Filename = sidecar.Filename
			}
			info.Chunks = sidecar.Chunks
		}

		if err := s.cache.SetDocument(docID, info); err != nil {
			s.logger.Error("Failed to register reconciled document",
				logger.String("docId", docID),
				logger.Error(err),
			)
			continue
		}
		rebuilt++
		s.logger.Info("Reconciled document from disk",
			logger.String("docId", docID),
			logger.String("filename", info.Filename),
			logger.Int("chunks", info.Chunks),
		)
	}

	if rebuilt > 0 {
		s.logger.Info("Disk reconciliation completed",
			logger.Int("count", rebuilt),
		)
	}
	return rebuilt, nil
}

func writeSidecar(dir string, meta models.SidecarMetadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, vectorstore.MetadataFile), data, 0644)
}

func readSidecar(dir string) (models.SidecarMetadata, error) {
	var meta models.SidecarMetadata
	data, err := os.ReadFile(filepath.Join(dir, vectorstore.MetadataFile))
	if err != nil {
		return meta, err
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return meta, err
	}
	return meta, nil
}
