package models

// DocumentStatus 文档处理状态
type DocumentStatus string

const (
	StatusProcessing DocumentStatus = "processing"
	StatusProcessed  DocumentStatus = "processed"
	StatusFailed     DocumentStatus = "failed"

	// StatusNotFound is the sentinel returned by polled status lookups,
	// never an error.
	StatusNotFound DocumentStatus = "not_found"
)

// Chunk 文档块
type Chunk struct {
	Content  string `json:"content"`
	Filename string `json:"filename"`
	Page     int    `json:"page"`
	Index    int    `json:"chunk"`
	Source   string `json:"source"` // "{page}-{chunk}", used for citation display
}

// DocumentInfo is the cached per-document record. Path points at the
// persisted index directory.
type DocumentInfo struct {
	Filename string         `json:"filename"`
	Status   DocumentStatus `json:"status"`
	Chunks   int            `json:"chunks"`
	Path     string         `json:"path"`
}

// DocumentSummary 文档列表条目
type DocumentSummary struct {
	DocID    string         `json:"doc_id"`
	Filename string         `json:"filename"`
	Status   DocumentStatus `json:"status"`
	Chunks   int            `json:"chunks"`
	Path     string         `json:"path"`
}

// SidecarMetadata is the durable metadata.json record written next to a
// persisted index. The disk scan treats it as the source of truth when the
// cache is cold.
type SidecarMetadata struct {
	Filename  string         `json:"filename"`
	DocID     string         `json:"doc_id"`
	Status    DocumentStatus `json:"status"`
	Chunks    int            `json:"chunks"`
	CreatedAt string         `json:"created_at"`
}
