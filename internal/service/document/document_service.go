package document

import (
	"context"

	"github.com/nitinog10/Campus-mitra/internal/models"
	"github.com/nitinog10/Campus-mitra/internal/vectorstore"
)

// DocumentStore owns the per-document lifecycle: ingestion, lookup,
// listing, deletion and disk reconciliation.
type DocumentStore interface {
	// Ingest parses, chunks, embeds and persists a PDF, returning the new
	// document id. All-or-nothing: a failure leaves no partial record.
	Ingest(ctx context.Context, content []byte, filename string) (string, error)

	// Resolve loads the persisted index for a document, self-healing the
	// cache entry from the on-disk sidecar when needed.
	Resolve(ctx context.Context, docID string) (*vectorstore.Index, error)

	// Retrieve resolves a document and runs a similarity search over it.
	Retrieve(ctx context.Context, docID, query string, k int) ([]models.Chunk, error)

	// List enumerates cached document records; it never touches disk.
	List() []models.DocumentSummary

	// Status returns the processing status, or the not_found sentinel.
	// It never returns an error; status is polled frequently.
	Status(docID string) models.DocumentStatus

	// Delete removes the persisted index directory and the cache entry.
	Delete(docID string) error

	// ReconcileFromDisk scans the index-storage root and registers any
	// document the cache is missing. Idempotent; safe to re-run.
	ReconcileFromDisk() (int, error)
}

// PageParser extracts per-page text from raw document bytes.
type PageParser interface {
	Parse(ctx context.Context, content []byte, filename string) ([]string, error)
}

// Chunker turns per-page text into embeddable chunks.
type Chunker interface {
	ChunkPages(pages []string, filename string) []models.Chunk
}
