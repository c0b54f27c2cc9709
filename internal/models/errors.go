package models

import "errors"

// 核心错误类型。调用方用 errors.Is 区分失败种类。
var (
	// ErrConfiguration: required backend credential missing. Checked before
	// any processing work, never retried.
	ErrConfiguration = errors.New("embedding backend is not configured")

	// ErrIngest: unparseable, empty or corrupt input document.
	ErrIngest = errors.New("document ingestion failed")

	// ErrNotFound: the referenced document has no cache entry and no
	// on-disk record.
	ErrNotFound = errors.New("document not found")

	// ErrDeletion: on-disk removal failed for an existing document.
	ErrDeletion = errors.New("document deletion failed")

	// ErrGeneration: the generation backend call failed or returned
	// unusable output.
	ErrGeneration = errors.New("generation failed")
)
