package models

// Source 引用来源
type Source struct {
	Filename       string  `json:"filename"`
	Page           int     `json:"page"`
	Chunk          int     `json:"chunk"`
	ContentPreview string  `json:"content_preview"`
	DocumentID     string  `json:"document_id,omitempty"`
	RelevanceScore float64 `json:"relevance_score"`
	Title          string  `json:"title"`
}

// ChatResult is the single failure/success shape the chat core hands back
// to the transport layer. Backend outages become Success=false results, not
// errors.
type ChatResult struct {
	Success     bool     `json:"success"`
	Response    string   `json:"response"`
	ContentType string   `json:"content_type"`
	Sources     []Source `json:"sources,omitempty"`
	Suggestions []string `json:"top_source_suggestions,omitempty"`
}
