package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/nitinog10/Campus-mitra/internal/models"
)

// defaultSeparators orders boundaries from coarse to fine: paragraph, line,
// sentence punctuation, clause, word. The empty string means rune-level cuts.
var defaultSeparators = []string{"\n\n", "\n", ".", "!", "?", ",", " ", ""}

// TextChunker splits per-page text into overlapping chunks sized for
// embedding, preferring the highest-level boundary that fits.
type TextChunker struct {
	chunkSize  int
	overlap    int
	separators []string
}

func New(chunkSize, overlap int) *TextChunker {
	if chunkSize <= 0 {
		chunkSize = 4000
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}
	return &TextChunker{
		chunkSize:  chunkSize,
		overlap:    overlap,
		separators: defaultSeparators,
	}
}

// ChunkPages 把每页文本切成带引用元数据的块。
// Pages are 1-based; a page with no extractable text yields a single
// placeholder chunk so citation page numbers stay stable.
func (c *TextChunker) ChunkPages(pages []string, filename string) []models.Chunk {
	chunks := make([]models.Chunk, 0, len(pages))

	for i, page := range pages {
		pageNum := i + 1
		text := strings.TrimSpace(page)
		if text == "" {
			chunks = append(chunks, c.newChunk(
				fmt.Sprintf("[Page %d - No extractable text]", pageNum),
				filename, pageNum, 0,
			))
			continue
		}

		pieces := c.Split(text)

		idx := 0
		for _, piece := range pieces {
			piece = strings.TrimSpace(piece)
			if piece == "" {
				continue
			}
			chunks = append(chunks, c.newChunk(piece, filename, pageNum, idx))
			idx++
		}
		if idx == 0 {
			// Splitting produced nothing usable; keep the whole page
			// rather than losing it.
			chunks = append(chunks, c.newChunk(text, filename, pageNum, 0))
		}
	}

	return chunks
}

// Split cuts text at the coarsest boundary available until every piece fits
// the target size, then packs adjacent pieces back together with overlap.
func (c *TextChunker) Split(text string) []string {
	return c.merge(c.split(text, c.separators))
}

// All sizes are measured in runes so multi-byte text chunks the same as
// ASCII.
func (c *TextChunker) split(text string, seps []string) []string {
	if utf8.RuneCountInString(text) <= c.chunkSize {
		return []string{text}
	}
	if len(seps) == 0 || seps[0] == "" {
		return splitRunes(text, c.chunkSize)
	}

	sep, rest := seps[0], seps[1:]
	segments := strings.SplitAfter(text, sep)
	if len(segments) == 1 {
		return c.split(text, rest)
	}

	out := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		if utf8.RuneCountInString(seg) <= c.chunkSize {
			out = append(out, seg)
		} else {
			out = append(out, c.split(seg, rest)...)
		}
	}
	return out
}

func (c *TextChunker) merge(parts []string) []string {
	var chunks []string
	var cur strings.Builder
	curRunes := 0

	for _, part := range parts {
		partRunes := utf8.RuneCountInString(part)
		if curRunes > 0 && curRunes+partRunes > c.chunkSize {
			chunk := strings.TrimSpace(cur.String())
			cur.Reset()
			curRunes = 0
			if chunk != "" {
				chunks = append(chunks, chunk)
				if c.overlap > 0 {
					// carried tail plus the next part may run a little
					// over the target size; boundaries win over strict
					// sizing here
					carried := tail(chunk, c.overlap)
					cur.WriteString(carried)
					curRunes = utf8.RuneCountInString(carried)
				}
			}
		}
		cur.WriteString(part)
		curRunes += partRunes
	}

	if chunk := strings.TrimSpace(cur.String()); chunk != "" {
		chunks = append(chunks, chunk)
	}
	return chunks
}

func (c *TextChunker) newChunk(content, filename string, page, idx int) models.Chunk {
	return models.Chunk{
		Content:  content,
		Filename: filename,
		Page:     page,
		Index:    idx,
		Source:   fmt.Sprintf("%d-%d", page, idx),
	}
}

func tail(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}

func splitRunes(s string, size int) []string {
	r := []rune(s)
	out := make([]string, 0, len(r)/size+1)
	for start := 0; start < len(r); start += size {
		end := start + size
		if end > len(r) {
			end = len(r)
		}
		out = append(out, string(r[start:end]))
	}
	return out
}
