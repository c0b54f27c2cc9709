package pdf

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/sync/errgroup"

	"github.com/nitinog10/Campus-mitra/internal/models"
	"github.com/nitinog10/Campus-mitra/pkg/logger"
)

var (
	hyphenBreakRE = regexp.MustCompile(`(\w)-\n(\w)`)
	blankLinesRE  = regexp.MustCompile(`\n\s*\n`)
)

// Parser extracts per-page plain text from PDF content.
type Parser struct {
	logger logger.Logger
}

func NewParser(logger logger.Logger) *Parser {
	return &Parser{
		logger: logger,
	}
}

// Parse 逐页提取文本。单页失败不会中断整个文档，失败页用占位文本代替。
// Page order in the returned slice is stable regardless of extraction order.
func (p *Parser) Parse(ctx context.Context, content []byte, filename string) ([]string, error) {
	reader := bytes.NewReader(content)

	pdfReader, err := pdf.NewReader(reader, reader.Size())
	if err != nil {
		return nil, fmt.Errorf("%w: PDF parsing failed: %v", models.ErrIngest, err)
	}

	numPages := pdfReader.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("%w: PDF file appears to be empty or corrupted", models.ErrIngest)
	}

	pages := make([]string, numPages)

	// 并行处理每一页
	g, ctx := errgroup.WithContext(ctx)
	maxWorkers := 4
	sem := make(chan struct{}, maxWorkers)

	for i := 1; i <= numPages; i++ {
		pageNum := i
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return ctx.Err()
			}

			pages[pageNum-1] = p.extractPage(pdfReader, pageNum, filename)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrIngest, err)
	}

	return pages, nil
}

// extractPage never fails the document: extraction errors (including library
// panics on malformed content streams) degrade into a placeholder so page
// numbering downstream stays stable.
func (p *Parser) extractPage(r *pdf.Reader, pageNum int, filename string) (text string) {
	defer func() {
		if rec := recover(); rec != nil {
			p.logger.Warn("Recovered from page extraction panic",
				logger.String("filename", filename),
				logger.Int("page", pageNum),
				logger.Any("panic", rec),
			)
			text = fmt.Sprintf("[Page %d - Error extracting text: %v]", pageNum, rec)
		}
	}()

	page := r.Page(pageNum)
	if page.V.IsNull() {
		return ""
	}

	raw, err := page.GetPlainText(nil)
	if err != nil {
		p.logger.Warn("Failed to extract page text",
			logger.String("filename", filename),
			logger.Int("page", pageNum),
			logger.Error(err),
		)
		return fmt.Sprintf("[Page %d - Error extracting text: %v]", pageNum, err)
	}

	return CleanText(raw)
}

// CleanText normalizes extracted page text: rejoins words hyphenated across
// line breaks, folds intra-paragraph newlines into spaces and collapses runs
// of blank lines into a single paragraph break.
func CleanText(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	text = hyphenBreakRE.ReplaceAllString(text, "$1$2")

	paragraphs := blankLinesRE.Split(text, -1)
	cleaned := make([]string, 0, len(paragraphs))
	for _, para := range paragraphs {
		para = strings.TrimSpace(strings.ReplaceAll(para, "\n", " "))
		if para != "" {
			cleaned = append(cleaned, para)
		}
	}

	return strings.Join(cleaned, "\n\n")
}
