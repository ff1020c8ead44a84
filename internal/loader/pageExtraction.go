package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
)

func (l *Loader) extractPDF(ctx context.Context, path string) (Extraction, error) {
	f, err := os.Open(path)
	if err != nil {
		return Extraction{}, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Extraction{}, fmt.Errorf("failed to stat pdf: %w", err)
	}

	reader, err := openPDF(f, info.Size())
	if err != nil {
		return Extraction{}, fmt.Errorf("failed to read pdf: %w", err)
	}

	numPages := reader.NumPage()
	l.logger.Debug("extractPDF", "number of pages", numPages)

	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return Extraction{}, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			// keep the page slot so the separators still line up with page order
			pages = append(pages, "")
			continue
		}

		content, err := l.protectExtract(page)
		if err != nil {
			return Extraction{}, fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, content)
	}

	return Extraction{
		Text:      strings.Join(pages, PageSeparator),
		PageCount: numPages,
	}, nil
}

// openPDF guards against the parser panicking on malformed cross-reference tables.
func openPDF(f *os.File, size int64) (r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r, err = nil, fmt.Errorf("malformed pdf: %v", rec)
		}
	}()
	return pdf.NewReader(f, size)
}

func (l *Loader) protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				resChan <- result{"", fmt.Errorf("malformed page content: %v", rec)}
			}
		}()
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()

	timer := time.NewTimer(l.pageTimeout)
	defer timer.Stop()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-timer.C:
		l.logger.Error("pageExtract", "timeout", l.pageTimeout)
		return "", errors.New("page extraction timed out")
	}
}

// reads a .odt, .docx or .rtf file; page boundaries are not tracked so the whole
// document counts as one page
func extractDocxTxtRtf(path string) (Extraction, error) {
	text, err := cat.File(path)
	if err != nil {
		return Extraction{}, fmt.Errorf("failed to extract document: %w", err)
	}
	return Extraction{Text: text, PageCount: 1}, nil
}

func extractPlainText(path string) (Extraction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Extraction{}, fmt.Errorf("failed to read text file: %w", err)
	}
	text, err := decodeText(data)
	if err != nil {
		return Extraction{}, fmt.Errorf("failed to decode text file: %w", err)
	}
	return Extraction{Text: text, PageCount: 1}, nil
}
