package loader

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/akolanti/DoubtSolver/internal/config"
	"github.com/akolanti/DoubtSolver/internal/domain/commonModels"
	"github.com/akolanti/DoubtSolver/pkg/logger_i"
)

var (
	ErrLoadFailure      = errors.New("document load failed")
	ErrUnsupportedType  = fmt.Errorf("%w: unsupported document type", ErrLoadFailure)
	ErrDocumentTooLarge = fmt.Errorf("%w: document exceeds the maximum length", ErrLoadFailure)
	ErrNoText           = fmt.Errorf("%w: no text could be extracted", ErrLoadFailure)
)

// PageSeparator is inserted between the text of consecutive PDF pages.
const PageSeparator = "\n"

// Source is an uploaded file on local disk plus the media type declared with it.
type Source struct {
	Name      string
	Path      string
	MediaType string
}

type Extraction struct {
	Text        string
	PageCount   int
	ContentType commonModels.DocType
}

type Loader struct {
	maxChars    int
	pageTimeout time.Duration
	logger      *logger_i.Logger
}

func New(maxChars int) *Loader {
	return &Loader{
		maxChars:    maxChars,
		pageTimeout: config.PageExtractTimeout,
		logger:      logger_i.NewLogger("Document Loader"),
	}
}

// Load extracts the full text of src. It never mutates anything but its return values.
func (l *Loader) Load(ctx context.Context, src Source) (Extraction, error) {
	log := l.logger.WithTrace(ctx, config.TRACE_ID_KEY).With("document", src.Name)

	docType := commonModels.ResolveDocType(src.MediaType, src.Path)
	log.Debug("Loading document", "type", docType, "mediaType", src.MediaType, "ext", filepath.Ext(src.Path))

	var (
		ext Extraction
		err error
	)
	switch docType {
	case commonModels.PDF:
		ext, err = l.extractPDF(ctx, src.Path)
	case commonModels.TXT:
		ext, err = extractPlainText(src.Path)
	case commonModels.DOCX:
		ext, err = extractDocxTxtRtf(src.Path)
	default:
		return Extraction{}, fmt.Errorf("%w: %q", ErrUnsupportedType, src.MediaType)
	}
	if err != nil {
		log.Error("Extraction failed", "error", err)
		if errors.Is(err, ErrLoadFailure) {
			return Extraction{}, err
		}
		return Extraction{}, fmt.Errorf("%w: %w", ErrLoadFailure, err)
	}
	ext.ContentType = docType

	if strings.TrimSpace(ext.Text) == "" {
		return Extraction{}, ErrNoText
	}
	if l.maxChars > 0 {
		if n := utf8.RuneCountInString(ext.Text); n > l.maxChars {
			return Extraction{}, fmt.Errorf("%w: %d characters, limit %d", ErrDocumentTooLarge, n, l.maxChars)
		}
	}

	log.Info("Document loaded", "pages", ext.PageCount, "bytes", len(ext.Text))
	return ext, nil
}
