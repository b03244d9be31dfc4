// Package textextract converts uploaded PDF bytes into plain text.
package textextract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"contractapi/internal/config"
)

// ErrParse marks input that could not be turned into text: not a PDF, or
// a PDF the converter rejected.
var ErrParse = errors.New("textextract: unreadable pdf")

// Text is the plain-text rendering of a document.
type Text struct {
	Content string
	Pages   int
}

// Extractor converts a PDF payload to text.
type Extractor interface {
	ExtractText(ctx context.Context, data []byte) (Text, error)
}

const sniffLen = 1024

var pdfMagic = []byte("%PDF-")

// Pdftotext shells out to poppler's pdftotext.
type Pdftotext struct {
	bin     string
	timeout time.Duration
	runner  Runner
	log     *zap.Logger
}

// NewPdftotext returns an extractor using the configured binary.
func NewPdftotext(cfg config.TextExtractConfig, log *zap.Logger) *Pdftotext {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.PdftotextPath == "" {
		cfg.PdftotextPath = "pdftotext"
	}
	return &Pdftotext{
		bin:     cfg.PdftotextPath,
		timeout: cfg.Timeout,
		runner:  execRunner{log: log},
		log:     log,
	}
}

// WithRunner replaces the command runner, for tests.
func (p *Pdftotext) WithRunner(r Runner) *Pdftotext {
	p.runner = r
	return p
}

// ExtractText writes data to a temp file and runs
// pdftotext -layout -enc UTF-8 -eol unix <file> -.
func (p *Pdftotext) ExtractText(ctx context.Context, data []byte) (Text, error) {
	if !LooksLikePDF(data) {
		return Text{}, fmt.Errorf("%w: missing %%PDF- header", ErrParse)
	}

	tmpDir, err := os.MkdirTemp("", "contract-*")
	if err != nil {
		return Text{}, fmt.Errorf("create temp dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			p.log.Warn("textextract.cleanup_failed", zap.String("dir", tmpDir), zap.Error(err))
		}
	}()

	path := filepath.Join(tmpDir, "input.pdf")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return Text{}, fmt.Errorf("write temp pdf: %w", err)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	out, errb, err := p.runner.Run(ctx, p.bin, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		if ctx.Err() != nil {
			return Text{}, ctx.Err()
		}
		return Text{}, fmt.Errorf("%w: %v: %s", ErrParse, err, strings.TrimSpace(string(errb)))
	}

	text := string(out)
	// pdftotext separates pages with a form feed
	pages := 1 + strings.Count(strings.TrimRight(text, "\f"), "\f")
	return Text{Content: strings.ReplaceAll(text, "\f", "\n"), Pages: pages}, nil
}

// LooksLikePDF reports whether the %PDF- marker occurs in the first KiB.
func LooksLikePDF(data []byte) bool {
	head := data
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	return bytes.Contains(head, pdfMagic)
}
