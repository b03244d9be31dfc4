package textextract

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contractapi/internal/config"
)

type stubRunner struct {
	stdout, stderr []byte
	err            error

	name string
	args []string
	seen []byte
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.name = name
	s.args = args
	// the input file only exists while Run executes
	if len(args) >= 2 {
		s.seen, _ = os.ReadFile(args[len(args)-2])
	}
	return s.stdout, s.stderr, s.err
}

var samplePDF = []byte("%PDF-1.7\n%âãÏÓ\n1 0 obj\n<<>>\nendobj\n%%EOF\n")

func TestPdftotext_ExtractText(t *testing.T) {
	r := &stubRunner{stdout: []byte("Page one\fPage two\fPage three\f")}
	p := NewPdftotext(config.TextExtractConfig{PdftotextPath: "/usr/bin/pdftotext"}, nil).WithRunner(r)

	text, err := p.ExtractText(context.Background(), samplePDF)
	require.NoError(t, err)

	assert.Equal(t, 3, text.Pages)
	assert.Equal(t, "Page one\nPage two\nPage three\n", text.Content)
	assert.Equal(t, "/usr/bin/pdftotext", r.name)
	assert.Equal(t, []string{"-layout", "-enc", "UTF-8", "-eol", "unix"}, r.args[:5])
	assert.Equal(t, "-", r.args[len(r.args)-1])
	assert.Equal(t, samplePDF, r.seen)

	_, statErr := os.Stat(r.args[len(r.args)-2])
	assert.True(t, os.IsNotExist(statErr), "temp file should be removed")
}

func TestPdftotext_ExtractText_Errors(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		runner *stubRunner
	}{
		{name: "empty payload", data: nil, runner: &stubRunner{}},
		{name: "not a pdf", data: []byte("PK\x03\x04 this is a zip"), runner: &stubRunner{}},
		{name: "marker past first KiB", data: append([]byte(strings.Repeat(" ", 2048)), samplePDF...), runner: &stubRunner{}},
		{
			name:   "converter rejects",
			data:   samplePDF,
			runner: &stubRunner{stderr: []byte("Syntax Error: Couldn't find trailer dictionary"), err: errors.New("exit status 1")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPdftotext(config.TextExtractConfig{}, nil).WithRunner(tt.runner)
			_, err := p.ExtractText(context.Background(), tt.data)
			assert.ErrorIs(t, err, ErrParse)
		})
	}
}

func TestPdftotext_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &stubRunner{err: errors.New("signal: killed")}
	p := NewPdftotext(config.TextExtractConfig{}, nil).WithRunner(r)

	_, err := p.ExtractText(ctx, samplePDF)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrParse)
}

func TestPdftotext_EmptyDocument(t *testing.T) {
	p := NewPdftotext(config.TextExtractConfig{}, nil).WithRunner(&stubRunner{stdout: []byte("")})
	text, err := p.ExtractText(context.Background(), samplePDF)
	require.NoError(t, err)
	assert.Equal(t, "", text.Content)
	assert.Equal(t, 1, text.Pages)
}

func TestLooksLikePDF(t *testing.T) {
	assert.True(t, LooksLikePDF(samplePDF))
	assert.True(t, LooksLikePDF(append([]byte("\xef\xbb\xbf"), samplePDF...)))
	assert.False(t, LooksLikePDF([]byte("%PD")))
}
