package document_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/flowscribe/flowscribe/pkg/document"
)

// 🧪 testContext creates a context with a test logger
func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background())
}

func writeTemp(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestLoadRoundTrip(t *testing.T) {
	ctx := testContext(t)

	tests := []struct {
		name    string
		content string
	}{
		{name: "lf_with_trailing_newline", content: "a\nb\nc\n"},
		{name: "lf_without_trailing_newline", content: "a\nb\nc"},
		{name: "crlf", content: "a\r\nb\r\nc\r\n"},
		{name: "single_line", content: "just one line"},
		{name: "empty_file", content: ""},
		{name: "blank_lines", content: "a\n\n\nb\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTemp(t, "file.yml", []byte(tt.content))

			doc, err := document.Load(ctx, path)
			require.NoError(t, err)
			assert.Equal(t, tt.content, doc.Content(), "content must round-trip in memory")

			require.NoError(t, doc.Write(ctx))
			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.content, string(data), "write(load(path)) must reproduce original bytes")
		})
	}
}

func TestLoadLineSplitting(t *testing.T) {
	ctx := testContext(t)
	path := writeTemp(t, "file.yml", []byte("first\nsecond\nthird\n"))

	doc, err := document.Load(ctx, path)
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second", "third"}, doc.Lines())
	assert.Equal(t, "\n", doc.LineEnding())
}

func TestLoadCRLFDetection(t *testing.T) {
	ctx := testContext(t)
	path := writeTemp(t, "file.yml", []byte("first\r\nsecond\r\n"))

	doc, err := document.Load(ctx, path)
	require.NoError(t, err)

	assert.Equal(t, "\r\n", doc.LineEnding())
	assert.Equal(t, []string{"first", "second"}, doc.Lines())
}

func TestLoadNotFound(t *testing.T) {
	ctx := testContext(t)

	_, err := document.Load(ctx, filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, document.ErrNotFound))
}

func TestLoadRejectsBinary(t *testing.T) {
	ctx := testContext(t)
	path := writeTemp(t, "file.yml", []byte{0xff, 0xfe, 0x00, 0x41})

	_, err := document.Load(ctx, path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, document.ErrEncoding))
}

func TestLoadRejectsDirectory(t *testing.T) {
	ctx := testContext(t)

	_, err := document.Load(ctx, t.TempDir())
	require.Error(t, err)
}

func TestSetContentPreservesEnding(t *testing.T) {
	ctx := testContext(t)
	path := writeTemp(t, "file.yml", []byte("a\r\nb\r\n"))

	doc, err := document.Load(ctx, path)
	require.NoError(t, err)

	doc.SetContent("x\r\ny\r\nz\r\n")
	assert.Equal(t, []string{"x", "y", "z"}, doc.Lines())
	assert.Equal(t, "x\r\ny\r\nz\r\n", doc.Content())
}

func TestNewDocumentWrite(t *testing.T) {
	ctx := testContext(t)
	path := filepath.Join(t.TempDir(), "new.yml")

	doc := document.New(path, "hello\nworld\n")
	require.NoError(t, doc.Write(ctx))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello\nworld\n", string(data))
}
