// Copyright 2026 flowscribe authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package document loads text files as line sequences and writes them back
// preserving the original line-ending convention byte for byte.
package document

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

var (
	// ErrNotFound indicates the requested path does not exist
	ErrNotFound = errors.Base("file not found")

	// ErrEncoding indicates the file content is not valid text
	ErrEncoding = errors.Base("file is not valid text")
)

const defaultFileMode fs.FileMode = 0o644

// Document is the in-memory form of a single text file. Lines are stored
// newline-stripped; the detected line ending and trailing-newline state are
// kept so an unmodified document round-trips to identical bytes.
type Document struct {
	path     string
	lines    []string
	ending   string // "\n" or "\r\n"
	trailing bool   // content ends with the line ending
	mode     fs.FileMode
}

// Load reads the file at path into a Document.
func Load(ctx context.Context, path string) (*Document, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading document")

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, errors.Errorf("stating %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, errors.Errorf("reading %s: is a directory", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading %s: %w", path, err)
	}

	if !utf8.Valid(data) || bytes.IndexByte(data, 0) >= 0 {
		return nil, errors.Errorf("%w: %s", ErrEncoding, path)
	}

	doc := &Document{
		path: path,
		mode: info.Mode().Perm(),
	}
	doc.SetContent(string(data))

	logger.Debug().
		Str("path", path).
		Int("lines", len(doc.lines)).
		Bool("crlf", doc.ending == "\r\n").
		Msg("document loaded")

	return doc, nil
}

// New creates an in-memory document for content that has no on-disk origin
// yet, such as a create operation. The line ending is detected from content.
func New(path, content string) *Document {
	doc := &Document{
		path: path,
		mode: defaultFileMode,
	}
	doc.SetContent(content)
	return doc
}

// Path returns the path this document was loaded from.
func (d *Document) Path() string { return d.path }

// Lines returns the newline-stripped lines of the document.
func (d *Document) Lines() []string { return d.lines }

// LineEnding returns the detected line-ending convention.
func (d *Document) LineEnding() string { return d.ending }

// Content joins the lines back into the exact file content.
func (d *Document) Content() string {
	s := strings.Join(d.lines, d.ending)
	if d.trailing {
		s += d.ending
	}
	return s
}

// SetContent replaces the document body, re-splitting on the detected line
// ending. Detection only runs when the document has no convention yet or the
// new content no longer contains the stored one.
func (d *Document) SetContent(content string) {
	if d.ending == "" {
		if strings.Contains(content, "\r\n") {
			d.ending = "\r\n"
		} else {
			d.ending = "\n"
		}
	}
	d.trailing = strings.HasSuffix(content, d.ending) && content != ""
	body := content
	if d.trailing {
		body = strings.TrimSuffix(content, d.ending)
	}
	d.lines = strings.Split(body, d.ending)
}

// Write persists the document back to its path using the stored line-ending
// convention. No partial-write recovery is attempted.
func (d *Document) Write(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", d.path).Int("lines", len(d.lines)).Msg("writing document")

	if err := os.WriteFile(d.path, []byte(d.Content()), d.mode); err != nil {
		return errors.Errorf("writing %s: %w", d.path, err)
	}
	return nil
}
