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

// Package editor performs exact-match text substitution under a uniqueness
// contract: an edit must either match exactly one occurrence or explicitly
// request bulk replacement. This prevents an automated caller from silently
// editing the wrong occurrence of an under-specified match.
package editor

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/flowscribe/flowscribe/pkg/document"
)

// ErrEmptyOldText is returned when a request has no text to match.
var ErrEmptyOldText = errors.Base("old text must not be empty")

// Request describes a single substitution.
type Request struct {
	// OldText is the exact text to replace. Must be non-empty. Matching is
	// byte-exact over the whole document content, so it may span lines.
	OldText string

	// NewText is the replacement text.
	NewText string

	// ReplaceAll selects bulk semantics: every non-overlapping occurrence is
	// replaced. Without it, more than one occurrence is an error.
	ReplaceAll bool
}

// Result reports what an applied edit did.
type Result struct {
	// Replacements is the number of occurrences replaced.
	Replacements int
}

// NoMatchError indicates the old text was not found anywhere in the document.
type NoMatchError struct {
	OldText string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no match found for %q", e.OldText)
}

// AmbiguousMatchError indicates the old text occurs more than once and bulk
// replacement was not requested. The document is left untouched.
type AmbiguousMatchError struct {
	OldText string
	Count   int
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("%q matches %d times; provide more context or request replace-all", e.OldText, e.Count)
}

// Editor applies exact-match edits to documents.
type Editor interface {
	// Apply mutates doc in place according to req, or returns an error and
	// leaves doc untouched. The contract is all-or-nothing.
	Apply(ctx context.Context, doc *document.Document, req Request) (*Result, error)
}

// ExactMatchEditor implements Editor with byte-exact substring matching.
type ExactMatchEditor struct{}

// NewExactMatchEditor creates a new ExactMatchEditor.
func NewExactMatchEditor() *ExactMatchEditor {
	return &ExactMatchEditor{}
}

// Apply implements Editor.Apply. Occurrences are counted across the full
// joined document content, not per line. No normalization of whitespace or
// line endings happens before comparison.
func (e *ExactMatchEditor) Apply(ctx context.Context, doc *document.Document, req Request) (*Result, error) {
	logger := zerolog.Ctx(ctx)

	if req.OldText == "" {
		return nil, errors.WithStack(ErrEmptyOldText)
	}

	content := doc.Content()
	count := strings.Count(content, req.OldText)

	logger.Debug().
		Str("path", doc.Path()).
		Int("occurrences", count).
		Bool("replace_all", req.ReplaceAll).
		Msg("applying edit")

	switch {
	case count == 0:
		return nil, errors.WithStack(&NoMatchError{OldText: req.OldText})
	case count > 1 && !req.ReplaceAll:
		return nil, errors.WithStack(&AmbiguousMatchError{OldText: req.OldText, Count: count})
	}

	// A unique occurrence is replaced regardless of the replace-all flag.
	doc.SetContent(strings.ReplaceAll(content, req.OldText, req.NewText))

	return &Result{Replacements: count}, nil
}
