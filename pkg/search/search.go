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

// Package search scans workflow files for literal or regular-expression
// patterns. Results stream lazily in deterministic order: lexicographic by
// path, then line order, then leftmost within a line.
package search

import (
	"context"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// DefaultGlob selects workflow files during discovery. The extension is a
// convention for discovery only, never a correctness requirement.
const DefaultGlob = "**/*.{yml,yaml}"

// InvalidPatternError indicates a regex pattern that failed to compile. It
// is reported before any file I/O happens.
type InvalidPatternError struct {
	Pattern string
	Err     error
}

func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Err)
}

func (e *InvalidPatternError) Unwrap() error { return e.Err }

// Span locates one occurrence within a file. Line is 1-based; Start and End
// are byte offsets within that line.
type Span struct {
	Line  int `json:"line" yaml:"line"`
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Match is one located occurrence of the pattern.
type Match struct {
	Path     string `json:"path" yaml:"path"`
	Span     Span   `json:"span" yaml:"span"`
	LineText string `json:"line_text" yaml:"line_text"`
}

// Query describes one search over a file or directory tree.
type Query struct {
	// Root is the file or directory to scan.
	Root string

	// Pattern is the literal text or regular expression to find.
	Pattern string

	// UseRegex compiles Pattern as a regular expression; otherwise the
	// pattern is matched as a plain substring.
	UseRegex bool

	// Glob filters files during directory traversal. Defaults to DefaultGlob.
	Glob string

	// OnWarning, when set, receives files that were skipped mid-traversal.
	// A single unreadable file never aborts a multi-file search.
	OnWarning func(path string, err error)
}

// Engine locates pattern occurrences. It is stateless and safe for
// concurrent use.
type Engine struct{}

// NewEngine creates a new Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Search returns a lazy sequence of matches for q. Pattern and glob
// compilation failures, and a missing root, are reported up front; per-file
// failures during iteration are skipped and surfaced via q.OnWarning. The
// sequence is bounded-memory: matches are produced as the tree is walked,
// never materialized in full.
func (e *Engine) Search(ctx context.Context, q Query) (iter.Seq[Match], error) {
	logger := zerolog.Ctx(ctx)

	glob := q.Glob
	if glob == "" {
		glob = DefaultGlob
	}
	if !doublestar.ValidatePattern(glob) {
		return nil, errors.WithStack(&InvalidPatternError{
			Pattern: glob,
			Err:     doublestar.ErrBadPattern,
		})
	}

	var re *regexp.Regexp
	if q.UseRegex {
		compiled, err := regexp.Compile(q.Pattern)
		if err != nil {
			return nil, errors.WithStack(&InvalidPatternError{Pattern: q.Pattern, Err: err})
		}
		re = compiled
	}

	rootInfo, err := os.Stat(q.Root)
	if err != nil {
		return nil, errors.Errorf("search root: %w", err)
	}

	warn := func(path string, err error) {
		logger.Warn().Str("path", path).Err(err).Msg("skipping unreadable file")
		if q.OnWarning != nil {
			q.OnWarning(path, err)
		}
	}

	return func(yield func(Match) bool) {
		if !rootInfo.IsDir() {
			scanFile(q.Root, q.Pattern, re, warn, yield)
			return
		}

		// WalkDir visits entries in lexical order, which keeps results
		// reproducible across runs.
		_ = filepath.WalkDir(q.Root, func(path string, d fs.DirEntry, err error) error {
			if ctx.Err() != nil {
				return fs.SkipAll
			}
			if err != nil {
				warn(path, err)
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}

			rel, err := filepath.Rel(q.Root, path)
			if err != nil {
				rel = path
			}
			ok, err := doublestar.Match(glob, filepath.ToSlash(rel))
			if err != nil || !ok {
				return nil
			}

			if !scanFile(path, q.Pattern, re, warn, yield) {
				return fs.SkipAll
			}
			return nil
		})
	}, nil
}

// scanFile yields every match within one file, in line order then leftmost
// order. Returns false when the consumer stopped iterating.
func scanFile(path, pattern string, re *regexp.Regexp, warn func(string, error), yield func(Match) bool) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		warn(path, err)
		return true
	}
	if !utf8.Valid(data) {
		warn(path, errors.New("file is not valid text"))
		return true
	}

	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSuffix(line, "\r")

		for _, span := range lineSpans(line, pattern, re) {
			m := Match{
				Path:     path,
				LineText: line,
				Span: Span{
					Line:  i + 1,
					Start: span[0],
					End:   span[1],
				},
			}
			if !yield(m) {
				return false
			}
		}
	}
	return true
}

// lineSpans returns [start, end) pairs for every non-overlapping occurrence
// of the pattern within one line, leftmost first.
func lineSpans(line, pattern string, re *regexp.Regexp) [][2]int {
	if re != nil {
		idx := re.FindAllStringIndex(line, -1)
		spans := make([][2]int, len(idx))
		for i, pair := range idx {
			spans[i] = [2]int{pair[0], pair[1]}
		}
		return spans
	}

	if pattern == "" {
		return nil
	}

	var spans [][2]int
	for off := 0; ; {
		j := strings.Index(line[off:], pattern)
		if j < 0 {
			break
		}
		start := off + j
		spans = append(spans, [2]int{start, start + len(pattern)})
		off = start + len(pattern)
	}
	return spans
}
