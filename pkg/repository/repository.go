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

// Package repository composes the document store, exact-match editor, search
// engine and schema validator into the six workflow operations: read, list,
// search, edit, create, validate. Write paths fail closed: an edit or create
// that would produce an invalid workflow is rejected before anything touches
// disk.
package repository

import (
	"context"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/flowscribe/flowscribe/pkg/document"
	"github.com/flowscribe/flowscribe/pkg/editor"
	"github.com/flowscribe/flowscribe/pkg/schema"
	"github.com/flowscribe/flowscribe/pkg/search"
)

// listConcurrency bounds the parallel validation passes during List.
const listConcurrency = 8

// 🎯 Repository implements the workflow operation surface.
type Repository struct {
	editor    editor.Editor
	validator *schema.Validator
	engine    *search.Engine
}

// 🔧 Options contains the collaborators for a Repository.
type Options struct {
	// Editor applies exact-match edits
	Editor editor.Editor
	// Validator checks the workflow schema
	Validator *schema.Validator
	// Engine locates pattern matches
	Engine *search.Engine
}

// 🏭 New creates a new Repository with the given collaborators.
func New(opts Options) (*Repository, error) {
	if opts.Editor == nil {
		return nil, errors.New("editor is required")
	}
	if opts.Validator == nil {
		return nil, errors.New("validator is required")
	}
	if opts.Engine == nil {
		return nil, errors.New("search engine is required")
	}
	return &Repository{
		editor:    opts.Editor,
		validator: opts.Validator,
		engine:    opts.Engine,
	}, nil
}

// NewDefault creates a Repository wired with the standard collaborators.
func NewDefault() *Repository {
	r, err := New(Options{
		Editor:    editor.NewExactMatchEditor(),
		Validator: schema.NewValidator(),
		Engine:    search.NewEngine(),
	})
	if err != nil {
		panic(err) // unreachable: all collaborators are provided
	}
	return r
}

// Line is one document line with its 1-based number attached.
type Line struct {
	Number int    `json:"number" yaml:"number"`
	Text   string `json:"text" yaml:"text"`
}

// ReadResult is the payload of a read operation.
type ReadResult struct {
	Path       string `json:"path" yaml:"path"`
	Lines      []Line `json:"lines" yaml:"lines"`
	TotalLines int    `json:"total_lines" yaml:"total_lines"`
}

// Read loads the file and returns its lines, optionally narrowed to the
// 1-based inclusive range [fromLine, toLine]. Zero means unbounded on that
// side. No mutation, no validation.
func (r *Repository) Read(ctx context.Context, path string, fromLine, toLine int) (*ReadResult, error) {
	doc, err := document.Load(ctx, path)
	if err != nil {
		return nil, err
	}

	all := doc.Lines()
	total := len(all)

	from := fromLine
	if from < 1 {
		from = 1
	}
	to := toLine
	if to < 1 || to > total {
		to = total
	}

	var lines []Line
	for i := from; i <= to; i++ {
		lines = append(lines, Line{Number: i, Text: all[i-1]})
	}

	return &ReadResult{Path: path, Lines: lines, TotalLines: total}, nil
}

// 📊 FileStatus classifies a listed file.
type FileStatus int

const (
	StatusUnknown FileStatus = iota
	StatusValid              // parses and satisfies the workflow schema
	StatusInvalid            // parses or validates with violations
	StatusError              // could not be read at all
)

// String returns a string representation of FileStatus.
func (s FileStatus) String() string {
	switch s {
	case StatusValid:
		return "valid"
	case StatusInvalid:
		return "invalid"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// ListEntry describes one workflow file found by List.
type ListEntry struct {
	Path       string             `json:"path" yaml:"path"`
	Size       int64              `json:"size" yaml:"size"`
	Status     FileStatus         `json:"-" yaml:"-"`
	StatusName string             `json:"status" yaml:"status"`
	Violations []schema.Violation `json:"violations,omitempty" yaml:"violations,omitempty"`
	Error      string             `json:"error,omitempty" yaml:"error,omitempty"`
}

// List enumerates workflow files under dir matching glob (DefaultGlob when
// empty) and reports each file's size and validation status. A file that
// fails to read or parse is listed with its failure rather than aborting the
// listing. Entries come back in lexicographic path order.
func (r *Repository) List(ctx context.Context, dir, glob string) ([]ListEntry, error) {
	logger := zerolog.Ctx(ctx)

	if glob == "" {
		glob = search.DefaultGlob
	}

	paths, err := matchingFiles(dir, glob)
	if err != nil {
		return nil, err
	}

	logger.Debug().Str("dir", dir).Str("glob", glob).Int("files", len(paths)).Msg("listing workflows")

	entries := make([]ListEntry, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(listConcurrency)
	for i, path := range paths {
		g.Go(func() error {
			entries[i] = r.listEntry(gctx, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Errorf("listing %s: %w", dir, err)
	}

	return entries, nil
}

// listEntry builds the entry for one file, isolating its failures.
func (r *Repository) listEntry(ctx context.Context, path string) ListEntry {
	entry := ListEntry{Path: path}

	if info, err := os.Stat(path); err == nil {
		entry.Size = info.Size()
	}

	doc, err := document.Load(ctx, path)
	if err != nil {
		entry.Status = StatusError
		entry.StatusName = entry.Status.String()
		entry.Error = err.Error()
		return entry
	}

	result := r.validator.Validate(ctx, []byte(doc.Content()))
	if result.OK {
		entry.Status = StatusValid
	} else {
		entry.Status = StatusInvalid
		entry.Violations = result.Violations
	}
	entry.StatusName = entry.Status.String()
	return entry
}

// Search streams pattern matches under the query root. Lazy; see
// search.Engine.
func (r *Repository) Search(ctx context.Context, q search.Query) (iter.Seq[search.Match], error) {
	return r.engine.Search(ctx, q)
}

// EditOptions tunes the edit commit path.
type EditOptions struct {
	// Backup writes <path>.bak with the pre-edit bytes before committing.
	Backup bool
}

// EditResult is the payload of a successful edit.
type EditResult struct {
	Path         string `json:"path" yaml:"path"`
	Replacements int    `json:"replacements" yaml:"replacements"`
	Validated    bool   `json:"validated" yaml:"validated"`
}

// Edit loads the file, applies the exact-match edit, and writes the result
// back. When the target is recognized as a workflow file, the edited content
// must validate before anything is written; on violation the edit is
// rejected and the file stays byte-identical to its pre-call state.
func (r *Repository) Edit(ctx context.Context, path string, req editor.Request, opts EditOptions) (*EditResult, error) {
	logger := zerolog.Ctx(ctx)

	doc, err := document.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	original := doc.Content()

	applied, err := r.editor.Apply(ctx, doc, req)
	if err != nil {
		return nil, err
	}

	validated := false
	if IsWorkflowFile(path) {
		result := r.validator.Validate(ctx, []byte(doc.Content()))
		if !result.OK {
			logger.Debug().Str("path", path).Int("violations", len(result.Violations)).
				Msg("edit rejected, would invalidate workflow")
			return nil, errors.WithStack(&schema.ValidationError{Violations: result.Violations})
		}
		validated = true
	}

	if opts.Backup {
		if err := os.WriteFile(path+".bak", []byte(original), 0o644); err != nil {
			return nil, errors.Errorf("writing backup: %w", err)
		}
	}

	if err := doc.Write(ctx); err != nil {
		return nil, err
	}

	return &EditResult{
		Path:         path,
		Replacements: applied.Replacements,
		Validated:    validated,
	}, nil
}

// Create validates content as a workflow document and writes it to path.
// Fails with ErrAlreadyExists when the path is occupied; on validation
// failure nothing is written.
func (r *Repository) Create(ctx context.Context, path string, content []byte) (*schema.Result, error) {
	logger := zerolog.Ctx(ctx)

	if _, err := os.Lstat(path); err == nil {
		return nil, errors.Errorf("%w: %s", ErrAlreadyExists, path)
	} else if !os.IsNotExist(err) {
		return nil, errors.Errorf("stating %s: %w", path, err)
	}

	result := r.validator.Validate(ctx, content)
	if !result.OK {
		return nil, errors.WithStack(&schema.ValidationError{Violations: result.Violations})
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Errorf("creating directory for %s: %w", path, err)
		}
	}

	if err := document.New(path, string(content)).Write(ctx); err != nil {
		return nil, err
	}

	logger.Debug().Str("path", path).Msg("workflow created")
	return result, nil
}

// Validate loads the file and checks the workflow schema. No mutation.
func (r *Repository) Validate(ctx context.Context, path string) (*schema.Result, error) {
	doc, err := document.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	return r.validator.Validate(ctx, []byte(doc.Content())), nil
}

// IsWorkflowFile reports whether path carries the workflow file extension.
// The extension is a discovery convention; edits to other files skip schema
// validation rather than failing.
func IsWorkflowFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return true
	default:
		return false
	}
}

// matchingFiles returns the regular files under dir whose root-relative path
// matches glob, in lexicographic order.
func matchingFiles(dir, glob string) ([]string, error) {
	if !doublestar.ValidatePattern(glob) {
		return nil, errors.WithStack(&search.InvalidPatternError{
			Pattern: glob,
			Err:     doublestar.ErrBadPattern,
		})
	}

	if _, err := os.Stat(dir); err != nil {
		return nil, errors.Errorf("listing %s: %w", dir, err)
	}

	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			rel = path
		}
		if ok, _ := doublestar.Match(glob, filepath.ToSlash(rel)); ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Errorf("walking %s: %w", dir, err)
	}
	return paths, nil
}
