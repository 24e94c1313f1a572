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

package repository

import (
	"io/fs"

	"gitlab.com/tozd/go/errors"

	"github.com/flowscribe/flowscribe/pkg/document"
	"github.com/flowscribe/flowscribe/pkg/editor"
	"github.com/flowscribe/flowscribe/pkg/schema"
	"github.com/flowscribe/flowscribe/pkg/search"
)

// ErrAlreadyExists indicates a create target is occupied.
var ErrAlreadyExists = errors.Base("file already exists")

// ErrorKind is the stable failure classification exposed to the calling
// transport. Every operation failure maps to exactly one kind.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindNotFound
	KindAlreadyExists
	KindIO
	KindEncoding
	KindNoMatch
	KindAmbiguousMatch
	KindInvalidPattern
	KindValidationFailed
)

// String returns the wire name of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindAlreadyExists:
		return "already_exists"
	case KindIO:
		return "io_error"
	case KindEncoding:
		return "encoding_error"
	case KindNoMatch:
		return "no_match"
	case KindAmbiguousMatch:
		return "ambiguous_match"
	case KindInvalidPattern:
		return "invalid_pattern"
	case KindValidationFailed:
		return "validation_failed"
	default:
		return "unknown"
	}
}

// Classify maps any error returned by a repository operation to its stable
// kind.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}

	var (
		noMatch    *editor.NoMatchError
		ambiguous  *editor.AmbiguousMatchError
		badPattern *search.InvalidPatternError
		validation *schema.ValidationError
	)

	switch {
	case errors.Is(err, document.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return KindNotFound
	case errors.Is(err, ErrAlreadyExists):
		return KindAlreadyExists
	case errors.Is(err, document.ErrEncoding):
		return KindEncoding
	case errors.As(err, &noMatch):
		return KindNoMatch
	case errors.As(err, &ambiguous):
		return KindAmbiguousMatch
	case errors.As(err, &badPattern):
		return KindInvalidPattern
	case errors.As(err, &validation):
		return KindValidationFailed
	case errors.Is(err, fs.ErrPermission):
		return KindIO
	}

	// Remaining filesystem failures (disk full, locks) surface as IO.
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return KindIO
	}

	return KindUnknown
}
