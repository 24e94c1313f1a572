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

// Package schema validates workflow documents against the minimal structural
// contract the execution engine requires: a top-level execute_sequence tool
// with an arguments mapping holding an ordered steps sequence, each step
// itself carrying a tool identifier and arguments, recursively.
package schema

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Field names and the execution entry value of the workflow contract.
const (
	ToolNameKey   = "tool_name"
	ArgumentsKey  = "arguments"
	StepsKey      = "steps"
	EntryToolName = "execute_sequence"
)

// Violation is one structural rule failure, addressed by path within the
// document (e.g. "arguments.steps[2].tool_name").
type Violation struct {
	Path    string `json:"path" yaml:"path"`
	Message string `json:"message" yaml:"message"`
}

func (v Violation) String() string {
	return v.Path + ": " + v.Message
}

// Result is the outcome of a validation pass. OK is true only when every
// check passed; otherwise Violations holds one entry per failed check, in
// document order.
type Result struct {
	OK         bool        `json:"ok" yaml:"ok"`
	Violations []Violation `json:"violations,omitempty" yaml:"violations,omitempty"`
}

// ValidationError carries a failed Result across the edit/create commit path.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.String()
	}
	return fmt.Sprintf("workflow validation failed (%d violations): %s",
		len(e.Violations), strings.Join(msgs, "; "))
}

// Validator checks workflow documents. It is stateless and safe for
// concurrent use.
type Validator struct{}

// NewValidator creates a new Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate parses content as YAML and checks the workflow contract. All
// violations are collected and returned together; only a parse failure
// short-circuits, producing a single parse-error violation. Validate is a
// pure function of content.
func (v *Validator) Validate(ctx context.Context, content []byte) *Result {
	logger := zerolog.Ctx(ctx)

	var root yaml.Node
	if err := yaml.Unmarshal(content, &root); err != nil {
		return fail(Violation{Path: "$", Message: "parsing YAML: " + err.Error()})
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return fail(Violation{Path: "$", Message: "document is empty"})
	}

	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return fail(Violation{Path: "$", Message: "top level must be a mapping"})
	}

	var violations []Violation

	toolName := mappingValue(doc, ToolNameKey)
	switch {
	case toolName == nil:
		violations = append(violations, Violation{
			Path:    ToolNameKey,
			Message: "missing required field",
		})
	case toolName.Kind != yaml.ScalarNode || toolName.Value != EntryToolName:
		violations = append(violations, Violation{
			Path:    ToolNameKey,
			Message: fmt.Sprintf("must be %q, got %q", EntryToolName, toolName.Value),
		})
	}

	args := mappingValue(doc, ArgumentsKey)
	switch {
	case args == nil:
		violations = append(violations, Violation{
			Path:    ArgumentsKey,
			Message: "missing required field",
		})
	case args.Kind != yaml.MappingNode:
		violations = append(violations, Violation{
			Path:    ArgumentsKey,
			Message: "must be a mapping",
		})
	default:
		violations = append(violations, checkSteps(args, ArgumentsKey)...)
	}

	result := &Result{
		OK:         len(violations) == 0,
		Violations: violations,
	}

	logger.Debug().
		Bool("ok", result.OK).
		Int("violations", len(result.Violations)).
		Msg("workflow validated")

	return result
}

// checkSteps validates the steps sequence under an arguments mapping at the
// given path prefix, recursing into each step's own arguments.steps. An
// empty sequence is valid: a no-op workflow is not itself an error.
func checkSteps(args *yaml.Node, prefix string) []Violation {
	stepsPath := prefix + "." + StepsKey

	steps := mappingValue(args, StepsKey)
	if steps == nil {
		return []Violation{{Path: stepsPath, Message: "missing required field"}}
	}
	if steps.Kind != yaml.SequenceNode {
		return []Violation{{Path: stepsPath, Message: "must be a sequence"}}
	}

	var violations []Violation
	for i, step := range steps.Content {
		violations = append(violations, checkStep(step, fmt.Sprintf("%s[%d]", stepsPath, i))...)
	}
	return violations
}

// checkStep validates one step: a mapping carrying a tool identifier and an
// arguments mapping, whose own steps (when present) are validated by the
// same rule.
func checkStep(step *yaml.Node, path string) []Violation {
	if step.Kind != yaml.MappingNode {
		return []Violation{{Path: path, Message: "step must be a mapping"}}
	}

	var violations []Violation

	toolName := mappingValue(step, ToolNameKey)
	switch {
	case toolName == nil:
		violations = append(violations, Violation{
			Path:    path + "." + ToolNameKey,
			Message: "missing required field",
		})
	case toolName.Kind != yaml.ScalarNode || toolName.Value == "":
		violations = append(violations, Violation{
			Path:    path + "." + ToolNameKey,
			Message: "must be a non-empty string",
		})
	}

	args := mappingValue(step, ArgumentsKey)
	switch {
	case args == nil:
		violations = append(violations, Violation{
			Path:    path + "." + ArgumentsKey,
			Message: "missing required field",
		})
	case args.Kind != yaml.MappingNode:
		violations = append(violations, Violation{
			Path:    path + "." + ArgumentsKey,
			Message: "must be a mapping",
		})
	default:
		// Nested sequences are optional on steps; validate only when present.
		if mappingValue(args, StepsKey) != nil {
			violations = append(violations, checkSteps(args, path+"."+ArgumentsKey)...)
		}
	}

	return violations
}

// mappingValue returns the value node for key within a mapping node, or nil.
func mappingValue(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

func fail(v Violation) *Result {
	return &Result{OK: false, Violations: []Violation{v}}
}
