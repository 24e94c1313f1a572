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

// Package config loads the optional flowscribe settings file. The format is
// determined by the file extension; a bare ".flowscribe" file may be either
// YAML or HCL.
package config

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// discoverNames are the settings files probed, in order, by Discover.
var discoverNames = []string{
	".flowscribe.yaml",
	".flowscribe.yml",
	".flowscribe.json",
	".flowscribe.hcl",
	".flowscribe",
}

// Config holds the toolset settings.
type Config struct {
	// Root is the default directory for list and search operations.
	Root string `json:"root,omitempty" yaml:"root,omitempty" hcl:"root,optional"`

	// Pattern is the default discovery glob for workflow files.
	Pattern string `json:"pattern,omitempty" yaml:"pattern,omitempty" hcl:"pattern,optional"`

	// LogLevel is the zerolog level name (trace, debug, info, warn, error).
	LogLevel string `json:"log_level,omitempty" yaml:"log_level,omitempty" hcl:"log_level,optional"`

	// Backup writes a .bak copy before every edit commit.
	Backup bool `json:"backup,omitempty" yaml:"backup,omitempty" hcl:"backup,optional"`
}

// Default returns the settings used when no config file exists.
func Default() *Config {
	return &Config{
		Root:     ".",
		Pattern:  "**/*.{yml,yaml}",
		LogLevel: "info",
	}
}

// Load loads a settings file from path. The format is determined by the
// extension: .json, .yaml/.yml, or .hcl; a plain .flowscribe file tries YAML
// first, then HCL.
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading config")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	base := filepath.Base(path)

	var cfg *Config
	switch {
	case ext == ".flowscribe" || base == ".flowscribe":
		cfg, err = loadYAML(data)
		if err != nil {
			cfg, err = loadHCL(data, path)
			if err != nil {
				return nil, errors.Errorf("parsing %s as YAML or HCL: %w", base, err)
			}
		}
	case ext == ".json":
		cfg, err = loadJSON(data)
	case ext == ".yaml" || ext == ".yml":
		cfg, err = loadYAML(data)
	case ext == ".hcl":
		cfg, err = loadHCL(data, path)
	default:
		return nil, errors.Errorf("unsupported config extension %q", ext)
	}
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Discover looks for a settings file in dir, falling back to defaults when
// none exists. Env overrides (FLOWSCRIBE_*) are applied last, with any .env
// file in dir loaded first.
func Discover(ctx context.Context, dir string) (*Config, error) {
	logger := zerolog.Ctx(ctx)

	var cfg *Config
	for _, name := range discoverNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		loaded, err := Load(ctx, path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
		break
	}
	if cfg == nil {
		logger.Debug().Str("dir", dir).Msg("no config file, using defaults")
		cfg = Default()
	}

	if err := applyEnv(cfg, dir); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings for internal consistency.
func Validate(cfg *Config) error {
	if cfg.Root == "" {
		return errors.New("root is required")
	}
	if !doublestar.ValidatePattern(cfg.Pattern) {
		return errors.Errorf("invalid pattern glob %q", cfg.Pattern)
	}
	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		return errors.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Root == "" {
		cfg.Root = def.Root
	}
	if cfg.Pattern == "" {
		cfg.Pattern = def.Pattern
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
}

// applyEnv overlays FLOWSCRIBE_* environment variables, loading a .env file
// from dir first when present.
func applyEnv(cfg *Config, dir string) error {
	envFile := filepath.Join(dir, ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return errors.Errorf("loading %s: %w", envFile, err)
		}
	}

	if v := os.Getenv("FLOWSCRIBE_ROOT"); v != "" {
		cfg.Root = v
	}
	if v := os.Getenv("FLOWSCRIBE_PATTERN"); v != "" {
		cfg.Pattern = v
	}
	if v := os.Getenv("FLOWSCRIBE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("FLOWSCRIBE_BACKUP"); v != "" {
		cfg.Backup = v == "1" || strings.EqualFold(v, "true")
	}
	return nil
}

func loadJSON(data []byte) (*Config, error) {
	var cfg Config
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		return nil, errors.Errorf("parsing JSON: %w", err)
	}
	return &cfg, nil
}

func loadYAML(data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}
	return &cfg, nil
}

func loadHCL(data []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	var cfg Config
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &cfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	return &cfg, nil
}
