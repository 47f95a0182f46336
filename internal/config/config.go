// Package config loads .arq.yaml, the optional per-directory settings file.
//
// The file is validated against an embedded CUE schema (schema.cue), which
// also supplies defaults for omitted fields. Unknown fields are rejected.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	cueyaml "cuelang.org/go/encoding/yaml"

	"github.com/roach88/arq/internal/prefix"
	"github.com/roach88/arq/internal/present"
	"github.com/roach88/arq/internal/table"
)

//go:embed schema.cue
var schemaSource string

// FileName is the settings file looked up in the working directory.
const FileName = ".arq.yaml"

// ErrInvalid is matched by every schema violation returned from Parse.
var ErrInvalid = errors.New("invalid configuration")

// Config holds the settings read from FileName.
type Config struct {
	Prefixes  []prefix.Entry `json:"prefixes" yaml:"prefixes"`
	Width     string         `json:"width" yaml:"width"`
	Database  string         `json:"database" yaml:"database"`
	WellKnown bool           `json:"well_known" yaml:"well_known"`
}

// Default returns the settings used when no file is present. They match the
// schema defaults.
func Default() *Config {
	return &Config{
		Prefixes: []prefix.Entry{},
		Width:    "chars",
	}
}

// FieldError is a schema violation with its position in the settings file.
type FieldError struct {
	Message string
	Pos     token.Pos
}

func (e *FieldError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

func (e *FieldError) Is(target error) bool {
	return target == ErrInvalid
}

// Load reads and validates the settings file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(path, data)
}

// Discover loads FileName from dir. When the file does not exist it returns
// Default and an empty path.
func Discover(dir string) (*Config, string, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), "", nil
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// Parse validates YAML settings against the schema and decodes them.
// filename is used in error positions only.
func Parse(filename string, data []byte) (*Config, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Default(), nil
	}

	file, err := cueyaml.Extract(filename, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile config schema: %w", err)
	}

	value := schema.LookupPath(cue.ParsePath("#Config")).Unify(ctx.BuildFile(file))
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, fieldErrors(filename, err)
	}

	cfg := Default()
	if err := value.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Prefixes == nil {
		cfg.Prefixes = []prefix.Entry{}
	}
	return cfg, nil
}

// fieldErrors converts CUE errors to FieldErrors, preferring positions in
// the settings file over positions in the schema.
func fieldErrors(filename string, err error) error {
	var errs []error
	for _, e := range cueerrors.Errors(err) {
		fe := &FieldError{Message: e.Error()}
		for _, pos := range cueerrors.Positions(e) {
			if pos.Filename() == filename {
				fe.Pos = pos
				break
			}
		}
		errs = append(errs, fe)
	}
	if len(errs) == 0 {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return errors.Join(errs...)
}

// WidthFunc returns the cell measure named by Width.
func (c *Config) WidthFunc() table.WidthFunc {
	if f, ok := table.WidthByName(c.Width); ok {
		return f
	}
	return table.RuneCount
}

// PresentOptions returns the presentation settings.
func (c *Config) PresentOptions() present.Options {
	return present.Options{
		Prefixes:  c.Prefixes,
		WellKnown: c.WellKnown,
		Width:     c.WidthFunc(),
	}
}
