// Package config loads editor configuration from CUE.
//
// A config file is unified with the embedded #Config schema, which supplies
// defaults and constraints. Unknown fields are rejected because #Config is a
// closed definition. An empty file yields the defaults.
package config

import (
	_ "embed"
	"fmt"
	"image"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/logicflow/internal/interaction"
)

//go:embed schema.cue
var schemaSource string

// Error codes for LoadError.
const (
	ErrCodeNotFound = "CONFIG_NOT_FOUND"
	ErrCodeSyntax   = "CONFIG_SYNTAX"
	ErrCodeInvalid  = "CONFIG_INVALID"
)

// LoadError is a config problem with its CUE source position, if known.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Config is the resolved editor configuration.
type Config struct {
	Keys      interaction.Keys
	UIScale   float64
	Layout    interaction.Layout
	Container image.Rectangle
	Seed      uint64
	HasSeed   bool
}

// Interaction returns the machine configuration.
func (c Config) Interaction() interaction.Config {
	l := c.Layout
	l.Scale = c.UIScale
	return interaction.Config{Keys: c.Keys, Layout: l, Container: c.Container}
}

type rawConfig struct {
	Keys struct {
		SelectTree    string `json:"select_tree"`
		SelectNetwork string `json:"select_network"`
		Disable       string `json:"disable"`
		Delete        string `json:"delete"`
	} `json:"keys"`
	UIScale float64 `json:"ui_scale"`
	Layout  struct {
		HeaderHeight  int `json:"header_height"`
		PortSize      int `json:"port_size"`
		GripSize      int `json:"grip_size"`
		CaptureMargin int `json:"capture_margin"`
		MinWidth      int `json:"min_width"`
		MinHeight     int `json:"min_height"`
	} `json:"layout"`
	Container struct {
		X      int `json:"x"`
		Y      int `json:"y"`
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"container"`
	Seed *uint64 `json:"seed,omitempty"`
}

// Default returns the schema defaults.
func Default() Config {
	c, err := Parse("default.cue", nil)
	if err != nil {
		panic(fmt.Sprintf("config: embedded schema is invalid: %v", err))
	}
	return c
}

// Load reads and resolves the config file at path.
func Load(path string) (Config, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("reading config: %v", err)}
	}
	return Parse(path, src)
}

// Parse resolves CUE source against the schema. filename is used in positions.
func Parse(filename string, src []byte) (Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue")).
		LookupPath(cue.ParsePath("#Config"))
	if err := schema.Err(); err != nil {
		return Config{}, convertCUEError(ErrCodeInvalid, err)
	}

	user := ctx.CompileBytes(src, cue.Filename(filename))
	if err := user.Err(); err != nil {
		return Config{}, convertCUEError(ErrCodeSyntax, err)
	}

	v := schema.Unify(user)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return Config{}, convertCUEError(ErrCodeInvalid, err)
	}

	var raw rawConfig
	if err := v.Decode(&raw); err != nil {
		return Config{}, convertCUEError(ErrCodeInvalid, err)
	}
	return raw.resolve(), nil
}

func (raw rawConfig) resolve() Config {
	c := Config{
		Keys: interaction.Keys{
			SelectTree:    raw.Keys.SelectTree,
			SelectNetwork: raw.Keys.SelectNetwork,
			Disable:       raw.Keys.Disable,
			Delete:        raw.Keys.Delete,
		},
		UIScale: raw.UIScale,
		Layout: interaction.Layout{
			Scale:         raw.UIScale,
			HeaderHeight:  raw.Layout.HeaderHeight,
			PortSize:      raw.Layout.PortSize,
			GripSize:      raw.Layout.GripSize,
			CaptureMargin: raw.Layout.CaptureMargin,
			MinSize:       image.Pt(raw.Layout.MinWidth, raw.Layout.MinHeight),
		},
		Container: image.Rect(
			raw.Container.X, raw.Container.Y,
			raw.Container.X+raw.Container.Width, raw.Container.Y+raw.Container.Height,
		),
	}
	if raw.Seed != nil {
		c.Seed, c.HasSeed = *raw.Seed, true
	}
	return c
}

// convertCUEError keeps the first CUE error and its position.
func convertCUEError(code string, err error) *LoadError {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Code: code, Message: err.Error()}
	}
	first := errs[0]
	le := &LoadError{Code: code, Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}
