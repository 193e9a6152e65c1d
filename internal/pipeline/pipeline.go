package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/oluwabajio/AudioTool/internal/audiotool"
)

// Pipeline is an ordered list of steps.
//
// In TOML form:
//
//	[[steps]]
//	op = "trim"
//	start = 0
//	end = 30
//
//	[[steps]]
//	op = "echo"
//	preset = "open_air"
type Pipeline struct {
	Steps []Step `toml:"steps" json:"steps" validate:"required,min=1,dive"`
}

// Decode reads a TOML pipeline from r. Unknown keys are rejected.
func Decode(r io.Reader) (*Pipeline, error) {
	var p Pipeline
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode pipeline: %w", err)
	}
	return &p, nil
}

// Load reads a TOML pipeline file.
func Load(path string) (*Pipeline, error) {
	f, err := os.Open(path) // #nosec G304 - path is provided by trusted caller
	if err != nil {
		return nil, fmt.Errorf("open pipeline: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Decode(f)
}

// Validate checks every step with v.
func (p *Pipeline) Validate(v *validator.Validate) error {
	if err := v.Struct(p); err != nil {
		return fmt.Errorf("invalid pipeline: %w", err)
	}
	return nil
}

// StepFunc is called after each successful step with its index and the
// working file path.
type StepFunc func(i int, step Step, path string)

// Run applies the steps in order and stops at the first failure.
func (p *Pipeline) Run(ctx context.Context, tool *audiotool.Tool, fn StepFunc) error {
	for i, step := range p.Steps {
		path, err := step.Apply(ctx, tool)
		if err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, step.Op, err)
		}
		if fn != nil {
			fn(i, step, path)
		}
	}
	return nil
}
