// Package pipeline describes audio operations declaratively so they can be
// read from TOML files or JSON request bodies and replayed against a tool.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"

	"github.com/oluwabajio/AudioTool/internal/audiotool"
	"github.com/oluwabajio/AudioTool/internal/filter"
	"github.com/oluwabajio/AudioTool/internal/limit"
)

// Op names an operation.
type Op string

// Supported operations.
const (
	OpTrim         Op = "trim"
	OpTrimTimecode Op = "trim_timecode"
	OpVolume       Op = "volume"
	OpVolumeWindow Op = "volume_window"
	OpNormalize    Op = "normalize"
	OpSpeed        Op = "speed"
	OpBass         Op = "bass"
	OpFilter       Op = "filter"
	OpRemoveNoise  Op = "remove_noise"
	OpRemoveVocals Op = "remove_vocals"
	OpReverse      Op = "reverse"
	OpEcho         Op = "echo"
	OpVibrato      Op = "vibrato"
	OpExtractAudio Op = "extract_audio"
	OpPitch        Op = "pitch"
	OpReverb       Op = "reverb"
	OpShifter      Op = "shifter"
	OpWaveform     Op = "waveform"
	OpJoin         Op = "join"
)

// ErrUnknownOp is returned when a step names an unsupported operation.
var ErrUnknownOp = errors.New("unknown operation")

// Step is one declarative operation. Only the fields used by Op are read.
// Numeric parameters are clamped by the filter builders, not rejected.
type Step struct {
	Op Op `toml:"op" json:"op" validate:"required,oneof=trim trim_timecode volume volume_window normalize speed bass filter remove_noise remove_vocals reverse echo vibrato extract_audio pitch reverb shifter waveform join"`

	// Start and End are offsets in seconds for trim and volume_window.
	Start int `toml:"start" json:"start,omitempty"`
	End   int `toml:"end" json:"end,omitempty"`

	// StartTimecode and EndTimecode are hh:mm:ss offsets for trim_timecode.
	StartTimecode string `toml:"start_timecode" json:"start_timecode,omitempty" validate:"required_if=Op trim_timecode,omitempty,timecode"`
	EndTimecode   string `toml:"end_timecode" json:"end_timecode,omitempty" validate:"required_if=Op trim_timecode,omitempty,timecode"`

	// Multiplier is the gain for volume ops and the tempo for speed.
	Multiplier float64 `toml:"multiplier" json:"multiplier,omitempty"`

	Gain      float64 `toml:"gain" json:"gain,omitempty"`
	Width     float64 `toml:"width" json:"width,omitempty"`
	Frequency float64 `toml:"frequency" json:"frequency,omitempty"`
	Depth     float64 `toml:"depth" json:"depth,omitempty"`

	Highpass int `toml:"highpass" json:"highpass,omitempty"`
	Lowpass  int `toml:"lowpass" json:"lowpass,omitempty"`

	// Preset names an echo preset. Unknown names select the default echo.
	Preset string `toml:"preset" json:"preset,omitempty"`

	// Files are the inputs appended by join.
	Files []string `toml:"files" json:"files,omitempty" validate:"required_if=Op join,dive,required"`
}

// NewValidator returns a validator that understands the timecode tag.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("timecode", func(fl validator.FieldLevel) bool {
		return filter.ValidTimecode(fl.Field().String())
	})
	return v
}

// Validate checks the step with v.
func (s Step) Validate(v *validator.Validate) error {
	if err := v.Struct(s); err != nil {
		return fmt.Errorf("step %q: %w", s.Op, err)
	}
	return nil
}

// Apply runs the step against tool and returns the working file path.
func (s Step) Apply(ctx context.Context, tool *audiotool.Tool) (string, error) {
	switch s.Op {
	case OpTrim:
		return tool.Trim(ctx, s.Start, s.End)
	case OpTrimTimecode:
		return tool.TrimTimecode(ctx, s.StartTimecode, s.EndTimecode)
	case OpVolume:
		return tool.SetVolume(ctx, s.Multiplier)
	case OpVolumeWindow:
		return tool.SetVolumeWindow(ctx, s.Multiplier, s.Start, s.End)
	case OpNormalize:
		return tool.Normalize(ctx)
	case OpSpeed:
		m := s.Multiplier
		if m == 0 {
			m = filter.FixedTempo
		}
		return tool.ChangeSpeed(ctx, m)
	case OpBass:
		return tool.Bass(ctx, s.Gain, s.Width, intParam(s.Frequency, 0, filter.MaxFrequency))
	case OpFilter:
		return tool.BandPass(ctx, s.Highpass, s.Lowpass)
	case OpRemoveNoise:
		return tool.RemoveNoise(ctx)
	case OpRemoveVocals:
		return tool.RemoveVocals(ctx)
	case OpReverse:
		return tool.Reverse(ctx)
	case OpEcho:
		return tool.Echo(ctx, filter.ParseEchoPreset(s.Preset))
	case OpVibrato:
		return tool.Vibrato(ctx, s.Frequency, s.Depth)
	case OpExtractAudio:
		return tool.ExtractAudio(ctx)
	case OpPitch:
		return tool.ChangePitch(ctx, s.Multiplier)
	case OpReverb:
		return tool.ApplyReverb(ctx, intParam(s.Gain, math.MinInt32, math.MaxInt32), intParam(s.Depth, math.MinInt32, math.MaxInt32))
	case OpShifter:
		return tool.ApplyShifter(ctx, s.Start, s.Width)
	case OpWaveform:
		return tool.GenerateWaveform(ctx, audiotool.WaveformOptions{})
	case OpJoin:
		return tool.Join(ctx, s.Files...)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownOp, s.Op)
	}
}

// intParam bounds v to [lo, hi] in floating point before converting it to int.
// NaN maps to lo.
func intParam(v float64, lo, hi int) int {
	return int(limit.Clamp(float64(lo), float64(hi), v))
}
