package audiotool

import (
	"context"

	"github.com/oluwabajio/AudioTool/internal/filter"
)

// OnFile receives the working file path after a successful operation.
type OnFile func(path string)

// OnNumber receives a numeric result after a successful query.
type OnNumber func(n int64)

// Chain is a fluent front end over a Tool. Each call runs synchronously and,
// on success, invokes its callback exactly once. After the first failure the
// remaining calls are skipped and Err reports that failure.
type Chain struct {
	ctx  context.Context
	tool *Tool
	err  error
}

// NewChain returns a chain that runs operations on tool with ctx.
func NewChain(ctx context.Context, tool *Tool) *Chain {
	return &Chain{ctx: ctx, tool: tool}
}

// Err returns the first error encountered by the chain.
func (c *Chain) Err() error {
	return c.err
}

// Tool returns the underlying tool.
func (c *Chain) Tool() *Tool {
	return c.tool
}

func (c *Chain) file(cb OnFile, op func(ctx context.Context) (string, error)) *Chain {
	if c.err != nil {
		return c
	}
	path, err := op(c.ctx)
	if err != nil {
		c.err = err
		return c
	}
	if cb != nil {
		cb(path)
	}
	return c
}

func (c *Chain) run(op func(ctx context.Context) error) *Chain {
	if c.err != nil {
		return c
	}
	c.err = op(c.ctx)
	return c
}

// Open opens source.
func (c *Chain) Open(source string, cb OnFile) *Chain {
	return c.file(cb, func(ctx context.Context) (string, error) {
		return c.tool.Open(ctx, source)
	})
}

// Trim trims to [start, end] seconds.
func (c *Chain) Trim(start, end int, cb OnFile) *Chain {
	return c.file(cb, func(ctx context.Context) (string, error) {
		return c.tool.Trim(ctx, start, end)
	})
}

// TrimTimecode trims between two hh:mm:ss offsets.
func (c *Chain) TrimTimecode(start, end string, cb OnFile) *Chain {
	return c.file(cb, func(ctx context.Context) (string, error) {
		return c.tool.TrimTimecode(ctx, start, end)
	})
}

// SetVolume scales the volume of the whole file.
func (c *Chain) SetVolume(multiplier float64, cb OnFile) *Chain {
	return c.file(cb, func(ctx context.Context) (string, error) {
		return c.tool.SetVolume(ctx, multiplier)
	})
}

// SetVolumeWindow scales the volume between start and end seconds.
func (c *Chain) SetVolumeWindow(multiplier float64, start, end int, cb OnFile) *Chain {
	return c.file(cb, func(ctx context.Context) (string, error) {
		return c.tool.SetVolumeWindow(ctx, multiplier, start, end)
	})
}

// Normalize applies loudness normalization.
func (c *Chain) Normalize(cb OnFile) *Chain {
	return c.file(cb, c.tool.Normalize)
}

// ChangeSpeed changes the tempo.
func (c *Chain) ChangeSpeed(multiplier float64, cb OnFile) *Chain {
	return c.file(cb, func(ctx context.Context) (string, error) {
		return c.tool.ChangeSpeed(ctx, multiplier)
	})
}

// Bass boosts or cuts low frequencies.
func (c *Chain) Bass(gain, width float64, frequency int, cb OnFile) *Chain {
	return c.file(cb, func(ctx context.Context) (string, error) {
		return c.tool.Bass(ctx, gain, width, frequency)
	})
}

// BandPass keeps frequencies between highpass and lowpass Hz.
func (c *Chain) BandPass(highpass, lowpass int, cb OnFile) *Chain {
	return c.file(cb, func(ctx context.Context) (string, error) {
		return c.tool.BandPass(ctx, highpass, lowpass)
	})
}

// RemoveNoise keeps the speech band.
func (c *Chain) RemoveNoise(cb OnFile) *Chain {
	return c.file(cb, c.tool.RemoveNoise)
}

// RemoveVocals cancels the centre channel.
func (c *Chain) RemoveVocals(cb OnFile) *Chain {
	return c.file(cb, c.tool.RemoveVocals)
}

// Reverse plays the audio backwards.
func (c *Chain) Reverse(cb OnFile) *Chain {
	return c.file(cb, c.tool.Reverse)
}

// Echo applies an echo preset.
func (c *Chain) Echo(preset filter.EchoPreset, cb OnFile) *Chain {
	return c.file(cb, func(ctx context.Context) (string, error) {
		return c.tool.Echo(ctx, preset)
	})
}

// Vibrato applies vibrato.
func (c *Chain) Vibrato(frequency, depth float64, cb OnFile) *Chain {
	return c.file(cb, func(ctx context.Context) (string, error) {
		return c.tool.Vibrato(ctx, frequency, depth)
	})
}

// ExtractAudio drops any video stream.
func (c *Chain) ExtractAudio(cb OnFile) *Chain {
	return c.file(cb, c.tool.ExtractAudio)
}

// Duration reports the working file duration in unit.
func (c *Chain) Duration(unit DurationUnit, cb OnNumber) *Chain {
	if c.err != nil {
		return c
	}
	n, err := c.tool.Duration(c.ctx, unit)
	if err != nil {
		c.err = err
		return c
	}
	if cb != nil {
		cb(n)
	}
	return c
}

// SaveTo copies the working file to dst.
func (c *Chain) SaveTo(dst string) *Chain {
	return c.run(func(ctx context.Context) error {
		return c.tool.SaveTo(ctx, dst)
	})
}

// ReleaseCurrent deletes the working file.
func (c *Chain) ReleaseCurrent() *Chain {
	return c.run(c.tool.ReleaseCurrent)
}
