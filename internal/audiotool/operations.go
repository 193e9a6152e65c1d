package audiotool

import (
	"context"
	"fmt"

	"github.com/oluwabajio/AudioTool/internal/filter"
)

// Trim keeps the range [start, end] seconds of the working file.
func (t *Tool) Trim(ctx context.Context, start, end int) (string, error) {
	return t.apply(ctx, filter.TrimSeconds(start, end))
}

// TrimTimecode keeps the range between two hh:mm:ss offsets.
func (t *Tool) TrimTimecode(ctx context.Context, start, end string) (string, error) {
	if err := t.ready(); err != nil {
		return "", err
	}
	d, err := filter.TrimTimecode(start, end)
	if err != nil {
		return "", err
	}
	return t.apply(ctx, d)
}

// SetVolume scales the volume of the whole file.
func (t *Tool) SetVolume(ctx context.Context, multiplier float64) (string, error) {
	return t.apply(ctx, filter.Volume(multiplier))
}

// SetVolumeWindow scales the volume between start and end seconds. The
// window is clamped to the current duration, which is probed first.
func (t *Tool) SetVolumeWindow(ctx context.Context, multiplier float64, start, end int) (string, error) {
	if err := t.ready(); err != nil {
		return "", err
	}
	ms, err := t.durationMillis(ctx)
	if err != nil {
		return "", err
	}
	return t.apply(ctx, filter.WindowedVolume(multiplier, start, end, int(ms/1000)))
}

// Normalize applies loudness normalization.
func (t *Tool) Normalize(ctx context.Context) (string, error) {
	return t.apply(ctx, filter.Normalize())
}

// ChangeSpeed changes the tempo. Only filter.FixedTempo is supported.
func (t *Tool) ChangeSpeed(ctx context.Context, multiplier float64) (string, error) {
	if err := t.ready(); err != nil {
		return "", err
	}
	if multiplier != filter.FixedTempo {
		return "", fmt.Errorf("%w: %s x%g", ErrNotImplemented, filter.KindSpeed, multiplier)
	}
	return t.apply(ctx, filter.Speed())
}

// Bass boosts or cuts low frequencies.
func (t *Tool) Bass(ctx context.Context, gain, width float64, frequency int) (string, error) {
	return t.apply(ctx, filter.Bass(gain, width, frequency))
}

// BandPass keeps frequencies between highpass and lowpass Hz.
func (t *Tool) BandPass(ctx context.Context, highpass, lowpass int) (string, error) {
	return t.apply(ctx, filter.BandPass(highpass, lowpass))
}

// RemoveNoise keeps the speech band.
func (t *Tool) RemoveNoise(ctx context.Context) (string, error) {
	return t.apply(ctx, filter.RemoveNoise())
}

// RemoveVocals cancels the centre channel and downmixes to mono.
func (t *Tool) RemoveVocals(ctx context.Context) (string, error) {
	return t.apply(ctx, filter.RemoveVocals())
}

// Reverse plays the audio backwards.
func (t *Tool) Reverse(ctx context.Context) (string, error) {
	return t.apply(ctx, filter.Reverse())
}

// Echo applies an echo preset.
func (t *Tool) Echo(ctx context.Context, preset filter.EchoPreset) (string, error) {
	return t.apply(ctx, filter.Echo(preset))
}

// Vibrato applies vibrato.
func (t *Tool) Vibrato(ctx context.Context, frequency, depth float64) (string, error) {
	return t.apply(ctx, filter.Vibrato(frequency, depth))
}

// ExtractAudio drops any video stream.
func (t *Tool) ExtractAudio(ctx context.Context) (string, error) {
	return t.apply(ctx, filter.ExtractAudio())
}

// WaveformOptions describes a waveform image render.
type WaveformOptions struct {
	Width  int
	Height int
	Color  string
}

// GenerateWaveform renders a waveform image of the working file.
func (t *Tool) GenerateWaveform(_ context.Context, _ WaveformOptions) (string, error) {
	return t.notImplemented(filter.KindWaveform)
}

// ChangePitch shifts the pitch.
func (t *Tool) ChangePitch(_ context.Context, _ float64) (string, error) {
	return t.notImplemented(filter.KindPitch)
}

// ApplyReverb adds reverberation.
func (t *Tool) ApplyReverb(_ context.Context, _, _ int) (string, error) {
	return t.notImplemented(filter.KindReverb)
}

// ApplyShifter applies a frequency shifter.
func (t *Tool) ApplyShifter(_ context.Context, _ int, _ float64) (string, error) {
	return t.notImplemented(filter.KindShifter)
}

// Join appends other files to the working file.
func (t *Tool) Join(_ context.Context, _ ...string) (string, error) {
	return t.notImplemented(filter.KindJoin)
}

func (t *Tool) notImplemented(kind filter.Kind) (string, error) {
	if err := t.ready(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("%w: %s", ErrNotImplemented, kind)
}
