package filter

import (
	"errors"
	"fmt"
	"math"
	"regexp"

	"github.com/oluwabajio/AudioTool/internal/limit"
)

// Parameter ranges enforced by the builders.
const (
	MaxWindowVolume = 12000.0

	MinBassGain  = -20.0
	MaxBassGain  = 20.0
	MinBassWidth = 0.0
	MaxBassWidth = 1.0

	// MaxFrequency bounds every frequency given in Hz (bass, highpass, lowpass).
	MaxFrequency = 999999

	MinVibratoFrequency = 0.1
	MaxVibratoFrequency = 20000.0
	MinVibratoDepth     = 0.0
	MaxVibratoDepth     = 1.0

	// NoiseHighpass and NoiseLowpass are the band kept by RemoveNoise.
	NoiseHighpass = 400
	NoiseLowpass  = 4000

	// FixedTempo is the only tempo factor Speed supports.
	FixedTempo = 2.0
)

// ErrInvalidTimecode is returned when a trim offset is not hh:mm:ss[.fff].
var ErrInvalidTimecode = errors.New("invalid timecode: expected hh:mm:ss")

var timecodeRe = regexp.MustCompile(`^\d{2,}:[0-5]\d:[0-5]\d(\.\d{1,3})?$`)

// ValidTimecode reports whether s is a hh:mm:ss offset, optionally with
// up to three fractional digits.
func ValidTimecode(s string) bool {
	return timecodeRe.MatchString(s)
}

// TrimSeconds keeps the range [start, end] given in whole seconds.
// Negative offsets clamp to zero and end never precedes start.
func TrimSeconds(start, end int) Descriptor {
	start = limit.Clamp(0, math.MaxInt, start)
	end = limit.Clamp(start, math.MaxInt, end)

	d := newDescriptor(KindTrim)
	d.PreFilter = []string{"-ss", formatInt(start), "-to", formatInt(end)}
	return d
}

// TrimTimecode keeps the range [start, end] given as hh:mm:ss offsets.
// Only the format is checked.
func TrimTimecode(start, end string) (Descriptor, error) {
	if !ValidTimecode(start) {
		return Descriptor{}, fmt.Errorf("%w: start %q", ErrInvalidTimecode, start)
	}
	if !ValidTimecode(end) {
		return Descriptor{}, fmt.Errorf("%w: end %q", ErrInvalidTimecode, end)
	}

	d := newDescriptor(KindTrim)
	d.PreFilter = []string{"-ss", start, "-to", end}
	return d, nil
}

// Volume applies a gain multiplier to the whole duration. 1 keeps the
// volume, 0.5 halves it. Negative multipliers clamp to zero.
func Volume(multiplier float64) Descriptor {
	multiplier = limit.Clamp(0, math.MaxFloat64, multiplier)

	d := newDescriptor(KindVolume)
	d.FilterFlag = flagFilterAudio
	d.Filters = []Expression{{
		Name:   "volume",
		Params: []Param{{Value: formatFloat(multiplier)}},
	}}
	return d
}

// WindowedVolume applies a gain multiplier between start and end seconds.
// durationSeconds bounds the window and must come from a probe of the
// working file. A window whose end precedes its start collapses to an empty
// window at start.
func WindowedVolume(multiplier float64, start, end, durationSeconds int) Descriptor {
	durationSeconds = limit.Clamp(0, math.MaxInt, durationSeconds)
	multiplier = limit.Clamp(0, MaxWindowVolume, multiplier)
	start = limit.Clamp(0, durationSeconds, start)
	end = limit.Clamp(0, durationSeconds, end)
	end = limit.Clamp(start, durationSeconds, end)

	d := newDescriptor(KindWindowedVolume)
	d.FilterFlag = flagAudioFilter
	d.Filters = []Expression{{
		Name: "volume",
		Params: []Param{
			{Key: "enable", Value: fmt.Sprintf("'between(t,%d,%d)'", start, end)},
			{Key: "volume", Value: formatFloat(multiplier)},
		},
	}}
	return d
}

// Normalize applies loudness normalisation.
func Normalize() Descriptor {
	d := newDescriptor(KindNormalize)
	d.FilterFlag = flagFilterAudio
	d.Filters = []Expression{{Name: "loudnorm"}}
	return d
}

// Speed changes tempo by FixedTempo without altering pitch.
func Speed() Descriptor {
	d := newDescriptor(KindSpeed)
	d.FilterFlag = flagFilterAudio
	d.Filters = []Expression{{
		Name:   "atempo",
		Params: []Param{{Value: formatFloat(FixedTempo)}},
	}}
	return d
}

// Bass boosts or cuts low frequencies with a shelving filter.
func Bass(gain, width float64, frequency int) Descriptor {
	gain = limit.Clamp(MinBassGain, MaxBassGain, gain)
	width = limit.Clamp(MinBassWidth, MaxBassWidth, width)
	frequency = limit.Clamp(0, MaxFrequency, frequency)

	d := newDescriptor(KindBass)
	d.FilterFlag = flagAudioFilter
	d.Filters = []Expression{{
		Name: "bass",
		Params: []Param{
			{Key: "g", Value: formatFloat(gain)},
			{Key: "w", Value: formatFloat(width)},
			{Key: "f", Value: formatInt(frequency)},
		},
	}}
	return d
}

// BandPass cuts frequencies below highpass and above lowpass (both in Hz).
func BandPass(highpass, lowpass int) Descriptor {
	highpass = limit.Clamp(0, MaxFrequency, highpass)
	lowpass = limit.Clamp(0, MaxFrequency, lowpass)

	d := newDescriptor(KindBandPass)
	d.FilterFlag = flagAudioFilter
	d.Filters = []Expression{
		{Name: "highpass", Params: []Param{{Key: "f", Value: formatInt(highpass)}}},
		{Name: "lowpass", Params: []Param{{Key: "f", Value: formatInt(lowpass)}}},
	}
	return d
}

// RemoveNoise keeps the NoiseHighpass..NoiseLowpass band.
func RemoveNoise() Descriptor {
	return BandPass(NoiseHighpass, NoiseLowpass)
}

// RemoveVocals cancels centre-panned content by phase inversion. The output
// is mono.
func RemoveVocals() Descriptor {
	d := newDescriptor(KindRemoveVocals)
	d.FilterFlag = flagAudioFilter
	d.Filters = []Expression{{
		Name:   "pan",
		Params: []Param{{Value: "stereo|c0=c0|c1=-1*c1"}},
	}}
	d.PostFilter = []string{"-ac", "1"}
	return d
}

// Reverse plays the audio backwards. A video stream is copied unmodified.
func Reverse() Descriptor {
	d := newDescriptor(KindReverse)
	d.PreFilter = []string{"-map", "0", "-c:v", "copy"}
	d.FilterFlag = flagAudioFilter
	d.Filters = []Expression{{Name: "areverse"}}
	return d
}

// Echo applies the given echo preset. Unknown presets use EchoDefault.
func Echo(preset EchoPreset) Descriptor {
	p := preset.Params()

	d := newDescriptor(KindEcho)
	d.FilterFlag = flagFilterComplex
	d.Filters = []Expression{{
		Name: "aecho",
		Params: []Param{
			{Value: formatFloat(p.InGain)},
			{Value: formatFloat(p.OutGain)},
			{Value: formatFloats(p.Delays)},
			{Value: formatFloats(p.Decays)},
		},
	}}
	return d
}

// Vibrato modulates pitch at frequency Hz with the given depth.
func Vibrato(frequency, depth float64) Descriptor {
	frequency = limit.Clamp(MinVibratoFrequency, MaxVibratoFrequency, frequency)
	depth = limit.Clamp(MinVibratoDepth, MaxVibratoDepth, depth)

	d := newDescriptor(KindVibrato)
	d.FilterFlag = flagFilterComplex
	d.Filters = []Expression{{
		Name: "vibrato",
		Params: []Param{
			{Key: "f", Value: formatFloat(frequency)},
			{Key: "d", Value: formatFloat(depth)},
		},
	}}
	return d
}

// ExtractAudio drops the video stream and keeps audio only.
func ExtractAudio() Descriptor {
	d := newDescriptor(KindExtractAudio)
	d.PostFilter = []string{"-vn"}
	return d
}
