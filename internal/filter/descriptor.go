// Package filter translates high-level audio operations into engine-neutral
// filter-graph descriptors. Every numeric parameter is clamped before a
// descriptor is returned, so a Descriptor never carries an out-of-range value.
package filter

import (
	"strconv"
	"strings"
)

// OverwriteFlag tells the engine to replace its output without prompting.
const OverwriteFlag = "-y"

// Kind identifies the operation a descriptor was built for.
type Kind string

// Operation kinds with a working descriptor builder.
const (
	KindTrim           Kind = "trim"
	KindVolume         Kind = "volume"
	KindWindowedVolume Kind = "volume_window"
	KindNormalize      Kind = "normalize"
	KindSpeed          Kind = "speed"
	KindBass           Kind = "bass"
	KindBandPass       Kind = "band_pass"
	KindRemoveVocals   Kind = "remove_vocals"
	KindReverse        Kind = "reverse"
	KindEcho           Kind = "echo"
	KindVibrato        Kind = "vibrato"
	KindExtractAudio   Kind = "extract_audio"
)

// Declared operation kinds that have no descriptor builder.
const (
	KindWaveform Kind = "waveform"
	KindPitch    Kind = "pitch"
	KindReverb   Kind = "reverb"
	KindShifter  Kind = "shifter"
	KindJoin     Kind = "join"
)

// Filter flags understood by the engine.
const (
	flagAudioFilter   = "-af"
	flagFilterAudio   = "-filter:a"
	flagFilterComplex = "-filter_complex"
)

// Param is a single filter parameter. An empty Key renders the value
// positionally.
type Param struct {
	Key   string
	Value string
}

// Expression is one filter in a linear filter chain, e.g. "bass=g=10:w=0.5:f=150".
type Expression struct {
	Name   string
	Params []Param
}

// String renders the expression in engine syntax.
func (e Expression) String() string {
	if len(e.Params) == 0 {
		return e.Name
	}
	parts := make([]string, 0, len(e.Params))
	for _, p := range e.Params {
		if p.Key == "" {
			parts = append(parts, p.Value)
			continue
		}
		parts = append(parts, p.Key+"="+p.Value)
	}
	return e.Name + "=" + strings.Join(parts, ":")
}

// Descriptor describes a single transformation step: input, output, flags and
// an ordered filter chain. Filter order matters; the chain is never reordered.
type Descriptor struct {
	Kind       Kind
	InputPath  string
	OutputPath string
	// GlobalFlags precede the input, e.g. the overwrite flag.
	GlobalFlags []string
	// PreFilter options follow the input and precede the filter chain.
	PreFilter []string
	// FilterFlag selects how the chain is passed (-af, -filter:a, -filter_complex).
	// Empty when the step has no filter chain.
	FilterFlag string
	Filters    []Expression
	// PostFilter options follow the filter chain and precede the output.
	PostFilter []string
}

func newDescriptor(kind Kind) Descriptor {
	return Descriptor{
		Kind:        kind,
		GlobalFlags: []string{OverwriteFlag},
	}
}

// WithPaths returns a copy of d bound to the given input and output paths.
func (d Descriptor) WithPaths(input, output string) Descriptor {
	d.InputPath = input
	d.OutputPath = output
	return d
}

// Chain renders the filter chain as a comma separated filtergraph.
func (d Descriptor) Chain() string {
	parts := make([]string, len(d.Filters))
	for i, f := range d.Filters {
		parts[i] = f.String()
	}
	return strings.Join(parts, ",")
}

// Args builds the engine argument list: global flags, "-i input", pre-filter
// options, the filter flag and chain, post-filter options, and the output path.
func (d Descriptor) Args() []string {
	args := make([]string, 0, len(d.GlobalFlags)+len(d.PreFilter)+len(d.PostFilter)+6)
	args = append(args, d.GlobalFlags...)
	args = append(args, "-i", d.InputPath)
	args = append(args, d.PreFilter...)
	if d.FilterFlag != "" && len(d.Filters) > 0 {
		args = append(args, d.FilterFlag, d.Chain())
	}
	args = append(args, d.PostFilter...)
	args = append(args, d.OutputPath)
	return args
}

// String returns the argument list joined by spaces (for logging).
func (d Descriptor) String() string {
	return strings.Join(d.Args(), " ")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatInt(v int) string {
	return strconv.Itoa(v)
}

func formatFloats(vs []float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = formatFloat(v)
	}
	return strings.Join(parts, "|")
}
