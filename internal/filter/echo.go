package filter

import "strings"

// EchoPreset selects one of the fixed echo parameter sets.
type EchoPreset int

// Echo presets. The zero value is EchoDefault.
const (
	EchoDefault EchoPreset = iota
	EchoTwiceInstruments
	EchoMetallic
	EchoOpenAir
)

// EchoParams are the aecho parameters: gains, delays in milliseconds and
// per-delay decays.
type EchoParams struct {
	InGain  float64
	OutGain float64
	Delays  []float64
	Decays  []float64
}

// Params returns the fixed parameter set of the preset.
func (p EchoPreset) Params() EchoParams {
	switch p {
	case EchoTwiceInstruments:
		return EchoParams{InGain: 0.8, OutGain: 0.88, Delays: []float64{60}, Decays: []float64{0.4}}
	case EchoMetallic:
		return EchoParams{InGain: 0.8, OutGain: 0.88, Delays: []float64{6}, Decays: []float64{0.4}}
	case EchoOpenAir:
		return EchoParams{InGain: 0.8, OutGain: 0.9, Delays: []float64{1000}, Decays: []float64{0.3}}
	case EchoDefault:
		fallthrough
	default:
		return EchoParams{InGain: 0.8, OutGain: 0.9, Delays: []float64{1000, 1800}, Decays: []float64{0.3, 0.25}}
	}
}

func (p EchoPreset) String() string {
	switch p {
	case EchoTwiceInstruments:
		return "twice_instruments"
	case EchoMetallic:
		return "metallic"
	case EchoOpenAir:
		return "open_air"
	default:
		return "default"
	}
}

// ParseEchoPreset maps a preset name to its EchoPreset. Names are case
// insensitive and accept '-' or '_'. Unrecognised names yield EchoDefault.
func ParseEchoPreset(name string) EchoPreset {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_") {
	case "twice_instruments":
		return EchoTwiceInstruments
	case "metallic":
		return EchoMetallic
	case "open_air":
		return EchoOpenAir
	default:
		return EchoDefault
	}
}
