// Package limit clamps numeric operation parameters into their valid ranges.
package limit

// Number is any integer or floating point type.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr |
		~float32 | ~float64
}

// Clamp returns value bounded to the inclusive range [lo, hi].
// The argument order (bounds first, value last) mirrors how call sites read:
// Clamp(0, 12000, volume). NaN clamps to lo.
func Clamp[T Number](lo, hi, value T) T {
	if value != value || value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
