// package camelot maps Spotify key/mode pairs to Camelot wheel codes.
//
// The Camelot wheel is a harmonic-mixing notation used by DJs: each of the 24
// musical keys gets a position 1-12 plus a letter, A for minor and B for major.
// Adjacent positions are key-compatible, so tracks tagged with neighboring
// codes can be mixed without clashing.
package camelot

import (
	"math"
	"strconv"
)

type keyMode struct {
	key  int // Pitch class 0-11, 0 = C
	mode int // 0 = minor, 1 = major
}

// wheel is the fixed 24-entry key/mode → Camelot code table.
// Pairs outside the 12×2 domain are simply absent.
var wheel = map[keyMode]string{
	// minor (mode = 0)
	{0, 0}:  "5A",  // C minor
	{1, 0}:  "12A", // C#/Db minor
	{2, 0}:  "7A",  // D minor
	{3, 0}:  "2A",  // D#/Eb minor
	{4, 0}:  "9A",  // E minor
	{5, 0}:  "4A",  // F minor
	{6, 0}:  "11A", // F#/Gb minor
	{7, 0}:  "6A",  // G minor
	{8, 0}:  "1A",  // G#/Ab minor
	{9, 0}:  "8A",  // A minor
	{10, 0}: "3A",  // A#/Bb minor
	{11, 0}: "10A", // B minor

	// major (mode = 1)
	{0, 1}:  "8B",  // C major
	{1, 1}:  "3B",  // C#/Db major
	{2, 1}:  "10B", // D major
	{3, 1}:  "5B",  // D#/Eb major
	{4, 1}:  "12B", // E major
	{5, 1}:  "7B",  // F major
	{6, 1}:  "2B",  // F#/Gb major
	{7, 1}:  "9B",  // G major
	{8, 1}:  "4B",  // G#/Ab major
	{9, 1}:  "11B", // A major
	{10, 1}: "6B",  // A#/Bb major
	{11, 1}: "1B",  // B major
}

// Lookup returns the Camelot code for a key/mode pair, or "" when the pair
// falls outside the 24-entry wheel.
func Lookup(key, mode int) string {
	return wheel[keyMode{key: key, mode: mode}]
}

// Code maps a loosely-typed key/mode pair to a Camelot code.
//
// Either input being absent (nil, or a nil typed pointer) yields "". Inputs
// that cannot be coerced to an integer also yield "" rather than an error,
// matching the lookup's "not found" behavior.
func Code(key, mode any) string {
	k, ok := coerceInt(key)
	if !ok {
		return ""
	}
	m, ok := coerceInt(mode)
	if !ok {
		return ""
	}
	return Lookup(k, m)
}

// coerceInt converts the numeric shapes upstream payloads produce into an int.
func coerceInt(v any) (int, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case int:
		return n, true
	case int64:
		return int(n), true
	case *int:
		if n == nil {
			return 0, false
		}
		return *n, true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case *float64:
		if n == nil {
			return 0, false
		}
		return coerceInt(*n)
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}
