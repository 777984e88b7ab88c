package model

import (
	"math"
	"strconv"
	"strings"
)

// ChannelDivisor is the alignment unit for scaled channel counts.
const ChannelDivisor = 8

// Align rounds v up to the nearest multiple of divisor.
func Align(v float64, divisor int) int {
	d := float64(divisor)
	return int(math.Ceil(v/d) * d)
}

// ScaleRepeat applies the depth multiplier to a repeat count.
// Counts of 1 or less are returned unchanged; larger counts are scaled,
// rounded half to even, and never drop below 1.
func ScaleRepeat(n int, depth float64) int {
	if n <= 1 {
		return n
	}
	return max(int(math.RoundToEven(float64(n)*depth)), 1)
}

// asInt reports v as an int only when it already has an integer type.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		return int(n), true
	}
	return 0, false
}

// toInt coerces v to an int the way a lenient integer conversion would:
// integers pass through, floats truncate, booleans map to 0/1 and strings
// must hold a base-10 integer.
func toInt(v any) (int, bool) {
	if n, ok := asInt(v); ok {
		return n, true
	}
	switch x := v.(type) {
	case float64:
		return truncFloat(x)
	case float32:
		return truncFloat(float64(x))
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func truncFloat(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(math.Trunc(f)), true
}

// toFloat coerces numbers and numeric strings to float64.
func toFloat(v any) (float64, bool) {
	if n, ok := asInt(v); ok {
		return float64(n), true
	}
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// sourceList normalizes a raw "from" value into a list. Sequences are
// copied; any other value, strings included, is a single source.
func sourceList(v any) []any {
	switch x := v.(type) {
	case []any:
		return append([]any(nil), x...)
	case Tuple:
		return append([]any(nil), x...)
	case []int:
		out := make([]any, len(x))
		for i, n := range x {
			out[i] = n
		}
		return out
	}
	return []any{v}
}

// sourceIndex coerces one source value, using -1 when it is not an integer.
func sourceIndex(v any) int {
	if n, ok := toInt(v); ok {
		return n
	}
	return -1
}

// displayName renders a module identifier for labels.
func displayName(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return FormatValue(v)
}
