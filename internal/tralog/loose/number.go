package loose

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is a numeric field as it appears in stored documents: sometimes a
// number, sometimes a string, sometimes missing. Decoding never fails; any
// value that does not coerce to a finite number becomes zero.
type Number struct {
	value float64
	raw   json.RawMessage
}

func Num(f float64) Number {
	return Number{value: finiteOrZero(f)}
}

// Float returns the coerced value, always finite.
func (n Number) Float() float64 {
	return n.value
}

func (n Number) Positive() bool {
	return n.value > 0
}

func (n *Number) UnmarshalJSON(data []byte) error {
	n.raw = append(n.raw[:0], data...)
	n.value = coerce(data)
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if len(n.raw) > 0 {
		return n.raw, nil
	}
	return strconv.AppendFloat(nil, n.value, 'f', -1, 64), nil
}

func coerce(data []byte) float64 {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return 0
	}

	switch data[0] {
	case 'n', 'f', '{', '[':
		// null, false, objects and arrays
		return 0
	case 't':
		return 1
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return 0
		}
		f, _ := parseNumericString(s)
		return f
	default:
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return 0
		}
		return finiteOrZero(f)
	}
}

// strictNumber is like coerce, but reports whether data really held a number
// or a numeric string.
func strictNumber(data []byte) (float64, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return 0, false
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return 0, false
		}
		if strings.TrimSpace(s) == "" {
			return 0, false
		}
		return parseNumericString(s)
	case 'n', 't', 'f', '{', '[':
		return 0, false
	default:
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
}

func parseNumericString(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}

	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "0x") || strings.HasPrefix(lower, "0o") || strings.HasPrefix(lower, "0b") {
		u, err := strconv.ParseUint(lower[2:], prefixBase(lower[1]), 64)
		if err != nil {
			return 0, false
		}
		return float64(u), true
	}

	// ParseFloat accepts "Inf", "NaN" and underscores, none of which are numbers here
	if strings.ContainsAny(lower, "_in") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func prefixBase(c byte) int {
	switch c {
	case 'x':
		return 16
	case 'o':
		return 8
	default:
		return 2
	}
}

func finiteOrZero(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
