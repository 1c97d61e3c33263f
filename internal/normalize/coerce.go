package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseInt converts a weight value to an integer. Strings are read up to the
// first non-digit after optional leading whitespace and sign, so "12px" is 12
// and "4.7" is 4. Numbers are truncated toward zero. Anything that yields no
// digits returns nil, which encodes as JSON null.
func ParseInt(value any) any {
	switch v := value.(type) {
	case string:
		return parseIntPrefix(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}

		f, err := v.Float64()
		if err != nil {
			return parseIntPrefix(string(v))
		}

		return truncate(f)
	case float64:
		return truncate(v)
	case float32:
		return truncate(float64(v))
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	default:
		return nil
	}
}

func parseIntPrefix(s string) any {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	sign := ""
	if s != "" && (s[0] == '+' || s[0] == '-') {
		sign, s = s[:1], s[1:]
	}

	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}

	if end == 0 {
		return nil
	}

	digits := sign + s[:end]

	n, err := strconv.ParseInt(digits, 10, 64)
	if err == nil {
		return n
	}

	// Out of int64 range: keep the magnitude as a float.
	f, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return nil
	}

	return f
}

func truncate(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}

	t := math.Trunc(f)
	if t < math.MinInt64 || t >= math.MaxInt64 {
		return t
	}

	return int64(t)
}
