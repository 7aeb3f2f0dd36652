package stdf

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// toUint converts an override value to an unsigned integer no larger than max
func toUint(v any, max uint64) (uint64, error) {
	var f float64
	switch x := v.(type) {
	case int:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint8:
		f = float64(x)
	case uint16:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		if x > max {
			return 0, fmt.Errorf("%w: %d exceeds %d", ErrInvalidValue, x, max)
		}
		return x, nil
	case float32:
		f = float64(x)
	case float64:
		f = x
	case json.Number:
		return toUint(x.String(), max)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidValue, x)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("%w: %T is not numeric", ErrInvalidValue, v)
	}

	if math.IsNaN(f) || f < 0 || f != math.Trunc(f) || f > float64(max) {
		return 0, fmt.Errorf("%w: %v is not an integer in [0, %d]", ErrInvalidValue, v, max)
	}
	return uint64(f), nil
}

// toText converts an override value to field text
func toText(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	case bool:
		return strconv.FormatBool(x), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), nil
	}
	return "", fmt.Errorf("%w: %T cannot be used as text", ErrInvalidValue, v)
}

// toChar converts an override value to a C1 character
func toChar(v any) (byte, error) {
	s, ok := v.(string)
	if !ok || s == "" {
		return 0, fmt.Errorf("%w: %v is not a character", ErrInvalidValue, v)
	}
	return FirstChar(s, ' ')
}
