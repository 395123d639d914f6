package pure_utils

import (
	"encoding/json"
	"math"
)

// NumericValue returns the float value of integers, floats and json numbers. Booleans are not
// numeric. Nil and NaN are reported as null.
func NumericValue(value any) (f float64, numeric bool, null bool) {
	switch v := value.(type) {
	case nil:
		return 0, false, true
	case int:
		return float64(v), true, false
	case int8:
		return float64(v), true, false
	case int16:
		return float64(v), true, false
	case int32:
		return float64(v), true, false
	case int64:
		return float64(v), true, false
	case uint:
		return float64(v), true, false
	case uint8:
		return float64(v), true, false
	case uint16:
		return float64(v), true, false
	case uint32:
		return float64(v), true, false
	case uint64:
		return float64(v), true, false
	case float32:
		if math.IsNaN(float64(v)) {
			return 0, false, true
		}
		return float64(v), true, false
	case float64:
		if math.IsNaN(v) {
			return 0, false, true
		}
		return v, true, false
	case json.Number:
		n, err := v.Float64()
		return n, err == nil, false
	}
	return 0, false, false
}
