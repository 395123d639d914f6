package pure_utils

import "math"

// Round rounds half away from zero to the given number of decimals
func Round(value float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(value*factor) / factor
}
