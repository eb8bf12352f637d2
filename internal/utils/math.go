package utils

import "math"

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*100) / 100
}

// Percent returns part/total*100, or empty when total is zero.
func Percent(part, total int, empty float64) float64 {
	if total == 0 {
		return empty
	}
	return float64(part) / float64(total) * 100
}

func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
