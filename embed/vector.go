package embed

import "math"

// NormalizeVector scales v to unit length and returns a new slice.
// A zero vector normalizes to a zero vector of the same length.
func NormalizeVector(v []float32) []float32 {
	if len(v) == 0 {
		return v
	}

	var sumSquares float64
	for _, value := range v {
		sumSquares += float64(value) * float64(value)
	}
	magnitude := math.Sqrt(sumSquares)

	result := make([]float32, len(v))
	if magnitude == 0 {
		return result
	}
	for i, value := range v {
		result[i] = float32(float64(value) / magnitude)
	}
	return result
}
