package thermal

import (
	"math"
)

func Lerp(value1, value2, amount float64) float64 { return value1 + (value2-value1)*amount }

// cubic evaluates a·x³ + b·x² + c·x + d in Horner form.
func cubic(a, b, c, d, x float64) float64 {
	return ((a*x+b)*x+c)*x + d
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
