package thermal

// Coefficients holds the cubic calibration polynomial
// f(x) = a·x³ + b·x² + c·x + d, stored as [a, b, c, d].
type Coefficients [4]float64

func (c Coefficients) A() float64 { return c[0] }
func (c Coefficients) B() float64 { return c[1] }
func (c Coefficients) C() float64 { return c[2] }
func (c Coefficients) D() float64 { return c[3] }

// Eval evaluates the polynomial at x.
func (c Coefficients) Eval(x float64) float64 {
	return cubic(c[0], c[1], c[2], c[3], x)
}

// Reference is one row of the calibration table: the polynomial fitted at a
// single FPA temperature.
type Reference struct {
	Temperature  float64
	Coefficients Coefficients
}

type References []Reference

func (t References) Len() int {
	return len(t)
}

func (t References) Less(i, j int) bool {
	return t[i].Temperature < t[j].Temperature
}

func (t References) Swap(i, j int) {
	t[i], t[j] = t[j], t[i]
}

// Temperatures returns the reference FPA temperatures in table order.
func (t References) Temperatures() []float64 {
	ret := make([]float64, len(t))
	for i := range t {
		ret[i] = t[i].Temperature
	}
	return ret
}
