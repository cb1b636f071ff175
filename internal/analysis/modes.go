package analysis

import "math"

// SteadyState returns the linear profile between u0 and u1 on points nodes.
func SteadyState(points int, u0, u1 float64) []float64 {
	s := make([]float64, points)
	if points == 1 {
		s[0] = u0
		return s
	}
	last := float64(points - 1)
	for i := range s {
		s[i] = u0 + (u1-u0)*float64(i)/last
	}
	return s
}

// SineModes returns the first n sine coefficients b_1..b_n of the field's
// deviation from the steady profile. Boundary nodes do not contribute.
func SineModes(field []float64, u0, u1 float64, n int) []float64 {
	nx := len(field) - 1
	if nx < 2 || n < 1 {
		return nil
	}
	n = min(n, nx-1)
	steady := SteadyState(len(field), u0, u1)

	b := make([]float64, n)
	for m := 1; m <= n; m++ {
		sum := 0.0
		for i := 1; i < nx; i++ {
			sum += (field[i] - steady[i]) * math.Sin(math.Pi*float64(m*i)/float64(nx))
		}
		b[m-1] = 2 * sum / float64(nx)
	}
	return b
}

// Amplification is the per-step factor the explicit scheme applies to
// mode m on a grid of nx intervals at diffusion number k.
func Amplification(k float64, m, nx int) float64 {
	s := math.Sin(math.Pi * float64(m) / (2 * float64(nx)))
	return 1 - 4*k*s*s
}

// MaxAmplification is the largest |g_m| over the modes the grid resolves.
func MaxAmplification(k float64, nx int) float64 {
	g := 0.0
	for m := 1; m < nx; m++ {
		g = max(g, math.Abs(Amplification(k, m, nx)))
	}
	return g
}

// MeasuredFactor is the geometric mean per-step factor that takes a mode
// from amplitude before to amplitude after in steps steps. The sign is
// negative when the mode flipped an odd number of times.
func MeasuredFactor(before, after float64, steps int) float64 {
	if steps <= 0 || before == 0 {
		return math.NaN()
	}
	r := after / before
	g := math.Pow(math.Abs(r), 1/float64(steps))
	if r < 0 {
		g = -g
	}
	return g
}
