// Package analysis decomposes a temperature field into the sine modes of
// the rod and compares their decay with the explicit scheme's
// amplification factor.
//
// With Dirichlet ends the deviation from the linear steady profile
// expands as
//
//	u(x) - s(x) = sum_m b_m sin(m pi x / L)
//
// and each explicit step multiplies b_m by
//
//	g_m = 1 - 4k sin^2(m pi / 2Nx)
//
// so |g_m| > 1 for some m exactly when k > 0.5:
//
//	before := analysis.SineModes(initial, u0, u1, 5)
//	after := analysis.SineModes(final, u0, u1, 5)
//	g := analysis.MeasuredFactor(before[0], after[0], nt)
package analysis
