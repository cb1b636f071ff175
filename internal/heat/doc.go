// Package heat holds the discretized temperature field of a 1-D rod and
// advances it with the explicit finite-difference scheme
//
//	u[i] += k * (u[i-1] - 2u[i] + u[i+1]),  k = alpha*dt/dx²
//
// The field lives in two buffers, [Grid] swaps their roles on every
// [Grid.Step] instead of copying. Boundary nodes are Dirichlet values written
// by [Grid.SetBoundary] before each step.
//
// # Example
//
//	g := heat.NewGrid(11, 1.0, heat.Constant)
//	for n := 0; n < 100; n++ {
//	    g.SetBoundary(0, 0)
//	    g.Step(1.0, 0.001)
//	}
//	e := g.Energy()
//
// # Stability
//
// The scheme is stable only for k <= 0.5. Grid does not check this; an
// unstable choice shows up as oscillating or diverging energy.
package heat
