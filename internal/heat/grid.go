package heat

// Grid is the temperature field at two time levels. cur is the present
// level, prev the one before it. Both always hold points values.
type Grid struct {
	points  int
	spacing float64
	cur     []float64
	prev    []float64
	workers int
}

// NewGrid allocates a grid of points nodes with the given spacing and fills
// both time levels with ic.
func NewGrid(points int, spacing float64, ic InitialCondition) *Grid {
	g := &Grid{
		points:  points,
		spacing: spacing,
		cur:     make([]float64, points),
		prev:    make([]float64, points),
	}
	ic.fill(g.cur)
	copy(g.prev, g.cur)
	return g
}

// NewGridFromField builds a grid whose both time levels equal field.
func NewGridFromField(field []float64, spacing float64) *Grid {
	g := &Grid{
		points:  len(field),
		spacing: spacing,
		cur:     make([]float64, len(field)),
		prev:    make([]float64, len(field)),
	}
	copy(g.cur, field)
	copy(g.prev, field)
	return g
}

func (g *Grid) Points() int      { return g.points }
func (g *Grid) Spacing() float64 { return g.spacing }

// SetWorkers splits the interior update of large grids across n goroutines.
// n <= 1 keeps the serial loop.
func (g *Grid) SetWorkers(n int) { g.workers = n }

// SetBoundary writes the Dirichlet values into the present level.
func (g *Grid) SetBoundary(u0, u1 float64) {
	g.cur[0] = u0
	g.cur[g.points-1] = u1
}

// Step advances the field by one explicit Euler step of size dt.
func (g *Grid) Step(alpha, dt float64) {
	g.cur, g.prev = g.prev, g.cur

	k := alpha * dt / (g.spacing * g.spacing)
	last := g.points - 1
	if last >= 2 {
		if g.workers > 1 && last-1 >= minParallelNodes {
			parallelFor(1, last, g.workers, func(lo, hi int) {
				updateInterior(g.cur, g.prev, k, lo, hi)
			})
		} else {
			updateInterior(g.cur, g.prev, k, 1, last)
		}
	}
	g.cur[0] = g.prev[0]
	g.cur[last] = g.prev[last]
}

// updateInterior writes nodes [lo, hi) of u from the previous level p.
func updateInterior(u, p []float64, k float64, lo, hi int) {
	for i := lo; i < hi; i++ {
		u[i] = p[i] + k*(p[i-1]-2*p[i]+p[i+1])
	}
}

// Energy integrates the present level with the trapezoidal rule.
func (g *Grid) Energy() float64 {
	last := g.points - 1
	if last == 0 {
		return g.spacing * g.cur[0]
	}
	sum := 0.5 * (g.cur[0] + g.cur[last])
	for i := 1; i < last; i++ {
		sum += g.cur[i]
	}
	return sum * g.spacing
}

// Field copies the present level into dst, allocating when dst is too short.
func (g *Grid) Field(dst []float64) []float64 {
	return copyInto(dst, g.cur)
}

// Previous copies the prior level into dst.
func (g *Grid) Previous(dst []float64) []float64 {
	return copyInto(dst, g.prev)
}

func copyInto(dst, src []float64) []float64 {
	if cap(dst) < len(src) {
		dst = make([]float64, len(src))
	}
	dst = dst[:len(src)]
	copy(dst, src)
	return dst
}

// DiffusionNumber returns k = alpha*dt/dx², the explicit scheme's stability
// parameter.
func DiffusionNumber(alpha, dt, dx float64) float64 {
	return alpha * dt / (dx * dx)
}
