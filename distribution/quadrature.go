package distribution

import (
	"fmt"

	"github.com/domino14/bullseye/geometry"
)

type quadNode struct {
	r, s, w float64
}

// 7-point rule on the reference triangle (0,0) (1,0) (0,1), exact for
// polynomials of degree 5 (Dunavant 1985). Weights sum to 1.
var dunavant7 = [7]quadNode{
	{1.0 / 3, 1.0 / 3, 0.225},
	{0.059715871789770, 0.470142064105115, 0.132394152788506},
	{0.470142064105115, 0.059715871789770, 0.132394152788506},
	{0.470142064105115, 0.470142064105115, 0.132394152788506},
	{0.797426985353087, 0.101286507323456, 0.125939180544827},
	{0.101286507323456, 0.797426985353087, 0.125939180544827},
	{0.101286507323456, 0.101286507323456, 0.125939180544827},
}

// Quadrature integrates deterministically with a fixed rule on the fan
// triangulation of the region. Regions must be convex; see ValidateRegion.
type Quadrature struct {
	*Normal
}

func NewQuadrature(n *Normal) *Quadrature {
	return &Quadrature{Normal: n}
}

func (q *Quadrature) IntegrateProbability(region geometry.Polygon, offset geometry.Vec2) float64 {
	g := q.current()
	total := 0.0
	for _, tri := range region.Triangles() {
		area := tri.Area()
		if area == 0 {
			continue
		}
		sum := 0.0
		for _, node := range dunavant7 {
			sum += node.w * g.density(tri.Map(node.r, node.s).Sub(offset))
		}
		total += area * sum
	}
	return min(max(total, 0), 1)
}

// ValidateRegion rejects regions the fan triangulation would not cover
// exactly. Degenerate regions are accepted; they integrate to zero.
func (q *Quadrature) ValidateRegion(region geometry.Polygon) error {
	if region.Degenerate() || region.IsConvex() {
		return nil
	}
	return fmt.Errorf("%w: %d vertices", ErrNonConvexRegion, region.Len())
}
