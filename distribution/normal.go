package distribution

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/domino14/bullseye/geometry"
	"github.com/domino14/bullseye/random"
)

// Covariance is a 2x2 covariance matrix in row-major order.
type Covariance [2][2]float64

// Isotropic returns variance*I.
func Isotropic(variance float64) Covariance {
	return Covariance{{variance, 0}, {0, variance}}
}

const symmetryTolerance = 1e-12

// gaussian is an immutable snapshot of the fitted parameters with
// everything the hot paths need precomputed.
type gaussian struct {
	mean geometry.Vec2
	cov  Covariance

	// lower Cholesky factor
	l00, l10, l11 float64
	// inverse covariance
	i00, i01, i11 float64
	// 1 / (2 pi sqrt(det))
	norm float64
}

func newGaussian(mean geometry.Vec2, cov Covariance) (*gaussian, error) {
	for _, row := range cov {
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: non-finite entry %v", ErrNotPositiveDefinite, v)
			}
		}
	}
	if math.Abs(cov[0][1]-cov[1][0]) > symmetryTolerance*(1+math.Abs(cov[0][1])) {
		return nil, fmt.Errorf("%w: %v != %v", ErrAsymmetricCovariance, cov[0][1], cov[1][0])
	}
	sym := mat.NewSymDense(2, []float64{
		cov[0][0], cov[0][1],
		cov[0][1], cov[1][1],
	})
	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return nil, fmt.Errorf("%w: %v", ErrNotPositiveDefinite, cov)
	}
	det := chol.Det()
	if !(det > 0) {
		return nil, fmt.Errorf("%w: determinant %v", ErrNotPositiveDefinite, det)
	}
	var l mat.TriDense
	chol.LTo(&l)
	var inv mat.SymDense
	if err := chol.InverseTo(&inv); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotPositiveDefinite, err)
	}
	return &gaussian{
		mean: mean,
		cov:  cov,
		l00:  l.At(0, 0),
		l10:  l.At(1, 0),
		l11:  l.At(1, 1),
		i00:  inv.At(0, 0),
		i01:  inv.At(0, 1),
		i11:  inv.At(1, 1),
		norm: 1 / (2 * math.Pi * math.Sqrt(det)),
	}, nil
}

func (g *gaussian) density(p geometry.Vec2) float64 {
	dx := p.X - g.mean.X
	dy := p.Y - g.mean.Y
	q := g.i00*dx*dx + 2*g.i01*dx*dy + g.i11*dy*dy
	return g.norm * math.Exp(-q/2)
}

func (g *gaussian) sample(s *random.Stream) geometry.Vec2 {
	z0, z1 := s.NormalPair()
	return geometry.Vec2{
		X: g.mean.X + g.l00*z0,
		Y: g.mean.Y + g.l10*z0 + g.l11*z1,
	}
}

// fit computes the empirical mean and the population covariance (divided
// by n, not n-1) of the points.
func fit(points []geometry.Vec2) (geometry.Vec2, Covariance, error) {
	n := len(points)
	if n == 0 {
		return geometry.Vec2{}, Covariance{}, ErrNoPoints
	}
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, p := range points {
		xs[i] = p.X
		ys[i] = p.Y
	}
	mx, vx := stat.PopMeanVariance(xs, nil)
	my, vy := stat.PopMeanVariance(ys, nil)
	cxy := 0.0
	if n > 1 {
		cxy = stat.Covariance(xs, ys, nil) * float64(n-1) / float64(n)
	} else {
		vx, vy = 0, 0
	}
	return geometry.Vec2{X: mx, Y: my}, Covariance{{vx, cxy}, {cxy, vy}}, nil
}

// Normal is a bivariate Gaussian landing model. It is safe for concurrent
// use; AddPoint swaps in new parameters atomically.
type Normal struct {
	stream *random.Stream

	mu     sync.Mutex
	points []geometry.Vec2
	params atomic.Pointer[gaussian]
}

// NewNormal builds a Gaussian from explicit parameters.
func NewNormal(mean geometry.Vec2, cov Covariance, opts ...Option) (*Normal, error) {
	g, err := newGaussian(mean, cov)
	if err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	n := &Normal{stream: o.stream}
	n.params.Store(g)
	return n, nil
}

// FitNormal builds a Gaussian from observed landing offsets.
func FitNormal(points []geometry.Vec2, opts ...Option) (*Normal, error) {
	mean, cov, err := fit(points)
	if err != nil {
		return nil, err
	}
	g, err := newGaussian(mean, cov)
	if err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	n := &Normal{stream: o.stream, points: append([]geometry.Vec2(nil), points...)}
	n.params.Store(g)
	return n, nil
}

func (n *Normal) current() *gaussian {
	return n.params.Load()
}

func (n *Normal) Sample() geometry.Vec2 {
	return n.current().sample(n.stream)
}

func (n *Normal) Density(p geometry.Vec2) float64 {
	return n.current().density(p)
}

// AddPoint appends p to the observed points and refits mean and covariance
// from all of them. The point is always kept. If the points cannot support
// a positive-definite covariance yet (fewer than three non-collinear
// points), the previous parameters stay in force and the error is returned.
func (n *Normal) AddPoint(p geometry.Vec2) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.points = append(n.points, p)
	mean, cov, err := fit(n.points)
	if err != nil {
		return err
	}
	g, err := newGaussian(mean, cov)
	if err != nil {
		log.Debug().Int("points", len(n.points)).Err(err).Msg("refit-rejected")
		return fmt.Errorf("refit with %d points: %w", len(n.points), err)
	}
	n.params.Store(g)
	return nil
}

func (n *Normal) Mean() geometry.Vec2 {
	return n.current().mean
}

func (n *Normal) Covariance() Covariance {
	return n.current().cov
}

// Points returns a copy of the observed points.
func (n *Normal) Points() []geometry.Vec2 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]geometry.Vec2(nil), n.points...)
}

func (n *Normal) String() string {
	g := n.current()
	return fmt.Sprintf("N(mean=%v, cov=[[%.3f %.3f] [%.3f %.3f]])",
		g.mean, g.cov[0][0], g.cov[0][1], g.cov[1][0], g.cov[1][1])
}
