// Package geometry holds the planar primitives used by the board and the
// integration code: points, polygons, triangles and bounding boxes.
package geometry

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash"
)

// Vec2 is a point or displacement in the board plane, in millimetres.
// It is a comparable value type and can be used directly as a map key.
type Vec2 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

var Origin = Vec2{}

func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v.X + o.X, v.Y + o.Y}
}

func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{v.X - o.X, v.Y - o.Y}
}

func (v Vec2) Scale(f float64) Vec2 {
	return Vec2{v.X * f, v.Y * f}
}

// Cross returns the z component of the 3D cross product of v and o.
func (v Vec2) Cross(o Vec2) float64 {
	return v.X*o.Y - v.Y*o.X
}

func (v Vec2) Norm() float64 {
	return math.Hypot(v.X, v.Y)
}

// Rotate rotates v counterclockwise about the origin by theta radians.
func (v Vec2) Rotate(theta float64) Vec2 {
	s, c := math.Sincos(theta)
	return Vec2{v.X*c - v.Y*s, v.X*s + v.Y*c}
}

// Hash returns a 64-bit hash of the exact coordinates. Negative zero
// hashes like positive zero so that values comparing equal with == also
// hash equal.
func (v Vec2) Hash() uint64 {
	var buf [16]byte
	x, y := v.X, v.Y
	if x == 0 {
		x = 0
	}
	if y == 0 {
		y = 0
	}
	binary.LittleEndian.PutUint64(buf[:8], math.Float64bits(x))
	binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(y))
	return xxhash.Sum64(buf[:])
}

func (v Vec2) String() string {
	return fmt.Sprintf("(%.3f, %.3f)", v.X, v.Y)
}
