// Package gaussian defines the canonical in-memory record for one 3D Gaussian
// splat. Every file codec converts through this type.
package gaussian

import (
	"fmt"
	"image/color"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// ShC0 is the degree-zero real spherical harmonic normalization constant Y₀⁰.
	ShC0 = 0.2820948

	// NumShCoefficients is the number of higher-order SH coefficients per
	// channel (degrees 1 through 3).
	NumShCoefficients = 15
)

// Gaussian is the canonical record.
//
// Rot is a unit quaternion, Pos a world-space position, Color linear 0-255
// r,g,b plus alpha, Sh one r,g,b vector per SH coefficient and Scale the
// linear (not log-encoded) scale.
type Gaussian struct {
	Rot   mgl32.Quat
	Pos   mgl32.Vec3
	Color color.NRGBA
	Sh    [NumShCoefficients]mgl32.Vec3
	Scale mgl32.Vec3
}

// Quat builds a quaternion from components in x, y, z, w order.
func Quat(x, y, z, w float32) mgl32.Quat {
	return mgl32.Quat{W: w, V: mgl32.Vec3{x, y, z}}
}

// QuatXYZW returns the components of q in x, y, z, w order.
func QuatXYZW(q mgl32.Quat) [4]float32 {
	return [4]float32{q.V[0], q.V[1], q.V[2], q.W}
}

// NormalizeQuat returns q scaled to unit length. A zero quaternion becomes
// the identity.
func NormalizeQuat(q mgl32.Quat) mgl32.Quat {
	l := q.Len()
	if l == 0 {
		return mgl32.QuatIdent()
	}

	return q.Scale(1 / l)
}

// Sigmoid returns 1/(1+e^-x).
func Sigmoid(x float32) float32 {
	return 1 / (1 + math32.Exp(-x))
}

// Logit is the inverse of Sigmoid: -ln(1/p - 1).
func Logit(p float32) float32 {
	return -math32.Log(1/p - 1)
}

// ClampUnit8 rounds v and clamps it to [0, 255].
func ClampUnit8(v float32) uint8 {
	switch {
	case math32.IsNaN(v):
		return 0
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(math32.Round(v))
	}
}

func (g Gaussian) String() string {
	return fmt.Sprintf("Gaussian{pos=%v rot=%v scale=%v color=%v}",
		g.Pos, QuatXYZW(g.Rot), g.Scale, [4]uint8{g.Color.R, g.Color.G, g.Color.B, g.Color.A})
}
