// Package testutil holds fixtures and tolerance assertions shared by the
// codec tests.
package testutil

import (
	"image/color"
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/arloliu/gsplat/gaussian"
)

// ExampleGaussians returns three small splats, one red, one green and one
// blue, with distinct rotations, positions and scales and zero SH.
func ExampleGaussians() []gaussian.Gaussian {
	return []gaussian.Gaussian{
		{
			Rot:   mgl32.QuatRotate(0.5, mgl32.Vec3{1, 0.5, 1}.Normalize()),
			Pos:   mgl32.Vec3{0, 0, 0},
			Color: color.NRGBA{R: 255, G: 0, B: 0, A: 255},
			Scale: mgl32.Vec3{0.5, 1, 0.75},
		},
		{
			Rot:   mgl32.QuatRotate(0.3, mgl32.Vec3{1, 0, 1.0 / 3}.Normalize()),
			Pos:   mgl32.Vec3{0, 8, 4},
			Color: color.NRGBA{R: 0, G: 255, B: 0, A: 255},
			Scale: mgl32.Vec3{1, 1.9, 0.75},
		},
		{
			Rot:   mgl32.QuatRotate(0.2, mgl32.Vec3{1, 0, -1}.Normalize()),
			Pos:   mgl32.Vec3{4, 0, 6},
			Color: color.NRGBA{R: 0, G: 0, B: 255, A: 255},
			Scale: mgl32.Vec3{1, 1.1, 0.8},
		},
	}
}

// GaussianWithSeed returns a deterministic pseudo-random splat.
//
// Positions lie in [-100, 100], scales in [0.05, 5], SH coefficients in
// [-1, 1] and rotations turn by at most 90 degrees, so w stays above 0.7.
func GaussianWithSeed(seed uint64) gaussian.Gaussian {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	uniform := func(lo, hi float32) float32 {
		return lo + rng.Float32()*(hi-lo)
	}

	axis := mgl32.Vec3{uniform(-1, 1), uniform(-1, 1), uniform(-1, 1)}
	if axis.Len() < 1e-3 {
		axis = mgl32.Vec3{0, 0, 1}
	}

	var g gaussian.Gaussian
	g.Rot = mgl32.QuatRotate(uniform(0, math.Pi/2), axis.Normalize())
	g.Pos = mgl32.Vec3{uniform(-100, 100), uniform(-100, 100), uniform(-100, 100)}
	g.Scale = mgl32.Vec3{uniform(0.05, 5), uniform(0.05, 5), uniform(0.05, 5)}
	g.Color = color.NRGBA{
		R: uint8(rng.IntN(256)),
		G: uint8(rng.IntN(256)),
		B: uint8(rng.IntN(256)),
		A: uint8(rng.IntN(256)),
	}
	for i := range g.Sh {
		g.Sh[i] = mgl32.Vec3{uniform(-1, 1), uniform(-1, 1), uniform(-1, 1)}
	}

	return g
}

// Gaussians returns n deterministic pseudo-random splats.
func Gaussians(n int, seed uint64) []gaussian.Gaussian {
	gs := make([]gaussian.Gaussian, n)
	for i := range gs {
		gs[i] = GaussianWithSeed(seed + uint64(i))
	}

	return gs
}
