package testutil

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/gsplat/gaussian"
)

// Tolerance bounds the per-field error accepted by RequireGaussian.
// Only the first ShCount SH coefficients are compared; the rest must be zero.
type Tolerance struct {
	Pos     float32
	Rot     float32
	Scale   float32
	Sh      float32
	ShCount int
	Color   uint8
	Alpha   uint8
}

// PlyTolerance is the accepted error of a PLY round trip.
var PlyTolerance = Tolerance{
	Pos:     1e-4,
	Rot:     1e-4,
	Scale:   1e-4,
	Sh:      1e-4,
	ShCount: gaussian.NumShCoefficients,
	Color:   1,
	Alpha:   1,
}

// SpzTolerance returns the accepted error of an SPZ round trip that keeps
// shCount coefficients quantized with the given per-degree bits.
func SpzTolerance(shCount int, bits [3]uint8) Tolerance {
	coarsest := min(bits[0], bits[1], bits[2])

	return Tolerance{
		Pos:     0.1,
		Rot:     0.05,
		Scale:   0.2,
		Sh:      float32(uint32(1)<<(8-coarsest))/256 + 1.0/128,
		ShCount: shCount,
		Color:   2,
		Alpha:   0,
	}
}

// RequireGaussian fails the test when got differs from want by more than tol.
func RequireGaussian(tb testing.TB, want, got gaussian.Gaussian, tol Tolerance) {
	tb.Helper()

	for i := range 3 {
		require.InDelta(tb, want.Pos[i], got.Pos[i], float64(tol.Pos), "pos[%d]", i)
		require.InDelta(tb, want.Scale[i], got.Scale[i], float64(tol.Scale), "scale[%d]", i)
	}

	wantRot, gotRot := want.Rot, got.Rot
	if wantRot.Dot(gotRot) < 0 {
		gotRot = gotRot.Scale(-1)
	}
	require.InDelta(tb, wantRot.W, gotRot.W, float64(tol.Rot), "rot.w")
	for i := range 3 {
		require.InDelta(tb, wantRot.V[i], gotRot.V[i], float64(tol.Rot), "rot.v[%d]", i)
	}

	require.InDelta(tb, want.Color.R, got.Color.R, float64(tol.Color), "color.r")
	require.InDelta(tb, want.Color.G, got.Color.G, float64(tol.Color), "color.g")
	require.InDelta(tb, want.Color.B, got.Color.B, float64(tol.Color), "color.b")
	require.InDelta(tb, want.Color.A, got.Color.A, float64(tol.Alpha), "color.a")

	for i := range tol.ShCount {
		for c := range 3 {
			require.InDelta(tb, want.Sh[i][c], got.Sh[i][c], float64(tol.Sh), "sh[%d][%d]", i, c)
		}
	}
	for i := tol.ShCount; i < gaussian.NumShCoefficients; i++ {
		require.Equal(tb, mgl32.Vec3{}, got.Sh[i], "sh[%d] beyond kept degree", i)
	}
}
