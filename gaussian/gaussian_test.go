package gaussian

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

func TestQuatComponentOrder(t *testing.T) {
	q := Quat(1, 2, 3, 4)

	require.Equal(t, float32(4), q.W)
	require.Equal(t, mgl32.Vec3{1, 2, 3}, q.V)
	require.Equal(t, [4]float32{1, 2, 3, 4}, QuatXYZW(q))
}

func TestNormalizeQuat(t *testing.T) {
	q := NormalizeQuat(Quat(0, 0, 0, 2))
	require.InDelta(t, 1.0, q.W, 1e-6)

	q = NormalizeQuat(Quat(1, 1, 1, 1))
	require.InDelta(t, 1.0, q.Len(), 1e-6)
	require.InDelta(t, 0.5, q.V[0], 1e-6)

	require.Equal(t, mgl32.QuatIdent(), NormalizeQuat(mgl32.Quat{}))
}

func TestSigmoidLogitInverse(t *testing.T) {
	for _, x := range []float32{-5, -1, -0.25, 0, 0.5, 2, 4} {
		require.InDelta(t, x, Logit(Sigmoid(x)), 1e-4)
	}

	require.InDelta(t, 0.5, Sigmoid(0), 1e-7)
	require.True(t, math32.IsInf(Logit(1), 1))
	require.True(t, math32.IsInf(Logit(0), -1))
}

func TestClampUnit8(t *testing.T) {
	tests := []struct {
		in   float32
		want uint8
	}{
		{-10, 0},
		{0, 0},
		{0.49, 0},
		{0.5, 1},
		{127.6, 128},
		{254.6, 255},
		{300, 255},
		{math32.NaN(), 0},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, ClampUnit8(tt.in), "input %v", tt.in)
	}
}

func TestGaussianString(t *testing.T) {
	g := Gaussian{Rot: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}}
	require.Contains(t, g.String(), "rot=[0 0 0 1]")
}
