package spz

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/gsplat/errs"
)

func samplePoint(version uint32, shDegree uint8) Gaussian {
	p := Gaussian{
		Scale: [3]uint8{160, 161, 162},
		Alpha: 200,
		Color: [3]uint8{10, 20, 30},
	}

	if version == 1 {
		p.Position = PositionFloat16{0x3c00, 0, 0}
	} else {
		p.Position = PositionFixedPoint24{{0, 0x10, 0}, {}, {}}
	}

	if version >= 3 {
		p.Rotation = RotationSmallestThree{0, 0, 0, 0xc0}
	} else {
		p.Rotation = RotationFirstThree{128, 128, 128}
	}

	switch shDegree {
	case 1:
		p.Sh = ShOne{}
	case 2:
		p.Sh = ShTwo{}
	case 3:
		p.Sh = ShThree{}
	default:
		p.Sh = ShZero{}
	}

	return p
}

func headerFor(t *testing.T, version uint32, n uint32, shDegree uint8) Header {
	t.Helper()

	h, err := NewHeader(version, n, shDegree, 12, false)
	require.NoError(t, err)

	return h
}

func TestFromIter(t *testing.T) {
	for version := MinVersion; version <= MaxVersion; version++ {
		for degree := range MaxShDegree + 1 {
			h := headerFor(t, version, 3, degree)
			points := []Gaussian{samplePoint(version, degree), samplePoint(version, degree), samplePoint(version, degree)}
			points[1].Alpha = 7

			g, err := FromIter(h, slices.Values(points))
			require.NoError(t, err, "version %d degree %d", version, degree)
			require.Equal(t, 3, g.Len())
			require.Equal(t, 3, g.Positions().Len())
			require.Equal(t, 3, g.Rotations().Len())
			require.Equal(t, degree, g.Shs().Degree())
			require.Equal(t, points, slices.Collect(g.Points()))
			require.Equal(t, points[1], g.At(1))
		}
	}
}

func TestFromIterEmpty(t *testing.T) {
	g, err := FromIter(headerFor(t, 3, 0, 2), slices.Values([]Gaussian(nil)))
	require.NoError(t, err)
	require.Equal(t, 0, g.Len())
	require.IsType(t, RotationsSmallestThree{}, g.Rotations())
	require.IsType(t, PositionsFixedPoint24{}, g.Positions())
	require.IsType(t, ShsTwo{}, g.Shs())
}

func TestFromIterMixedVariant(t *testing.T) {
	tests := []struct {
		name  string
		field string
		edit  func(p *Gaussian)
	}{
		{"Position", "position", func(p *Gaussian) { p.Position = PositionFloat16{} }},
		{"Rotation", "rotation", func(p *Gaussian) { p.Rotation = RotationFirstThree{} }},
		{"Sh", "sh", func(p *Gaussian) { p.Sh = ShOne{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points := []Gaussian{samplePoint(3, 2), samplePoint(3, 2), samplePoint(3, 2)}
			tt.edit(&points[2])

			_, err := FromIter(headerFor(t, 3, 3, 2), slices.Values(points))
			require.ErrorIs(t, err, errs.ErrMixedVariant)

			var mixed *MixedVariantError
			require.True(t, errors.As(err, &mixed))
			require.Equal(t, tt.field, mixed.Field)
			require.Equal(t, 2, mixed.Index)
		})

		t.Run(tt.name+"FirstPointOffHeader", func(t *testing.T) {
			points := []Gaussian{samplePoint(3, 2), samplePoint(3, 2), samplePoint(3, 2)}
			tt.edit(&points[0])

			_, err := FromIter(headerFor(t, 3, 3, 2), slices.Values(points))
			require.ErrorIs(t, err, errs.ErrMixedVariant)
			require.NotErrorIs(t, err, errs.ErrVariantMismatch)

			var mixed *MixedVariantError
			require.True(t, errors.As(err, &mixed))
			require.Equal(t, tt.field, mixed.Field)
			require.Equal(t, 1, mixed.Index)
		})
	}

	t.Run("FirstPointNilSh", func(t *testing.T) {
		points := []Gaussian{samplePoint(3, 2), samplePoint(3, 2)}
		points[0].Sh = nil

		_, err := FromIter(headerFor(t, 3, 2, 2), slices.Values(points))
		var mixed *MixedVariantError
		require.True(t, errors.As(err, &mixed))
		require.Equal(t, "none", mixed.First)
		require.Equal(t, "degree-2", mixed.Got)
	})

	t.Run("Float16AgainstFixedPointHeader", func(t *testing.T) {
		points := []Gaussian{samplePoint(1, 2), samplePoint(3, 2)}

		_, err := FromIter(headerFor(t, 3, 2, 2), slices.Values(points))
		require.ErrorIs(t, err, errs.ErrMixedVariant)
	})
}

func TestFromIterVariantMismatch(t *testing.T) {
	t.Run("Position", func(t *testing.T) {
		_, err := FromIter(headerFor(t, 1, 1, 0), slices.Values([]Gaussian{samplePoint(2, 0)}))
		require.ErrorIs(t, err, errs.ErrVariantMismatch)

		var mismatch *VariantMismatchError
		require.True(t, errors.As(err, &mismatch))
		require.Equal(t, "position", mismatch.Field)
		require.Equal(t, "fixed-point-24", mismatch.Got)
		require.Equal(t, "float16", mismatch.Want)
	})

	t.Run("Rotation", func(t *testing.T) {
		_, err := FromIter(headerFor(t, 2, 1, 0), slices.Values([]Gaussian{samplePoint(3, 0)}))
		var mismatch *VariantMismatchError
		require.True(t, errors.As(err, &mismatch))
		require.Equal(t, "rotation", mismatch.Field)
		require.Equal(t, "smallest-three", mismatch.Got)
		require.Equal(t, "first-three", mismatch.Want)
	})

	t.Run("Sh", func(t *testing.T) {
		_, err := FromIter(headerFor(t, 3, 1, 3), slices.Values([]Gaussian{samplePoint(3, 1)}))
		var mismatch *VariantMismatchError
		require.True(t, errors.As(err, &mismatch))
		require.Equal(t, "sh", mismatch.Field)
		require.Equal(t, "degree-1", mismatch.Got)
		require.Equal(t, "degree-3", mismatch.Want)
		require.EqualError(t, err, "variant mismatch with header: sh is degree-1, header expects degree-3")
	})

	t.Run("NilSh", func(t *testing.T) {
		p := samplePoint(3, 0)
		p.Sh = nil
		_, err := FromIter(headerFor(t, 3, 1, 0), slices.Values([]Gaussian{p}))
		require.ErrorIs(t, err, errs.ErrVariantMismatch)
	})
}

func TestFromIterCountMismatch(t *testing.T) {
	points := []Gaussian{samplePoint(2, 1), samplePoint(2, 1)}

	_, err := FromIter(headerFor(t, 2, 3, 1), slices.Values(points))
	require.ErrorIs(t, err, errs.ErrCountMismatch)

	var count *CountMismatchError
	require.True(t, errors.As(err, &count))
	require.Equal(t, 2, count.Actual)
	require.Equal(t, 3, count.Header)

	_, err = FromIter(headerFor(t, 2, 1, 1), slices.Values(points))
	require.ErrorIs(t, err, errs.ErrCountMismatch)
}

func TestNew(t *testing.T) {
	h := headerFor(t, 2, 2, 1)
	positions := PositionsFixedPoint24{{}, {}}
	scales := [][3]uint8{{}, {}}
	rotations := RotationsFirstThree{{}, {}}
	alphas := []uint8{1, 2}
	colors := [][3]uint8{{}, {}}
	shs := ShsOne{{}, {}}

	t.Run("Valid", func(t *testing.T) {
		g, err := New(h, positions, scales, rotations, alphas, colors, shs)
		require.NoError(t, err)
		require.Equal(t, 2, g.Len())
		require.Equal(t, alphas, g.Alphas())
		require.Equal(t, scales, g.Scales())
		require.Equal(t, colors, g.Colors())
	})

	t.Run("PositionVariant", func(t *testing.T) {
		_, err := New(h, PositionsFloat16{{}, {}}, scales, rotations, alphas, colors, shs)
		require.ErrorIs(t, err, errs.ErrVariantMismatch)
	})

	t.Run("NilPositions", func(t *testing.T) {
		_, err := New(h, nil, scales, rotations, alphas, colors, shs)
		require.ErrorIs(t, err, errs.ErrVariantMismatch)
	})

	t.Run("RotationVariant", func(t *testing.T) {
		_, err := New(h, positions, scales, RotationsSmallestThree{{}, {}}, alphas, colors, shs)
		require.ErrorIs(t, err, errs.ErrVariantMismatch)
	})

	t.Run("ShDegree", func(t *testing.T) {
		_, err := New(h, positions, scales, rotations, alphas, colors, ShsZero{})
		require.ErrorIs(t, err, errs.ErrVariantMismatch)
	})

	t.Run("ColumnLength", func(t *testing.T) {
		_, err := New(h, positions, scales, rotations, []uint8{1}, colors, shs)
		require.ErrorIs(t, err, errs.ErrColumnLength)
		require.ErrorContains(t, err, "alphas")

		_, err = New(h, positions, scales, rotations, alphas, colors, ShsOne{{}})
		require.ErrorIs(t, err, errs.ErrColumnLength)
		require.ErrorContains(t, err, "shs")
	})

	t.Run("ZeroDegreeCarriesNoData", func(t *testing.T) {
		h0 := headerFor(t, 2, 2, 0)
		g, err := New(h0, positions, scales, rotations, alphas, colors, ShsZero{})
		require.NoError(t, err)
		require.Equal(t, ShZero{}, g.At(1).Sh)
	})
}
