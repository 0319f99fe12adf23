package spz

import (
	"fmt"
	"iter"
	"math"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/arloliu/gsplat/errs"
	"github.com/arloliu/gsplat/gaussian"
)

// minChunk is the smallest number of points handed to one goroutine.
const minChunk = 4096

// FromGaussians quantizes canonical records into a new collection.
//
// Header fields, SH quantization, color scale and framing come from opts.
// With WithParallelism above 1 the points are quantized in concurrent
// chunks; the result is identical to the sequential one.
func FromGaussians(seq iter.Seq[gaussian.Gaussian], opts ...Option) (*Gaussians, error) {
	return FromSlice(slices.Collect(seq), opts...)
}

// FromSlice quantizes a slice of canonical records into a new collection.
func FromSlice(gs []gaussian.Gaussian, opts ...Option) (*Gaussians, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	if uint64(len(gs)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d points exceed the header limit", errs.ErrCountMismatch, len(gs))
	}

	header, err := NewHeader(cfg.version, uint32(len(gs)), cfg.shDegree, cfg.fractionalBits, cfg.antialiased)
	if err != nil {
		return nil, err
	}

	q := quantizer{header: header, shBits: cfg.shBits, colorScale: cfg.colorScale}
	n := len(gs)

	g := &Gaussians{
		header:      header,
		scales:      make([][3]uint8, n),
		alphas:      make([]uint8, n),
		colors:      make([][3]uint8, n),
		colorScale:  cfg.colorScale,
		compression: cfg.compression,
	}
	g.positions, g.rotations, g.shs = allocColumns(header, n)

	quantizeRange := func(lo, hi int) {
		for i := lo; i < hi; i++ {
			g.setPoint(i, q.pack(gs[i]))
		}
	}

	if cfg.parallelism <= 1 || n <= minChunk {
		quantizeRange(0, n)
		return g, nil
	}

	chunk := max(minChunk, (n+cfg.parallelism-1)/cfg.parallelism)

	var eg errgroup.Group
	eg.SetLimit(cfg.parallelism)
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		eg.Go(func() error {
			quantizeRange(lo, hi)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return g, nil
}

// allocColumns returns zeroed tagged columns of length n matching h.
func allocColumns(h Header, n int) (Positions, Rotations, Shs) {
	var positions Positions = make(PositionsFixedPoint24, n)
	if h.UsesFloat16() {
		positions = make(PositionsFloat16, n)
	}

	var rotations Rotations = make(RotationsFirstThree, n)
	if h.UsesQuatSmallestThree() {
		rotations = make(RotationsSmallestThree, n)
	}

	var shs Shs
	switch h.ShDegree() {
	case 1:
		shs = make(ShsOne, n)
	case 2:
		shs = make(ShsTwo, n)
	case 3:
		shs = make(ShsThree, n)
	default:
		shs = ShsZero{}
	}

	return positions, rotations, shs
}

// setPoint stores p at index i. The variants of p must match the columns.
func (g *Gaussians) setPoint(i int, p Gaussian) {
	switch col := g.positions.(type) {
	case PositionsFloat16:
		col[i] = p.Position.(PositionFloat16)
	case PositionsFixedPoint24:
		col[i] = p.Position.(PositionFixedPoint24)
	}

	switch col := g.rotations.(type) {
	case RotationsFirstThree:
		col[i] = p.Rotation.(RotationFirstThree)
	case RotationsSmallestThree:
		col[i] = p.Rotation.(RotationSmallestThree)
	}

	switch col := g.shs.(type) {
	case ShsOne:
		col[i] = p.Sh.(ShOne)
	case ShsTwo:
		col[i] = p.Sh.(ShTwo)
	case ShsThree:
		col[i] = p.Sh.(ShThree)
	}

	g.scales[i] = p.Scale
	g.alphas[i] = p.Alpha
	g.colors[i] = p.Color
}
