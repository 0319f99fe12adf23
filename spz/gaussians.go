package spz

import (
	"fmt"
	"iter"

	"github.com/arloliu/gsplat/errs"
	"github.com/arloliu/gsplat/format"
	"github.com/arloliu/gsplat/gaussian"
)

// Gaussians is a columnar SPZ collection. Every column holds exactly
// Header().NumPoints() entries and every tagged column matches the header.
type Gaussians struct {
	header    Header
	positions Positions
	scales    [][3]uint8
	rotations Rotations
	alphas    []uint8
	colors    [][3]uint8
	shs       Shs

	colorScale  float32
	compression format.CompressionType
}

// New builds a collection from columns.
//
// Returns:
//   - *Gaussians: The collection, which takes ownership of the columns
//   - error: *VariantMismatchError when a tagged column disagrees with the
//     header, or ErrColumnLength when a column length differs from the point count
func New(header Header, positions Positions, scales [][3]uint8, rotations Rotations,
	alphas []uint8, colors [][3]uint8, shs Shs,
) (*Gaussians, error) {
	g := &Gaussians{
		header:      header,
		positions:   positions,
		scales:      scales,
		rotations:   rotations,
		alphas:      alphas,
		colors:      colors,
		shs:         shs,
		colorScale:  DefaultColorScale,
		compression: format.CompressionGzip,
	}

	if err := g.validate(); err != nil {
		return nil, err
	}

	return g, nil
}

func (g *Gaussians) validate() error {
	h := g.header
	n := h.NumPoints()

	if got, want := positionVariant(g.positions), headerPositionVariant(h); got != want {
		return &VariantMismatchError{Field: "positions", Got: got, Want: want}
	}
	if got, want := rotationVariant(g.rotations), headerRotationVariant(h); got != want {
		return &VariantMismatchError{Field: "rotations", Got: got, Want: want}
	}
	if g.shs == nil {
		return &VariantMismatchError{Field: "shs", Got: "none", Want: shVariant(h.ShDegree())}
	}
	if got, want := g.shs.Degree(), h.ShDegree(); got != want {
		return &VariantMismatchError{Field: "shs", Got: shVariant(got), Want: shVariant(want)}
	}

	lengths := []struct {
		name string
		n    int
	}{
		{"positions", g.positions.Len()},
		{"scales", len(g.scales)},
		{"rotations", g.rotations.Len()},
		{"alphas", len(g.alphas)},
		{"colors", len(g.colors)},
	}
	if l := shsLen(g.shs); l >= 0 {
		lengths = append(lengths, struct {
			name string
			n    int
		}{"shs", l})
	}

	for _, col := range lengths {
		if col.n != n {
			return fmt.Errorf("%w: %s has %d entries, header declares %d", errs.ErrColumnLength, col.name, col.n, n)
		}
	}

	return nil
}

// maxPrealloc bounds the up-front allocation made from an untrusted count.
const maxPrealloc = 1 << 20

// FromIter collects per-point records into a collection.
//
// Every point must use the same variant for each tagged field, that variant
// must match the header, and the number of points must equal the header count.
// Mixed variants are reported before a header mismatch, so the first point
// disagreeing with the header does not hide a later point disagreeing with it.
//
// Returns:
//   - *Gaussians: The collection
//   - error: *MixedVariantError, *VariantMismatchError or *CountMismatchError
func FromIter(header Header, seq iter.Seq[Gaussian]) (*Gaussians, error) {
	n := header.NumPoints()
	g := &Gaussians{
		header:      header,
		scales:      make([][3]uint8, 0, min(n, maxPrealloc)),
		alphas:      make([]uint8, 0, min(n, maxPrealloc)),
		colors:      make([][3]uint8, 0, min(n, maxPrealloc)),
		colorScale:  DefaultColorScale,
		compression: format.CompressionGzip,
	}

	var first Gaussian
	var mismatch error
	count := 0
	for p := range seq {
		if count == 0 {
			first = p
			mismatch = checkHeaderVariants(header, p)
			g.positions, g.rotations, g.shs = newColumns(p, min(n, maxPrealloc))
		} else if err := checkSameVariants(first, p, count); err != nil {
			return nil, err
		}

		if mismatch == nil {
			g.appendPoint(p)
		}
		count++
	}

	if mismatch != nil {
		return nil, mismatch
	}

	if count != n {
		return nil, &CountMismatchError{Actual: count, Header: n}
	}

	if count == 0 {
		g.positions, g.rotations, g.shs = allocColumns(header, 0)
	}

	return g, nil
}

func checkHeaderVariants(h Header, p Gaussian) error {
	if got, want := positionVariant(p.Position), headerPositionVariant(h); got != want {
		return &VariantMismatchError{Field: "position", Got: got, Want: want}
	}
	if got, want := rotationVariant(p.Rotation), headerRotationVariant(h); got != want {
		return &VariantMismatchError{Field: "rotation", Got: got, Want: want}
	}
	if got, want := pointShVariant(p.Sh), shVariant(h.ShDegree()); got != want {
		return &VariantMismatchError{Field: "sh", Got: got, Want: want}
	}

	return nil
}

func checkSameVariants(first, p Gaussian, index int) error {
	if a, b := positionVariant(first.Position), positionVariant(p.Position); a != b {
		return &MixedVariantError{Field: "position", Index: index, First: a, Got: b}
	}
	if a, b := rotationVariant(first.Rotation), rotationVariant(p.Rotation); a != b {
		return &MixedVariantError{Field: "rotation", Index: index, First: a, Got: b}
	}
	if a, b := pointShVariant(first.Sh), pointShVariant(p.Sh); a != b {
		return &MixedVariantError{Field: "sh", Index: index, First: a, Got: b}
	}

	return nil
}

// pointShVariant names the SH variant of a point, "none" for a nil Sh.
func pointShVariant(sh Sh) string {
	if sh == nil {
		return "none"
	}

	return shVariant(sh.Degree())
}

// newColumns allocates the tagged columns using the variants of p.
func newColumns(p Gaussian, capacity int) (Positions, Rotations, Shs) {
	var positions Positions
	switch p.Position.(type) {
	case PositionFloat16:
		positions = make(PositionsFloat16, 0, capacity)
	default:
		positions = make(PositionsFixedPoint24, 0, capacity)
	}

	var rotations Rotations
	switch p.Rotation.(type) {
	case RotationFirstThree:
		rotations = make(RotationsFirstThree, 0, capacity)
	default:
		rotations = make(RotationsSmallestThree, 0, capacity)
	}

	var shs Shs
	switch p.Sh.(type) {
	case ShOne:
		shs = make(ShsOne, 0, capacity)
	case ShTwo:
		shs = make(ShsTwo, 0, capacity)
	case ShThree:
		shs = make(ShsThree, 0, capacity)
	default:
		shs = ShsZero{}
	}

	return positions, rotations, shs
}

// appendPoint appends p to every column. Variants are already checked.
func (g *Gaussians) appendPoint(p Gaussian) {
	switch col := g.positions.(type) {
	case PositionsFloat16:
		g.positions = append(col, p.Position.(PositionFloat16))
	case PositionsFixedPoint24:
		g.positions = append(col, p.Position.(PositionFixedPoint24))
	}

	switch col := g.rotations.(type) {
	case RotationsFirstThree:
		g.rotations = append(col, p.Rotation.(RotationFirstThree))
	case RotationsSmallestThree:
		g.rotations = append(col, p.Rotation.(RotationSmallestThree))
	}

	switch col := g.shs.(type) {
	case ShsOne:
		g.shs = append(col, p.Sh.(ShOne))
	case ShsTwo:
		g.shs = append(col, p.Sh.(ShTwo))
	case ShsThree:
		g.shs = append(col, p.Sh.(ShThree))
	}

	g.scales = append(g.scales, p.Scale)
	g.alphas = append(g.alphas, p.Alpha)
	g.colors = append(g.colors, p.Color)
}

// Header returns the validated header.
func (g *Gaussians) Header() Header { return g.header }

// Len returns the number of points.
func (g *Gaussians) Len() int { return g.header.NumPoints() }

// Compression returns the outer framing used by Write and Encode.
func (g *Gaussians) Compression() format.CompressionType { return g.compression }

// SetCompression changes the outer framing used by Write and Encode.
func (g *Gaussians) SetCompression(ct format.CompressionType) { g.compression = ct }

// ColorScale returns the DC color scale used to convert to canonical records.
func (g *Gaussians) ColorScale() float32 { return g.colorScale }

func (g *Gaussians) Positions() Positions { return g.positions }
func (g *Gaussians) Scales() [][3]uint8   { return g.scales }
func (g *Gaussians) Rotations() Rotations { return g.rotations }
func (g *Gaussians) Alphas() []uint8      { return g.alphas }
func (g *Gaussians) Colors() [][3]uint8   { return g.colors }
func (g *Gaussians) Shs() Shs             { return g.shs }

// At returns point i in quantized form. It panics if i is out of range.
func (g *Gaussians) At(i int) Gaussian {
	p := Gaussian{
		Scale: g.scales[i],
		Alpha: g.alphas[i],
		Color: g.colors[i],
	}

	switch col := g.positions.(type) {
	case PositionsFloat16:
		p.Position = col[i]
	case PositionsFixedPoint24:
		p.Position = col[i]
	}

	switch col := g.rotations.(type) {
	case RotationsFirstThree:
		p.Rotation = col[i]
	case RotationsSmallestThree:
		p.Rotation = col[i]
	}

	switch col := g.shs.(type) {
	case ShsOne:
		p.Sh = col[i]
	case ShsTwo:
		p.Sh = col[i]
	case ShsThree:
		p.Sh = col[i]
	default:
		p.Sh = ShZero{}
	}

	return p
}

// Points yields every point in quantized form.
func (g *Gaussians) Points() iter.Seq[Gaussian] {
	return func(yield func(Gaussian) bool) {
		for i := range g.Len() {
			if !yield(g.At(i)) {
				return
			}
		}
	}
}

// All yields every point in canonical form. It can be ranged over repeatedly.
func (g *Gaussians) All() iter.Seq[gaussian.Gaussian] {
	q := quantizer{header: g.header, colorScale: g.colorScale}

	return func(yield func(gaussian.Gaussian) bool) {
		for i := range g.Len() {
			if !yield(q.unpack(g.At(i))) {
				return
			}
		}
	}
}
