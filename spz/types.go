package spz

// Position is a quantized point position: PositionFloat16 or PositionFixedPoint24.
type Position interface {
	isPosition()
}

// PositionFloat16 holds x, y, z as IEEE 754 half-float bits (version 1).
type PositionFloat16 [3]uint16

// PositionFixedPoint24 holds x, y, z as signed 24-bit little-endian fixed
// point values (version 2 and later).
type PositionFixedPoint24 [3][3]byte

func (PositionFloat16) isPosition()      {}
func (PositionFixedPoint24) isPosition() {}

// Rotation is a quantized unit quaternion: RotationFirstThree or
// RotationSmallestThree.
type Rotation interface {
	isRotation()
}

// RotationFirstThree holds x, y, z of a quaternion with w >= 0; w is
// reconstructed on decode.
type RotationFirstThree [3]uint8

// RotationSmallestThree holds a little-endian uint32: the index of the
// largest component in the top 2 bits, then a sign bit and 9-bit magnitude
// for each of the other three.
type RotationSmallestThree [4]uint8

func (RotationFirstThree) isRotation()    {}
func (RotationSmallestThree) isRotation() {}

// Sh is the quantized SH coefficients of one point at a fixed degree:
// ShZero, ShOne, ShTwo or ShThree.
type Sh interface {
	isSh()
	// Degree returns the SH degree of the variant.
	Degree() uint8
}

// ShZero carries no coefficients.
type ShZero struct{}

// ShOne, ShTwo and ShThree hold 3, 8 and 15 r,g,b coefficient triples.
type (
	ShOne   [3][3]uint8
	ShTwo   [8][3]uint8
	ShThree [15][3]uint8
)

func (ShZero) isSh()  {}
func (ShOne) isSh()   {}
func (ShTwo) isSh()   {}
func (ShThree) isSh() {}

func (ShZero) Degree() uint8  { return 0 }
func (ShOne) Degree() uint8   { return 1 }
func (ShTwo) Degree() uint8   { return 2 }
func (ShThree) Degree() uint8 { return 3 }

// Gaussian is one point in quantized SPZ form.
type Gaussian struct {
	Position Position
	Scale    [3]uint8
	Rotation Rotation
	Alpha    uint8
	Color    [3]uint8
	Sh       Sh
}

// Positions is a positions column: PositionsFloat16 or PositionsFixedPoint24.
type Positions interface {
	Len() int
	isPositions()
}

type (
	PositionsFloat16      []PositionFloat16
	PositionsFixedPoint24 []PositionFixedPoint24
)

func (p PositionsFloat16) Len() int        { return len(p) }
func (p PositionsFixedPoint24) Len() int   { return len(p) }
func (PositionsFloat16) isPositions()      {}
func (PositionsFixedPoint24) isPositions() {}

// Rotations is a rotations column: RotationsFirstThree or RotationsSmallestThree.
type Rotations interface {
	Len() int
	isRotations()
}

type (
	RotationsFirstThree    []RotationFirstThree
	RotationsSmallestThree []RotationSmallestThree
)

func (r RotationsFirstThree) Len() int      { return len(r) }
func (r RotationsSmallestThree) Len() int   { return len(r) }
func (RotationsFirstThree) isRotations()    {}
func (RotationsSmallestThree) isRotations() {}

// Shs is an SH column: ShsZero, ShsOne, ShsTwo or ShsThree.
type Shs interface {
	Degree() uint8
	isShs()
}

// ShsZero is the SH column of a degree 0 collection. It holds no data and
// matches any point count.
type ShsZero struct{}

type (
	ShsOne   []ShOne
	ShsTwo   []ShTwo
	ShsThree []ShThree
)

func (ShsZero) Degree() uint8  { return 0 }
func (ShsOne) Degree() uint8   { return 1 }
func (ShsTwo) Degree() uint8   { return 2 }
func (ShsThree) Degree() uint8 { return 3 }

func (ShsZero) isShs()  {}
func (ShsOne) isShs()   {}
func (ShsTwo) isShs()   {}
func (ShsThree) isShs() {}

// shsLen returns the number of entries in an SH column, or -1 for ShsZero.
func shsLen(s Shs) int {
	switch s := s.(type) {
	case ShsOne:
		return len(s)
	case ShsTwo:
		return len(s)
	case ShsThree:
		return len(s)
	default:
		return -1
	}
}

func positionVariant(p any) string {
	switch p.(type) {
	case PositionFloat16, PositionsFloat16:
		return "float16"
	case PositionFixedPoint24, PositionsFixedPoint24:
		return "fixed-point-24"
	default:
		return "none"
	}
}

func rotationVariant(r any) string {
	switch r.(type) {
	case RotationFirstThree, RotationsFirstThree:
		return "first-three"
	case RotationSmallestThree, RotationsSmallestThree:
		return "smallest-three"
	default:
		return "none"
	}
}

func shVariant(degree uint8) string {
	return "degree-" + string('0'+rune(degree))
}

func headerPositionVariant(h Header) string {
	if h.UsesFloat16() {
		return "float16"
	}

	return "fixed-point-24"
}

func headerRotationVariant(h Header) string {
	if h.UsesQuatSmallestThree() {
		return "smallest-three"
	}

	return "first-three"
}
