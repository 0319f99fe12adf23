// Package errs defines the sentinel errors returned by the gsplat codecs.
//
// Codecs wrap these with fmt.Errorf("%w: ...") to attach the offending values,
// so callers should match with errors.Is.
package errs

import "errors"

// Structural errors.
var (
	ErrInvalidMagic          = errors.New("invalid SPZ magic number")
	ErrUnsupportedVersion    = errors.New("unsupported SPZ version")
	ErrUnsupportedShDegree   = errors.New("unsupported SPZ SH degree")
	ErrInvalidHeaderSize     = errors.New("invalid SPZ header size")
	ErrInvalidFractionalBits = errors.New("invalid SPZ fractional bits")
	ErrInvalidQuantizeBits   = errors.New("invalid SPZ SH quantize bits")
	ErrInvalidColorScale     = errors.New("invalid SPZ color scale")
	ErrInvalidPlyHeader      = errors.New("invalid PLY header")
	ErrVertexNotFound        = errors.New("vertex not found in PLY")
)

// Consistency errors.
var (
	ErrCountMismatch   = errors.New("point count mismatch")
	ErrVariantMismatch = errors.New("variant mismatch with header")
	ErrMixedVariant    = errors.New("mixed variants in collection")
	ErrColumnLength    = errors.New("column length mismatch")
)

// Per-record errors.
var (
	ErrPropertyNotFound     = errors.New("vertex property not found in PLY")
	ErrInvalidPropertyValue = errors.New("vertex property value invalid in PLY")
)

// Aggregation errors.
var (
	ErrCanonicalWrite      = errors.New("cannot write canonical Gaussians to file or buffer")
	ErrCanonicalRead       = errors.New("cannot read canonical Gaussians from file or buffer")
	ErrUnknownSource       = errors.New("unknown Gaussian source format")
	ErrUnsupportedCompress = errors.New("unsupported compression type")
)
