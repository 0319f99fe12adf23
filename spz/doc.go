// Package spz reads and writes Gaussian splats in the SPZ format.
//
// An SPZ file is a 16-byte little-endian header followed by columnar,
// quantized point data, wrapped in a gzip frame:
//
//	positions  float16 x3 (v1) or 24-bit fixed point x3 (v2+)
//	alphas     1 byte
//	colors     3 bytes, DC term scaled by the color scale
//	scales     3 bytes, log encoded
//	rotations  first-three, 3 bytes (v1, v2) or smallest-three, 4 bytes (v3)
//	sh         0, 3, 8 or 15 coefficients x3 bytes
//
// Collections are built from canonical records with FromGaussians, from
// per-point records with FromIter, or from columns with New. All three
// guarantee that column variants and lengths agree with the header.
//
// Besides gzip the body may be framed with zstd, s2 or lz4 (WithCompression);
// Read detects the framing, but only gzip files are readable by other tools.
package spz
