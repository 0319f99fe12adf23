package format

type (
	Source          uint8
	PlyEncoding     uint8
	CompressionType uint8
)

const (
	SourceGaussian Source = 0x1 // SourceGaussian represents plain canonical records with no file backing.
	SourcePly      Source = 0x2 // SourcePly represents records backed by a PLY collection.
	SourceSpz      Source = 0x3 // SourceSpz represents records backed by an SPZ collection.

	PlyAscii              PlyEncoding = 0x1 // PlyAscii represents the ascii PLY body encoding.
	PlyBinaryLittleEndian PlyEncoding = 0x2 // PlyBinaryLittleEndian represents the binary_little_endian PLY body encoding.
	PlyBinaryBigEndian    PlyEncoding = 0x3 // PlyBinaryBigEndian represents the binary_big_endian PLY body encoding.

	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionGzip CompressionType = 0x2 // CompressionGzip represents gzip framing, the SPZ interchange default.
	CompressionZstd CompressionType = 0x3 // CompressionZstd represents Zstandard framing.
	CompressionS2   CompressionType = 0x4 // CompressionS2 represents S2 stream framing.
	CompressionLZ4  CompressionType = 0x5 // CompressionLZ4 represents LZ4 frame framing.
)

func (s Source) String() string {
	switch s {
	case SourceGaussian:
		return "Gaussian"
	case SourcePly:
		return "PLY"
	case SourceSpz:
		return "SPZ"
	default:
		return "Unknown"
	}
}

// String returns the keyword used on the PLY "format" header line.
func (e PlyEncoding) String() string {
	switch e {
	case PlyAscii:
		return "ascii"
	case PlyBinaryLittleEndian:
		return "binary_little_endian"
	case PlyBinaryBigEndian:
		return "binary_big_endian"
	default:
		return "unknown"
	}
}

// IsBinary reports whether the encoding stores fixed-width binary records.
func (e PlyEncoding) IsBinary() bool {
	return e == PlyBinaryLittleEndian || e == PlyBinaryBigEndian
}

// ParsePlyEncoding maps a PLY header keyword to its encoding.
func ParsePlyEncoding(keyword string) (PlyEncoding, bool) {
	switch keyword {
	case "ascii":
		return PlyAscii, true
	case "binary_little_endian":
		return PlyBinaryLittleEndian, true
	case "binary_big_endian":
		return PlyBinaryBigEndian, true
	default:
		return 0, false
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionGzip:
		return "Gzip"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}
