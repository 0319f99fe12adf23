package spz

import (
	"fmt"

	"github.com/arloliu/gsplat/endian"
	"github.com/arloliu/gsplat/errs"
)

const (
	// Magic is the SPZ magic number, "NGSP" in little endian.
	Magic uint32 = 0x5053474E
	// HeaderSize is the encoded header size in bytes.
	HeaderSize = 16

	// MinVersion is the oldest supported format version (float16 positions).
	MinVersion uint32 = 1
	// MaxVersion is the newest supported format version (smallest-three rotations).
	MaxVersion uint32 = 3

	// MaxShDegree is the highest spherical harmonics degree a file can carry.
	MaxShDegree uint8 = 3
	// MaxFractionalBits is the highest precision WithFractionalBits accepts,
	// keeping one integer bit in a 24-bit fixed-point position.
	MaxFractionalBits uint8 = 23

	flagAntialiased uint8 = 0x1
)

// HeaderPod is the raw 16-byte SPZ header, unvalidated.
type HeaderPod struct {
	Magic          uint32 // byte offset 0-3
	Version        uint32 // byte offset 4-7
	NumPoints      uint32 // byte offset 8-11
	ShDegree       uint8  // byte offset 12
	FractionalBits uint8  // byte offset 13
	Flags          uint8  // byte offset 14
	Reserved       uint8  // byte offset 15
}

// Parse decodes the header fields from data.
//
// Parameters:
//   - data: Byte slice holding at least HeaderSize bytes
//
// Returns:
//   - error: ErrInvalidHeaderSize if data is too short
func (p *HeaderPod) Parse(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("%w: got %d bytes, expected %d", errs.ErrInvalidHeaderSize, len(data), HeaderSize)
	}

	engine := endian.GetLittleEndianEngine()
	p.Magic = engine.Uint32(data[0:4])
	p.Version = engine.Uint32(data[4:8])
	p.NumPoints = engine.Uint32(data[8:12])
	p.ShDegree = data[12]
	p.FractionalBits = data[13]
	p.Flags = data[14]
	p.Reserved = data[15]

	return nil
}

// Bytes serializes the header into a new HeaderSize slice.
func (p HeaderPod) Bytes() []byte {
	return p.AppendTo(make([]byte, 0, HeaderSize))
}

// AppendTo appends the serialized header to dst.
func (p HeaderPod) AppendTo(dst []byte) []byte {
	engine := endian.GetLittleEndianEngine()
	dst = engine.AppendUint32(dst, p.Magic)
	dst = engine.AppendUint32(dst, p.Version)
	dst = engine.AppendUint32(dst, p.NumPoints)

	return append(dst, p.ShDegree, p.FractionalBits, p.Flags, p.Reserved)
}

// Header is a validated SPZ header. The zero value is not valid; build one
// with NewHeader or HeaderFromPod.
type Header struct {
	pod HeaderPod
}

// NewHeader builds a validated header.
//
// Parameters:
//   - version: Format version, 1 to 3
//   - numPoints: Number of points in the body
//   - shDegree: Spherical harmonics degree, 0 to 3
//   - fractionalBits: Fixed-point position precision, ignored by version 1
//   - antialiased: Whether the splats were trained with antialiasing
//
// Returns:
//   - Header: The validated header
//   - error: ErrUnsupportedVersion or ErrUnsupportedShDegree
func NewHeader(version, numPoints uint32, shDegree, fractionalBits uint8, antialiased bool) (Header, error) {
	var flags uint8
	if antialiased {
		flags |= flagAntialiased
	}

	return HeaderFromPod(HeaderPod{
		Magic:          Magic,
		Version:        version,
		NumPoints:      numPoints,
		ShDegree:       shDegree,
		FractionalBits: fractionalBits,
		Flags:          flags,
	})
}

// HeaderFromPod validates a raw header: magic, version and SH degree. The
// fractional bit count is taken as written; WithFractionalBits bounds only
// what this package encodes.
func HeaderFromPod(pod HeaderPod) (Header, error) {
	if pod.Magic != Magic {
		return Header{}, fmt.Errorf("%w: got %X, expected %X", errs.ErrInvalidMagic, pod.Magic, Magic)
	}

	if pod.Version < MinVersion || pod.Version > MaxVersion {
		return Header{}, fmt.Errorf("%w: %d, expected one of %d..%d", errs.ErrUnsupportedVersion, pod.Version, MinVersion, MaxVersion)
	}

	if pod.ShDegree > MaxShDegree {
		return Header{}, fmt.Errorf("%w: %d, expected 0..%d", errs.ErrUnsupportedShDegree, pod.ShDegree, MaxShDegree)
	}

	return Header{pod: pod}, nil
}

// ParseHeader decodes and validates a header from the first HeaderSize bytes of data.
func ParseHeader(data []byte) (Header, error) {
	var pod HeaderPod
	if err := pod.Parse(data); err != nil {
		return Header{}, err
	}

	return HeaderFromPod(pod)
}

// Pod returns the raw header fields.
func (h Header) Pod() HeaderPod { return h.pod }

// Bytes serializes the header.
func (h Header) Bytes() []byte { return h.pod.Bytes() }

func (h Header) Version() uint32       { return h.pod.Version }
func (h Header) NumPoints() int        { return int(h.pod.NumPoints) }
func (h Header) ShDegree() uint8       { return h.pod.ShDegree }
func (h Header) FractionalBits() uint8 { return h.pod.FractionalBits }

// Antialiased reports whether flag bit 0 is set.
func (h Header) Antialiased() bool {
	return h.pod.Flags&flagAntialiased != 0
}

// UsesFloat16 reports whether positions are stored as half floats (version 1).
func (h Header) UsesFloat16() bool {
	return h.pod.Version == 1
}

// UsesQuatSmallestThree reports whether rotations use the 4-byte
// smallest-three packing (version 3 and later).
func (h Header) UsesQuatSmallestThree() bool {
	return h.pod.Version >= 3
}

// ShNumCoefficients returns the number of SH coefficients stored per channel.
func (h Header) ShNumCoefficients() int {
	return shCoefficients(h.pod.ShDegree)
}

func (h Header) String() string {
	return fmt.Sprintf("SPZ v%d: %d points, sh degree %d, %d fractional bits, antialiased %t",
		h.pod.Version, h.pod.NumPoints, h.pod.ShDegree, h.pod.FractionalBits, h.Antialiased())
}

func shCoefficients(degree uint8) int {
	switch degree {
	case 1:
		return 3
	case 2:
		return 8
	case 3:
		return 15
	default:
		return 0
	}
}
