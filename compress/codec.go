package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/arloliu/gsplat/errs"
	"github.com/arloliu/gsplat/format"
)

// Compressor compresses a complete payload.
type Compressor interface {
	// Compress compresses the input data and returns a newly allocated result.
	// The input slice is not modified.
	Compress(data []byte) ([]byte, error)
}

// Decompressor reverses a Compressor of the same algorithm.
type Decompressor interface {
	// Decompress decompresses the input data and returns a newly allocated result.
	// It returns an error if the data is corrupted or uses another algorithm.
	Decompress(data []byte) ([]byte, error)
}

// StreamCodec frames a byte stream.
//
// The SPZ reader and writer work over sequential streams, so every codec
// exposes reader and writer wrappers in addition to whole-payload calls.
type StreamCodec interface {
	// NewReader wraps r with a decompressing reader. Closing the returned reader
	// does not close r.
	NewReader(r io.Reader) (io.ReadCloser, error)

	// NewWriter wraps w with a compressing writer. The returned writer must be
	// closed to flush the frame trailer. Closing it does not close w.
	NewWriter(w io.Writer) (io.WriteCloser, error)
}

// Codec combines whole-payload and streaming compression for one algorithm.
type Codec interface {
	Compressor
	Decompressor
	StreamCodec

	// Type returns the compression type implemented by the codec.
	Type() format.CompressionType
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionGzip: NewGzipCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec retrieves the shared built-in Codec for the specified compression type.
//
// Returns:
//   - Codec: codec instance, safe for concurrent use
//   - error: ErrUnsupportedCompress for unknown types
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedCompress, compressionType)
}

// Frame magic prefixes used by Detect.
var (
	gzipMagic     = []byte{0x1f, 0x8b}
	zstdMagic     = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic      = []byte{0x04, 0x22, 0x4d, 0x18}
	s2Magic       = []byte("\xff\x06\x00\x00S2sTwO")
	snappyMagic   = []byte("\xff\x06\x00\x00sNaPpY")
	DetectPrefixN = len(s2Magic) // DetectPrefixN is the longest magic Detect compares.
)

// Detect identifies the framing of data from its leading bytes.
//
// Data that matches no known frame magic is reported as CompressionNone.
// DetectPrefixN bytes are enough for a definitive answer.
func Detect(prefix []byte) format.CompressionType {
	switch {
	case bytes.HasPrefix(prefix, gzipMagic):
		return format.CompressionGzip
	case bytes.HasPrefix(prefix, zstdMagic):
		return format.CompressionZstd
	case bytes.HasPrefix(prefix, lz4Magic):
		return format.CompressionLZ4
	case bytes.HasPrefix(prefix, s2Magic), bytes.HasPrefix(prefix, snappyMagic):
		return format.CompressionS2
	default:
		return format.CompressionNone
	}
}

// compressWithStream runs data through a stream writer into a new slice.
func compressWithStream(sc StreamCodec, data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := sc.NewWriter(&buf)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// decompressWithStream reads a whole frame through a stream reader.
func decompressWithStream(sc StreamCodec, data []byte) ([]byte, error) {
	r, err := sc.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return io.ReadAll(r)
}
