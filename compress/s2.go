package compress

import (
	"io"

	"github.com/arloliu/gsplat/format"
	"github.com/klauspost/compress/s2"
)

// S2Compressor provides S2 stream framing. Snappy framed streams are also
// accepted on read.
type S2Compressor struct{}

var _ Codec = (*S2Compressor)(nil)

// NewS2Compressor creates a new S2 codec.
func NewS2Compressor() S2Compressor {
	return S2Compressor{}
}

func (c S2Compressor) Type() format.CompressionType {
	return format.CompressionS2
}

func (c S2Compressor) Compress(data []byte) ([]byte, error) {
	return compressWithStream(c, data)
}

func (c S2Compressor) Decompress(data []byte) ([]byte, error) {
	return decompressWithStream(c, data)
}

func (c S2Compressor) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(s2.NewReader(r)), nil
}

func (c S2Compressor) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return s2.NewWriter(w), nil
}
