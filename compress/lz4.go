package compress

import (
	"io"

	"github.com/arloliu/gsplat/format"
	"github.com/pierrec/lz4/v4"
)

// LZ4Compressor provides LZ4 frame framing. The frame format is used rather
// than raw blocks because it carries a magic number and the content size.
type LZ4Compressor struct{}

var _ Codec = (*LZ4Compressor)(nil)

// NewLZ4Compressor creates a new LZ4 codec.
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

func (c LZ4Compressor) Type() format.CompressionType {
	return format.CompressionLZ4
}

func (c LZ4Compressor) Compress(data []byte) ([]byte, error) {
	return compressWithStream(c, data)
}

func (c LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	return decompressWithStream(c, data)
}

func (c LZ4Compressor) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(lz4.NewReader(r)), nil
}

func (c LZ4Compressor) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return lz4.NewWriter(w), nil
}
