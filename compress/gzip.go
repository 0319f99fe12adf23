package compress

import (
	"io"

	"github.com/arloliu/gsplat/format"
	"github.com/klauspost/compress/gzip"
)

// GzipCompressor provides gzip framing, the interchange framing of SPZ files.
type GzipCompressor struct{}

var _ Codec = (*GzipCompressor)(nil)

// NewGzipCompressor creates a gzip codec at the default compression level.
func NewGzipCompressor() GzipCompressor {
	return GzipCompressor{}
}

func (c GzipCompressor) Type() format.CompressionType {
	return format.CompressionGzip
}

// Compress returns data as a single gzip member.
func (c GzipCompressor) Compress(data []byte) ([]byte, error) {
	return compressWithStream(c, data)
}

// Decompress reads every gzip member in data.
func (c GzipCompressor) Decompress(data []byte) ([]byte, error) {
	return decompressWithStream(c, data)
}

func (c GzipCompressor) NewReader(r io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}

func (c GzipCompressor) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return gzip.NewWriterLevel(w, gzip.DefaultCompression)
}
