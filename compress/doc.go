// Package compress provides the outer framing codecs for SPZ bodies.
//
// An SPZ file is a 16-byte header followed by columnar arrays, the whole body
// wrapped in a gzip stream. Gzip is the interchange framing and the default;
// this package also offers Zstandard, S2 and LZ4 framings for local storage
// and an unframed passthrough. Every framing except None starts with a fixed
// magic prefix, so a reader can sniff the framing with Detect before decoding:
//
//	prefix, _ := br.Peek(compress.DetectPrefixN)
//	codec, _ := compress.GetCodec(compress.Detect(prefix))
//	rc, _ := codec.NewReader(br)
//	defer rc.Close()
//
// # Architecture
//
//	type Codec interface {
//	    Compress(data []byte) ([]byte, error)
//	    Decompress(data []byte) ([]byte, error)
//	    NewReader(r io.Reader) (io.ReadCloser, error)
//	    NewWriter(w io.Writer) (io.WriteCloser, error)
//	    Type() format.CompressionType
//	}
//
// Whole-payload calls serve byte-slice encode/decode; stream wrappers serve
// file and network I/O without buffering the compressed form.
//
// # Supported Algorithms
//
//   - None: passthrough (format.CompressionNone)
//   - Gzip: klauspost/compress/gzip, SPZ default (format.CompressionGzip)
//   - Zstd: klauspost/compress/zstd with pooled encoders/decoders (format.CompressionZstd)
//   - S2: klauspost/compress/s2 stream format (format.CompressionS2)
//   - LZ4: pierrec/lz4 frame format (format.CompressionLZ4)
//
// # Thread Safety
//
// Codec values are stateless and safe for concurrent use. Readers and writers
// returned by NewReader/NewWriter are not.
package compress
