package spz

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/arloliu/gsplat/compress"
	"github.com/arloliu/gsplat/format"
	"github.com/arloliu/gsplat/internal/pool"
)

// Read decodes an SPZ stream.
//
// The outer framing is detected from the leading bytes: gzip, zstd, s2 and
// lz4 frames are unwrapped, anything else is parsed as an unframed body.
// The stream is read to its end so the framing can verify its checksum;
// bytes after the body are ignored and logged at Debug.
// Only WithColorScale and WithLogger affect decoding.
//
// Returns:
//   - *Gaussians: The decoded collection, remembering the detected framing
//   - error: Header validation errors, framing errors such as a bad checksum,
//     or io.ErrUnexpectedEOF for a short body
func Read(r io.Reader, opts ...Option) (g *Gaussians, err error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	br := bufio.NewReader(r)
	prefix, _ := br.Peek(compress.DetectPrefixN)
	ct := compress.Detect(prefix)

	codec, err := compress.GetCodec(ct)
	if err != nil {
		return nil, err
	}

	body, err := codec.NewReader(br)
	if err != nil {
		return nil, err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(body))

	return decodeBody(body, ct, cfg)
}

// Decode decodes an SPZ file held in memory. The framing is removed in one
// pass before the body is parsed.
func Decode(data []byte, opts ...Option) (*Gaussians, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	ct := compress.Detect(data)
	codec, err := compress.GetCodec(ct)
	if err != nil {
		return nil, err
	}

	body, err := codec.Decompress(data)
	if err != nil {
		return nil, err
	}

	return decodeBody(bytes.NewReader(body), ct, cfg)
}

// ReadFile decodes the SPZ file at path.
func ReadFile(path string, opts ...Option) (g *Gaussians, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(f))

	return Read(f, opts...)
}

// decodeBody parses one body from r, then drains r.
func decodeBody(r io.Reader, ct format.CompressionType, cfg *config) (*Gaussians, error) {
	g, err := readBody(r)
	if err != nil {
		return nil, err
	}

	trailing, err := io.Copy(io.Discard, r)
	if err != nil {
		return nil, err
	}
	if trailing > 0 {
		cfg.logger.Debug("ignoring bytes after SPZ body",
			zap.Int64("bytes", trailing),
			zap.Int("count", g.Len()),
			zap.Stringer("compression", ct),
		)
	}

	g.colorScale = cfg.colorScale
	g.compression = ct

	return g, nil
}

func readBody(r io.Reader) (*Gaussians, error) {
	var hdr [HeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, unexpectedEOF(err)
	}

	header, err := ParseHeader(hdr[:])
	if err != nil {
		return nil, err
	}

	n := header.NumPoints()
	buf := pool.GetBodyBuffer()
	defer pool.PutBodyBuffer(buf)

	column := func(stride int) ([]byte, error) {
		return buf.ReadN(r, int64(n)*int64(stride))
	}

	g := &Gaussians{header: header}

	if header.UsesFloat16() {
		data, err := column(6)
		if err != nil {
			return nil, err
		}
		positions := make(PositionsFloat16, n)
		for i := range positions {
			for c := range 3 {
				off := i*6 + c*2
				positions[i][c] = uint16(data[off]) | uint16(data[off+1])<<8
			}
		}
		g.positions = positions
	} else {
		data, err := column(9)
		if err != nil {
			return nil, err
		}
		positions := make(PositionsFixedPoint24, n)
		for i := range positions {
			for c := range 3 {
				copy(positions[i][c][:], data[i*9+c*3:])
			}
		}
		g.positions = positions
	}

	data, err := column(1)
	if err != nil {
		return nil, err
	}
	g.alphas = bytes.Clone(data)

	if g.colors, err = readTriples(column, n); err != nil {
		return nil, err
	}
	if g.scales, err = readTriples(column, n); err != nil {
		return nil, err
	}

	if header.UsesQuatSmallestThree() {
		data, err := column(4)
		if err != nil {
			return nil, err
		}
		rotations := make(RotationsSmallestThree, n)
		for i := range rotations {
			copy(rotations[i][:], data[i*4:])
		}
		g.rotations = rotations
	} else {
		data, err := column(3)
		if err != nil {
			return nil, err
		}
		rotations := make(RotationsFirstThree, n)
		for i := range rotations {
			copy(rotations[i][:], data[i*3:])
		}
		g.rotations = rotations
	}

	if g.shs, err = readShs(column, header); err != nil {
		return nil, err
	}

	return g, nil
}

func readTriples(column func(int) ([]byte, error), n int) ([][3]uint8, error) {
	data, err := column(3)
	if err != nil {
		return nil, err
	}

	out := make([][3]uint8, n)
	for i := range out {
		copy(out[i][:], data[i*3:])
	}

	return out, nil
}

func readShs(column func(int) ([]byte, error), h Header) (Shs, error) {
	coefficients := h.ShNumCoefficients()
	if coefficients == 0 {
		return ShsZero{}, nil
	}

	stride := coefficients * 3
	data, err := column(stride)
	if err != nil {
		return nil, err
	}

	n := h.NumPoints()
	switch h.ShDegree() {
	case 1:
		out := make(ShsOne, n)
		for i := range out {
			copyTriples(out[i][:], data[i*stride:])
		}
		return out, nil
	case 2:
		out := make(ShsTwo, n)
		for i := range out {
			copyTriples(out[i][:], data[i*stride:])
		}
		return out, nil
	default:
		out := make(ShsThree, n)
		for i := range out {
			copyTriples(out[i][:], data[i*stride:])
		}
		return out, nil
	}
}

func copyTriples(dst [][3]uint8, src []byte) {
	for i := range dst {
		copy(dst[i][:], src[i*3:])
	}
}

// appendBody appends the unframed SPZ body to dst: the header, then positions,
// alphas, colors, scales, rotations and SH.
func (g *Gaussians) appendBody(dst []byte) []byte {
	dst = g.header.pod.AppendTo(dst)

	switch col := g.positions.(type) {
	case PositionsFloat16:
		for _, p := range col {
			for _, v := range p {
				dst = append(dst, byte(v), byte(v>>8))
			}
		}
	case PositionsFixedPoint24:
		for _, p := range col {
			dst = append(dst, p[0][:]...)
			dst = append(dst, p[1][:]...)
			dst = append(dst, p[2][:]...)
		}
	}

	dst = append(dst, g.alphas...)
	for _, c := range g.colors {
		dst = append(dst, c[:]...)
	}
	for _, s := range g.scales {
		dst = append(dst, s[:]...)
	}

	switch col := g.rotations.(type) {
	case RotationsFirstThree:
		for _, r := range col {
			dst = append(dst, r[:]...)
		}
	case RotationsSmallestThree:
		for _, r := range col {
			dst = append(dst, r[:]...)
		}
	}

	switch col := g.shs.(type) {
	case ShsOne:
		for i := range col {
			dst = appendTriples(dst, col[i][:])
		}
	case ShsTwo:
		for i := range col {
			dst = appendTriples(dst, col[i][:])
		}
	case ShsThree:
		for i := range col {
			dst = appendTriples(dst, col[i][:])
		}
	}

	return dst
}

func appendTriples(dst []byte, triples [][3]uint8) []byte {
	for _, t := range triples {
		dst = append(dst, t[:]...)
	}

	return dst
}

// bodySize returns the length of the unframed body.
func (g *Gaussians) bodySize() int {
	h := g.header
	stride := 9
	if h.UsesFloat16() {
		stride = 6
	}
	stride += 1 + 3 + 3
	if h.UsesQuatSmallestThree() {
		stride += 4
	} else {
		stride += 3
	}
	stride += h.ShNumCoefficients() * 3

	return HeaderSize + h.NumPoints()*stride
}

// Write encodes the collection to w using its compression type.
func (g *Gaussians) Write(w io.Writer) (err error) {
	codec, err := compress.GetCodec(g.compression)
	if err != nil {
		return err
	}

	buf := pool.GetBodyBuffer()
	defer pool.PutBodyBuffer(buf)

	buf.Grow(g.bodySize())
	buf.B = g.appendBody(buf.B[:0])

	cw, err := codec.NewWriter(w)
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(cw))

	_, err = cw.Write(buf.B)

	return err
}

// Encode returns the framed SPZ file as a new slice.
func (g *Gaussians) Encode() ([]byte, error) {
	codec, err := compress.GetCodec(g.compression)
	if err != nil {
		return nil, err
	}

	return codec.Compress(g.appendBody(make([]byte, 0, g.bodySize())))
}

// WriteFile creates or truncates the file at path and writes the collection to it.
func (g *Gaussians) WriteFile(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(f))

	bw := bufio.NewWriter(f)
	if err := g.Write(bw); err != nil {
		return err
	}

	return bw.Flush()
}

// Digest returns the xxHash64 of the unframed body. It does not depend on the
// outer framing.
func (g *Gaussians) Digest() uint64 {
	buf := pool.GetBodyBuffer()
	defer pool.PutBodyBuffer(buf)

	buf.Grow(g.bodySize())
	buf.B = g.appendBody(buf.B[:0])

	return xxhash.Sum64(buf.B)
}

func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}

	return err
}

// String summarizes the collection.
func (g *Gaussians) String() string {
	return fmt.Sprintf("%s, %s framing", g.header, g.compression)
}
