package ply

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"math"
	"os"
	"strconv"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/arloliu/gsplat/endian"
	"github.com/arloliu/gsplat/errs"
	"github.com/arloliu/gsplat/format"
)

// maxPrealloc bounds the up-front allocation made from an untrusted count.
const maxPrealloc = 1 << 20

// Read parses a whole PLY stream into memory.
func Read(r io.Reader, opts ...Option) (Gaussians, error) {
	br := asBufioReader(r)

	h, err := ReadHeader(br)
	if err != nil {
		return nil, err
	}

	pods := make(Gaussians, 0, min(h.Count(), maxPrealloc))
	for pod, err := range Records(br, h, opts...) {
		if err != nil {
			return nil, err
		}
		pods = append(pods, pod)
	}

	return pods, nil
}

// ReadFile parses the PLY file at path.
func ReadFile(path string, opts ...Option) (pods Gaussians, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(f))

	return Read(bufio.NewReader(f), opts...)
}

// Records lazily decodes the body that follows h in br, one record per step.
//
// The sequence stops after the first error, which is yielded with a zero Pod.
// A body shorter than the declared count yields io.ErrUnexpectedEOF. The
// sequence consumes br and can be ranged over once.
func Records(br *bufio.Reader, h Header, opts ...Option) iter.Seq2[Pod, error] {
	return func(yield func(Pod, error) bool) {
		cfg, err := newConfig(opts)
		if err != nil {
			yield(Pod{}, err)
			return
		}

		cfg.logger.Debug("reading PLY records",
			zap.Int("count", h.Count()),
			zap.Stringer("kind", h.Kind),
			zap.Stringer("encoding", h.Raw.Encoding),
		)

		rr, err := newRecordReader(br, h, cfg.logger)
		if err != nil {
			yield(Pod{}, err)
			return
		}

		if err := rr.skipPreceding(); err != nil {
			yield(Pod{}, unexpectedEOF(err))
			return
		}

		for range h.Count() {
			var pod Pod
			if err := rr.read(&pod); err != nil {
				yield(Pod{}, unexpectedEOF(err))
				return
			}
			if !yield(pod, nil) {
				return
			}
		}
	}
}

type recordReader interface {
	skipPreceding() error
	read(p *Pod) error
}

func newRecordReader(br *bufio.Reader, h Header, logger *zap.Logger) (recordReader, error) {
	if h.Kind == HeaderInria {
		return &inriaReader{br: br}, nil
	}

	plan := newFieldPlan(h.Vertex(), logger)
	preceding := h.Raw.Elements[:h.vertex]

	if h.Raw.Encoding == format.PlyAscii {
		return &asciiReader{br: br, plan: plan, preceding: preceding}, nil
	}

	engine, ok := endian.GetPlyEngine(h.Raw.Encoding)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported encoding %s", errs.ErrInvalidPlyHeader, h.Raw.Encoding)
	}

	return &binaryReader{br: br, engine: engine, plan: plan, preceding: preceding}, nil
}

// field maps one declared vertex property to its schema slot, or -1 when
// the property is dropped.
type field struct {
	prop  Property
	index int
}

func newFieldPlan(vertex Element, logger *zap.Logger) []field {
	plan := make([]field, len(vertex.Properties))
	for i, prop := range vertex.Properties {
		plan[i] = field{prop: prop, index: -1}

		if prop.List {
			logger.Warn("skipping PLY list property", zap.String("property", prop.Name))
			continue
		}

		idx, ok := PropertyIndex(prop.Name)
		if !ok {
			logger.Warn("dropping unknown PLY property", zap.String("property", prop.Name))
			continue
		}
		plan[i].index = idx
	}

	return plan
}

type inriaReader struct {
	br *bufio.Reader
}

func (r *inriaReader) skipPreceding() error { return nil }

func (r *inriaReader) read(p *Pod) error {
	_, err := io.ReadFull(r.br, p.bytes()[:])
	return err
}

type binaryReader struct {
	br        *bufio.Reader
	engine    endian.EndianEngine
	plan      []field
	preceding []Element
	scratch   [8]byte
}

func (r *binaryReader) skipPreceding() error {
	for _, elem := range r.preceding {
		for range elem.Count {
			for _, prop := range elem.Properties {
				if err := r.skipProperty(prop); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

func (r *binaryReader) skipProperty(prop Property) error {
	if !prop.List {
		_, err := r.br.Discard(prop.Type.Size())
		return err
	}

	n, err := r.scalar(prop.CountType)
	if err != nil {
		return err
	}
	if n < 0 {
		return fmt.Errorf("%w: negative list length for %s", errs.ErrInvalidPropertyValue, prop.Name)
	}
	_, err = r.br.Discard(int(n) * prop.Type.Size())

	return err
}

func (r *binaryReader) read(p *Pod) error {
	vals := p.values()
	for _, f := range r.plan {
		if f.index < 0 {
			if err := r.skipProperty(f.prop); err != nil {
				return err
			}
			continue
		}

		v, err := r.scalar(f.prop.Type)
		if err != nil {
			return err
		}
		vals[f.index] = float32(v)
	}

	return nil
}

// scalar reads one value of type t in the body byte order.
func (r *binaryReader) scalar(t ScalarType) (float64, error) {
	buf := r.scratch[:t.Size()]
	if _, err := io.ReadFull(r.br, buf); err != nil {
		return 0, err
	}

	switch t {
	case ScalarInt8:
		return float64(int8(buf[0])), nil
	case ScalarUint8:
		return float64(buf[0]), nil
	case ScalarInt16:
		return float64(int16(r.engine.Uint16(buf))), nil
	case ScalarUint16:
		return float64(r.engine.Uint16(buf)), nil
	case ScalarInt32:
		return float64(int32(r.engine.Uint32(buf))), nil
	case ScalarUint32:
		return float64(r.engine.Uint32(buf)), nil
	case ScalarFloat32:
		return float64(math.Float32frombits(r.engine.Uint32(buf))), nil
	case ScalarFloat64:
		return math.Float64frombits(r.engine.Uint64(buf)), nil
	default:
		return 0, fmt.Errorf("%w: unknown scalar type %d", errs.ErrInvalidPlyHeader, t)
	}
}

type asciiReader struct {
	br        *bufio.Reader
	plan      []field
	preceding []Element
}

func (r *asciiReader) skipPreceding() error {
	for _, elem := range r.preceding {
		for range elem.Count {
			if _, err := r.line(); err != nil {
				return err
			}
		}
	}

	return nil
}

// line returns the tokens of the next non-blank line.
func (r *asciiReader) line() ([]string, error) {
	for {
		s, err := r.br.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || s == "") {
			return nil, err
		}

		if tokens := strings.Fields(s); len(tokens) > 0 {
			return tokens, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func (r *asciiReader) read(p *Pod) error {
	tokens, err := r.line()
	if err != nil {
		return err
	}

	vals := p.values()
	pos := 0
	for _, f := range r.plan {
		if pos >= len(tokens) {
			return fmt.Errorf("%w: %s", errs.ErrPropertyNotFound, f.prop.Name)
		}

		if f.prop.List {
			n, err := strconv.Atoi(tokens[pos])
			if err != nil || n < 0 {
				return fmt.Errorf("%w: %s=%q", errs.ErrInvalidPropertyValue, f.prop.Name, tokens[pos])
			}
			pos += 1 + n
			if pos > len(tokens) {
				return fmt.Errorf("%w: %s", errs.ErrPropertyNotFound, f.prop.Name)
			}

			continue
		}

		v, err := strconv.ParseFloat(tokens[pos], 32)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", errs.ErrInvalidPropertyValue, f.prop.Name, tokens[pos])
		}
		pos++

		if f.index >= 0 {
			vals[f.index] = float32(v)
		}
	}

	return nil
}

// unexpectedEOF reports a body that ends before the declared count.
func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}

	return err
}

func asBufioReader(r io.Reader) *bufio.Reader {
	if br, ok := r.(*bufio.Reader); ok {
		return br
	}

	return bufio.NewReader(r)
}
