// Package gsplat provides a format-agnostic view of 3D Gaussian splat point
// clouds stored as PLY or SPZ.
//
// Every representation, whether an in-memory slice of canonical records, a
// PLY collection or an SPZ collection, is wrapped by Gaussians and exposes
// the same lazy sequence of canonical gaussian.Gaussian records through All.
//
// # Basic Usage
//
// Reading a file of either format:
//
//	import "github.com/arloliu/gsplat"
//
//	splats, err := gsplat.ReadFile("scene.spz")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for g := range splats.All() {
//	    fmt.Println(g.Pos, g.Color)
//	}
//
// Converting between formats:
//
//	splats, _ := gsplat.ReadFile("scene.ply")
//	out, _ := gsplat.Collect(splats.All(), format.SourceSpz,
//	    gsplat.WithSpzOptions(spz.WithVersion(2)),
//	)
//	_ = out.WriteFile("scene.spz")
//
// # Package Structure
//
// The gaussian package defines the canonical record; the ply and spz
// packages implement the codecs and give fine-grained control over headers,
// per-record access and quantization.
package gsplat

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/arloliu/gsplat/compress"
	"github.com/arloliu/gsplat/errs"
	"github.com/arloliu/gsplat/format"
	"github.com/arloliu/gsplat/gaussian"
	"github.com/arloliu/gsplat/internal/options"
	"github.com/arloliu/gsplat/ply"
	"github.com/arloliu/gsplat/spz"
)

// Gaussians is one of three representations of a splat cloud: canonical
// records, a PLY collection or an SPZ collection. Source reports which one.
type Gaussians struct {
	source    format.Source
	canonical []gaussian.Gaussian
	ply       ply.Gaussians
	spz       *spz.Gaussians
}

// New wraps canonical records.
func New(gs []gaussian.Gaussian) Gaussians {
	return Gaussians{source: format.SourceGaussian, canonical: gs}
}

// FromPly wraps a PLY collection.
func FromPly(p ply.Gaussians) Gaussians {
	return Gaussians{source: format.SourcePly, ply: p}
}

// FromSpz wraps an SPZ collection.
func FromSpz(s *spz.Gaussians) Gaussians {
	return Gaussians{source: format.SourceSpz, spz: s}
}

// Collect builds the representation selected by source from canonical records.
//
// Parameters:
//   - seq: Canonical records
//   - source: Target representation
//   - opts: WithSpzOptions configures SPZ quantization
//
// Returns:
//   - Gaussians: The new collection
//   - error: ErrUnknownSource, or SPZ option and header errors
func Collect(seq iter.Seq[gaussian.Gaussian], source format.Source, opts ...Option) (Gaussians, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return Gaussians{}, err
	}

	switch source {
	case format.SourceGaussian:
		return New(slices.Collect(seq)), nil
	case format.SourcePly:
		return FromPly(ply.FromGaussians(seq)), nil
	case format.SourceSpz:
		s, err := spz.FromGaussians(seq, cfg.spzOpts...)
		if err != nil {
			return Gaussians{}, err
		}

		return FromSpz(s), nil
	default:
		return Gaussians{}, fmt.Errorf("%w: %s", errs.ErrUnknownSource, source)
	}
}

// Source returns the wrapped representation.
func (g Gaussians) Source() format.Source { return g.source }

// Len returns the number of records.
func (g Gaussians) Len() int {
	switch g.source {
	case format.SourcePly:
		return g.ply.Len()
	case format.SourceSpz:
		return g.spz.Len()
	default:
		return len(g.canonical)
	}
}

// All yields every record in canonical form, whatever the representation.
func (g Gaussians) All() iter.Seq[gaussian.Gaussian] {
	switch g.source {
	case format.SourcePly:
		return g.ply.All()
	case format.SourceSpz:
		return g.spz.All()
	default:
		return slices.Values(g.canonical)
	}
}

// Canonical returns the wrapped canonical records.
func (g Gaussians) Canonical() ([]gaussian.Gaussian, bool) {
	return g.canonical, g.source == format.SourceGaussian
}

// Ply returns the wrapped PLY collection.
func (g Gaussians) Ply() (ply.Gaussians, bool) {
	return g.ply, g.source == format.SourcePly
}

// Spz returns the wrapped SPZ collection.
func (g Gaussians) Spz() (*spz.Gaussians, bool) {
	return g.spz, g.source == format.SourceSpz
}

// Convert re-encodes the records into the representation selected by source.
func (g Gaussians) Convert(source format.Source, opts ...Option) (Gaussians, error) {
	if source == g.source {
		return g, nil
	}

	return Collect(g.All(), source, opts...)
}

// Write encodes the wrapped PLY or SPZ collection to w. Canonical records
// have no file form and fail with ErrCanonicalWrite.
func (g Gaussians) Write(w io.Writer) error {
	switch g.source {
	case format.SourcePly:
		return g.ply.Write(w)
	case format.SourceSpz:
		return g.spz.Write(w)
	default:
		return errs.ErrCanonicalWrite
	}
}

// WriteFile creates or truncates the file at path and writes the collection to it.
func (g Gaussians) WriteFile(path string) (err error) {
	if g.source != format.SourcePly && g.source != format.SourceSpz {
		return errs.ErrCanonicalWrite
	}

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

// Read decodes a stream in the format selected by source. A zero source
// sniffs the format from the leading bytes; SourceGaussian fails with
// ErrCanonicalRead.
func Read(r io.Reader, source format.Source, opts ...Option) (Gaussians, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return Gaussians{}, err
	}

	br := bufio.NewReader(r)
	if source == 0 {
		prefix, _ := br.Peek(compress.DetectPrefixN)
		source = DetectSource(prefix)
	}

	var g Gaussians
	switch source {
	case format.SourceGaussian:
		return Gaussians{}, errs.ErrCanonicalRead
	case format.SourcePly:
		p, err := ply.Read(br, ply.WithLogger(cfg.logger))
		if err != nil {
			return Gaussians{}, err
		}
		g = FromPly(p)
	case format.SourceSpz:
		s, err := spz.Read(br, append([]spz.Option{spz.WithLogger(cfg.logger)}, cfg.spzOpts...)...)
		if err != nil {
			return Gaussians{}, err
		}
		g = FromSpz(s)
	default:
		return Gaussians{}, fmt.Errorf("%w: %s", errs.ErrUnknownSource, source)
	}

	cfg.logger.Debug("read gaussians", zap.Stringer("source", g.source), zap.Int("count", g.Len()))

	return g, nil
}

// ReadFile decodes the file at path. The format comes from the extension
// (.ply or .spz), falling back to sniffing the content.
func ReadFile(path string, opts ...Option) (g Gaussians, err error) {
	f, err := os.Open(path)
	if err != nil {
		return Gaussians{}, err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(f))

	return Read(f, SourceFromPath(path), opts...)
}

// SourceFromPath maps a file extension to a source, or 0 when unknown.
func SourceFromPath(path string) format.Source {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ply":
		return format.SourcePly
	case ".spz":
		return format.SourceSpz
	default:
		return 0
	}
}

var plyMagic = []byte("ply")

// DetectSource identifies a file format from its leading bytes: a "ply"
// line for PLY, an SPZ magic number or a supported compression frame for SPZ.
// Unrecognized content yields 0.
func DetectSource(prefix []byte) format.Source {
	if rest, ok := bytes.CutPrefix(prefix, plyMagic); ok {
		if len(rest) > 0 && (rest[0] == '\n' || rest[0] == '\r') {
			return format.SourcePly
		}
	}

	if compress.Detect(prefix) != format.CompressionNone {
		return format.SourceSpz
	}

	var pod spz.HeaderPod
	if len(prefix) >= 4 {
		padded := make([]byte, spz.HeaderSize)
		copy(padded, prefix)
		if pod.Parse(padded) == nil && pod.Magic == spz.Magic {
			return format.SourceSpz
		}
	}

	return 0
}

type config struct {
	logger  *zap.Logger
	spzOpts []spz.Option
}

// Option configures reading, writing and conversion.
type Option = options.Option[*config]

// WithLogger sets the logger passed to the codecs. A nil logger keeps the
// default no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return options.NoError(func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	})
}

// WithSpzOptions forwards options to the SPZ codec.
func WithSpzOptions(opts ...spz.Option) Option {
	return options.NoError(func(c *config) {
		c.spzOpts = append(c.spzOpts, opts...)
	})
}

func newConfig(opts []Option) (*config, error) {
	cfg := &config{logger: zap.NewNop()}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}
