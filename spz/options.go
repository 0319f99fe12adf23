package spz

import (
	"fmt"
	"runtime"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/arloliu/gsplat/compress"
	"github.com/arloliu/gsplat/errs"
	"github.com/arloliu/gsplat/format"
	"github.com/arloliu/gsplat/internal/options"
)

const (
	DefaultVersion        uint32  = 3    // DefaultVersion is the format version written when none is given.
	DefaultShDegree       uint8   = 3    // DefaultShDegree keeps every SH coefficient.
	DefaultFractionalBits uint8   = 12   // DefaultFractionalBits gives 1/4096 position precision.
	DefaultColorScale     float32 = 0.15 // DefaultColorScale is the DC color scale of reference SPZ files.
)

// DefaultShQuantizeBits is the number of bits kept per SH coefficient of
// degree 1, 2 and 3.
var DefaultShQuantizeBits = [3]uint8{5, 4, 4}

type config struct {
	version        uint32
	shDegree       uint8
	fractionalBits uint8
	antialiased    bool
	shBits         [3]uint8
	colorScale     float32
	compression    format.CompressionType
	parallelism    int
	logger         *zap.Logger
}

func defaultConfig() *config {
	return &config{
		version:        DefaultVersion,
		shDegree:       DefaultShDegree,
		fractionalBits: DefaultFractionalBits,
		shBits:         DefaultShQuantizeBits,
		colorScale:     DefaultColorScale,
		compression:    format.CompressionGzip,
		parallelism:    1,
		logger:         zap.NewNop(),
	}
}

func newConfig(opts []Option) (*config, error) {
	cfg := defaultConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Option configures SPZ encoding and decoding. Decoding only honors
// WithColorScale and WithLogger; the remaining settings come from the file.
type Option = options.Option[*config]

// WithVersion selects the format version, 1 to 3.
func WithVersion(version uint32) Option {
	return options.New(func(c *config) error {
		if version < MinVersion || version > MaxVersion {
			return fmt.Errorf("%w: %d, expected one of %d..%d", errs.ErrUnsupportedVersion, version, MinVersion, MaxVersion)
		}
		c.version = version

		return nil
	})
}

// WithShDegree selects how many SH degrees are kept, 0 to 3.
func WithShDegree(degree uint8) Option {
	return options.New(func(c *config) error {
		if degree > MaxShDegree {
			return fmt.Errorf("%w: %d, expected 0..%d", errs.ErrUnsupportedShDegree, degree, MaxShDegree)
		}
		c.shDegree = degree

		return nil
	})
}

// WithFractionalBits sets the fixed-point position precision used by
// version 2 and later.
func WithFractionalBits(bits uint8) Option {
	return options.New(func(c *config) error {
		if bits > MaxFractionalBits {
			return fmt.Errorf("%w: %d, expected at most %d", errs.ErrInvalidFractionalBits, bits, MaxFractionalBits)
		}
		c.fractionalBits = bits

		return nil
	})
}

// WithAntialiased sets the antialiased header flag.
func WithAntialiased(antialiased bool) Option {
	return options.NoError(func(c *config) {
		c.antialiased = antialiased
	})
}

// WithShQuantizeBits sets the bits kept per SH coefficient for degrees 1, 2
// and 3. Each value must be within 1..8.
func WithShQuantizeBits(bits [3]uint8) Option {
	return options.New(func(c *config) error {
		for i, b := range bits {
			if b < 1 || b > 8 {
				return fmt.Errorf("%w: degree %d uses %d bits, expected 1..8", errs.ErrInvalidQuantizeBits, i+1, b)
			}
		}
		c.shBits = bits

		return nil
	})
}

// WithColorScale sets the scale applied to the DC color term. Files must be
// decoded with the scale they were encoded with.
func WithColorScale(scale float32) Option {
	return options.New(func(c *config) error {
		if !(scale > 0) || math32.IsInf(scale, 0) {
			return fmt.Errorf("%w: %v, expected a positive finite value", errs.ErrInvalidColorScale, scale)
		}
		c.colorScale = scale

		return nil
	})
}

// WithCompression selects the outer framing. Gzip is the only framing other
// SPZ tools read; the others are detected automatically by Read.
func WithCompression(ct format.CompressionType) Option {
	return options.New(func(c *config) error {
		if _, err := compress.GetCodec(ct); err != nil {
			return err
		}
		c.compression = ct

		return nil
	})
}

// WithParallelism sets how many goroutines quantize canonical records.
// Values below 1 use GOMAXPROCS. The output does not depend on it.
func WithParallelism(n int) Option {
	return options.NoError(func(c *config) {
		c.parallelism = n
		if n < 1 {
			c.parallelism = runtime.GOMAXPROCS(0)
		}
	})
}

// WithLogger sets the logger used while decoding. A nil logger keeps the
// default no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return options.NoError(func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	})
}
