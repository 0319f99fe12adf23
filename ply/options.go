package ply

import (
	"go.uber.org/zap"

	"github.com/arloliu/gsplat/internal/options"
)

type config struct {
	logger *zap.Logger
}

// Option configures PLY reading.
type Option = options.Option[*config]

// WithLogger sets the logger that reports the record count and any property
// the reader drops. A nil logger keeps the default no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return options.NoError(func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	})
}

func newConfig(opts []Option) (*config, error) {
	cfg := &config{logger: zap.NewNop()}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}
