package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type codecConfig struct {
	version uint32
	name    string
}

func withVersion(v uint32) Option[*codecConfig] {
	return New(func(c *codecConfig) error {
		if v == 0 {
			return errors.New("version must be positive")
		}
		c.version = v

		return nil
	})
}

func withName(name string) Option[*codecConfig] {
	return NoError(func(c *codecConfig) {
		c.name = name
	})
}

func TestApply(t *testing.T) {
	t.Run("applies in order", func(t *testing.T) {
		cfg := &codecConfig{}
		err := Apply(cfg, withVersion(2), withName("a"), withVersion(3))

		require.NoError(t, err)
		require.Equal(t, uint32(3), cfg.version)
		require.Equal(t, "a", cfg.name)
	})

	t.Run("stops at first error", func(t *testing.T) {
		cfg := &codecConfig{}
		err := Apply(cfg, withName("before"), withVersion(0), withName("after"))

		require.Error(t, err)
		require.Equal(t, "before", cfg.name)
	})

	t.Run("skips nil options", func(t *testing.T) {
		cfg := &codecConfig{}
		err := Apply(cfg, nil, withName("x"))

		require.NoError(t, err)
		require.Equal(t, "x", cfg.name)
	})

	t.Run("no options", func(t *testing.T) {
		cfg := &codecConfig{version: 7}
		require.NoError(t, Apply(cfg))
		require.Equal(t, uint32(7), cfg.version)
	})
}
