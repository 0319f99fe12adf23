package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/arloliu/gsplat"
	"github.com/arloliu/gsplat/format"
	"github.com/arloliu/gsplat/spz"
)

const (
	flagVerbose        = "verbose"
	flagHead           = "head"
	flagTo             = "to"
	flagSpzVersion     = "spz-version"
	flagShDegree       = "sh-degree"
	flagFractionalBits = "fractional-bits"
	flagColorScale     = "color-scale"
	flagCompression    = "compression"
	flagParallel       = "parallel"
	flagAntialiased    = "antialiased"
)

func newApp(stdout, stderr io.Writer) *cli.App {
	var logger *zap.Logger

	return &cli.App{
		Name:      "gsplat",
		Usage:     "inspect and convert 3D Gaussian splat files",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    flagVerbose,
				Aliases: []string{"v"},
				Usage:   "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			var err error
			if c.Bool(flagVerbose) {
				logger, err = zap.NewDevelopment()
			} else {
				logger, err = zap.NewProduction()
			}

			return err
		},
		After: func(c *cli.Context) error {
			if logger != nil {
				_ = logger.Sync()
			}

			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "inspect",
				Usage:     "print a summary of a PLY or SPZ file",
				UsageText: "gsplat inspect [--head N] <file>",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  flagHead,
						Usage: "print the first `N` records",
					},
				},
				Action: func(c *cli.Context) error {
					return inspectAction(c, logger)
				},
			},
			{
				Name:      "convert",
				Usage:     "convert between PLY and SPZ",
				UsageText: "gsplat convert [options] <input> <output>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  flagTo,
						Usage: "output format, ply or spz; defaults to the output file extension",
					},
					&cli.UintFlag{
						Name:  flagSpzVersion,
						Value: uint(spz.DefaultVersion),
						Usage: "SPZ format version (1-3)",
					},
					&cli.UintFlag{
						Name:  flagShDegree,
						Value: uint(spz.DefaultShDegree),
						Usage: "SPZ spherical harmonics degree (0-3)",
					},
					&cli.UintFlag{
						Name:  flagFractionalBits,
						Value: uint(spz.DefaultFractionalBits),
						Usage: "SPZ fixed-point position precision",
					},
					&cli.Float64Flag{
						Name:  flagColorScale,
						Value: float64(spz.DefaultColorScale),
						Usage: "SPZ DC color scale, used for reading and writing",
					},
					&cli.StringFlag{
						Name:  flagCompression,
						Value: "gzip",
						Usage: "SPZ outer framing: gzip, zstd, s2, lz4 or none",
					},
					&cli.IntFlag{
						Name:  flagParallel,
						Value: 1,
						Usage: "goroutines used to quantize SPZ output, 0 for all CPUs",
					},
					&cli.BoolFlag{
						Name:  flagAntialiased,
						Usage: "set the SPZ antialiased flag",
					},
				},
				Action: func(c *cli.Context) error {
					return convertAction(c, logger)
				},
			},
		},
	}
}

func inspectAction(c *cli.Context, logger *zap.Logger) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected 1 argument, got %d", c.NArg())
	}
	path := c.Args().First()

	digest, err := fileDigest(path)
	if err != nil {
		return err
	}

	g, err := gsplat.ReadFile(path, gsplat.WithLogger(logger))
	if err != nil {
		return err
	}

	w := c.App.Writer
	fmt.Fprintf(w, "file:    %s\n", path)
	fmt.Fprintf(w, "xxhash:  %016x\n", digest)
	fmt.Fprintf(w, "format:  %s\n", g.Source())
	fmt.Fprintf(w, "count:   %d\n", g.Len())

	if s, ok := g.Spz(); ok {
		fmt.Fprintf(w, "header:  %s\n", s.Header())
		fmt.Fprintf(w, "framing: %s\n", s.Compression())
		fmt.Fprintf(w, "body:    %016x\n", s.Digest())
	}

	head := c.Int(flagHead)
	i := 0
	for rec := range g.All() {
		if i >= head {
			break
		}
		fmt.Fprintf(w, "%d: %s\n", i, rec)
		i++
	}

	return nil
}

func fileDigest(path string) (sum uint64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(f))

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return 0, err
	}

	return h.Sum64(), nil
}

func convertAction(c *cli.Context, logger *zap.Logger) error {
	if c.NArg() != 2 {
		return fmt.Errorf("expected 2 arguments, got %d", c.NArg())
	}
	in, out := c.Args().Get(0), c.Args().Get(1)

	target := gsplat.SourceFromPath(out)
	if to := c.String(flagTo); to != "" {
		var err error
		if target, err = parseSource(to); err != nil {
			return err
		}
	}
	if target == 0 {
		return fmt.Errorf("cannot infer output format from %q, use --%s", out, flagTo)
	}

	compression, err := parseCompression(c.String(flagCompression))
	if err != nil {
		return err
	}

	colorScale := spz.WithColorScale(float32(c.Float64(flagColorScale)))
	readOpts := []gsplat.Option{
		gsplat.WithLogger(logger),
		gsplat.WithSpzOptions(colorScale),
	}
	writeOpts := []gsplat.Option{
		gsplat.WithLogger(logger),
		gsplat.WithSpzOptions(
			spz.WithVersion(uint32(c.Uint(flagSpzVersion))),
			spz.WithShDegree(uint8(min(c.Uint(flagShDegree), 255))),
			spz.WithFractionalBits(uint8(min(c.Uint(flagFractionalBits), 255))),
			spz.WithAntialiased(c.Bool(flagAntialiased)),
			spz.WithCompression(compression),
			spz.WithParallelism(c.Int(flagParallel)),
			colorScale,
		),
	}

	g, err := gsplat.ReadFile(in, readOpts...)
	if err != nil {
		return err
	}

	converted, err := gsplat.Collect(g.All(), target, writeOpts...)
	if err != nil {
		return err
	}

	if err := converted.WriteFile(out); err != nil {
		return err
	}

	logger.Info("converted splat file",
		zap.String("input", in),
		zap.String("output", out),
		zap.Stringer("from", g.Source()),
		zap.Stringer("to", target),
		zap.Int("count", converted.Len()),
	)

	return nil
}

func parseSource(s string) (format.Source, error) {
	switch strings.ToLower(s) {
	case "ply":
		return format.SourcePly, nil
	case "spz":
		return format.SourceSpz, nil
	default:
		return 0, fmt.Errorf("unknown output format %q, expected ply or spz", s)
	}
}

func parseCompression(s string) (format.CompressionType, error) {
	switch strings.ToLower(s) {
	case "gzip":
		return format.CompressionGzip, nil
	case "zstd":
		return format.CompressionZstd, nil
	case "s2":
		return format.CompressionS2, nil
	case "lz4":
		return format.CompressionLZ4, nil
	case "none":
		return format.CompressionNone, nil
	default:
		return 0, fmt.Errorf("unknown compression %q, expected gzip, zstd, s2, lz4 or none", s)
	}
}
