package gsplat

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/arloliu/gsplat/compress"
	"github.com/arloliu/gsplat/errs"
	"github.com/arloliu/gsplat/format"
	"github.com/arloliu/gsplat/gaussian"
	"github.com/arloliu/gsplat/internal/testutil"
	"github.com/arloliu/gsplat/ply"
	"github.com/arloliu/gsplat/spz"
)

func requireAll(t *testing.T, want []gaussian.Gaussian, g Gaussians, tol testutil.Tolerance) {
	t.Helper()

	got := slices.Collect(g.All())
	require.Len(t, got, len(want))
	for i := range want {
		testutil.RequireGaussian(t, want[i], got[i], tol)
	}
}

func TestExamplePly(t *testing.T) {
	want := testutil.ExampleGaussians()

	g, err := Collect(slices.Values(want), format.SourcePly)
	require.NoError(t, err)
	require.Equal(t, format.SourcePly, g.Source())

	var buf bytes.Buffer
	require.NoError(t, g.Write(&buf))

	got, err := Read(&buf, 0)
	require.NoError(t, err)
	require.Equal(t, format.SourcePly, got.Source())
	require.Equal(t, 3, got.Len())
	requireAll(t, want, got, testutil.PlyTolerance)
}

func TestExampleSpzV2(t *testing.T) {
	want := testutil.ExampleGaussians()

	g, err := Collect(slices.Values(want), format.SourceSpz, WithSpzOptions(spz.WithVersion(2)))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, g.Write(&buf))

	got, err := Read(&buf, format.SourceSpz)
	require.NoError(t, err)
	require.Equal(t, format.SourceSpz, got.Source())

	s, ok := got.Spz()
	require.True(t, ok)
	require.Equal(t, uint32(2), s.Header().Version())
	requireAll(t, want, got, testutil.SpzTolerance(15, spz.DefaultShQuantizeBits))
}

func TestExampleSpzCorruptedMagic(t *testing.T) {
	g, err := Collect(slices.Values(testutil.ExampleGaussians()), format.SourceSpz, WithSpzOptions(spz.WithVersion(2)))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, g.Write(&buf))

	body, err := compress.NewGzipCompressor().Decompress(buf.Bytes())
	require.NoError(t, err)
	body[3] = 'X'
	corrupted, err := compress.NewGzipCompressor().Compress(body)
	require.NoError(t, err)

	_, err = Read(bytes.NewReader(corrupted), format.SourceSpz)
	require.ErrorIs(t, err, errs.ErrInvalidMagic)
}

func TestCanonical(t *testing.T) {
	want := testutil.ExampleGaussians()
	g := New(want)

	require.Equal(t, format.SourceGaussian, g.Source())
	require.Equal(t, 3, g.Len())
	require.Equal(t, want, slices.Collect(g.All()))

	records, ok := g.Canonical()
	require.True(t, ok)
	require.Equal(t, want, records)

	_, ok = g.Ply()
	require.False(t, ok)
	_, ok = g.Spz()
	require.False(t, ok)

	require.ErrorIs(t, g.Write(&bytes.Buffer{}), errs.ErrCanonicalWrite)
	require.ErrorIs(t, g.WriteFile(filepath.Join(t.TempDir(), "x.ply")), errs.ErrCanonicalWrite)

	_, err := Read(bytes.NewReader(nil), format.SourceGaussian)
	require.ErrorIs(t, err, errs.ErrCanonicalRead)
}

func TestCollectUnknownSource(t *testing.T) {
	_, err := Collect(slices.Values(testutil.ExampleGaussians()), format.Source(42))
	require.ErrorIs(t, err, errs.ErrUnknownSource)
}

func TestCollectSpzOptionError(t *testing.T) {
	_, err := Collect(slices.Values(testutil.ExampleGaussians()), format.SourceSpz,
		WithSpzOptions(spz.WithShDegree(9)))
	require.ErrorIs(t, err, errs.ErrUnsupportedShDegree)
}

func TestConvert(t *testing.T) {
	want := testutil.Gaussians(10, 3)

	g := New(want)
	same, err := g.Convert(format.SourceGaussian)
	require.NoError(t, err)
	require.Equal(t, g, same)

	p, err := g.Convert(format.SourcePly)
	require.NoError(t, err)
	pods, ok := p.Ply()
	require.True(t, ok)
	require.Equal(t, ply.FromSlice(want), pods)

	s, err := p.Convert(format.SourceSpz, WithSpzOptions(spz.WithVersion(3), spz.WithShDegree(1)))
	require.NoError(t, err)
	requireAll(t, want, s, testutil.SpzTolerance(3, spz.DefaultShQuantizeBits))

	back, err := s.Convert(format.SourceGaussian)
	require.NoError(t, err)
	records, ok := back.Canonical()
	require.True(t, ok)
	require.Len(t, records, len(want))
}

func TestReadWriteFile(t *testing.T) {
	want := testutil.ExampleGaussians()
	dir := t.TempDir()

	t.Run("Ply", func(t *testing.T) {
		g, err := Collect(slices.Values(want), format.SourcePly)
		require.NoError(t, err)

		path := filepath.Join(dir, "scene.PLY")
		require.NoError(t, g.WriteFile(path))

		got, err := ReadFile(path)
		require.NoError(t, err)
		require.Equal(t, format.SourcePly, got.Source())
		requireAll(t, want, got, testutil.PlyTolerance)
	})

	t.Run("Spz", func(t *testing.T) {
		g, err := Collect(slices.Values(want), format.SourceSpz)
		require.NoError(t, err)

		path := filepath.Join(dir, "scene.spz")
		require.NoError(t, g.WriteFile(path))

		got, err := ReadFile(path)
		require.NoError(t, err)
		require.Equal(t, format.SourceSpz, got.Source())
		requireAll(t, want, got, testutil.SpzTolerance(15, spz.DefaultShQuantizeBits))
	})

	t.Run("SniffUnknownExtension", func(t *testing.T) {
		for _, source := range []format.Source{format.SourcePly, format.SourceSpz} {
			g, err := Collect(slices.Values(want), source)
			require.NoError(t, err)

			path := filepath.Join(dir, "scene-"+source.String()+".bin")
			require.NoError(t, g.WriteFile(path))

			got, err := ReadFile(path)
			require.NoError(t, err)
			require.Equal(t, source, got.Source())
			require.Equal(t, 3, got.Len())
		}
	})

	t.Run("Unrecognized", func(t *testing.T) {
		path := filepath.Join(dir, "notes.txt")
		require.NoError(t, os.WriteFile(path, []byte("hello world"), 0o600))

		_, err := ReadFile(path)
		require.ErrorIs(t, err, errs.ErrUnknownSource)
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := ReadFile(filepath.Join(dir, "missing.ply"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestDetectSource(t *testing.T) {
	spzBody := spz.HeaderPod{Magic: spz.Magic, Version: 2}.Bytes()

	tests := []struct {
		name   string
		prefix []byte
		want   format.Source
	}{
		{"Ply", []byte("ply\nformat ascii 1.0\n"), format.SourcePly},
		{"PlyCRLF", []byte("ply\r\nformat"), format.SourcePly},
		{"PlyPrefixOnly", []byte("plywood"), 0},
		{"Gzip", []byte{0x1f, 0x8b, 0x08, 0x00}, format.SourceSpz},
		{"Zstd", []byte{0x28, 0xb5, 0x2f, 0xfd, 0x00}, format.SourceSpz},
		{"UnframedSpz", spzBody, format.SourceSpz},
		{"ShortSpzMagic", spzBody[:4], format.SourceSpz},
		{"Empty", nil, 0},
		{"Text", []byte("hello"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, DetectSource(tt.prefix))
		})
	}
}

func TestSourceFromPath(t *testing.T) {
	require.Equal(t, format.SourcePly, SourceFromPath("a/b/scene.ply"))
	require.Equal(t, format.SourceSpz, SourceFromPath("scene.SPZ"))
	require.Equal(t, format.Source(0), SourceFromPath("scene.splat"))
}

func TestWithLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	g, err := Collect(slices.Values(testutil.ExampleGaussians()), format.SourcePly)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, g.Write(&buf))

	_, err = Read(&buf, 0, WithLogger(zap.New(core)), WithLogger(nil))
	require.NoError(t, err)
	require.Equal(t, 1, logs.FilterMessage("reading PLY records").Len())
	require.Equal(t, 1, logs.FilterMessage("read gaussians").Len())
}

func TestZeroValue(t *testing.T) {
	var g Gaussians
	require.Equal(t, 0, g.Len())
	require.Empty(t, slices.Collect(g.All()))
	require.ErrorIs(t, g.Write(&bytes.Buffer{}), errs.ErrCanonicalWrite)
}
