package compress

import (
	"bytes"
	"io"
	"testing"

	"github.com/arloliu/gsplat/errs"
	"github.com/arloliu/gsplat/format"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"
)

var allTypes = []format.CompressionType{
	format.CompressionNone,
	format.CompressionGzip,
	format.CompressionZstd,
	format.CompressionS2,
	format.CompressionLZ4,
}

func samplePayload() []byte {
	// Header-like prefix followed by repetitive columnar bytes.
	data := []byte("NGSP\x03\x00\x00\x00")
	for i := range 4096 {
		data = append(data, byte(i%7), byte(i%13), 0x80)
	}

	return data
}

func TestGetCodec(t *testing.T) {
	for _, ct := range allTypes {
		t.Run(ct.String(), func(t *testing.T) {
			codec, err := GetCodec(ct)
			require.NoError(t, err)
			require.Equal(t, ct, codec.Type())
		})
	}

	_, err := GetCodec(format.CompressionType(0xEE))
	require.ErrorIs(t, err, errs.ErrUnsupportedCompress)
}

func TestCodecRoundTrip(t *testing.T) {
	data := samplePayload()

	for _, ct := range allTypes {
		t.Run(ct.String(), func(t *testing.T) {
			codec, err := GetCodec(ct)
			require.NoError(t, err)

			compressed, err := codec.Compress(data)
			require.NoError(t, err)

			decompressed, err := codec.Decompress(compressed)
			require.NoError(t, err)
			require.Equal(t, data, decompressed)
		})
	}
}

func TestCodecStreamRoundTrip(t *testing.T) {
	data := samplePayload()

	for _, ct := range allTypes {
		t.Run(ct.String(), func(t *testing.T) {
			codec, err := GetCodec(ct)
			require.NoError(t, err)

			var buf bytes.Buffer
			w, err := codec.NewWriter(&buf)
			require.NoError(t, err)

			// Write in uneven chunks to exercise buffering.
			for start := 0; start < len(data); start += 1000 {
				end := min(start+1000, len(data))
				_, err = w.Write(data[start:end])
				require.NoError(t, err)
			}
			require.NoError(t, w.Close())

			r, err := codec.NewReader(&buf)
			require.NoError(t, err)
			got, err := io.ReadAll(r)
			require.NoError(t, err)
			require.NoError(t, r.Close())
			require.Equal(t, data, got)
		})
	}
}

func TestCodecStreamAndBlockInterop(t *testing.T) {
	data := samplePayload()

	for _, ct := range allTypes {
		t.Run(ct.String(), func(t *testing.T) {
			codec, err := GetCodec(ct)
			require.NoError(t, err)

			compressed, err := codec.Compress(data)
			require.NoError(t, err)

			r, err := codec.NewReader(bytes.NewReader(compressed))
			require.NoError(t, err)
			got, err := io.ReadAll(r)
			require.NoError(t, err)
			require.Equal(t, data, got)
		})
	}
}

func TestDetect(t *testing.T) {
	data := samplePayload()

	for _, ct := range allTypes {
		t.Run(ct.String(), func(t *testing.T) {
			codec, err := GetCodec(ct)
			require.NoError(t, err)

			compressed, err := codec.Compress(data)
			require.NoError(t, err)
			require.Equal(t, ct, Detect(compressed))
		})
	}

	t.Run("short input", func(t *testing.T) {
		require.Equal(t, format.CompressionNone, Detect(nil))
		require.Equal(t, format.CompressionNone, Detect([]byte{0x1f}))
	})
}

func TestGzipDecompressCorrupted(t *testing.T) {
	_, err := NewGzipCompressor().Decompress([]byte{0x1f, 0x8b, 0x00, 0x01, 0x02})
	require.Error(t, err)
}

func TestGzipDecompressBadChecksum(t *testing.T) {
	data := samplePayload()
	compressed, err := NewGzipCompressor().Compress(data)
	require.NoError(t, err)

	// The member ends with CRC32 and ISIZE, four bytes each.
	for _, off := range []int{8, 4} {
		bad := bytes.Clone(compressed)
		bad[len(bad)-off] ^= 0xff

		_, err := NewGzipCompressor().Decompress(bad)
		require.ErrorIs(t, err, gzip.ErrChecksum, "trailer offset -%d", off)
	}
}
