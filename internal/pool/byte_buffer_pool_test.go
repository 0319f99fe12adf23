package pool

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByteBuffer(t *testing.T) {
	bb := NewByteBuffer(4)
	require.Equal(t, 0, bb.Len())

	bb.B = append(bb.B, 1, 2, 3, 4, 5)
	require.Equal(t, []byte{1, 2, 3, 4, 5}, bb.Bytes())

	bb.Reset()
	require.Equal(t, 0, bb.Len())
	require.GreaterOrEqual(t, cap(bb.B), 5)
}

func TestByteBufferReadN(t *testing.T) {
	payload := bytes.Repeat([]byte{0xAB, 0xCD, 0xEF}, readChunk)

	t.Run("exact", func(t *testing.T) {
		bb := NewByteBuffer(8)
		bb.B = append(bb.B, 1, 2, 3)

		got, err := bb.ReadN(bytes.NewReader(payload), int64(len(payload)))
		require.NoError(t, err)
		require.Equal(t, payload, got)
		require.Equal(t, len(payload), bb.Len())
	})

	t.Run("prefix", func(t *testing.T) {
		bb := NewByteBuffer(8)
		r := bytes.NewReader(payload)

		got, err := bb.ReadN(r, 4)
		require.NoError(t, err)
		require.Equal(t, payload[:4], got)
		require.Equal(t, len(payload)-4, r.Len())
	})

	t.Run("zero", func(t *testing.T) {
		bb := NewByteBuffer(8)
		got, err := bb.ReadN(bytes.NewReader(nil), 0)
		require.NoError(t, err)
		require.Empty(t, got)
	})

	t.Run("short", func(t *testing.T) {
		bb := NewByteBuffer(8)
		_, err := bb.ReadN(bytes.NewReader(payload[:10]), 1<<40)
		require.ErrorIs(t, err, io.ErrUnexpectedEOF)
		require.Less(t, cap(bb.B), 2*readChunk)
	})

	t.Run("empty stream", func(t *testing.T) {
		bb := NewByteBuffer(8)
		_, err := bb.ReadN(bytes.NewReader(nil), 16)
		require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})
}

func TestByteBufferGrow(t *testing.T) {
	bb := NewByteBuffer(2)
	bb.B = append(bb.B, 9)
	bb.Grow(100)

	require.GreaterOrEqual(t, cap(bb.B)-len(bb.B), 100)
	require.Equal(t, []byte{9}, bb.Bytes())

	before := cap(bb.B)
	bb.Grow(10)
	require.Equal(t, before, cap(bb.B))
}

func TestByteBufferPool(t *testing.T) {
	p := NewByteBufferPool(8, 32)

	bb := p.Get()
	require.NotNil(t, bb)
	require.Equal(t, 0, bb.Len())

	bb.B = append(bb.B, 1, 2, 3)
	p.Put(bb)

	again := p.Get()
	require.Equal(t, 0, again.Len())

	// Oversized and nil buffers are dropped without panicking.
	p.Put(NewByteBuffer(64))
	p.Put(nil)
}

func TestDefaultPools(t *testing.T) {
	body := GetBodyBuffer()
	require.GreaterOrEqual(t, cap(body.B), BodyBufferDefaultSize)
	PutBodyBuffer(body)
}
