// Package pool provides reusable byte buffers for the SPZ encoder and decoder.
//
// Pooled buffers stay bounded: ByteBufferPool drops anything grown past its
// threshold.
package pool

import (
	"io"
	"slices"
	"sync"
)

const (
	BodyBufferDefaultSize  = 1024 * 64        // 64KiB
	BodyBufferMaxThreshold = 1024 * 1024 * 16 // 16MiB

	readChunk = 1024 * 256
)

// ByteBuffer is a growable byte slice that can be handed out by a ByteBufferPool.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the specified default size.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{
		B: make([]byte, 0, defaultSize),
	}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset empties the buffer but keeps its memory.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Grow ensures the buffer can hold n more bytes without reallocating.
func (bb *ByteBuffer) Grow(n int) {
	bb.B = slices.Grow(bb.B, n)
}

// ReadN replaces the contents of the buffer with exactly n bytes from r and
// returns them. The buffer grows in readChunk steps as data arrives, so a
// length taken from an untrusted header fails with io.ErrUnexpectedEOF once
// the stream ends instead of allocating n bytes up front.
func (bb *ByteBuffer) ReadN(r io.Reader, n int64) ([]byte, error) {
	bb.Reset()
	for remaining := n; remaining > 0; {
		step := int(min(remaining, readChunk))
		bb.Grow(step)

		start := len(bb.B)
		read, err := io.ReadFull(r, bb.B[start:start+step])
		bb.B = bb.B[:start+read]
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}

			return nil, err
		}
		remaining -= int64(step)
	}

	return bb.B, nil
}

// ByteBufferPool is a sync.Pool of ByteBuffers that drops buffers grown past
// maxThreshold instead of retaining them.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a new ByteBufferPool with buffers of the specified default size.
func NewByteBufferPool(defaultSize int, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves a ByteBuffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a ByteBuffer to the pool for reuse.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}

	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

var bodyDefaultPool = NewByteBufferPool(BodyBufferDefaultSize, BodyBufferMaxThreshold)

// GetBodyBuffer retrieves a buffer for a whole encoded body (an SPZ payload).
func GetBodyBuffer() *ByteBuffer {
	return bodyDefaultPool.Get()
}

// PutBodyBuffer returns a body buffer to the pool.
func PutBodyBuffer(bb *ByteBuffer) {
	bodyDefaultPool.Put(bb)
}
