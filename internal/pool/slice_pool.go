package pool

import (
	"bytes"
	"sync"
)

// Scratch slices for the fitting pipeline. Fitted values and residuals are
// recomputed for every call and never escape the caller.
var (
	float64SlicePool = sync.Pool{
		New: func() any { return &[]float64{} },
	}
	bufferPool = sync.Pool{
		New: func() any { return new(bytes.Buffer) },
	}
)

// maxPooledBuffer bounds the buffers kept for reuse so one huge payload does not pin memory.
const maxPooledBuffer = 1024 * 1024

// GetFloat64Slice retrieves and resizes a float64 slice from the pool.
//
// The returned slice has length size and unspecified contents. The caller must
// call the returned cleanup function to return the slice to the pool.
//
// Example:
//
//	residuals, cleanup := pool.GetFloat64Slice(n)
//	defer cleanup()
func GetFloat64Slice(size int) ([]float64, func()) {
	ptr, _ := float64SlicePool.Get().(*[]float64)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]float64, size)
	} else {
		slice = slice[:size]
	}
	*ptr = slice

	return slice, func() { float64SlicePool.Put(ptr) }
}

// GetBuffer returns an empty buffer from the pool.
func GetBuffer() *bytes.Buffer {
	buf, _ := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()

	return buf
}

// PutBuffer returns buf to the pool. Oversized buffers are dropped.
func PutBuffer(buf *bytes.Buffer) {
	if buf == nil || buf.Cap() > maxPooledBuffer {
		return
	}
	bufferPool.Put(buf)
}
