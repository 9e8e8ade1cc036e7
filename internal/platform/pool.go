package platform

import "sync"

// readBufferSize is the chunk size lent out for socket and process I/O
// reads. Data read into a pooled buffer must be copied out before the
// buffer is returned to the pool.
const readBufferSize = 4096

// BufferPool lends reusable byte slices for reading from connections
// and child process pipes, avoiding a per-read allocation on the hot
// path of the event loop.
type BufferPool struct {
	pool sync.Pool
}

// NewBufferPool creates a pool of readBufferSize byte slices.
func NewBufferPool() *BufferPool {
	return &BufferPool{
		pool: sync.Pool{
			New: func() any {
				b := make([]byte, readBufferSize)
				return &b
			},
		},
	}
}

// Get returns a buffer of at least readBufferSize bytes.
func (p *BufferPool) Get() []byte {
	b := p.pool.Get().(*[]byte)
	return *b
}

// Put returns buf to the pool. buf must not be used after this call.
func (p *BufferPool) Put(buf []byte) {
	buf = buf[:cap(buf)]
	p.pool.Put(&buf)
}
