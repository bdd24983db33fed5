package lspserver

import (
	"io"
	"sync"
)

// buffer is one direction of an in-memory connection. Writes never block, so
// a server publishing diagnostics cannot stall on a slow test client.
type buffer struct {
	mu     sync.Mutex
	ready  *sync.Cond
	data   []byte
	closed bool
}

func newBuffer() *buffer {
	b := &buffer{}
	b.ready = sync.NewCond(&b.mu)
	return b
}

func (b *buffer) read(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for len(b.data) == 0 {
		if b.closed {
			return 0, io.EOF
		}
		b.ready.Wait()
	}
	n := copy(p, b.data)
	b.data = b.data[n:]
	return n, nil
}

func (b *buffer) write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0, io.ErrClosedPipe
	}
	b.data = append(b.data, p...)
	b.ready.Broadcast()
	return len(p), nil
}

func (b *buffer) close() {
	b.mu.Lock()
	b.closed = true
	b.ready.Broadcast()
	b.mu.Unlock()
}

// end is one side of a duplex: it reads from in and writes to out. Closing
// either side closes both directions.
type end struct {
	in, out *buffer
}

func (e end) Read(p []byte) (int, error)  { return e.in.read(p) }
func (e end) Write(p []byte) (int, error) { return e.out.write(p) }

func (e end) Close() error {
	e.in.close()
	e.out.close()
	return nil
}

// duplex returns the two connected ends of an in-memory connection.
func duplex() (client, server io.ReadWriteCloser) {
	c2s, s2c := newBuffer(), newBuffer()
	return end{in: s2c, out: c2s}, end{in: c2s, out: s2c}
}
