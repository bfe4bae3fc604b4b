//go:build !rp2040

package main

import (
	"context"
	"io"
	"sync"
)

// stdioPort adapts an io.Reader/io.Writer pair (stdin/stdout on the
// host) to the console's serial port contract. A pump goroutine drains
// the reader into a buffer so Readable can signal without blocking.
type stdioPort struct {
	out      io.Writer
	readable chan struct{}

	mu sync.Mutex
	rx []byte
}

func newStdioPort(in io.Reader, out io.Writer) *stdioPort {
	p := &stdioPort{out: out, readable: make(chan struct{}, 1)}
	go p.pump(in)
	return p
}

func (p *stdioPort) pump(in io.Reader) {
	buf := make([]byte, 64)
	for {
		n, err := in.Read(buf)
		if n > 0 {
			p.mu.Lock()
			p.rx = append(p.rx, buf[:n]...)
			p.mu.Unlock()
			p.signal()
		}
		if err != nil {
			return
		}
	}
}

func (p *stdioPort) signal() {
	select {
	case p.readable <- struct{}{}:
	default:
	}
}

func (p *stdioPort) Write(b []byte) (int, error) { return p.out.Write(b) }

func (p *stdioPort) Readable() <-chan struct{} { return p.readable }

func (p *stdioPort) RecvSomeContext(_ context.Context, b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.rx) == 0 {
		return 0, nil
	}
	n := copy(b, p.rx)
	p.rx = p.rx[n:]
	if len(p.rx) > 0 {
		p.signal() // leftover bytes: keep the console loop awake
	}
	return n, nil
}
