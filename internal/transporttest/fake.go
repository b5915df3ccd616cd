// Package transporttest provides an in-memory transport.Channel for
// exercising pkg/lightblue without a real serial port, in the spirit of
// the teacher's fake-peripheral test doubles (internal/testutils).
package transporttest

import (
	"context"
	"sync"

	"github.com/signbit/lightblue/internal/transport"
)

// Fake is an in-memory transport.Channel. Sent bytes are recorded in Sent;
// test code calls Deliver to push simulated controller bytes into the
// session's read loop.
type Fake struct {
	mu     sync.Mutex
	onData func([]byte)
	Sent   [][]byte
	closed bool
	done   chan struct{}
}

// New returns a Fake channel and its ReadLoop, wired together.
func New() (*Fake, transport.ReadLoop) {
	f := &Fake{done: make(chan struct{})}
	loop := func(onData func([]byte)) {
		f.mu.Lock()
		f.onData = onData
		f.mu.Unlock()
		<-f.done
	}
	return f, loop
}

func (f *Fake) Send(ctx context.Context, bytes []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]byte, len(bytes))
	copy(cp, bytes)
	f.Sent = append(f.Sent, cp)
	return nil
}

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.done)
	}
	return nil
}

// SentCount returns the number of frames sent so far.
func (f *Fake) SentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Sent)
}

// Deliver simulates the controller sending chunk to the host.
func (f *Fake) Deliver(chunk []byte) {
	f.mu.Lock()
	onData := f.onData
	f.mu.Unlock()
	if onData != nil {
		onData(chunk)
	}
}
