// Package transport defines the serial-transport contract a Controller
// Session runs on (spec.md §6): a Send that blocks until the transport has
// consumed the buffer, and a single background goroutine per channel
// delivering received bytes.
package transport

import "context"

// Channel is an open, ready-to-use serial connection to a BLE controller.
type Channel interface {
	// Send writes bytes and blocks until the transport has consumed the
	// buffer (the real serial.Port write path is synchronous; see
	// serial.go). bytes must not be reused by the caller until Send
	// returns.
	Send(ctx context.Context, bytes []byte) error

	// Close releases the underlying port. Synchronous.
	Close() error
}

// ReadLoop is run by the Controller Session in its own goroutine; it must
// block, invoking onData once per chunk read from the wire, until the
// channel is closed.
type ReadLoop func(onData func(chunk []byte))
