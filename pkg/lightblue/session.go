// Package lightblue is the public API of the library: Session ties the
// framer, command correlator, device table, and vendor adapter together
// into the synchronous central-role API spec.md §4.6 describes.
package lightblue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/signbit/lightblue/internal/correlator"
	"github.com/signbit/lightblue/internal/devicetable"
	"github.com/signbit/lightblue/internal/groutine"
	"github.com/signbit/lightblue/internal/transport"
	"github.com/signbit/lightblue/internal/vendor"
	"github.com/signbit/lightblue/internal/wire"
	"github.com/signbit/lightblue/pkg/config"
)

// accumulatorCapacity is comfortably above spec.md's "at least 128 byte"
// minimum; event payloads up to 255 bytes plus a 3-byte header can arrive
// back-to-back in one serial read.
const accumulatorCapacity = 2048

// Session is a Controller Session: one open connection to a BLE
// controller, speaking HCI over a transport.Channel.
type Session struct {
	log    *logrus.Logger
	cfg    *config.Config
	ch     transport.Channel
	framer *wire.Framer

	correlator *correlator.Table
	devices    *devicetable.Table

	manufacturerID uint16
	vendorAdapter  vendor.Adapter

	callbacks *vendor.Callbacks

	sessionMu sync.Mutex
	sessionCh chan any
}

// Option configures a Session at Connect time.
type Option func(*Session)

// WithLogger overrides the default (info-level, stderr) logger.
func WithLogger(log *logrus.Logger) Option {
	return func(s *Session) { s.log = log }
}

// WithConfig overrides default timeouts.
func WithConfig(cfg *config.Config) Option {
	return func(s *Session) { s.cfg = cfg }
}

// WithCallbacks registers the application's upcalls. May also be set later
// via Session.SetCallbacks, before Connect's first device-discovery/connect
// call.
func WithCallbacks(cb *vendor.Callbacks) Option {
	return func(s *Session) { s.callbacks = cb.Normalize() }
}

// Connect opens portName and returns a ready-to-use Session. It does not
// perform HCI bring-up (Reset, vendor identification) — call InitializeHCI
// for that, matching the original library's connect/initializeHCI split
// (spec.md §4.6).
func Connect(portName string, opts ...Option) (*Session, error) {
	ch, loop, err := transport.OpenSerial(portName, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrControllerNotConnected, err)
	}
	return newSession(ch, loop, opts...)
}

// connectChannel is used by tests to inject a transport.Channel directly.
func connectChannel(ch transport.Channel, loop transport.ReadLoop, opts ...Option) (*Session, error) {
	return newSession(ch, loop, opts...)
}

func newSession(ch transport.Channel, loop transport.ReadLoop, opts ...Option) (*Session, error) {
	s := &Session{
		cfg:        config.DefaultConfig(),
		ch:         ch,
		framer:     wire.NewFramer(accumulatorCapacity),
		correlator: correlator.New(),
		devices:    devicetable.New(),
		callbacks:  (&vendor.Callbacks{}).Normalize(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = s.cfg.NewLogger()
	}

	groutine.Go(context.Background(), "lightblue-io", func(ctx context.Context) {
		loop(s.onBytesReceived)
	})

	return s, nil
}

// SetCallbacks replaces the application upcalls.
func (s *Session) SetCallbacks(cb *vendor.Callbacks) {
	s.callbacks = cb.Normalize()
}

// Close disconnects the session's transport. It does not wait for
// in-flight device operations (spec.md §5): callers must quiesce those
// first.
func (s *Session) Close() error {
	return s.ch.Close()
}

// onBytesReceived runs on the I/O goroutine: feed the framer, dispatch
// every complete event it yields, synchronously, in order (spec.md §4.1's
// invariant that the dispatcher is invoked exactly once per packet, in
// order).
func (s *Session) onBytesReceived(chunk []byte) {
	events, err := s.framer.Feed(chunk)
	if err != nil {
		s.log.WithError(err).Error("lightblue: accumulator overflow, dropping connection")
		_ = s.ch.Close()
		return
	}
	for _, ev := range events {
		s.dispatch(ev)
	}
}

// ExecuteCommand sends opcode+params on the wire and blocks for a
// correlator response, implementing vendor.Host.ExecuteCommand. Slot
// allocation happens before the bytes are sent, preserving the ordering
// spec.md §5 requires.
func (s *Session) ExecuteCommand(opcode uint16, params []byte, out []byte) (uint8, int, error) {
	handle, err := s.correlator.Allocate(opcode, out)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrFailure, err)
	}

	frame, err := wire.EncodeCommand(opcode, params)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrFailure, err)
	}

	s.log.WithField("opcode", fmt.Sprintf("%#04x", opcode)).Debug("lightblue: sending command")

	if err := s.ch.Send(context.Background(), frame); err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrControllerNotConnected, err)
	}

	status, n, ok := s.correlator.Wait(handle)
	if !ok {
		return 0, 0, fmt.Errorf("%w: command %#04x", ErrTimeout, opcode)
	}
	return status, n, nil
}

func (s *Session) Devices() *devicetable.Table { return s.devices }

func (s *Session) Callbacks() *vendor.Callbacks { return s.callbacks }

func (s *Session) SignalCommandResponse(opcode uint16, status uint8, payload []byte) error {
	if err := s.correlator.Signal(opcode, status, payload); err != nil {
		return fmt.Errorf("%w: %v", ErrProtocolViolation, err)
	}
	return nil
}

// AwaitSessionEvent and SignalSessionEvent implement the session-wide
// condition spec.md §4.5 uses for connection establishment/teardown: each
// wait resets to a freshly allocated channel (rather than reusing/closing
// one an abandoned waiter might still reference), stored under sessionMu,
// matching the concurrency-model translation described in SPEC_FULL.md §5.
func (s *Session) AwaitSessionEvent(timeout time.Duration) (any, bool) {
	s.sessionMu.Lock()
	ch := make(chan any, 1)
	s.sessionCh = ch
	s.sessionMu.Unlock()

	select {
	case v := <-ch:
		return v, true
	case <-time.After(timeout):
		return nil, false
	}
}

func (s *Session) SignalSessionEvent(value any) {
	s.sessionMu.Lock()
	ch := s.sessionCh
	s.sessionMu.Unlock()
	if ch == nil {
		return
	}
	select {
	case ch <- value:
	default:
	}
}
