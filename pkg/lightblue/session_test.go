package lightblue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/signbit/lightblue/internal/transporttest"
)

func newTestSession(t *testing.T) (*Session, *transporttest.Fake) {
	t.Helper()
	fake, loop := transporttest.New()
	s, err := connectChannel(fake, loop)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, fake
}

func TestExecuteCommandRoundTrip(t *testing.T) {
	s, fake := newTestSession(t)

	done := make(chan struct{})
	var status uint8
	var n int
	var err error
	out := make([]byte, 8)

	go func() {
		status, n, err = s.ExecuteCommand(0x1001, nil, out)
		close(done)
	}()

	// Wait for the command to be sent, then deliver a Command Complete
	// event carrying the matching opcode (0x1001 LE) and an 8-byte payload.
	require.Eventually(t, func() bool {
		return fake.SentCount() == 1
	}, time.Second, time.Millisecond)

	payload := []byte{0x06, 0x00, 0x0D, 0x00, 0x0D, 0x00, 0x00, 0x00}
	params := append([]byte{0x01, 0x01, 0x10, 0x00}, payload...)
	fake.Deliver(append([]byte{0x04, 0x0E, byte(len(params))}, params...))

	<-done
	require.NoError(t, err)
	require.Equal(t, uint8(0x00), status)
	require.Equal(t, 8, n)
	require.Equal(t, payload, out)
}

func TestExecuteCommandTimeout(t *testing.T) {
	s, _ := newTestSession(t)

	_, _, err := s.ExecuteCommand(0x1001, nil, nil)
	require.ErrorIs(t, err, ErrTimeout)
}

func TestDispatchIgnoresUnknownOpcode(t *testing.T) {
	_, fake := newTestSession(t)
	fake.Deliver([]byte{0x04, 0x99, 0x00})
	// No panic, no hang: the event is simply ignored per spec.md §4.2.
}
