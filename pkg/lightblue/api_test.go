package lightblue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/signbit/lightblue/internal/devicetable"
	"github.com/signbit/lightblue/internal/transporttest"
	"github.com/signbit/lightblue/internal/vendor/ti"
)

func newSessionWithTI(t *testing.T) (*Session, *transporttest.Fake) {
	t.Helper()
	s, fake := newTestSession(t)
	s.vendorAdapter = ti.New()
	return s, fake
}

// frameEvent wraps opcode/params as a complete wire event packet.
func frameEvent(opcode byte, params []byte) []byte {
	return append([]byte{0x04, opcode, byte(len(params))}, params...)
}

// vendorEventParams builds a 0xFF Vendor Specific event's parameter bytes:
// a little-endian vendor event code followed by its body.
func vendorEventParams(code uint16, body []byte) []byte {
	return append([]byte{byte(code), byte(code >> 8)}, body...)
}

// tiCommandAck builds the TI CommandStatus (0x067F) vendor event that
// acknowledges opcode, letting a blocked ExecuteCommand call return.
func tiCommandAck(opcode uint16) []byte {
	body := []byte{0x00, byte(opcode), byte(opcode >> 8), 0x00}
	return frameEvent(0xFF, vendorEventParams(0x067F, body))
}

func TestOpenAndCloseDeviceConnection(t *testing.T) {
	s, fake := newSessionWithTI(t)

	done := make(chan struct{})
	var device *Device
	var err error
	go func() {
		device, err = s.OpenDeviceConnection([6]byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF})
		close(done)
	}()

	require.Eventually(t, func() bool { return fake.SentCount() == 1 }, time.Second, time.Millisecond)
	fake.Deliver(tiCommandAck(0xFE09)) // opGAPEstLinkReq ack

	// evtGAPLinkEstablished = 0x0605, body: status, addrType, addr[6] (wire
	// order), connHandle LE, padded to 16 bytes.
	linkBody := make([]byte, 16)
	linkBody[0] = 0x00
	linkBody[1] = 0x00
	copy(linkBody[2:8], []byte{0xFF, 0xEE, 0xDD, 0xCC, 0xBB, 0xAA})
	linkBody[8] = 0x01
	fake.Deliver(frameEvent(0xFF, vendorEventParams(0x0605, linkBody)))

	<-done
	require.NoError(t, err)
	require.Equal(t, uint16(0x0001), device.Handle())

	done = make(chan struct{})
	var closeErr error
	go func() {
		closeErr = s.CloseDeviceConnection(device)
		close(done)
	}()

	require.Eventually(t, func() bool { return fake.SentCount() == 2 }, time.Second, time.Millisecond)
	fake.Deliver(tiCommandAck(0xFE0A)) // opGAPTerminateLinkReq ack

	// Disconnection Complete (generic 0x05 event): status, handle LE, reason.
	discParams := []byte{0x00, 0x01, 0x00, 0x13}
	fake.Deliver(frameEvent(0x05, discParams))

	<-done
	require.NoError(t, closeErr)
	require.Equal(t, devicetable.InvalidHandle, device.Handle())
}

func TestWriteAndReadCharValue(t *testing.T) {
	s, fake := newSessionWithTI(t)

	entry, ok := s.Devices().Allocate(0x0001)
	require.True(t, ok)
	device := &Device{session: s, entry: entry}

	done := make(chan struct{})
	var writeErr error
	go func() {
		writeErr = s.WriteCharValue(device, 0x20, []byte{0x01})
		close(done)
	}()

	require.Eventually(t, func() bool { return fake.SentCount() == 1 }, time.Second, time.Millisecond)
	fake.Deliver(tiCommandAck(0xFD92)) // opGATTWriteCharValue ack

	// evtATTWriteRsp = 0x0513, body: status, connHandle LE.
	fake.Deliver(frameEvent(0xFF, vendorEventParams(0x0513, []byte{0x00, 0x01, 0x00})))

	<-done
	require.NoError(t, writeErr)

	out := make([]byte, 2)
	done = make(chan struct{})
	var n int
	var readErr error
	go func() {
		n, readErr = s.ReadCharValue(device, 0x31, out)
		close(done)
	}()

	require.Eventually(t, func() bool { return fake.SentCount() == 2 }, time.Second, time.Millisecond)
	fake.Deliver(tiCommandAck(0xFD8A)) // opGATTReadCharValue ack

	// evtATTReadRsp = 0x050B, body: status, connHandle LE, attrLength, value...
	readBody := []byte{0x00, 0x01, 0x00, 0x03, 0xAA, 0xBB, 0xCC}
	fake.Deliver(frameEvent(0xFF, vendorEventParams(0x050B, readBody)))

	<-done
	require.NoError(t, readErr)
	require.Equal(t, 2, n)
	require.Equal(t, []byte{0xAA, 0xBB}, out)
}
