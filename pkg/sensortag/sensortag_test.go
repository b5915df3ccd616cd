package sensortag_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/signbit/lightblue/internal/transporttest"
	"github.com/signbit/lightblue/internal/vendor/ti"
	"github.com/signbit/lightblue/pkg/lightblue"
	"github.com/signbit/lightblue/pkg/sensortag"
)

func newTestDevice(t *testing.T) (*lightblue.Session, *lightblue.Device, *transporttest.Fake) {
	t.Helper()
	fake, loop := transporttest.New()
	s, err := lightblue.NewTestSession(fake, loop)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	s.SetVendorAdapterForTesting(ti.New())

	entry, ok := s.Devices().Allocate(0x0001)
	require.True(t, ok)
	return s, lightblue.NewDeviceForTesting(s, entry), fake
}

func frameEvent(opcode byte, params []byte) []byte {
	return append([]byte{0x04, opcode, byte(len(params))}, params...)
}

func vendorEventParams(code uint16, body []byte) []byte {
	return append([]byte{byte(code), byte(code >> 8)}, body...)
}

func tiCommandAck(opcode uint16) []byte {
	body := []byte{0x00, byte(opcode), byte(opcode >> 8), 0x00}
	return frameEvent(0xFF, vendorEventParams(0x067F, body))
}

func TestReadBarometerData(t *testing.T) {
	session, device, fake := newTestDevice(t)

	var (
		temperatureC float32
		pressurePa   uint32
		err          error
	)
	done := make(chan struct{})
	go func() {
		temperatureC, pressurePa, err = sensortag.ReadBarometerData(session, device)
		close(done)
	}()

	require.Eventually(t, func() bool { return fake.SentCount() == 1 }, time.Second, time.Millisecond)
	fake.Deliver(tiCommandAck(0xFD8A)) // opGATTReadCharValue ack

	// 24-bit LE scaled temperature (12345 -> 123.45 degC), 24-bit LE pressure.
	wireValue := []byte{0x39, 0x30, 0x00, 0x40, 0x4B, 0x00} // temp=0x003039=12345, pressure=0x004B40=19264
	readBody := append([]byte{0x00, 0x01, 0x00, byte(len(wireValue))}, wireValue...)
	fake.Deliver(frameEvent(0xFF, vendorEventParams(0x050B, readBody)))

	<-done
	require.NoError(t, err)
	require.InDelta(t, 123.45, temperatureC, 0.01)
	require.Equal(t, uint32(19264), pressurePa)
}

func TestReadIMUData(t *testing.T) {
	session, device, fake := newTestDevice(t)

	var (
		gyro, accel, mag sensortag.ThreeDVector
		err              error
	)
	done := make(chan struct{})
	go func() {
		gyro, accel, mag, err = sensortag.ReadIMUData(session, device)
		close(done)
	}()

	require.Eventually(t, func() bool { return fake.SentCount() == 1 }, time.Second, time.Millisecond)
	fake.Deliver(tiCommandAck(0xFD8A))

	wireValue := make([]byte, 18)
	// gyro.x = 1, accel.y = -1 (0xFFFF), mag.z = 256
	wireValue[0], wireValue[1] = 0x01, 0x00
	wireValue[8], wireValue[9] = 0xFF, 0xFF
	wireValue[16], wireValue[17] = 0x00, 0x01

	readBody := append([]byte{0x00, 0x01, 0x00, byte(len(wireValue))}, wireValue...)
	fake.Deliver(frameEvent(0xFF, vendorEventParams(0x050B, readBody)))

	<-done
	require.NoError(t, err)
	require.Equal(t, int16(1), gyro.X)
	require.Equal(t, int16(-1), accel.Y)
	require.Equal(t, int16(256), mag.Z)
}
