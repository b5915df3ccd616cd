package lightblue

import (
	"github.com/signbit/lightblue/internal/devicetable"
	"github.com/signbit/lightblue/internal/transport"
	"github.com/signbit/lightblue/internal/vendor"
)

// NewTestSession builds a Session over an already-constructed
// transport.Channel/ReadLoop pair (transporttest.Fake, typically), for use
// by tests in other packages that need a real Session without a serial
// port — the same role the teacher's internal/testutils fake-peripheral
// builders play for device-level tests.
func NewTestSession(ch transport.Channel, loop transport.ReadLoop, opts ...Option) (*Session, error) {
	return newSession(ch, loop, opts...)
}

// SetVendorAdapterForTesting installs adapter directly, skipping the
// Reset/Read_Local_Version_Information bring-up handshake InitializeHCI
// performs.
func (s *Session) SetVendorAdapterForTesting(adapter vendor.Adapter) {
	s.vendorAdapter = adapter
}

// NewDeviceForTesting wraps an already-allocated device table entry as a
// Device, without going through OpenDeviceConnection's connect handshake.
func NewDeviceForTesting(s *Session, entry *devicetable.Entry) *Device {
	return &Device{session: s, entry: entry}
}
