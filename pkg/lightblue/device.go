package lightblue

import "github.com/signbit/lightblue/internal/devicetable"

// Device is an open connection to a peripheral, returned by
// OpenDeviceConnection. It is opaque beyond its methods, matching spec.md
// §9's instruction that vendor/internal types never leak into the public
// surface.
type Device struct {
	session *Session
	entry   *devicetable.Entry
}

// Handle returns the underlying HCI connection handle, useful for logging.
func (d *Device) Handle() uint16 { return d.entry.Handle() }
