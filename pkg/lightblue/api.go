package lightblue

import (
	"fmt"
	"time"

	"github.com/signbit/lightblue/internal/devicetable"
	"github.com/signbit/lightblue/internal/vendor"
	"github.com/signbit/lightblue/internal/vendor/st"
	"github.com/signbit/lightblue/internal/vendor/ti"
	"github.com/signbit/lightblue/internal/wire"
)

// Version is the decoded response to Read_Local_Version_Information.
type Version struct {
	HCIVersion     uint8
	HCIRevision    uint16
	LMPVersion     uint8
	ManufacturerID uint16
	LMPSubversion  uint16
}

// ResetHCI issues the generic HCI Reset command (opcode 0x0C03).
func (s *Session) ResetHCI() error {
	_, _, err := s.ExecuteCommand(wire.CmdReset, nil, nil)
	if err != nil {
		return fmt.Errorf("lightblue: reset: %w", err)
	}
	return nil
}

// ReadLocalVersion issues Read_Local_Version_Information (opcode 0x1001)
// and decodes the response.
func (s *Session) ReadLocalVersion() (Version, error) {
	out := make([]byte, 8)
	_, n, err := s.ExecuteCommand(wire.CmdReadLocalVersionInfo, nil, out)
	if err != nil {
		return Version{}, fmt.Errorf("lightblue: read local version: %w", err)
	}
	if n < 8 {
		return Version{}, fmt.Errorf("%w: short Read_Local_Version_Information response", ErrFailure)
	}
	return Version{
		HCIVersion:     out[0],
		HCIRevision:    uint16(out[1]) | uint16(out[2])<<8,
		LMPVersion:     out[3],
		ManufacturerID: uint16(out[4]) | uint16(out[5])<<8,
		LMPSubversion:  uint16(out[6]) | uint16(out[7])<<8,
	}, nil
}

// InitializeHCI performs the generic bring-up sequence (spec.md §4.6):
// Reset, Read_Local_Version_Information, vendor selection by manufacturer
// ID, then the vendor's own Initialize.
func (s *Session) InitializeHCI() error {
	if err := s.ResetHCI(); err != nil {
		return err
	}

	version, err := s.ReadLocalVersion()
	if err != nil {
		return err
	}
	s.manufacturerID = version.ManufacturerID

	switch vendor.ManufacturerID(s.manufacturerID) {
	case vendor.ManufacturerTI:
		s.vendorAdapter = ti.New()
	case vendor.ManufacturerST:
		s.vendorAdapter = st.New()
	default:
		s.log.WithField("manufacturer_id", fmt.Sprintf("%#04x", s.manufacturerID)).Warn("lightblue: unrecognized controller manufacturer")
		return fmt.Errorf("%w: %#04x", ErrUnknownVendor, s.manufacturerID)
	}

	return s.vendorAdapter.Initialize(s)
}

// ManufacturerID returns the manufacturer ID decoded by InitializeHCI.
func (s *Session) ManufacturerID() uint16 { return s.manufacturerID }

func (s *Session) requireVendor() error {
	if s.vendorAdapter == nil {
		return ErrUnknownVendor
	}
	return nil
}

// ConfigureAsCentral puts the controller into central role.
func (s *Session) ConfigureAsCentral() error {
	if err := s.requireVendor(); err != nil {
		return err
	}
	return s.vendorAdapter.ConfigureAsCentral(s)
}

// StartDeviceDiscovery begins scanning for advertising peripherals.
// Discovered devices and discovery completion are reported via the
// callbacks registered on the session (OnAdvertisement,
// OnDeviceDiscoveryComplete).
func (s *Session) StartDeviceDiscovery() error {
	if err := s.requireVendor(); err != nil {
		return err
	}
	return s.vendorAdapter.StartDiscovery(s)
}

// StopDeviceDiscovery ends an in-progress scan.
func (s *Session) StopDeviceDiscovery() error {
	if err := s.requireVendor(); err != nil {
		return err
	}
	return s.vendorAdapter.StopDiscovery(s)
}

// OpenDeviceConnection connects to the peripheral at address and blocks
// (up to Config.ConnectTimeout, spec.md: 2s) for the link to establish.
func (s *Session) OpenDeviceConnection(address [6]byte) (*Device, error) {
	if err := s.requireVendor(); err != nil {
		return nil, err
	}

	value, ok := s.AwaitSessionEventAfter(func() error {
		return s.vendorAdapter.OpenConnection(s, address)
	}, s.cfg.ConnectTimeout)
	if !ok {
		return nil, fmt.Errorf("%w: open device connection", ErrTimeout)
	}

	entry, ok := value.(*devicetable.Entry)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected connection-establishment signal", ErrFailure)
	}

	return &Device{session: s, entry: entry}, nil
}

// CloseDeviceConnection disconnects device and blocks (up to
// Config.OperationTimeout, spec.md: 1s) for confirmation. The device slot is
// released regardless of whether confirmation arrived in time, matching
// the original library's behavior of always tearing down device state on
// return from close.
func (s *Session) CloseDeviceConnection(device *Device) error {
	if !s.isConnected(device) {
		return ErrDeviceNotConnected
	}
	if err := s.requireVendor(); err != nil {
		return err
	}

	_, ok := s.AwaitSessionEventAfter(func() error {
		return s.vendorAdapter.CloseConnection(s, device.entry)
	}, s.cfg.OperationTimeout)

	s.devices.Release(device.entry)

	if !ok {
		return fmt.Errorf("%w: close device connection", ErrTimeout)
	}
	return nil
}

// StartServiceDiscovery discovers every primary service on device,
// blocking up to Config.DiscoveryTimeout (spec.md: 10s). Services are
// reported via the OnPrimaryService callback as they're discovered;
// this call returns once discovery completes or fails.
func (s *Session) StartServiceDiscovery(device *Device) error {
	if !s.isConnected(device) {
		return ErrDeviceNotConnected
	}
	if err := s.requireVendor(); err != nil {
		return err
	}

	ch, err := device.entry.BeginDiscover()
	if err != nil {
		return fmt.Errorf("lightblue: start service discovery: %w", err)
	}

	if err := s.vendorAdapter.StartServiceDiscovery(s, device.entry); err != nil {
		device.entry.TimeoutRecover()
		return fmt.Errorf("lightblue: start service discovery: %w", err)
	}

	result, ok := devicetable.Wait(ch, s.cfg.DiscoveryTimeout)
	if !ok {
		device.entry.TimeoutRecover()
		return fmt.Errorf("%w: service discovery", ErrTimeout)
	}
	if result.Err != nil {
		return fmt.Errorf("%w: %v", ErrFailure, result.Err)
	}

	s.callbacks.OnServiceDiscoveryComplete(device.entry)
	return nil
}

// WriteCharValue writes value to the characteristic at attributeHandle on
// device, blocking up to Config.OperationTimeout (spec.md: 1s).
func (s *Session) WriteCharValue(device *Device, attributeHandle uint16, value []byte) error {
	if !s.isConnected(device) {
		return ErrDeviceNotConnected
	}
	if err := s.requireVendor(); err != nil {
		return err
	}

	ch, err := device.entry.BeginWrite(attributeHandle)
	if err != nil {
		return fmt.Errorf("lightblue: write char value: %w", err)
	}

	if err := s.vendorAdapter.WriteCharValue(s, device.entry, attributeHandle, value); err != nil {
		device.entry.TimeoutRecover()
		return fmt.Errorf("lightblue: write char value: %w", err)
	}

	result, ok := devicetable.Wait(ch, s.cfg.OperationTimeout)
	if !ok {
		device.entry.TimeoutRecover()
		return fmt.Errorf("%w: write char value", ErrTimeout)
	}
	if result.Err != nil {
		return fmt.Errorf("%w: %v", ErrFailure, result.Err)
	}
	return nil
}

// ReadCharValue reads the characteristic at attributeHandle on device into
// out, blocking up to Config.OperationTimeout (spec.md: 1s), and returns
// the number of bytes received: min(wire_length, len(out)). spec.md §9
// Open Question 1 notes the original source inverts this clamp; this is
// the corrected behavior.
func (s *Session) ReadCharValue(device *Device, attributeHandle uint16, out []byte) (int, error) {
	if !s.isConnected(device) {
		return 0, ErrDeviceNotConnected
	}
	if err := s.requireVendor(); err != nil {
		return 0, err
	}

	ch, err := device.entry.BeginRead(attributeHandle, out)
	if err != nil {
		return 0, fmt.Errorf("lightblue: read char value: %w", err)
	}

	if err := s.vendorAdapter.RequestCharValue(s, device.entry, attributeHandle); err != nil {
		device.entry.TimeoutRecover()
		return 0, fmt.Errorf("lightblue: read char value: %w", err)
	}

	result, ok := devicetable.Wait(ch, s.cfg.OperationTimeout)
	if !ok {
		device.entry.TimeoutRecover()
		return 0, fmt.Errorf("%w: read char value", ErrTimeout)
	}
	if result.Err != nil {
		return 0, fmt.Errorf("%w: %v", ErrFailure, result.Err)
	}
	return result.Received, nil
}

func (s *Session) isConnected(device *Device) bool {
	return device != nil && device.entry.Handle() != devicetable.InvalidHandle
}

// AwaitSessionEventAfter invokes fn (typically a command send) then waits
// up to timeout for the session-wide condition to be signaled. It's the
// shared shape behind OpenDeviceConnection and CloseDeviceConnection: a
// fresh wait channel is stored before fn runs, so a signal racing the
// caller can never be missed. An error from fn is only logged; the wait
// still runs to its timeout.
func (s *Session) AwaitSessionEventAfter(fn func() error, timeout time.Duration) (any, bool) {
	s.sessionMu.Lock()
	ch := make(chan any, 1)
	s.sessionCh = ch
	s.sessionMu.Unlock()

	if err := fn(); err != nil {
		s.log.WithError(err).Debug("lightblue: command send failed while awaiting session event")
	}

	select {
	case v := <-ch:
		return v, true
	case <-time.After(timeout):
		return nil, false
	}
}
