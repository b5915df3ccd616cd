package lightblue

import "github.com/signbit/lightblue/internal/wire"

// dispatch routes one framed event by its opcode, matching spec.md §4.2's
// table exactly: Disconnection Complete, Command Complete, Command Status,
// LE Meta, Vendor Specific, everything else ignored.
func (s *Session) dispatch(ev wire.Event) {
	switch ev.Opcode {
	case wire.EventDisconnectionComplete:
		s.onDisconnectionComplete(ev.Parameters)

	case wire.EventCommandComplete:
		s.onCommandComplete(ev.Parameters)

	case wire.EventCommandStatus:
		s.onCommandStatus(ev.Parameters)

	case wire.EventLEMeta:
		if s.vendorAdapter != nil {
			s.vendorAdapter.OnMetaEvent(s, ev.Parameters)
		}

	case wire.EventVendorSpecific:
		if s.vendorAdapter != nil {
			s.vendorAdapter.OnVendorSpecificEvent(s, ev.Parameters)
		} else {
			s.log.WithField("parameters", ev.Parameters).Debug("lightblue: vendor-specific event before vendor identification")
		}

	default:
		// Ignored, per spec.md §4.2.
	}
}

func (s *Session) onDisconnectionComplete(params []byte) {
	decoded, ok := wire.DecodeDisconnectionComplete(params)
	if !ok {
		return
	}
	device, found := s.devices.Get(decoded.ConnectionHandle)
	if found {
		s.callbacks.OnDisconnected(device, uint8(decoded.Reason))
	}
	s.SignalSessionEvent(uintptr(decoded.Reason))
}

func (s *Session) onCommandComplete(params []byte) {
	decoded, ok := wire.DecodeCommandComplete(params)
	if !ok {
		return
	}
	if err := s.SignalCommandResponse(decoded.Opcode, uint8(decoded.Status), decoded.Payload); err != nil {
		s.log.WithError(err).Warn("lightblue: command complete with no matching pending command")
	}
}

func (s *Session) onCommandStatus(params []byte) {
	decoded, ok := wire.DecodeCommandStatus(params)
	if !ok {
		return
	}
	if err := s.SignalCommandResponse(decoded.Opcode, uint8(decoded.Status), nil); err != nil {
		s.log.WithError(err).Warn("lightblue: command status with no matching pending command")
	}
}
