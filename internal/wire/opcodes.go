package wire

// HCI event codes (the one-byte "opcode" field of an event packet).
const (
	EventDisconnectionComplete byte = 0x05
	EventCommandComplete       byte = 0x0E
	EventCommandStatus         byte = 0x0F
	EventLEMeta                byte = 0x3E
	EventVendorSpecific        byte = 0xFF
)

// Generic HCI command opcodes used during controller bring-up, common to
// every controller regardless of vendor.
const (
	CmdReset                    uint16 = 0x0C03
	CmdReadLocalVersionInfo     uint16 = 0x1001
)

// StatusCode is the one-byte status/error value carried by
// Command Complete, Command Status, and Disconnection Complete events.
type StatusCode uint8

const (
	StatusSuccess StatusCode = 0x00
)

// CommandCompleteParams decodes the parameter bytes of a 0x0E Command
// Complete event: num_hci_command_packets (1 byte, ignored here), opcode
// (2 bytes LE), status (1 byte), and any return parameters.
type CommandCompleteParams struct {
	Opcode  uint16
	Status  StatusCode
	Payload []byte
}

// DecodeCommandComplete parses a Command Complete event's parameters,
// matching spec.md §4.2: opcode at bytes[1:3] LE, status at byte[3],
// payload is bytes[4:].
func DecodeCommandComplete(params []byte) (CommandCompleteParams, bool) {
	if len(params) < 4 {
		return CommandCompleteParams{}, false
	}
	return CommandCompleteParams{
		Opcode:  uint16(params[1]) | uint16(params[2])<<8,
		Status:  StatusCode(params[3]),
		Payload: params[4:],
	}, true
}

// CommandStatusParams decodes the parameter bytes of a 0x0F Command Status
// event: status (1 byte), num_hci_command_packets (1 byte, ignored), opcode
// (2 bytes LE).
type CommandStatusParams struct {
	Opcode uint16
	Status StatusCode
}

// DecodeCommandStatus parses a Command Status event's parameters, matching
// spec.md §4.2: status at byte[0], opcode at bytes[2:4] LE.
func DecodeCommandStatus(params []byte) (CommandStatusParams, bool) {
	if len(params) < 4 {
		return CommandStatusParams{}, false
	}
	return CommandStatusParams{
		Opcode: uint16(params[2]) | uint16(params[3])<<8,
		Status: StatusCode(params[0]),
	}, true
}

// DisconnectionCompleteParams decodes a 0x05 event's parameters: status (1
// byte), connection handle (2 bytes LE), reason (1 byte).
type DisconnectionCompleteParams struct {
	Status         StatusCode
	ConnectionHandle uint16
	Reason         StatusCode
}

func DecodeDisconnectionComplete(params []byte) (DisconnectionCompleteParams, bool) {
	if len(params) < 4 {
		return DisconnectionCompleteParams{}, false
	}
	return DisconnectionCompleteParams{
		Status:           StatusCode(params[0]),
		ConnectionHandle: uint16(params[1]) | uint16(params[2])<<8,
		Reason:           StatusCode(params[3]),
	}, true
}
