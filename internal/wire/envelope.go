// Package wire encodes and decodes HCI packets (command, event, ACL data)
// per the Bluetooth Core Specification framing used over a serial transport:
// a one-byte packet type followed by a type-specific header and parameters,
// all multi-byte fields little-endian except opcodes, which are serialized
// low byte then high byte.
package wire

import (
	"encoding/binary"
	"fmt"
)

// Packet type octet, the first byte of every HCI frame on the wire.
const (
	PacketTypeCommand byte = 0x01
	PacketTypeACLData  byte = 0x02
	PacketTypeSCOData  byte = 0x03
	PacketTypeEvent    byte = 0x04
)

// Event is a fully-framed HCI event: a one-byte opcode (the "event code" in
// Bluetooth terms) and up to 255 bytes of parameters.
type Event struct {
	Opcode     byte
	Parameters []byte
}

// EncodeCommand serializes an HCI command packet: type=0x01, a 16-bit
// little-endian-serialized opcode (low byte first, matching the spec's
// "opcodes serialized lo-then-hi"), a one-byte parameter length, and the
// parameters themselves.
func EncodeCommand(opcode uint16, params []byte) ([]byte, error) {
	if len(params) > 255 {
		return nil, fmt.Errorf("wire: command parameters too long: %d bytes", len(params))
	}
	buf := make([]byte, 4+len(params))
	buf[0] = PacketTypeCommand
	binary.LittleEndian.PutUint16(buf[1:3], opcode)
	buf[3] = byte(len(params))
	copy(buf[4:], params)
	return buf, nil
}

// EncodeEvent serializes a well-formed HCI event packet; used by tests and
// fake transports to synthesize controller traffic.
func EncodeEvent(opcode byte, params []byte) ([]byte, error) {
	if len(params) > 255 {
		return nil, fmt.Errorf("wire: event parameters too long: %d bytes", len(params))
	}
	buf := make([]byte, 3+len(params))
	buf[0] = PacketTypeEvent
	buf[1] = opcode
	buf[2] = byte(len(params))
	copy(buf[3:], params)
	return buf, nil
}

// ACLHeader is the header of an HCI ACL data packet: a 12-bit connection
// handle plus a 4-bit flags field packed into two little-endian bytes,
// followed by a 16-bit little-endian data-total-length. Included for
// completeness of the framing library; this module's own GATT traffic rides
// inside vendor-specific HCI events rather than raw ACL frames, so nothing
// in pkg/lightblue originates ACL packets.
type ACLHeader struct {
	Handle uint16 // 12 bits significant
	Flags  uint8  // 4 bits significant (PB + BC flags)
	Length uint16
}

// EncodeACL serializes an ACL data packet: type=0x02 followed by the header
// and payload.
func EncodeACL(h ACLHeader, payload []byte) []byte {
	buf := make([]byte, 5+len(payload))
	buf[0] = PacketTypeACLData
	hf := (h.Handle & 0x0FFF) | (uint16(h.Flags&0x0F) << 12)
	binary.LittleEndian.PutUint16(buf[1:3], hf)
	binary.LittleEndian.PutUint16(buf[3:5], uint16(len(payload)))
	copy(buf[5:], payload)
	return buf
}

// DecodeACL parses an ACL data packet's header and payload. frame must
// start with the 0x02 packet type byte.
func DecodeACL(frame []byte) (ACLHeader, []byte, error) {
	if len(frame) < 5 || frame[0] != PacketTypeACLData {
		return ACLHeader{}, nil, fmt.Errorf("wire: malformed ACL packet")
	}
	hf := binary.LittleEndian.Uint16(frame[1:3])
	length := binary.LittleEndian.Uint16(frame[3:5])
	if int(length) > len(frame)-5 {
		return ACLHeader{}, nil, fmt.Errorf("wire: ACL length %d exceeds buffer", length)
	}
	h := ACLHeader{
		Handle: hf & 0x0FFF,
		Flags:  uint8(hf >> 12),
		Length: length,
	}
	return h, frame[5 : 5+length], nil
}

// OpcodeLE splits a 16-bit command opcode into its wire byte order
// (low byte, high byte), matching how the original library and spec.md
// describe multi-byte opcode serialization.
func OpcodeLE(opcode uint16) (lo, hi byte) {
	return byte(opcode & 0xFF), byte(opcode >> 8)
}
