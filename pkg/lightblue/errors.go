package lightblue

import "errors"

// Sentinel errors matching spec.md §7's return taxonomy. Use errors.Is to
// test for them; session methods wrap these with additional context via
// fmt.Errorf("...: %w", ...).
var (
	ErrFailure                = errors.New("lightblue: operation failed")
	ErrUnknownVendor          = errors.New("lightblue: unrecognized controller manufacturer")
	ErrControllerNotConnected = errors.New("lightblue: controller not connected")
	ErrDeviceNotConnected     = errors.New("lightblue: device not connected")
	ErrTimeout                = errors.New("lightblue: operation timed out")

	// ErrProtocolViolation is returned by SignalCommandResponse for a
	// command-complete or command-status event with no matching pending
	// command, a condition the original library asserts on. Slot-table
	// exhaustion is reported by ExecuteCommand as ErrFailure, and a GATT
	// error response naming an attribute handle other than the pending one
	// is dropped by the vendor adapter without an error. A host library
	// aborting its caller's process on a controller-protocol violation is a
	// worse failure mode than a returned error for a long-running Go
	// process, so this is returned rather than a panic.
	ErrProtocolViolation = errors.New("lightblue: controller protocol violation")
)
