package correlator_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/signbit/lightblue/internal/correlator"
)

func TestSignalThenWaitDeliversPayload(t *testing.T) {
	table := correlator.New()
	out := make([]byte, 4)

	handle, err := table.Allocate(0x1001, out)
	require.NoError(t, err)

	require.NoError(t, table.Signal(0x1001, 0x00, []byte{0xAA, 0xBB}))

	status, n, ok := table.Wait(handle)
	require.True(t, ok)
	require.Equal(t, uint8(0x00), status)
	require.Equal(t, 2, n)
	require.Equal(t, []byte{0xAA, 0xBB, 0x00, 0x00}, out)
}

func TestWaitTimesOutWithNoSignal(t *testing.T) {
	table := correlator.New()

	handle, err := table.Allocate(0x1001, nil)
	require.NoError(t, err)

	start := time.Now()
	_, _, ok := table.Wait(handle)
	require.False(t, ok)
	require.GreaterOrEqual(t, time.Since(start), correlator.DefaultTimeout)
}

func TestTableExhaustionAndRecovery(t *testing.T) {
	table := correlator.New()

	var handles [correlator.Capacity]correlator.Handle
	for i := 0; i < correlator.Capacity; i++ {
		h, err := table.Allocate(uint16(0x1000+i), nil)
		require.NoError(t, err)
		handles[i] = h
	}

	_, err := table.Allocate(0x2000, nil)
	require.ErrorIs(t, err, correlator.ErrTableFull)

	// Releasing one slot (via Wait's cleanup, even on timeout) frees it for
	// the next Allocate.
	table.Wait(handles[0])

	_, err = table.Allocate(0x2000, nil)
	require.NoError(t, err)
}

func TestSignalAfterWaitIsRejected(t *testing.T) {
	table := correlator.New()

	handle, err := table.Allocate(0x1001, nil)
	require.NoError(t, err)

	require.NoError(t, table.Signal(0x1001, 0x00, nil))
	table.Wait(handle)

	// The slot has been released by Wait's cleanup; a late duplicate signal
	// for the same opcode now finds no matching slot.
	require.ErrorIs(t, table.Signal(0x1001, 0x00, nil), correlator.ErrNoMatchingSlot)
}
