package transport

import (
	"context"
	"io"
	"sync"

	"github.com/tarm/serial"
)

// DefaultBaudRate matches spec.md §6: 115200 8N1, no flow control.
const DefaultBaudRate = 115200

type serialChannel struct {
	mu   sync.Mutex
	port *serial.Port
}

// OpenSerial opens portName at baudRate (0 selects DefaultBaudRate) and
// returns a Channel plus the ReadLoop the session should run on its own
// goroutine.
func OpenSerial(portName string, baudRate int) (Channel, ReadLoop, error) {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}

	cfg := &serial.Config{
		Name: portName,
		Baud: baudRate,
		Size: 8,
		// Parity and StopBits zero values select N (none) and 1,
		// matching the 8N1 framing spec.md requires.
	}

	port, err := serial.OpenPort(cfg)
	if err != nil {
		return nil, nil, err
	}

	ch := &serialChannel{port: port}

	loop := func(onData func(chunk []byte)) {
		buf := make([]byte, 512)
		for {
			n, err := port.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				onData(chunk)
			}
			if err != nil {
				if err == io.EOF {
					return
				}
				// Any other read error also ends the loop: the error
				// is not logged and reading does not resume, so the
				// session receives no further bytes.
				return
			}
		}
	}

	return ch, loop, nil
}

func (c *serialChannel) Send(ctx context.Context, bytes []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.port.Write(bytes)
	return err
}

func (c *serialChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.port.Close()
}
