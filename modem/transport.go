package modem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"
)

//go:generate go tool mockgen -source transport.go -destination mock_transport.go -package modem

// Transport represents an established, bidirectional byte stream to the
// modem.
//
// A Transport is assumed to be already connected and ready for use. On top
// of the raw stream it must support a read timeout: a Read issued with no
// data available returns (0, nil) once the configured timeout passes, the
// way a serial port behaves. Typical implementations are serial ports or
// scripted test doubles.
type Transport interface {
	io.ReadWriteCloser

	// SetReadTimeout bounds every subsequent Read.
	SetReadTimeout(t time.Duration) error
}

// Dialer opens a Transport to the modem.
//
// Dialer abstracts how the connection is created (serial port, emulator,
// test double) and is used during modem construction only.
type Dialer interface {
	// Dial creates and returns a connected Transport. It may perform
	// blocking operations and should respect cancellation and deadlines
	// provided by the context.
	Dial(ctx context.Context) (Transport, error)
}

// SerialDialer opens the modem over a serial port using go.bug.st/serial.
type SerialDialer struct {
	// PortName is the device path of the serial port (e.g. "/dev/ttyACM0").
	PortName string
	// Mode holds the port parameters; nil selects 115200 8N1.
	Mode *serial.Mode
}

// Dial opens the configured serial port. The returned port satisfies
// Transport directly, including the read timeout semantics the line
// framer depends on.
func (d SerialDialer) Dial(ctx context.Context) (Transport, error) {
	if ctx == nil {
		return nil, errors.New("modem: context is nil")
	}
	if d.PortName == "" {
		return nil, errors.New("modem: serial port name is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mode := d.Mode
	if mode == nil {
		mode = &serial.Mode{
			BaudRate: 115200,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		}
	}

	port, err := serial.Open(d.PortName, mode)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("open serial port %s: %w", d.PortName, err)
	}

	return port, nil
}
