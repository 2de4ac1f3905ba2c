package modem

import (
	"fmt"
	"time"
)

// lineBufferSize caps a single framed response line, matching the device
// driver's input buffer.
const lineBufferSize = 1024

// readLine frames the next response line from the transport, reading one
// byte at a time with each read bounded by timeout. It stops at the LF
// terminator, at buffer capacity, or when a byte read times out, and
// strips a trailing CR. An empty line with a nil error is the normal
// "nothing arrived yet" case; callers re-check their own outer deadline.
//
// No partial state survives between calls: the scratch buffer is reset on
// entry and whatever was framed is returned.
func (m *Modem) readLine(timeout time.Duration) (string, error) {
	if err := m.transport.SetReadTimeout(timeout); err != nil {
		return "", fmt.Errorf("set read timeout: %w", err)
	}

	m.line = m.line[:0]
	var b [1]byte
	for len(m.line) < lineBufferSize-1 {
		n, err := m.transport.Read(b[:])
		if err != nil {
			return "", fmt.Errorf("transport read: %w", err)
		}
		if n == 0 {
			break // byte read timed out
		}
		if b[0] == '\n' {
			break
		}
		m.line = append(m.line, b[0])
	}

	line := m.line
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	return string(line), nil
}
