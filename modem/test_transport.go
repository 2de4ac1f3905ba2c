package modem

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"i4.energy/across/nbgw/at"
)

// TestTransport is a scripted in-memory transport. Tests register modem
// replies per command with Respond; every Write of a command pops the
// next registered reply into the read buffer, and Read serves the buffer
// one call at a time while honouring the configured read timeout the way
// a quiet serial port would.
// Exported for use in tests.
type TestTransport struct {
	mu      sync.Mutex
	buf     []byte
	scripts map[string][]string
	writes  []string
	timeout time.Duration
	closed  bool
}

// NewTestTransport creates a new scripted transport for testing.
func NewTestTransport() *TestTransport {
	return &TestTransport{
		scripts: make(map[string][]string),
	}
}

// Respond registers the replies returned for successive writes of cmd
// (without the trailing carriage return). The last reply repeats once
// the script runs out.
func (t *TestTransport) Respond(cmd string, replies ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scripts[cmd] = append(t.scripts[cmd], replies...)
}

// SendData queues raw bytes to be read from the transport, simulating
// unsolicited modem output.
func (t *TestTransport) SendData(data string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, data...)
}

// Writes returns every command written so far, carriage returns stripped.
func (t *TestTransport) Writes() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.writes...)
}

func (t *TestTransport) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return 0, io.EOF
	}

	cmd := strings.TrimSuffix(string(p), at.CR)
	t.writes = append(t.writes, cmd)

	if replies, ok := t.scripts[cmd]; ok && len(replies) > 0 {
		t.buf = append(t.buf, replies[0]...)
		if len(replies) > 1 {
			t.scripts[cmd] = replies[1:]
		}
	}
	return len(p), nil
}

// Read serves buffered bytes, or (0, nil) after the read timeout when the
// buffer is empty, matching serial port semantics.
func (t *TestTransport) Read(p []byte) (int, error) {
	deadline := time.Now().Add(t.readTimeout())
	for {
		t.mu.Lock()
		if t.closed {
			t.mu.Unlock()
			return 0, io.EOF
		}
		if len(t.buf) > 0 {
			n := copy(p, t.buf)
			t.buf = t.buf[n:]
			t.mu.Unlock()
			return n, nil
		}
		t.mu.Unlock()

		if !time.Now().Before(deadline) {
			return 0, nil
		}
		time.Sleep(time.Millisecond)
	}
}

func (t *TestTransport) SetReadTimeout(d time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timeout = d
	return nil
}

func (t *TestTransport) readTimeout() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timeout
}

func (t *TestTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

// Dial returns the transport itself, so a TestTransport doubles as its
// own Dialer.
func (t *TestTransport) Dial(_ context.Context) (Transport, error) {
	return t, nil
}
