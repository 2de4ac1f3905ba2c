package modem

import (
	"fmt"
	"strings"
	"sync"
)

// socketCount is the number of socket ids the modem manages (0..6).
const socketCount = 7

// socketTable is the shared per-socket state. It is written from two call
// paths: synchronously by the socket manager and, while any response is
// being read, by the URC dispatcher. The reference driver is single
// threaded; the mutex keeps the table coherent for ports that are not.
//
// Entries persist and are reused by id, never freed. Out-of-range ids are
// ignored by every accessor, matching the dispatcher's range rule.
type socketTable struct {
	mu      sync.Mutex
	closed  [socketCount]bool
	pending [socketCount]int
}

// init marks every socket closed, the state before any create.
func (t *socketTable) init() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.closed {
		t.closed[i] = true
	}
}

// reset returns a socket to its freshly-created state: closed, nothing
// pending.
func (t *socketTable) reset(id int) {
	if id < 0 || id >= socketCount {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed[id] = true
	t.pending[id] = 0
}

func (t *socketTable) setClosed(id int, closed bool) {
	if id < 0 || id >= socketCount {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed[id] = closed
}

func (t *socketTable) isClosed(id int) bool {
	if id < 0 || id >= socketCount {
		return true
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed[id]
}

func (t *socketTable) addPending(id, n int) {
	if id < 0 || id >= socketCount || n < 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending[id] += n
}

// takePending decrements the pending counter by n, clamped so it never
// goes negative.
func (t *socketTable) takePending(id, n int) {
	if id < 0 || id >= socketCount {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if n > t.pending[id] {
		n = t.pending[id]
	}
	t.pending[id] -= n
}

func (t *socketTable) pendingBytes(id int) int {
	if id < 0 || id >= socketCount {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending[id]
}

// handleURC inspects a line for one of the unsolicited result codes the
// modem emits and applies its side effect, reporting whether the line was
// absorbed. Recognition is by shape, a fixed tag followed by its integer
// fields, not by the leading "+" alone: any other "+" line is left for
// the response matcher to treat as payload or garbage.
func (m *Modem) handleURC(line string) bool {
	if !strings.HasPrefix(line, "+") {
		return false
	}

	var a, b int

	if n, _ := fmt.Sscanf(line, "+UFOTAS: %d,%d", &a, &b); n == 2 {
		m.logger.Debug("unsolicited: firmware update status", "state", a, "result", b)
		return true
	}

	if n, _ := fmt.Sscanf(line, "+UUSORF: %d,%d", &a, &b); n == 2 {
		m.logger.Debug("unsolicited: socket data", "socket", a, "bytes", b)
		m.sockets.addPending(a, b)
		return true
	}

	if n, _ := fmt.Sscanf(line, "+UUSOCL: %d", &a); n == 1 {
		m.logger.Debug("unsolicited: socket closed", "socket", a)
		m.sockets.setClosed(a, true)
		return true
	}

	if n, _ := fmt.Sscanf(line, "+CSCON: %d", &a); n == 1 {
		m.logger.Debug("unsolicited: radio connection state", "state", a)
		return true
	}

	return false
}
