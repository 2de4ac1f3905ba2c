package modem

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"i4.energy/across/nbgw/at"
)

// Protocol is the numeric IP protocol a socket speaks.
type Protocol int

const (
	UDP Protocol = 17
	TCP Protocol = 6
)

const (
	// MaxSendSize is the largest payload a single SocketSend accepts. The
	// limit comes from the modem's command line length with hex framing.
	MaxSendSize = 512

	// maxSocketRead caps how many bytes a single receive command asks for.
	maxSocketRead = 512
)

// SocketCreate opens a socket for the given protocol, optionally bound to
// a local port (0 leaves the port unbound). It returns the modem-assigned
// socket id, or -1 with an error.
func (m *Modem) SocketCreate(localPort uint16, protocol Protocol) (int, error) {
	payload, err := m.query(at.SocketCreate(int(protocol), localPort), at.PrefixSocketCreate, m.readTimeout)
	if err != nil {
		return -1, err
	}

	var id int
	if _, err := fmt.Sscanf(payload, "%d", &id); err != nil {
		return -1, fmt.Errorf("socket id %q: %w", payload, ErrBadResponse)
	}
	if id < 0 || id > socketCount {
		return -1, fmt.Errorf("socket id %d: %w", id, ErrBadResponse)
	}

	m.sockets.reset(id)
	return id, nil
}

// SocketConnect connects the socket to a remote peer. On failure the
// socket is marked closed locally.
func (m *Modem) SocketConnect(id int, host string, port uint16) error {
	err := m.execCommand(at.SocketConnect(id, host, port), m.timings.socketTimeout)
	m.sockets.setClosed(id, err != nil)
	return err
}

// SocketSend transmits data as a single datagram to host:port. Payloads
// over MaxSendSize are rejected before any command is issued. Hex framing
// is requested first on every send; the modem ignores the repeat requests.
func (m *Modem) SocketSend(id int, host string, port uint16, data []byte) error {
	if len(data) > MaxSendSize {
		return ErrMessageTooLong
	}

	// best effort; older firmware rejects the repeat request
	m.execCommand(at.CmdHexMode, m.readTimeout)

	payload, err := m.query(at.SocketSend(id, host, port, data), at.PrefixSocketSend, m.timings.socketTimeout)
	if err != nil {
		return err
	}

	var retID, sent int
	if _, err := fmt.Sscanf(payload, "%d,%d", &retID, &sent); err != nil {
		return fmt.Errorf("send reply %q: %w", payload, ErrBadResponse)
	}
	if retID < 0 || retID > socketCount {
		return fmt.Errorf("send socket id %d: %w", retID, ErrBadResponse)
	}
	return nil
}

// socketReceiveRe matches the full +USORF reply: socket id, quoted source
// host, source port, byte count and the hex-framed payload.
var socketReceiveRe = regexp.MustCompile(`^\+USORF: (\d+),"[^"]+",\d+,(\d+),"([A-F0-9]+)"`)

// SocketReceive reads pending bytes from the socket into buf and returns
// how many were copied. Without pending bytes it returns 0 immediately
// and issues no command. At most min(pending, len(buf), 512) bytes are
// requested from the modem in one call.
func (m *Modem) SocketReceive(id int, buf []byte) (int, error) {
	pending := m.sockets.pendingBytes(id)
	if pending == 0 || len(buf) == 0 {
		return 0, nil
	}

	want := pending
	if want > len(buf) {
		want = len(buf)
	}
	if want > maxSocketRead {
		want = maxSocketRead
	}

	payload, err := m.query(at.SocketReceive(id, want), "", m.readTimeout)
	if err != nil {
		return 0, err
	}

	fields := socketReceiveRe.FindStringSubmatch(payload)
	if fields == nil {
		return 0, fmt.Errorf("receive reply %q: %w", payload, ErrBadResponse)
	}
	retID, err := strconv.Atoi(fields[1])
	if err != nil || retID < 0 || retID >= socketCount {
		return 0, fmt.Errorf("receive socket id %q: %w", fields[1], ErrBadResponse)
	}
	count, err := strconv.Atoi(fields[2])
	if err != nil {
		return 0, fmt.Errorf("receive count %q: %w", fields[2], ErrBadResponse)
	}

	raw, err := at.DecodeHex(fields[3])
	if err != nil {
		return 0, fmt.Errorf("receive payload: %w", err)
	}
	if len(raw) != count {
		return 0, fmt.Errorf("receive payload length %d, want %d: %w", len(raw), count, ErrBadResponse)
	}

	m.sockets.takePending(id, len(raw))
	return copy(buf, raw), nil
}

// SocketWaitForReceive blocks until the socket has pending bytes or
// timeout passes, reporting whether data arrived. Pending bytes are only
// learned from unsolicited notifications, so the wait keeps the channel
// busy with liveness probes.
func (m *Modem) SocketWaitForReceive(ctx context.Context, id int, timeout time.Duration) bool {
	start := time.Now()
	for {
		if m.sockets.pendingBytes(id) > 0 {
			return true
		}
		if time.Since(start) >= timeout {
			return false
		}
		m.isAlive()
		if m.safeDelay(ctx, m.timings.waitPollDelay) != nil {
			return false
		}
	}
}

// SocketClose closes the socket, asynchronously when async is set. Local
// socket state is cleared whatever the command's fate, so the driver side
// is consistent even when the close never reaches the modem.
func (m *Modem) SocketClose(id int, async bool) error {
	m.sockets.setClosed(id, true)
	m.sockets.takePending(id, m.sockets.pendingBytes(id))

	if err := m.writeCommand(at.SocketClose(id, async)); err != nil {
		return err
	}
	_, err := m.readResponse("", m.timings.socketTimeout)
	return err
}

// SocketCloseAll closes every socket not already marked closed and
// returns how many closes the modem acknowledged. Errors from individual
// closes are dropped; the local table ends up fully closed either way.
func (m *Modem) SocketCloseAll() int {
	closed := 0
	for id := 0; id < socketCount; id++ {
		if m.sockets.isClosed(id) {
			continue
		}
		if m.SocketClose(id, false) == nil {
			closed++
		}
	}
	return closed
}

// SocketPendingBytes returns how many bytes the network has announced for
// the socket but the driver has not read yet.
func (m *Modem) SocketPendingBytes(id int) int {
	return m.sockets.pendingBytes(id)
}

// SocketIsClosed reports whether the socket is closed as far as the
// driver knows. Out-of-range ids read as closed.
func (m *Modem) SocketIsClosed(id int) bool {
	return m.sockets.isClosed(id)
}
