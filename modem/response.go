package modem

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"i4.energy/across/nbgw/at"
)

// responseSize caps the payload accumulated across a command's info
// lines. Longer payloads are truncated, never overflowed.
const responseSize = 1024

// writeCommand sends one command line, terminated with a single CR.
func (m *Modem) writeCommand(cmd string) error {
	if m.closed {
		return ErrAlreadyClosed
	}
	if m.transport == nil {
		return ErrNotInitialized
	}
	m.logger.Debug("modem write", "cmd", cmd)
	if _, err := m.transport.Write([]byte(cmd + at.CR)); err != nil {
		return fmt.Errorf("write command %q: %w", cmd, err)
	}
	return nil
}

// readResponse drains the modem's reply to the last issued command and
// returns its payload together with the final verdict: nil for OK, a
// typed error for ERROR / +CME ERROR / +CMS ERROR, ErrTimeout when no
// final line arrived within timeout.
//
// Per framed line: echoes are skipped, final lines terminate, URCs are
// absorbed, and the rest contributes to the payload. When prefix is
// non-empty only lines starting with it are collected, minus the prefix;
// otherwise every remaining line is collected. Multiple collected lines
// are joined with a single LF. The loop never stops at a matching line;
// multi-line payloads accumulate until a final line or the deadline.
func (m *Modem) readResponse(prefix string, timeout time.Duration) (string, error) {
	deadline := time.Now().Add(timeout)
	var out []byte

	for time.Now().Before(deadline) {
		line, err := m.readLine(m.byteTimeout)
		if err != nil {
			return string(out), err
		}
		m.keepAlive()
		if line == "" {
			continue
		}
		m.logger.Debug("modem read", "line", line)

		switch at.Classify(line) {
		case at.TypeEcho:
			continue
		case at.TypeFinal:
			if strings.HasPrefix(line, at.OK) {
				return string(out), nil
			}
			return string(out), parseErrorLine(line)
		}

		hasPrefix := prefix != "" && strings.HasPrefix(line, prefix)

		if !hasPrefix && m.handleURC(line) {
			continue
		}

		if hasPrefix || prefix == "" {
			text := line
			if hasPrefix {
				text = line[len(prefix):]
			}
			if len(out) > 0 && len(out) < responseSize-1 {
				out = append(out, '\n')
			}
			if room := responseSize - 1 - len(out); room > 0 {
				if len(text) > room {
					text = text[:room]
				}
				out = append(out, text...)
			}
		}
	}

	return string(out), ErrTimeout
}

// parseErrorLine turns a final error line into the matching error value.
// Vendor error lines carry a numeric code when verbose errors are on;
// without a parsable code they degrade to the generic ErrModem.
func parseErrorLine(line string) error {
	for _, v := range []struct {
		marker string
		err    func(code int) error
	}{
		{at.CmeError, func(code int) error { return CMEError(code) }},
		{at.CmsError, func(code int) error { return CMSError(code) }},
	} {
		if !strings.HasPrefix(line, v.marker) {
			continue
		}
		code, err := strconv.Atoi(strings.TrimSpace(line[len(v.marker):]))
		if err != nil {
			return ErrModem
		}
		return v.err(code)
	}
	return ErrModem
}

// execCommand issues cmd and waits for its verdict, discarding payload.
func (m *Modem) execCommand(cmd string, timeout time.Duration) error {
	if err := m.writeCommand(cmd); err != nil {
		return err
	}
	_, err := m.readResponse("", timeout)
	return err
}

// query issues cmd and returns the payload collected for prefix.
func (m *Modem) query(cmd, prefix string, timeout time.Duration) (string, error) {
	if err := m.writeCommand(cmd); err != nil {
		return "", err
	}
	return m.readResponse(prefix, timeout)
}

// isAlive reports whether the modem answers a bare AT within a short
// window.
func (m *Modem) isAlive() bool {
	return m.execCommand(at.CmdAT, m.timings.aliveTimeout) == nil
}

// purgeResponses drains output left over from before power-up or a reset
// so the next command starts from a clean stream. It stops at the first
// quiet period, or after a fixed lid.
func (m *Modem) purgeResponses() {
	start := time.Now()
	for time.Since(start) < m.timings.purgeTimeout {
		if _, err := m.readResponse("", m.timings.purgeReadTimeout); errors.Is(err, ErrTimeout) {
			return
		}
	}
}
