package modem

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"i4.energy/across/nbgw/at"
)

// apnState classifies a fresh PDP context query against the wanted APN.
type apnState int

const (
	// apnMismatch covers both a context bound to a different APN and a
	// query that failed or did not parse. The device conflates the two and
	// the driver deliberately keeps that conflation.
	apnMismatch apnState = iota - 1
	// apnNoAddress means the APN is bound but no address is assigned yet;
	// an explicit attach is still needed.
	apnNoAddress
	// apnBound means the APN is bound with a usable IPv4 address.
	apnBound
)

// Connect powers the modem on and walks the full network attach sequence:
// local configuration, operator and APN binding, PDP activation, signal
// acquisition and the attach itself, escalating to one reboot when the
// attach drags on. forcedOperator may be empty (keep the current
// selection) or at.AutomaticOperator; bandSel optionally pins the radio
// band.
//
// Any step failure aborts the whole attempt. Configuration already sent
// to the modem is not rolled back; every configuring step first checks
// current state, so re-issuing Connect is safe.
func (m *Modem) Connect(ctx context.Context, apn, forcedOperator, bandSel string) error {
	if err := m.On(); err != nil {
		return err
	}

	m.purgeResponses()

	if err := m.execCommand(at.CmdEchoOff, m.readTimeout); err != nil {
		return fmt.Errorf("disable echo: %w", err)
	}
	if err := m.setVerboseErrors(true); err != nil {
		return fmt.Errorf("enable verbose errors: %w", err)
	}
	if err := m.execCommand(at.CmdNoAutoActivate, m.readTimeout); err != nil {
		return fmt.Errorf("disable automatic PDP activation: %w", err)
	}
	if err := m.checkRadioFunction(); err != nil {
		return fmt.Errorf("radio function: %w", err)
	}
	if bandSel != "" {
		if err := m.setBandSelection(bandSel); err != nil {
			return fmt.Errorf("band selection: %w", err)
		}
	}
	if err := m.setDefaultApn(apn); err != nil {
		return fmt.Errorf("default APN: %w", err)
	}
	if err := m.setOperator(forcedOperator); err != nil {
		return fmt.Errorf("operator selection: %w", err)
	}
	if err := m.setApn(apn); err != nil {
		return fmt.Errorf("bind APN: %w", err)
	}
	if err := m.execCommand(at.CmdActivatePDP, m.readTimeout); err != nil {
		return fmt.Errorf("activate PDP context: %w", err)
	}

	// Poll until the APN shows up bound. Every iteration is a fresh
	// query; the modem may report the context without an address for a
	// while before the network assigns one.
	state := apnMismatch
	for i := 0; i < m.timings.apnPollCount; i++ {
		state = m.checkApn(apn)
		if err := m.safeDelay(ctx, m.timings.apnPollDelay); err != nil {
			return err
		}
		if state == apnBound {
			break
		}
	}
	if state == apnMismatch {
		return ErrAPNNotBound
	}

	start := time.Now()

	if err := m.waitForSignalQuality(ctx, m.timings.signalTimeout); err != nil {
		return err
	}
	if state == apnNoAddress {
		if err := m.attach(ctx, m.timings.attachTimeout); err != nil {
			return err
		}
	}

	// A sluggish attach usually means the modem wedged itself; one reboot
	// cycle, then the same signal+attach pass gets a second chance.
	if time.Since(start) > m.timings.rebootAfter {
		m.reboot(ctx)

		if err := m.waitForSignalQuality(ctx, m.timings.signalTimeout); err != nil {
			return err
		}
		if err := m.attach(ctx, m.timings.attachTimeout); err != nil {
			return err
		}
	}

	return m.simCheck(ctx)
}

// Disconnect deregisters from the network.
func (m *Modem) Disconnect() error {
	return m.execCommand(at.CmdDeregister, m.timings.deregisterTimeout)
}

// IsConnected reports whether the PDP context holds a usable IPv4 address
// and a signal reading above the configured minimum can be observed.
func (m *Modem) IsConnected(ctx context.Context) bool {
	return m.hasDefinedIPv4() && m.waitForSignalQuality(ctx, m.timings.connectedCSQTimeout) == nil
}

// LastRSSI returns the signal strength in dBm recorded by the most recent
// successful signal acquisition.
func (m *Modem) LastRSSI() int {
	return m.lastRSSI
}

// SignalAcquisitionTime returns how long the most recent successful
// signal acquisition took.
func (m *Modem) SignalAcquisitionTime() time.Duration {
	return m.csqTime
}

// Ping requests an ICMP echo against the given address.
func (m *Modem) Ping(ip string) error {
	return m.execCommand(at.Ping(ip), m.readTimeout)
}

// attach polls for a defined IPv4 address with a growing delay between
// queries until timeout passes.
func (m *Modem) attach(ctx context.Context, timeout time.Duration) error {
	start := time.Now()
	delay := m.timings.backoffStart

	for time.Since(start) < timeout {
		if m.hasDefinedIPv4() {
			return nil
		}
		if err := m.safeDelay(ctx, delay); err != nil {
			return err
		}
		if delay < m.timings.backoffMax {
			delay += m.timings.backoffStep
		}
	}
	return ErrNotAttached
}

// waitForSignalQuality polls AT+CSQ with the same growing delay until a
// known reading at or above the configured minimum RSSI is seen, and
// records the reading and the time it took.
func (m *Modem) waitForSignalQuality(ctx context.Context, timeout time.Duration) error {
	start := time.Now()
	delay := m.timings.backoffStart

	for time.Since(start) < timeout {
		if rssi, _, err := m.GetRSSIAndBER(); err == nil && rssi != 0 && rssi >= m.minRSSI {
			m.lastRSSI = rssi
			m.csqTime = time.Since(start)
			return nil
		}
		if err := m.safeDelay(ctx, delay); err != nil {
			return err
		}
		if delay < m.timings.backoffMax {
			delay += m.timings.backoffStep
		}
	}
	return ErrNoSignal
}

// pdpContextRe matches the first IPv4 context of a +CGDCONT? reply:
// cid 1, both APN and address present.
var pdpContextRe = regexp.MustCompile(`^1,"IP","([^"]+)","([^"]+)",0,0,0,0`)

// parsePDPContext extracts APN and address from a PDP context query
// payload. Only the first reported context is considered.
func parsePDPContext(payload string) (apn, ip string, ok bool) {
	line, _, _ := strings.Cut(payload, "\n")
	fields := pdpContextRe.FindStringSubmatch(line)
	if fields == nil {
		return "", "", false
	}
	return fields[1], fields[2], true
}

// definedIPv4 reports whether ip is a real assigned address rather than
// the placeholder the modem reports before the attach completes.
func definedIPv4(ip string) bool {
	return len(ip) >= 7 && ip != "0.0.0.0"
}

// checkApn queries the PDP context and classifies it against the wanted
// APN. A failed or unparsable query classifies as apnMismatch.
func (m *Modem) checkApn(requiredAPN string) apnState {
	payload, err := m.query(at.CmdPDPContextQuery, at.PrefixPDPContext, m.readTimeout)
	if err != nil {
		return apnMismatch
	}
	apn, ip, ok := parsePDPContext(payload)
	if !ok || apn != requiredAPN {
		return apnMismatch
	}
	if definedIPv4(ip) {
		return apnBound
	}
	return apnNoAddress
}

// hasDefinedIPv4 reports whether the PDP context currently holds a real
// IPv4 address.
func (m *Modem) hasDefinedIPv4() bool {
	payload, err := m.query(at.CmdPDPContextQuery, at.PrefixPDPContext, m.readTimeout)
	if err != nil {
		return false
	}
	_, ip, ok := parsePDPContext(payload)
	return ok && definedIPv4(ip)
}

// checkRadioFunction verifies the radio reports full functionality and
// requests it when it does not.
func (m *Modem) checkRadioFunction() error {
	payload, err := m.query(at.CmdRadioFuncQuery, at.PrefixRadioFunc, m.readTimeout)
	if err != nil {
		return err
	}
	if strings.HasPrefix(payload, "1") {
		return nil
	}
	return m.setRadioActive(true)
}

func (m *Modem) setRadioActive(on bool) error {
	return m.execCommand(at.RadioActive(on), m.readTimeout)
}

func (m *Modem) setVerboseErrors(on bool) error {
	return m.execCommand(at.VerboseErrors(on), m.readTimeout)
}

func (m *Modem) setBandSelection(sel string) error {
	return m.execCommand(at.BandSelect(sel), m.readTimeout)
}

// defaultApnRe matches a +CFGDFTPDN? payload: PDP type and a possibly
// empty APN.
var defaultApnRe = regexp.MustCompile(`^(\d+),"([^"]*)"`)

// setDefaultApn stores apn as the modem's default PDN unless it already
// is; the setting lives in NVM, so needless writes are avoided.
func (m *Modem) setDefaultApn(apn string) error {
	if apn == "" {
		return ErrAPNRequired
	}

	payload, err := m.query(at.CmdDefaultApnQuery, at.PrefixDefaultApn, m.readTimeout)
	if err != nil {
		return err
	}
	fields := defaultApnRe.FindStringSubmatch(payload)
	if fields == nil {
		return ErrBadResponse
	}
	// 1 is the IPv4 PDP type; anything else gets overwritten.
	if fields[1] == "1" && fields[2] == apn {
		return nil
	}

	return m.execCommand(at.DefaultApn(apn), m.readTimeout)
}

// setOperator forces registration with the given numeric operator code.
// An empty operator keeps the current selection.
func (m *Modem) setOperator(op string) error {
	if op == "" {
		m.logger.Debug("skipping empty operator")
		return nil
	}
	return m.execCommand(at.ForcedOperator(op), m.timings.operatorTimeout)
}

// setApn binds apn to the configured PDP context id.
func (m *Modem) setApn(apn string) error {
	if apn == "" {
		return ErrAPNRequired
	}
	return m.execCommand(at.PDPContext(m.cid, apn), m.readTimeout)
}

// reboot soft-resets the modem and brings the command channel back to a
// usable state: wait briefly for the reset command's own acknowledgement
// (its absence is not fatal), let the reset begin, poll the SIM back to
// readiness, re-disable echo, and flush one stray response.
func (m *Modem) reboot(ctx context.Context) {
	m.logger.Info("rebooting modem")

	if err := m.writeCommand(at.CmdReboot); err != nil {
		return
	}
	start := time.Now()
	for time.Since(start) < m.timings.rebootAckTimeout {
		if _, err := m.readResponse("", m.readTimeout); err == nil {
			break
		}
	}

	if err := m.safeDelay(ctx, m.timings.rebootDelay); err != nil {
		return
	}

	for time.Since(start) < m.timings.rebootTimeout {
		if m.GetSimStatus() == SimReady {
			break
		}
	}

	m.execCommand(at.CmdEchoOff, m.readTimeout)

	// extra read just to clear the input stream
	m.readResponse("", m.timings.flushTimeout)
}

// simCheck polls the SIM until it reports READY.
func (m *Modem) simCheck(ctx context.Context) error {
	for i := 0; i < m.timings.simRetries; i++ {
		if i > 0 {
			if err := m.safeDelay(ctx, m.timings.simRetryDelay); err != nil {
				return err
			}
		}
		if m.GetSimStatus() == SimReady {
			return nil
		}
	}
	return ErrSimNotReady
}
