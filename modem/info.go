package modem

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"i4.energy/across/nbgw/at"
)

// SimStatus is the SIM readiness as reported by AT+CPIN?.
type SimStatus int

const (
	SimUnknown SimStatus = iota
	SimMissing
	SimNeedsPin
	SimReady
)

func (s SimStatus) String() string {
	switch s {
	case SimMissing:
		return "missing"
	case SimNeedsPin:
		return "needs pin"
	case SimReady:
		return "ready"
	default:
		return "unknown"
	}
}

// berValues translates the reported BER index to an error rate in 0.01%.
var berValues = [...]int{49, 43, 37, 25, 19, 13, 7, 0}

// GetSimStatus queries the SIM state. Query failures read as SimUnknown,
// an empty reply as SimMissing.
func (m *Modem) GetSimStatus() SimStatus {
	payload, err := m.query(at.CmdSimStatus, "", m.readTimeout)
	if err != nil {
		return SimUnknown
	}
	payload, found := strings.CutPrefix(payload, "+CPIN: ")
	if !found || payload == "" {
		return SimMissing
	}
	if strings.HasPrefix(payload, "READY") {
		return SimReady
	}
	return SimNeedsPin
}

// GetRSSIAndBER queries signal quality. RSSI comes back in dBm with 0 for
// unknown; BER in 0.01% units, with 0 for unknown or out-of-range indices.
func (m *Modem) GetRSSIAndBER() (rssi, ber int, err error) {
	payload, err := m.query(at.CmdSignalQuality, at.PrefixSignalQuality, m.readTimeout)
	if err != nil {
		return 0, 0, err
	}

	var csq, berIndex int
	if _, err := fmt.Sscanf(payload, "%d,%d", &csq, &berIndex); err != nil {
		return 0, 0, fmt.Errorf("signal quality %q: %w", payload, ErrBadResponse)
	}

	if csq != 99 {
		rssi = -113 + 2*csq
	}
	if berIndex >= 0 && berIndex < len(berValues) {
		ber = berValues[berIndex]
	}
	return rssi, ber, nil
}

// GetCCID returns the SIM card identifier.
func (m *Modem) GetCCID() (string, error) {
	return m.query(at.CmdCCID, at.PrefixCCID, m.readTimeout)
}

// GetIMEI returns the modem's equipment identity.
func (m *Modem) GetIMEI() (string, error) {
	payload, err := m.query(at.CmdIMEI, at.PrefixIMEI, m.readTimeout)
	if err != nil {
		return "", err
	}
	imei, ok := quoted(payload)
	if !ok {
		return "", fmt.Errorf("imei %q: %w", payload, ErrBadResponse)
	}
	return imei, nil
}

// GetCellID returns the serving tracking area code and cell id. The
// registration report format is switched to include location info first.
func (m *Modem) GetCellID() (tac uint16, cellID uint32, err error) {
	if err := m.execCommand(at.CmdCellInfoFormat, m.readTimeout); err != nil {
		return 0, 0, err
	}
	payload, err := m.query(at.CmdCellInfoQuery, at.PrefixCellInfo, m.readTimeout)
	if err != nil {
		return 0, 0, err
	}

	line, _, _ := strings.Cut(payload, "\n")
	fields := strings.Split(line, ",")
	if len(fields) < 5 || fields[0] != "2" {
		return 0, 0, fmt.Errorf("registration report %q: %w", line, ErrBadResponse)
	}

	tacHex, ok := quoted(fields[2])
	if !ok {
		return 0, 0, fmt.Errorf("tracking area %q: %w", fields[2], ErrBadResponse)
	}
	cellHex, ok := quoted(fields[3])
	if !ok {
		return 0, 0, fmt.Errorf("cell id %q: %w", fields[3], ErrBadResponse)
	}

	tac64, err := strconv.ParseUint(tacHex, 16, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("tracking area %q: %w", tacHex, ErrBadResponse)
	}
	cell64, err := strconv.ParseUint(cellHex, 16, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("cell id %q: %w", cellHex, ErrBadResponse)
	}
	return uint16(tac64), uint32(cell64), nil
}

// GetEpoch returns the modem clock as a Unix timestamp. The reported
// timezone offset is ignored; the reading is treated as UTC.
func (m *Modem) GetEpoch() (int64, error) {
	payload, err := m.query(at.CmdClock, at.PrefixClock, m.readTimeout)
	if err != nil {
		return 0, err
	}
	ts, ok := quoted(payload)
	if !ok {
		return 0, fmt.Errorf("clock %q: %w", payload, ErrBadResponse)
	}

	var y, mo, d, h, mi, s, tz int
	n, _ := fmt.Sscanf(ts, "%d/%d/%d,%d:%d:%d+%d", &y, &mo, &d, &h, &mi, &s, &tz)
	if n < 6 {
		return 0, fmt.Errorf("clock %q: %w", ts, ErrBadResponse)
	}
	return time.Date(2000+y, time.Month(mo), d, h, mi, s, 0, time.UTC).Unix(), nil
}

// GetOperatorInfo returns the registered network as numeric MCC and MNC.
func (m *Modem) GetOperatorInfo() (mcc, mnc int, err error) {
	code, err := m.operatorCode()
	if err != nil {
		return 0, 0, err
	}
	n, err := strconv.Atoi(code)
	if err != nil {
		return 0, 0, fmt.Errorf("operator code %q: %w", code, ErrBadResponse)
	}

	// 5-digit codes carry a 2-digit MNC, 6-digit codes a 3-digit one.
	divider := 100
	if n > 100000 {
		divider = 1000
	}
	return n / divider, n % divider, nil
}

// GetOperatorInfoString returns the registered network's raw numeric
// operator code.
func (m *Modem) GetOperatorInfoString() (string, error) {
	return m.operatorCode()
}

func (m *Modem) operatorCode() (string, error) {
	payload, err := m.query(at.CmdOperatorQuery, at.PrefixOperator, m.readTimeout)
	if err != nil {
		return "", err
	}
	fields := strings.Split(payload, ",")
	if len(fields) < 3 {
		return "", fmt.Errorf("operator report %q: %w", payload, ErrBadResponse)
	}
	code, ok := quoted(fields[2])
	if !ok {
		return "", fmt.Errorf("operator report %q: %w", payload, ErrBadResponse)
	}
	return code, nil
}

// GetFirmwareVersion returns the modem firmware version string.
func (m *Modem) GetFirmwareVersion() (string, error) {
	return m.query(at.CmdFirmwareVersion, "", m.readTimeout)
}

// GetFirmwareRevision returns the detailed firmware revision report.
func (m *Modem) GetFirmwareRevision() (string, error) {
	return m.query(at.CmdFirmwareRevision, "", m.readTimeout)
}

// quoted extracts the content of a double-quoted field, requiring the
// quotes and at least one character between them.
func quoted(s string) (string, bool) {
	open := strings.IndexByte(s, '"')
	if open < 0 {
		return "", false
	}
	end := strings.IndexByte(s[open+1:], '"')
	if end <= 0 {
		return "", false
	}
	return s[open+1 : open+1+end], true
}
