package modem

import (
	"errors"
	"testing"
)

func TestGetSimStatus(t *testing.T) {
	tests := []struct {
		name     string
		reply    string
		expected SimStatus
	}{
		{
			name:     "Ready",
			reply:    "+CPIN: READY\r\nOK\r\n",
			expected: SimReady,
		},
		{
			name:     "Needs pin",
			reply:    "+CPIN: SIM PIN\r\nOK\r\n",
			expected: SimNeedsPin,
		},
		{
			name:     "Query failure",
			reply:    "+CME ERROR: 10\r\n",
			expected: SimUnknown,
		},
		{
			name:     "No status line",
			reply:    "OK\r\n",
			expected: SimMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, transport := newTestModem(t)
			transport.Respond("AT+CPIN?", tt.reply)
			if got := m.GetSimStatus(); got != tt.expected {
				t.Errorf("GetSimStatus() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetRSSIAndBER(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		rssi  int
		ber   int
	}{
		{
			name:  "Mid-range signal",
			reply: "+CSQ: 15,3\r\nOK\r\n",
			rssi:  -83,
			ber:   25,
		},
		{
			name:  "Unknown signal",
			reply: "+CSQ: 99,99\r\nOK\r\n",
			rssi:  0,
			ber:   0,
		},
		{
			name:  "Out-of-range error rate index",
			reply: "+CSQ: 20,8\r\nOK\r\n",
			rssi:  -73,
			ber:   0,
		},
		{
			name:  "Best signal",
			reply: "+CSQ: 31,0\r\nOK\r\n",
			rssi:  -51,
			ber:   49,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, transport := newTestModem(t)
			transport.Respond("AT+CSQ", tt.reply)
			rssi, ber, err := m.GetRSSIAndBER()
			if err != nil {
				t.Fatalf("GetRSSIAndBER() error: %v", err)
			}
			if rssi != tt.rssi || ber != tt.ber {
				t.Errorf("GetRSSIAndBER() = %d, %d, want %d, %d", rssi, ber, tt.rssi, tt.ber)
			}
		})
	}
}

func TestGetCCID(t *testing.T) {
	m, transport := newTestModem(t)
	transport.Respond("AT+CCID", "+CCID: 89314404000165589251\r\nOK\r\n")

	ccid, err := m.GetCCID()
	if err != nil {
		t.Fatalf("GetCCID() error: %v", err)
	}
	if ccid != "89314404000165589251" {
		t.Errorf("GetCCID() = %q", ccid)
	}
}

func TestGetIMEI(t *testing.T) {
	m, transport := newTestModem(t)
	transport.Respond("AT+CGSN=1", "+CGSN: \"357862090123456\"\r\nOK\r\n")

	imei, err := m.GetIMEI()
	if err != nil {
		t.Fatalf("GetIMEI() error: %v", err)
	}
	if imei != "357862090123456" {
		t.Errorf("GetIMEI() = %q", imei)
	}
}

func TestGetCellID(t *testing.T) {
	m, transport := newTestModem(t)
	transport.Respond("AT+CEREG=2", "OK\r\n")
	transport.Respond("AT+CEREG?", "+CEREG: 2,1,\"152D\",\"01A2D080\",9\r\nOK\r\n")

	tac, cellID, err := m.GetCellID()
	if err != nil {
		t.Fatalf("GetCellID() error: %v", err)
	}
	if tac != 0x152D {
		t.Errorf("tac = %#x, want 0x152d", tac)
	}
	if cellID != 0x01A2D080 {
		t.Errorf("cell id = %#x, want 0x01a2d080", cellID)
	}
}

func TestGetCellIDNotRegistered(t *testing.T) {
	m, transport := newTestModem(t)
	transport.Respond("AT+CEREG=2", "OK\r\n")
	transport.Respond("AT+CEREG?", "+CEREG: 0,1\r\nOK\r\n")

	if _, _, err := m.GetCellID(); !errors.Is(err, ErrBadResponse) {
		t.Errorf("GetCellID() error = %v, want %v", err, ErrBadResponse)
	}
}

func TestGetEpoch(t *testing.T) {
	m, transport := newTestModem(t)
	transport.Respond("AT+CCLK?", "+CCLK: \"26/08/28,11:24:09+08\"\r\nOK\r\n")

	epoch, err := m.GetEpoch()
	if err != nil {
		t.Fatalf("GetEpoch() error: %v", err)
	}
	// 2026-08-28 11:24:09 UTC
	if epoch != 1787916249 {
		t.Errorf("GetEpoch() = %d, want 1787916249", epoch)
	}
}

func TestGetOperatorInfo(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		mcc   int
		mnc   int
	}{
		{
			name:  "Two digit MNC",
			reply: "+COPS: 0,2,\"20416\"\r\nOK\r\n",
			mcc:   204,
			mnc:   16,
		},
		{
			name:  "Three digit MNC",
			reply: "+COPS: 0,2,\"310410\"\r\nOK\r\n",
			mcc:   310,
			mnc:   410,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, transport := newTestModem(t)
			transport.Respond("AT+COPS?", tt.reply)
			mcc, mnc, err := m.GetOperatorInfo()
			if err != nil {
				t.Fatalf("GetOperatorInfo() error: %v", err)
			}
			if mcc != tt.mcc || mnc != tt.mnc {
				t.Errorf("GetOperatorInfo() = %d, %d, want %d, %d", mcc, mnc, tt.mcc, tt.mnc)
			}
		})
	}
}

func TestGetOperatorInfoString(t *testing.T) {
	m, transport := newTestModem(t)
	transport.Respond("AT+COPS?", "+COPS: 0,2,\"20416\"\r\nOK\r\n")

	code, err := m.GetOperatorInfoString()
	if err != nil {
		t.Fatalf("GetOperatorInfoString() error: %v", err)
	}
	if code != "20416" {
		t.Errorf("GetOperatorInfoString() = %q", code)
	}
}

func TestGetFirmwareVersion(t *testing.T) {
	m, transport := newTestModem(t)
	transport.Respond("AT+CGMR", "V100R100C10B657SP2\r\nOK\r\n")

	version, err := m.GetFirmwareVersion()
	if err != nil {
		t.Fatalf("GetFirmwareVersion() error: %v", err)
	}
	if version != "V100R100C10B657SP2" {
		t.Errorf("GetFirmwareVersion() = %q", version)
	}
}

func TestQuoted(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		ok       bool
	}{
		{
			name:     "Simple field",
			input:    `"20416"`,
			expected: "20416",
			ok:       true,
		},
		{
			name:     "Surrounded field",
			input:    `x,"20416",y`,
			expected: "20416",
			ok:       true,
		},
		{
			name:  "Empty field",
			input: `""`,
		},
		{
			name:  "No quotes",
			input: "20416",
		},
		{
			name:  "Unterminated",
			input: `"20416`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := quoted(tt.input)
			if ok != tt.ok || got != tt.expected {
				t.Errorf("quoted(%q) = %q, %v, want %q, %v", tt.input, got, ok, tt.expected, tt.ok)
			}
		})
	}
}
