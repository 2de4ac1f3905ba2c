package at

import (
	"fmt"
	"strconv"
)

// Fixed commands of the attach and query sequences.
const (
	CmdAT               = "AT"
	CmdEchoOff          = "ATE0"
	CmdNoAutoActivate   = "AT+CIPCA=0"
	CmdRadioFuncQuery   = "AT+CFUN?"
	CmdReboot           = "AT+CFUN=16"
	CmdDefaultApnQuery  = "AT+CFGDFTPDN?"
	CmdOperatorAuto     = "AT+COPS=0"
	CmdOperatorQuery    = "AT+COPS?"
	CmdDeregister       = "AT+COPS=2"
	CmdActivatePDP      = "AT+CGACT=1"
	CmdPDPContextQuery  = "AT+CGDCONT?"
	CmdSimStatus        = "AT+CPIN?"
	CmdSignalQuality    = "AT+CSQ"
	CmdCCID             = "AT+CCID"
	CmdIMEI             = "AT+CGSN=1"
	CmdClock            = "AT+CCLK?"
	CmdFirmwareVersion  = "AT+CGMR"
	CmdFirmwareRevision = "ATI9"
	CmdCellInfoFormat   = "AT+CEREG=2"
	CmdCellInfoQuery    = "AT+CEREG?"
	CmdHexMode          = "AT+UDCONF=1,1"
)

// Response prefixes of the commands that carry a payload.
const (
	PrefixCCID          = "+CCID: "
	PrefixIMEI          = "+CGSN: "
	PrefixClock         = "+CCLK: "
	PrefixCellInfo      = "+CEREG: "
	PrefixOperator      = "+COPS: "
	PrefixRadioFunc     = "+CFUN: "
	PrefixSignalQuality = "+CSQ: "
	PrefixDefaultApn    = "+CFGDFTPDN: "
	PrefixPDPContext    = "+CGDCONT: "
	PrefixSocketCreate  = "+USOCR: "
	PrefixSocketSend    = "+USOST: "
	PrefixSocketReceive = "+USORF: "
)

// VerboseErrors selects numeric (+CME ERROR: <code>) or bare ERROR final
// responses.
func VerboseErrors(on bool) string {
	if on {
		return "AT+CMEE=1"
	}
	return "AT+CMEE=0"
}

// RadioActive requests full (1) or minimum (0) radio functionality.
func RadioActive(on bool) string {
	if on {
		return "AT+CFUN=1"
	}
	return "AT+CFUN=0"
}

// BandSelect pins the radio to the given band selector.
func BandSelect(sel string) string {
	return "AT+UBANDSEL=" + sel
}

// DefaultApn stores apn as the modem's default IPv4 PDN (kept in NVM).
func DefaultApn(apn string) string {
	return fmt.Sprintf(`AT+CFGDFTPDN=1,"%s"`, apn)
}

// PDPContext binds apn to the given context id as an IPv4 context.
func PDPContext(cid uint8, apn string) string {
	return fmt.Sprintf(`AT+CGDCONT=%d,"IP","%s"`, cid, apn)
}

// ForcedOperator registers manually with the numeric operator code, or
// returns to automatic selection for AutomaticOperator.
func ForcedOperator(op string) string {
	if op == AutomaticOperator {
		return CmdOperatorAuto
	}
	return fmt.Sprintf(`AT+COPS=1,2,"%s"`, op)
}

// Ping requests an ICMP echo against the given address.
func Ping(ip string) string {
	return fmt.Sprintf(`AT+UPING="%s"`, ip)
}

// SocketCreate opens a socket for the numeric IP protocol (17 for UDP,
// 6 for TCP), optionally bound to a local port.
func SocketCreate(protocol int, localPort uint16) string {
	if localPort > 0 {
		return fmt.Sprintf("AT+USOCR=%d,%d", protocol, localPort)
	}
	return "AT+USOCR=" + strconv.Itoa(protocol)
}

// SocketConnect connects the socket to a remote host and port.
func SocketConnect(id int, host string, port uint16) string {
	return fmt.Sprintf(`AT+USOCO=%d,"%s",%d`, id, host, port)
}

// SocketSend frames data as a hex-encoded datagram to host:port.
func SocketSend(id int, host string, port uint16, data []byte) string {
	return fmt.Sprintf(`AT+USOST=%d,"%s",%d,%d,"%s"`, id, host, port, len(data), EncodeHex(data))
}

// SocketReceive asks for up to n pending bytes from the socket.
func SocketReceive(id, n int) string {
	return fmt.Sprintf("AT+USORF=%d,%d", id, n)
}

// SocketClose closes the socket, optionally without waiting for the
// network-side teardown.
func SocketClose(id int, async bool) string {
	if async {
		return fmt.Sprintf("AT+USOCL=%d,1", id)
	}
	return "AT+USOCL=" + strconv.Itoa(id)
}
