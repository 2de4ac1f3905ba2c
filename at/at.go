// Package at holds the wire-level vocabulary of the u-blox SARA-N310
// command set: terminal markers, unsolicited result code tags, response
// classification, command text builders and the hex payload codec.
//
// Issued command lines are terminated with a single CR; the modem's
// response lines arrive CRLF-terminated.
package at

import "strings"

const (
	// Terminal control
	CR   = "\r"
	CRLF = "\r\n"

	// Echo prefix of an issued command reflected back by the modem.
	Echo = "AT"

	// Final response codes
	OK       = "OK"
	ERROR    = "ERROR"
	CmeError = "+CME ERROR:"
	CmsError = "+CMS ERROR:"

	// URCs (Unsolicited Result Codes)
	UrcFotaStatus   = "+UFOTAS:"
	UrcSocketData   = "+UUSORF:"
	UrcSocketClosed = "+UUSOCL:"
	UrcRadioState   = "+CSCON:"

	// AutomaticOperator selects automatic operator registration when
	// passed as the forced-operator argument.
	AutomaticOperator = "0"
)

type ResponseType int

const (
	TypeFinal ResponseType = iota // OK, ERROR, +CME ERROR, +CMS ERROR
	TypeEcho                      // echoed command line
	TypeData                      // anything else: info line or URC
)

// Classify identifies the nature of a single response line. URCs are not
// distinguished here; they are recognized by shape, not by the leading
// "+" alone, and that judgement belongs to whoever owns the socket state.
func Classify(line string) ResponseType {
	switch {
	case strings.HasPrefix(line, OK),
		strings.HasPrefix(line, ERROR),
		strings.HasPrefix(line, CmeError),
		strings.HasPrefix(line, CmsError):
		return TypeFinal
	case strings.HasPrefix(line, Echo):
		return TypeEcho
	default:
		return TypeData
	}
}
