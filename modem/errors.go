package modem

import (
	"errors"
	"fmt"
)

var (
	// ErrNoDialer is returned when a Modem is constructed without a Dialer.
	//
	// This indicates a configuration error. A Dialer is required in order to
	// establish a connection to the modem.
	ErrNoDialer = errors.New("no dialer configured")

	// ErrNotInitialized is returned when an operation is attempted on a Modem
	// that has not been successfully initialized.
	ErrNotInitialized = errors.New("modem not initialized")

	// ErrAlreadyClosed is returned when Close is called on a Modem that has
	// already been closed, or when a command is issued after Close.
	ErrAlreadyClosed = errors.New("modem already closed")

	// ErrTimeout is returned when no final response line arrived within the
	// command's time budget. A timeout is never fatal; callers retry, reboot
	// or abort at their own discretion.
	ErrTimeout = errors.New("modem response timeout")

	// ErrModem is returned when the modem rejected a command with a bare
	// ERROR, or with a vendor error line whose code could not be parsed.
	ErrModem = errors.New("modem returned ERROR")

	// ErrBadResponse is returned when a command finished with OK but its
	// payload did not match the expected textual shape.
	ErrBadResponse = errors.New("malformed modem response")

	// ErrNoReply is returned when the modem never answered command traffic
	// after being powered on.
	ErrNoReply = errors.New("no reply from modem")

	// ErrPoweredOff is returned when the power control still reports the
	// modem off although it should be running.
	ErrPoweredOff = errors.New("power control reports modem off")

	// ErrPoweredOn is returned by Off when the power control still reports
	// the modem on.
	ErrPoweredOn = errors.New("power control reports modem on")

	// ErrAPNRequired is returned when an attach is requested without an APN.
	ErrAPNRequired = errors.New("APN is required")

	// ErrAPNNotBound is returned when the APN verification loop never saw
	// the requested APN bound to the PDP context.
	ErrAPNNotBound = errors.New("APN not bound to PDP context")

	// ErrNoSignal is returned when no usable signal quality reading was
	// observed within the signal acquisition budget.
	ErrNoSignal = errors.New("no usable signal")

	// ErrNotAttached is returned when no IPv4 address was assigned within
	// the attach budget.
	ErrNotAttached = errors.New("network attach failed")

	// ErrSimNotReady is returned when the SIM never reported READY.
	ErrSimNotReady = errors.New("SIM not ready")

	// ErrMessageTooLong is returned by SocketSend for payloads beyond
	// MaxSendSize. No command is issued in that case.
	ErrMessageTooLong = errors.New("message exceeds maximum send size")
)

// CMEError is a device-specific +CME ERROR code reported by the modem.
type CMEError int

func (e CMEError) Error() string {
	return fmt.Sprintf("CME error %d", int(e))
}

// CMSError is a device-specific +CMS ERROR code reported by the modem.
type CMSError int

func (e CMSError) Error() string {
	return fmt.Sprintf("CMS error %d", int(e))
}
