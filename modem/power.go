package modem

//go:generate go tool mockgen -source power.go -destination mock_power.go -package modem

// PowerControl drives the hardware power line of the modem.
//
// The driver never toggles power behind the caller's back except where the
// attach sequence explicitly requires it. A nil PowerControl means the
// modem is permanently powered and IsOn is assumed true.
type PowerControl interface {
	// On asserts the power line. It returns once the line is set, not once
	// the modem is ready; readiness is probed over the command channel.
	On()
	// Off deasserts the power line.
	Off()
	// IsOn reports the state of the power line.
	IsOn() bool
}
