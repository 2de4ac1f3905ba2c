// Package modem implements a driver for the u-blox SARA-N310 NB-IoT
// modem as found on Sodaq boards: network attach with retry and reboot
// escalation, up to seven UDP/TCP sockets with hex-framed payloads, and
// the usual informational queries, all over a line-oriented AT command
// channel.
//
// The driver is single-threaded by design: all modem interaction is
// synchronous request/response, and unsolicited result codes are absorbed
// while a response is being read. Methods must not be called concurrently;
// the socket table is the only state also touched from the URC path and
// is guarded for ports that relax this.
package modem

import (
	"context"
	"log/slog"
	"time"
)

// timings collects the field-tuned retry counts and delays of the attach
// and socket machinery. The values encode observed SARA-N310 behaviour;
// they are fixed for callers and only narrowed inside tests.
type timings struct {
	aliveTimeout        time.Duration // budget for the bare AT liveness probe
	onRetries           int           // liveness probes after power-on
	purgeTimeout        time.Duration // lid on draining stale output
	purgeReadTimeout    time.Duration // per drain read
	apnPollCount        int           // APN verification queries
	apnPollDelay        time.Duration // between APN verification queries
	backoffStart        time.Duration // first signal/attach poll delay
	backoffStep         time.Duration // added per poll
	backoffMax          time.Duration // poll delay ceiling
	signalTimeout       time.Duration // signal acquisition budget
	attachTimeout       time.Duration // attach budget
	rebootAfter         time.Duration // signal+attach time that forces a reboot
	rebootAckTimeout    time.Duration // wait for the reset command's own OK
	rebootDelay         time.Duration // settle time after the reset begins
	rebootTimeout       time.Duration // SIM readiness after reset
	flushTimeout        time.Duration // trailing read after reset
	simRetries          int           // SIM status polls
	simRetryDelay       time.Duration // between SIM status polls
	operatorTimeout     time.Duration // manual operator registration
	deregisterTimeout   time.Duration // network deregistration
	connectedCSQTimeout time.Duration // signal check inside IsConnected
	socketTimeout       time.Duration // socket connect/send/close
	waitPollDelay       time.Duration // between receive-wait liveness probes
}

func defaultTimings() timings {
	return timings{
		aliveTimeout:        450 * time.Millisecond,
		onRetries:           10,
		purgeTimeout:        2 * time.Second,
		purgeReadTimeout:    500 * time.Millisecond,
		apnPollCount:        20,
		apnPollDelay:        3 * time.Second,
		backoffStart:        500 * time.Millisecond,
		backoffStep:         time.Second,
		backoffMax:          5 * time.Second,
		signalTimeout:       180 * time.Second,
		attachTimeout:       180 * time.Second,
		rebootAfter:         40 * time.Second,
		rebootAckTimeout:    2 * time.Second,
		rebootDelay:         1250 * time.Millisecond,
		rebootTimeout:       15 * time.Second,
		flushTimeout:        250 * time.Millisecond,
		simRetries:          10,
		simRetryDelay:       250 * time.Millisecond,
		operatorTimeout:     180 * time.Second,
		deregisterTimeout:   40 * time.Second,
		connectedCSQTimeout: 10 * time.Second,
		socketTimeout:       120 * time.Second,
		waitPollDelay:       10 * time.Millisecond,
	}
}

// keepAliveInterval caps how long the driver sleeps between keep-alive
// callback invocations.
const keepAliveInterval = time.Second

// Modem drives a SARA-N310 over a byte transport. Create one with New;
// it is not safe for concurrent use.
type Modem struct {
	transport Transport
	power     PowerControl
	logger    *slog.Logger
	keepAlive KeepAliveFunc

	cid         uint8
	minRSSI     int
	readTimeout time.Duration
	byteTimeout time.Duration

	timings timings

	// line is the framer's scratch buffer, reused across reads.
	line []byte

	sockets socketTable

	// signal acquisition bookkeeping from the most recent attach
	lastRSSI int
	csqTime  time.Duration

	closed bool
}

// New opens the transport and prepares a driver instance. The modem is
// not powered or configured here; Connect owns that sequence.
func New(ctx context.Context, config Config) (*Modem, error) {
	config.setDefaults()
	if err := config.validate(); err != nil {
		return nil, err
	}

	transport, err := config.Dialer.Dial(ctx)
	if err != nil {
		return nil, err
	}
	if transport == nil {
		return nil, ErrNotInitialized
	}

	m := &Modem{
		transport:   transport,
		power:       config.Power,
		logger:      config.Logger,
		keepAlive:   config.KeepAlive,
		cid:         config.CID,
		minRSSI:     config.MinRSSI,
		readTimeout: config.ReadTimeout,
		byteTimeout: config.ByteTimeout,
		timings:     defaultTimings(),
		line:        make([]byte, 0, lineBufferSize),
	}
	m.sockets.init()

	return m, nil
}

// Close releases the transport. The modem itself is left in whatever
// state it was in; use Off to power it down first.
func (m *Modem) Close() error {
	if m.closed {
		return ErrAlreadyClosed
	}
	m.closed = true

	if m.transport != nil {
		return m.transport.Close()
	}
	return nil
}

// IsOn reports the power line state, assuming on without a power control.
func (m *Modem) IsOn() bool {
	if m.power != nil {
		return m.power.IsOn()
	}
	return true
}

// On powers the modem up and probes until it answers command traffic.
func (m *Modem) On() error {
	if !m.IsOn() && m.power != nil {
		m.power.On()
	}

	alive := false
	for i := 0; i < m.timings.onRetries; i++ {
		if m.isAlive() {
			alive = true
			break
		}
	}
	if !alive {
		return ErrNoReply
	}
	if !m.IsOn() {
		return ErrPoweredOff
	}
	return nil
}

// Off powers the modem down unconditionally.
func (m *Modem) Off() error {
	if m.power != nil {
		m.power.Off()
	}
	if m.IsOn() {
		return ErrPoweredOn
	}
	return nil
}

// safeDelay sleeps for d in slices no longer than keepAliveInterval,
// invoking the keep-alive callback before each slice. It returns early if
// the context is cancelled.
func (m *Modem) safeDelay(ctx context.Context, d time.Duration) error {
	for d > 0 {
		m.keepAlive()
		step := d
		if step > keepAliveInterval {
			step = keepAliveInterval
		}
		timer := time.NewTimer(step)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		d -= step
	}
	return nil
}
