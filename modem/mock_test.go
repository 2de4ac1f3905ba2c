package modem_test

import (
	gomock "go.uber.org/mock/gomock"
	"i4.energy/across/nbgw/modem"
)

// MockSequenceBuilder scripts an ordered command exchange on a
// MockTransport. Each step expects the command's exact wire bytes and
// queues the reply; reads are served from the queue one call at a time,
// with an empty queue reading as a serial timeout.
type MockSequenceBuilder struct {
	transport *modem.MockTransport
	buf       []byte
	calls     []any
}

func NewMockSequence(transport *modem.MockTransport) *MockSequenceBuilder {
	b := &MockSequenceBuilder{
		transport: transport,
		calls:     []any{},
	}

	transport.EXPECT().SetReadTimeout(gomock.Any()).Return(nil).AnyTimes()
	transport.EXPECT().Read(gomock.Any()).DoAndReturn(func(p []byte) (int, error) {
		if len(b.buf) == 0 {
			return 0, nil
		}
		n := copy(p, b.buf)
		b.buf = b.buf[n:]
		return n, nil
	}).AnyTimes()

	return b
}

func (b *MockSequenceBuilder) exchange(cmd, response string) {
	wire := []byte(cmd + "\r")
	b.calls = append(b.calls,
		b.transport.EXPECT().Write(wire).DoAndReturn(func(p []byte) (int, error) {
			b.buf = append(b.buf, response...)
			return len(p), nil
		}),
	)
}

func (b *MockSequenceBuilder) AT() *MockSequenceBuilder {
	b.exchange("AT", "AT\r\nOK\r\n")
	return b
}

func (b *MockSequenceBuilder) SimReady() *MockSequenceBuilder {
	b.exchange("AT+CPIN?", "+CPIN: READY\r\nOK\r\n")
	return b
}

func (b *MockSequenceBuilder) Deregister() *MockSequenceBuilder {
	b.exchange("AT+COPS=2", "OK\r\n")
	return b
}

func (b *MockSequenceBuilder) Build() []any {
	return b.calls
}
