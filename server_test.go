package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"i4.energy/across/nbgw/modem"
)

func newTestServer(t *testing.T) (*Server, *modem.TestTransport) {
	t.Helper()

	transport := modem.NewTestTransport()
	config, err := modem.NewConfigBuilder().
		WithDialer(transport).
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))).
		WithReadTimeout(100 * time.Millisecond).
		WithByteTimeout(20 * time.Millisecond).
		Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	m, err := modem.New(context.Background(), config)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() { m.Close() })

	return &Server{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Modem:  m,
	}, transport
}

func TestHandleDatagram(t *testing.T) {
	server, transport := newTestServer(t)

	transport.Respond("AT+USOCR=17", "+USOCR: 0\r\nOK\r\n")
	transport.Respond(`AT+USOCO=0,"10.0.0.1",7000`, "OK\r\n")
	transport.Respond("AT+UDCONF=1,1", "OK\r\n")
	transport.Respond(`AT+USOST=0,"10.0.0.1",7000,2,"4869"`, "+USOST: 0,2\r\nOK\r\n")
	transport.Respond("AT+USOCL=0", "OK\r\n")

	payload := base64.StdEncoding.EncodeToString([]byte("Hi"))
	body := `{"host":"10.0.0.1","port":7000,"payload":"` + payload + `"}`

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/datagram", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body)
	}

	writes := transport.Writes()
	if writes[len(writes)-1] != "AT+USOCL=0" {
		t.Errorf("socket not closed after send: %v", writes)
	}
}

func TestHandleDatagramValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "Invalid JSON",
			body: "{",
		},
		{
			name: "Missing host",
			body: `{"port":7000,"payload":"SGk="}`,
		},
		{
			name: "Missing payload",
			body: `{"host":"10.0.0.1","port":7000}`,
		},
		{
			name: "Payload not base64",
			body: `{"host":"10.0.0.1","port":7000,"payload":"not~base64"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, transport := newTestServer(t)

			rec := httptest.NewRecorder()
			server.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/datagram", strings.NewReader(tt.body)))

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
			if len(transport.Writes()) != 0 {
				t.Error("invalid request still reached the modem")
			}
		})
	}
}

func TestHandleDatagramTooLarge(t *testing.T) {
	server, transport := newTestServer(t)

	transport.Respond("AT+USOCR=17", "+USOCR: 0\r\nOK\r\n")
	transport.Respond(`AT+USOCO=0,"10.0.0.1",7000`, "OK\r\n")
	transport.Respond("AT+USOCL=0", "OK\r\n")

	payload := base64.StdEncoding.EncodeToString(make([]byte, modem.MaxSendSize+1))
	body := `{"host":"10.0.0.1","port":7000,"payload":"` + payload + `"}`

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/datagram", strings.NewReader(body)))

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusRequestEntityTooLarge)
	}
}

func TestHandleStatus(t *testing.T) {
	server, transport := newTestServer(t)

	transport.Respond("AT+CGDCONT?",
		"+CGDCONT: 1,\"IP\",\"iot.example.com\",\"10.0.0.2\",0,0,0,0\r\nOK\r\n")
	transport.Respond("AT+CSQ", "+CSQ: 20,99\r\nOK\r\n")
	transport.Respond("AT+COPS?", "+COPS: 0,2,\"20416\"\r\nOK\r\n")
	transport.Respond("AT+CGSN=1", "+CGSN: \"357862090123456\"\r\nOK\r\n")
	transport.Respond("AT+CCID", "+CCID: 89314404000165589251\r\nOK\r\n")
	transport.Respond("AT+CGMR", "V100R100C10B657SP2\r\nOK\r\n")

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp struct {
		Connected bool   `json:"connected"`
		RSSI      int    `json:"rssi"`
		Operator  string `json:"operator"`
		IMEI      string `json:"imei"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if !resp.Connected {
		t.Error("connected = false with bound context and good signal")
	}
	if resp.RSSI != -73 {
		t.Errorf("rssi = %d, want -73", resp.RSSI)
	}
	if resp.Operator != "20416" || resp.IMEI != "357862090123456" {
		t.Errorf("operator = %q, imei = %q", resp.Operator, resp.IMEI)
	}
}
