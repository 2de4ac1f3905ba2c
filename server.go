package main

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"i4.energy/across/nbgw/modem"
)

// DatagramRequest asks the gateway to forward one UDP datagram over the
// cellular link. Payload carries the raw bytes base64-encoded.
type DatagramRequest struct {
	Host    string `json:"host"`
	Port    uint16 `json:"port"`
	Payload string `json:"payload"`
}

// Server handles incoming HTTP requests for interacting with the
// configured modem instance
type Server struct {
	Logger *slog.Logger
	Modem  *modem.Modem

	// mu serializes modem access; the driver is not safe for concurrent
	// use and requests may arrive from HTTP and MQTT at once.
	mu sync.Mutex
}

// ServeHTTP implements the http.Handler interface for the Server struct
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("POST /datagram", s.handleDatagram)
	mux.ServeHTTP(w, r)
}

func (s *Server) sendError(w http.ResponseWriter, message string, statusCode int) {
	if message == "" {
		w.WriteHeader(statusCode)
		return
	}

	type ErrorResponse struct {
		Message string `json:"message"`
	}
	resp := ErrorResponse{Message: message}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)

}

// handleStatus reports the link and modem state
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	type StatusResponse struct {
		Connected bool   `json:"connected"`
		RSSI      int    `json:"rssi,omitempty"`
		BER       int    `json:"ber,omitempty"`
		Operator  string `json:"operator,omitempty"`
		IMEI      string `json:"imei,omitempty"`
		CCID      string `json:"ccid,omitempty"`
		Firmware  string `json:"firmware,omitempty"`
	}

	resp := StatusResponse{Connected: s.Modem.IsConnected(r.Context())}
	if rssi, ber, err := s.Modem.GetRSSIAndBER(); err == nil {
		resp.RSSI = rssi
		resp.BER = ber
	}
	if op, err := s.Modem.GetOperatorInfoString(); err == nil {
		resp.Operator = op
	}
	if imei, err := s.Modem.GetIMEI(); err == nil {
		resp.IMEI = imei
	}
	if ccid, err := s.Modem.GetCCID(); err == nil {
		resp.CCID = ccid
	}
	if fw, err := s.Modem.GetFirmwareVersion(); err == nil {
		resp.Firmware = fw
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// handleDatagram processes incoming HTTP POST requests to forward datagrams
func (s *Server) handleDatagram(w http.ResponseWriter, r *http.Request) {
	var req DatagramRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Host == "" || req.Port == 0 || req.Payload == "" {
		s.sendError(w, "'host', 'port' and 'payload' fields are required", http.StatusBadRequest)
		return
	}

	data, err := base64.StdEncoding.DecodeString(req.Payload)
	if err != nil {
		s.sendError(w, "payload is not valid base64", http.StatusBadRequest)
		return
	}

	if err := s.SendDatagram(req.Host, req.Port, data); err != nil {
		s.Logger.Error("Failed to send datagram", "error", err, "host", req.Host, "port", req.Port)
		if errors.Is(err, modem.ErrMessageTooLong) {
			s.sendError(w, err.Error(), http.StatusRequestEntityTooLarge)
			return
		}
		s.sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.Logger.Info("Datagram sent", "host", req.Host, "port", req.Port, "bytes", len(data))
	w.WriteHeader(http.StatusOK)
}

// SendDatagram forwards one datagram over a short-lived UDP socket. It is
// shared between the HTTP handler and the MQTT ingress.
func (s *Server) SendDatagram(host string, port uint16, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.Modem.SocketCreate(0, modem.UDP)
	if err != nil {
		return err
	}
	defer s.Modem.SocketClose(id, false)

	if err := s.Modem.SocketConnect(id, host, port); err != nil {
		return err
	}
	return s.Modem.SocketSend(id, host, port, data)
}
