package at

import "fmt"

// Binary socket payloads travel as two uppercase hex digits per byte.

const hexDigits = "0123456789ABCDEF"

// EncodeHex renders data in the uppercase hex form the socket commands
// expect on the wire.
func EncodeHex(data []byte) string {
	out := make([]byte, 2*len(data))
	for i, b := range data {
		out[2*i] = hexDigits[b>>4]
		out[2*i+1] = hexDigits[b&0x0f]
	}
	return string(out)
}

// DecodeHex decodes an uppercase hex payload as received from the modem.
func DecodeHex(s string) ([]byte, error) {
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("odd hex payload length %d", len(s))
	}
	out := make([]byte, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		hi, ok1 := hexNibble(s[i])
		lo, ok2 := hexNibble(s[i+1])
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("invalid hex digit in payload at %d", i)
		}
		out[i/2] = hi<<4 | lo
	}
	return out, nil
}

func hexNibble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
