package azsql

import (
	"encoding/binary"
	"fmt"
	"unicode/utf16"
)

// sqlCoptSSAccessToken is the pre-session attribute that carries an access
// token in lieu of a password. The value is defined by Microsoft in
// msodbcsql.h (SQL_COPT_SS_ACCESS_TOKEN).
const sqlCoptSSAccessToken uint16 = 1256

// EncodeAccessToken packs a bearer token into the attribute format the
// transport expects: the token as UTF-16LE bytes, preceded by a
// little-endian uint32 byte length.
func EncodeAccessToken(token string) []byte {
	units := utf16.Encode([]rune(token))
	buf := make([]byte, 4+2*len(units))
	binary.LittleEndian.PutUint32(buf, uint32(2*len(units)))
	for i, u := range units {
		binary.LittleEndian.PutUint16(buf[4+2*i:], u)
	}
	return buf
}

// DecodeAccessToken is the inverse of EncodeAccessToken. Drivers that take
// the bearer string directly use it to unwrap the attribute value.
func DecodeAccessToken(raw []byte) (string, error) {
	if len(raw) < 4 {
		return "", fmt.Errorf("access token attribute too short: %d bytes", len(raw))
	}
	n := binary.LittleEndian.Uint32(raw)
	if n%2 != 0 || int(n) != len(raw)-4 {
		return "", fmt.Errorf("access token attribute length mismatch: header %d, payload %d", n, len(raw)-4)
	}
	units := make([]uint16, n/2)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(raw[4+2*i:])
	}
	return string(utf16.Decode(units)), nil
}

// tokenAttributes wraps an encoded token in a single-entry attribute map.
func tokenAttributes(token string) PreSessionAttributes {
	return PreSessionAttributes{sqlCoptSSAccessToken: EncodeAccessToken(token)}
}
