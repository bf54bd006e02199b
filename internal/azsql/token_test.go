package azsql

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestEncodeAccessToken_Layout(t *testing.T) {
	encoded := EncodeAccessToken("ab")

	// 4-byte little-endian length prefix followed by UTF-16LE payload.
	if len(encoded) != 8 {
		t.Fatalf("encoded length = %d, want 8", len(encoded))
	}
	if n := binary.LittleEndian.Uint32(encoded); n != 4 {
		t.Errorf("length prefix = %d, want 4", n)
	}
	want := []byte{'a', 0, 'b', 0}
	if !bytes.Equal(encoded[4:], want) {
		t.Errorf("payload = %v, want %v", encoded[4:], want)
	}
}

func TestAccessToken_RoundTrip(t *testing.T) {
	tokens := []string{
		"",
		"short",
		"eyJ0eXAiOiJKV1QiLCJhbGciOiJSUzI1NiJ9.payload.signature",
		"unicode-é世界",
	}
	for _, token := range tokens {
		decoded, err := DecodeAccessToken(EncodeAccessToken(token))
		if err != nil {
			t.Errorf("DecodeAccessToken(%q) error = %v", token, err)
			continue
		}
		if decoded != token {
			t.Errorf("round trip = %q, want %q", decoded, token)
		}
	}
}

func TestDecodeAccessToken_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{"too short", []byte{1, 0}},
		{"length mismatch", []byte{10, 0, 0, 0, 'a', 0}},
		{"odd length", []byte{3, 0, 0, 0, 'a', 0, 'b'}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeAccessToken(tt.raw); err == nil {
				t.Error("expected error for malformed input")
			}
		})
	}
}

func TestTokenAttributes_Key(t *testing.T) {
	attrs := tokenAttributes("tok")
	if len(attrs) != 1 {
		t.Fatalf("expected single attribute entry, got %d", len(attrs))
	}
	if _, ok := attrs[1256]; !ok {
		t.Error("expected attribute keyed by 1256 (SQL_COPT_SS_ACCESS_TOKEN)")
	}
}
