package lexer

import (
	"bytes"
	"testing"

	"golang.org/x/text/unicode/norm"
)

func TestBOMStripping(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected []byte
	}{
		{"with_bom", []byte{0xEF, 0xBB, 0xBF, 'h', 'e', 'l', 'l', 'o'}, []byte("hello")},
		{"without_bom", []byte("hello"), []byte("hello")},
		{"empty_with_bom", []byte{0xEF, 0xBB, 0xBF}, []byte{}},
		{"empty_without_bom", []byte{}, []byte{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if !bytes.Equal(got, tt.expected) {
				t.Errorf("Normalize(%v) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNFCNormalization(t *testing.T) {
	// "café" with a combining acute accent (NFD) must normalize to the
	// single precomposed character (NFC) so two byte-different source
	// files that spell the same identifier lex to the same token.
	nfd := []byte("café") // caf + e + combining acute
	nfc := []byte("café")

	got := Normalize(nfd)
	if !bytes.Equal(got, nfc) {
		t.Errorf("Normalize(NFD) = %v, want NFC %v", got, nfc)
	}
	if !norm.NFC.IsNormal(got) {
		t.Error("normalized output should report as NFC-normal")
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	input := []byte("let x = \"hello\";")
	once := Normalize(input)
	twice := Normalize(once)
	if !bytes.Equal(once, twice) {
		t.Error("Normalize should be idempotent on already-normalized input")
	}
}
