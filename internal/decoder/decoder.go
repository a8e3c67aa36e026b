// Package decoder turns raw hex capture lines into text fragments.
//
// The byte payloads carry no declared encoding. A cheap zero-byte density check
// picks the most likely encoding and the remaining ones act as fallbacks.
// Decoding is lossy: byte sequences that are not valid in the chosen encoding
// are dropped rather than replaced.
package decoder

import (
	"encoding/hex"
	"strings"
	"unicode"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	xunicode "golang.org/x/text/encoding/unicode"
)

// Encoding names a candidate text encoding for a payload.
type Encoding string

const (
	EncodingNone    Encoding = "none"
	EncodingUTF16LE Encoding = "utf-16le"
	EncodingUTF8    Encoding = "utf-8"
	EncodingLatin1  Encoding = "latin1"
)

var codecs = map[Encoding]encoding.Encoding{
	EncodingUTF16LE: xunicode.UTF16(xunicode.LittleEndian, xunicode.IgnoreBOM),
	EncodingUTF8:    xunicode.UTF8,
	EncodingLatin1:  charmap.ISO8859_1,
}

var (
	wideOrder   = []Encoding{EncodingUTF16LE, EncodingUTF8, EncodingLatin1}
	narrowOrder = []Encoding{EncodingUTF8, EncodingLatin1, EncodingUTF16LE}
)

// DecodeHexLine decodes one raw capture line. Blank lines and lines that are
// not valid hex yield the empty string.
func DecodeHexLine(line string) string {
	data, ok := ParseHex(line)
	if !ok {
		return ""
	}
	text, _ := Decode(data)
	return text
}

// ParseHex parses a line of hex digit pairs. Whitespace around and between
// pairs is ignored. It reports false for blank input, odd length or a
// non-hex digit.
func ParseHex(line string) ([]byte, bool) {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, line)
	if compact == "" {
		return nil, false
	}

	data, err := hex.DecodeString(compact)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Candidates returns the encodings to try for data, most likely first.
func Candidates(data []byte) []Encoding {
	if LooksUTF16LE(data) {
		return wideOrder
	}
	return narrowOrder
}

// LooksUTF16LE reports whether at least a quarter of the payload length is
// zero bytes at odd offsets, the high byte of a little-endian code unit for
// Latin-1 range text. Payloads shorter than two bytes never qualify.
func LooksUTF16LE(data []byte) bool {
	if len(data) < 2 {
		return false
	}
	zeros := 0
	for i := 1; i < len(data); i += 2 {
		if data[i] == 0 {
			zeros++
		}
	}
	return zeros*4 >= len(data)
}

// Decode decodes data with the first candidate encoding that does not fail
// and reports which one was used. No quality comparison is made between
// candidates. An empty payload yields "" and EncodingNone.
func Decode(data []byte) (string, Encoding) {
	if len(data) == 0 {
		return "", EncodingNone
	}
	for _, enc := range Candidates(data) {
		text, err := decodeWith(enc, data)
		if err != nil {
			continue
		}
		return text, enc
	}
	return "", EncodingNone
}

func decodeWith(enc Encoding, data []byte) (string, error) {
	out, err := codecs[enc].NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return dropInvalid(string(out)), nil
}

// dropInvalid removes the replacement characters the x/text decoders emit for
// malformed input.
func dropInvalid(s string) string {
	if !strings.ContainsRune(s, unicode.ReplacementChar) {
		return s
	}
	return strings.Map(func(r rune) rune {
		if r == unicode.ReplacementChar {
			return -1
		}
		return r
	}, s)
}
