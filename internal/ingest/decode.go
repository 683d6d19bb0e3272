package ingest

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// DecodeError means no supported character encoding could produce sane text
// from the uploaded bytes.
type DecodeError struct{}

func (*DecodeError) Error() string {
	return "could not decode the file; save it as UTF-8 and try again"
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeText turns raw upload bytes into text by trying a fixed list of
// encodings in order: UTF-8 (with or without BOM), UTF-16 (BOM), UTF-16LE,
// UTF-16BE, Windows-1252 and ISO-8859-1. The first encoding that decodes
// cleanly wins; a leading byte-order mark is always stripped.
func DecodeText(raw []byte) (string, error) {
	b := bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(b) {
		return string(b), nil
	}
	for _, enc := range []encoding.Encoding{
		unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM),
		unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM),
	} {
		if s, ok := tryUTF16(raw, enc); ok {
			return s, nil
		}
	}
	// BOM-less UTF-16 is only guessed when the bytes carry NULs, which Latin
	// script encoded in UTF-16 always does; without this gate any even-length
	// single-byte file would decode as CJK-looking garbage.
	if bytes.IndexByte(raw, 0) >= 0 {
		for _, enc := range []encoding.Encoding{
			unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
			unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM),
		} {
			if s, ok := tryUTF16(raw, enc); ok {
				return s, nil
			}
		}
	}
	if s, ok := tryCharmap(raw, charmap.Windows1252); ok {
		return s, nil
	}
	if s, ok := tryCharmap(raw, charmap.ISO8859_1); ok {
		return s, nil
	}
	return "", &DecodeError{}
}

func tryUTF16(raw []byte, enc encoding.Encoding) (string, bool) {
	if len(raw)%2 != 0 {
		return "", false
	}
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", false
	}
	s := strings.TrimPrefix(string(out), "\uFEFF")
	// The UTF-16 decoder substitutes U+FFFD for unpaired surrogates instead of
	// failing; treat any substitution (or embedded NUL) as a wrong guess.
	if strings.ContainsRune(s, utf8.RuneError) || strings.ContainsRune(s, 0) {
		return "", false
	}
	return s, true
}

func tryCharmap(raw []byte, cm *charmap.Charmap) (string, bool) {
	var b strings.Builder
	b.Grow(len(raw))
	for _, c := range raw {
		if c == 0 {
			// NUL bytes mean this is really a 16-bit encoding we failed to
			// detect, not Western single-byte text.
			return "", false
		}
		r := cm.DecodeByte(c)
		if r == utf8.RuneError {
			return "", false
		}
		b.WriteRune(r)
	}
	return b.String(), true
}
