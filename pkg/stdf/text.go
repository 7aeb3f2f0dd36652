package stdf

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// EncodeText converts s to ISO-8859-1, the single-byte character set STDF
// readers expect. Characters outside it are rejected rather than dropped.
func EncodeText(s string) (string, error) {
	if isASCII(s) {
		return s, nil
	}
	out, err := charmap.ISO8859_1.NewEncoder().String(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnencodableText, s)
	}
	return out, nil
}

// FirstChar returns the first character of s as a single byte, or def when s is empty
func FirstChar(s string, def byte) (byte, error) {
	if s == "" {
		return def, nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if r < utf8.RuneSelf {
		return byte(r), nil
	}
	out, err := EncodeText(s[:size])
	if err != nil {
		return 0, err
	}
	return out[0], nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
