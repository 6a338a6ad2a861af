// Package pathcodec encodes arbitrary strings into a single URL path segment.
//
// Mapping: bytes in the RFC 3986 unreserved set minus '~' ([A-Za-z0-9-._]) are
// written as-is. Every other byte, including '~' itself and all of '/', '?', '#',
// '%', '$' and the rest of the reserved set, is written as '~' followed by two
// uppercase hex digits. Encode and Decode are exact inverses.
package pathcodec

import (
	"errors"
	"strings"
)

const escape = '~'

const hexDigits = "0123456789ABCDEF"

// ErrMalformed is returned by Decode for a truncated or non-hex escape.
var ErrMalformed = errors.New("pathcodec: malformed escape")

func passthrough(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '.', c == '_':
		return true
	}
	return false
}

// Encode returns s as a path-safe segment.
func Encode(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if passthrough(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte(escape)
		b.WriteByte(hexDigits[c>>4])
		b.WriteByte(hexDigits[c&0x0F])
	}
	return b.String()
}

// Decode reverses Encode.
func Decode(s string) (string, error) {
	if strings.IndexByte(s, escape) < 0 {
		for i := 0; i < len(s); i++ {
			if !passthrough(s[i]) {
				return "", ErrMalformed
			}
		}
		return s, nil
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != escape {
			if !passthrough(c) {
				return "", ErrMalformed
			}
			b.WriteByte(c)
			continue
		}
		if i+2 >= len(s) {
			return "", ErrMalformed
		}
		hi, ok1 := unhex(s[i+1])
		lo, ok2 := unhex(s[i+2])
		if !ok1 || !ok2 {
			return "", ErrMalformed
		}
		b.WriteByte(hi<<4 | lo)
		i += 2
	}
	return b.String(), nil
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
