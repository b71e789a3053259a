package textcodec

import (
	"strconv"
	"strings"
)

// DecodeEscape converts the four hex digits of a \uXXXX escape into UTF-8 bytes.
// It reports false when hex is not exactly four hex digits.
//
// Each escape is encoded on its own: surrogate pairs are not combined, so a
// code point above the Basic Multilingual Plane comes out as two 3-byte
// sequences, one per surrogate half.
func DecodeEscape(hex string) ([]byte, bool) {
	if len(hex) != 4 {
		return nil, false
	}
	cp, err := strconv.ParseUint(hex, 16, 16)
	if err != nil {
		return nil, false
	}

	switch {
	case cp < 0x80:
		return []byte{byte(cp)}, true
	case cp < 0x800:
		return []byte{
			0xC0 | byte(cp>>6),
			0x80 | byte(cp&0x3F),
		}, true
	default:
		return []byte{
			0xE0 | byte(cp>>12),
			0x80 | byte((cp>>6)&0x3F),
			0x80 | byte(cp&0x3F),
		}, true
	}
}

// ToUTF8 rewrites every \uXXXX escape in s into its UTF-8 bytes.
// Escapes that cannot be decoded, and backslashes not followed by 'u',
// are copied unchanged.
func ToUTF8(s string) string {
	if strings.IndexByte(s, '\\') < 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); {
		if s[i] != '\\' {
			b.WriteByte(s[i])
			i++
			continue
		}

		// trailing backslash
		if i+1 == len(s) {
			b.WriteByte('\\')
			break
		}

		if s[i+1] != 'u' {
			b.WriteString(s[i : i+2])
			i += 2
			continue
		}

		start := i + 2
		end := start + 4
		if end > len(s) {
			end = len(s)
		}
		if utf8, ok := DecodeEscape(s[start:end]); ok {
			b.Write(utf8)
		} else {
			b.WriteString(s[i:end])
		}
		i = end
	}
	return b.String()
}
