package textcodec

import (
	"fmt"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEscape(t *testing.T) {
	tests := []struct {
		name string
		hex  string
		want []byte
		ok   bool
	}{
		{name: "ascii", hex: "0041", want: []byte("A"), ok: true},
		{name: "two bytes", hex: "00e9", want: []byte("é"), ok: true},
		{name: "upper case digits", hex: "00E9", want: []byte("é"), ok: true},
		{name: "three bytes", hex: "20ac", want: []byte("€"), ok: true},
		{name: "cyrillic", hex: "0416", want: []byte("Ж"), ok: true},
		{name: "nul", hex: "0000", want: []byte{0}, ok: true},
		{name: "surrogate half kept as is", hex: "d83d", want: []byte{0xED, 0xA0, 0xBD}, ok: true},
		{name: "too short", hex: "00e", ok: false},
		{name: "too long", hex: "00e90", ok: false},
		{name: "not hex", hex: "00zz", ok: false},
		{name: "sign prefix", hex: "+0e9", ok: false},
		{name: "empty", hex: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DecodeEscape(tt.hex)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeEscapeRoundTrip(t *testing.T) {
	for cp := rune(1); cp <= 0xFFFF; cp++ {
		if cp >= 0xD800 && cp <= 0xDFFF {
			continue
		}
		got, ok := DecodeEscape(fmt.Sprintf("%04x", cp))
		require.True(t, ok, "code point %U", cp)

		r, size := utf8.DecodeRune(got)
		require.Equal(t, cp, r, "code point %U", cp)
		require.Equal(t, len(got), size, "code point %U", cp)
		require.Equal(t, utf8.RuneLen(cp), len(got), "code point %U", cp)
	}
}

func TestToUTF8(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "no escapes", in: "hello", want: "hello"},
		{name: "empty", in: "", want: ""},
		{name: "backslash n kept", in: `a\nb`, want: `a\nb`},
		{name: "escaped quote kept", in: `say \"hi\"`, want: `say \"hi\"`},
		{name: "single escape", in: `caf\u00e9`, want: "café"},
		{name: "escape inside json", in: `{"text":"\u041f\u0440\u0438\u0432\u0435\u0442"}`, want: `{"text":"Привет"}`},
		{name: "escaped backslash before u", in: `\\u00e9`, want: `\\u00e9`},
		{name: "trailing backslash", in: `abc\`, want: `abc\`},
		{name: "trailing backslash u", in: `abc\u`, want: `abc\u`},
		{name: "short escape at end", in: `abc\u00e`, want: `abc\u00e`},
		{name: "invalid hex passed through", in: `\u00zzX`, want: `\u00zzX`},
		{name: "non ascii after escape", in: `\u00e9\u00fc`, want: "éü"},
		{name: "multibyte text untouched", in: "日本\\u0041", want: "日本A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToUTF8(tt.in))
		})
	}
}

func TestToUTF8SurrogatePairNotCombined(t *testing.T) {
	got := ToUTF8(`\ud83d\ude00`)
	assert.Equal(t, []byte{0xED, 0xA0, 0xBD, 0xED, 0xB8, 0x80}, []byte(got))
	assert.False(t, utf8.ValidString(got))
}
