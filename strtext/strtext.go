// Package strtext implements the string bridge: conversions among the
// driver's narrow, wide-2-byte and wide-4-byte character representations,
// and UTF-8 length counting. Convert does no transcoding beyond width
// adjustment -- callers are expected to have configured the backend's
// charset environment compatibly; only WideToUTF8/UTF8ToWide transcode
// (UTF-16LE <-> UTF-8).
package strtext

import (
	"golang.org/x/text/encoding/unicode"
)

// Width identifies the code-unit width of an otext buffer.
type Width int

const (
	WidthNarrow Width = 1 // single byte per code unit
	Wide2       Width = 2 // UTF-16-ish, 2 bytes per code unit
	Wide4       Width = 4 // UTF-32-ish, 4 bytes per code unit
)

// Convert adjusts src (interpreted as a sequence of code units of width
// srcWidth) into a buffer of code units of width dstWidth.
//
//   - narrow<->narrow, wide2<->wide2: a straight copy.
//   - wide2->wide4, narrow->wide*: zero-extend each code unit.
//   - wide4->wide2, wide->narrow: truncate each code unit.
//
// No charset translation happens here; widening/narrowing a code unit that
// doesn't fit loses the high bits, matching the backend's own behaviour.
func Convert(src []byte, srcWidth, dstWidth Width) []byte {
	if srcWidth == dstWidth {
		out := make([]byte, len(src))
		copy(out, src)
		return out
	}

	units := decodeUnits(src, srcWidth)
	return encodeUnits(units, dstWidth)
}

func decodeUnits(src []byte, width Width) []uint32 {
	n := len(src) / int(width)
	units := make([]uint32, n)
	for i := 0; i < n; i++ {
		var v uint32
		for b := 0; b < int(width); b++ {
			v |= uint32(src[i*int(width)+b]) << (8 * b)
		}
		units[i] = v
	}
	return units
}

func encodeUnits(units []uint32, width Width) []byte {
	out := make([]byte, len(units)*int(width))
	for i, u := range units {
		for b := 0; b < int(width); b++ {
			out[i*int(width)+b] = byte(u >> (8 * b))
		}
	}
	return out
}

// UTF8Len counts Unicode code points (non-continuation bytes) in s,
// matching the backend's UTF-8 length computation.
func UTF8Len(s []byte) int {
	n := 0
	for _, b := range s {
		if b&0xC0 != 0x80 {
			n++
		}
	}
	return n
}

// utf16Codec is used by WideToUTF8/UTF8ToWide to perform genuine
// transcoding (as opposed to Convert's pure width adjustment) when the
// caller explicitly wants UTF-16 <-> UTF-8, e.g. translating an attribute
// fetched in wide-2 mode into a Go string.
var utf16Codec = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// WideToUTF8 decodes a wide-2 (UTF-16LE) buffer into a UTF-8 Go string.
func WideToUTF8(wide []byte) (string, error) {
	decoder := utf16Codec.NewDecoder()
	out, err := decoder.Bytes(wide)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// UTF8ToWide encodes a Go string into a wide-2 (UTF-16LE) buffer.
func UTF8ToWide(s string) ([]byte, error) {
	encoder := utf16Codec.NewEncoder()
	return encoder.Bytes([]byte(s))
}

// DemoteWide2Attr implements the documented attribute-get workaround: some
// backend builds asked for a wide-2 attribute occasionally return a narrow
// buffer instead. The helper inspects the first two bytes and, if the
// second is nonzero (impossible for a genuine wide-2 ASCII-range code
// unit), treats buf as narrow.
func DemoteWide2Attr(buf []byte) (narrow bool) {
	if len(buf) < 2 {
		return true
	}
	return buf[1] != 0
}
