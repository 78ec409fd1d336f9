// Package wsp decodes the primitive encodings of the Wireless Session
// Protocol (WAP-230-WSP) used inside WAP push PDUs.
//
// Every decoder takes the buffer and an offset and returns the decoded value
// together with the number of bytes it consumed. Decoders never read outside
// buf; running off the end is reported as ErrTruncated.
package wsp

import (
	"bytes"
	"errors"
	"fmt"
	"math"
)

var (
	ErrTruncated      = errors.New("wsp: truncated field")
	ErrUintvarTooLong = errors.New("wsp: uintvar longer than 5 octets")
	ErrOverflow       = errors.New("wsp: integer overflow")
	ErrInvalid        = errors.New("wsp: invalid encoding")
)

const (
	maxUintvarLen  = 5
	shortLengthMax = 30
	lengthQuote    = 31
	textQuote      = 0x7f
)

func byteAt(buf []byte, off int) (byte, error) {
	if off < 0 || off >= len(buf) {
		return 0, fmt.Errorf("read at pos:%d len:%d: %w", off, len(buf), ErrTruncated)
	}
	return buf[off], nil
}

// DecodeUintvar decodes a Uintvar-integer (8.1.2 Variable Length Unsigned
// Integers). Each octet carries 7 bits of payload, most significant first,
// and all but the last octet have the continuation bit set.
func DecodeUintvar(buf []byte, off int) (uint32, int, error) {
	var result uint64
	for i := 0; i < maxUintvarLen; i++ {
		b, err := byteAt(buf, off+i)
		if err != nil {
			return 0, 0, err
		}

		result <<= 7
		result |= uint64(b & 0x7f)
		if b&0x80 == 0 {
			if result > math.MaxUint32 {
				return 0, 0, fmt.Errorf("uintvar at pos:%d: %w", off, ErrOverflow)
			}
			return uint32(result), i + 1, nil
		}
	}
	return 0, 0, fmt.Errorf("uintvar at pos:%d: %w", off, ErrUintvarTooLong)
}

// AppendUintvar appends the Uintvar-integer encoding of v to dst.
func AppendUintvar(dst []byte, v uint32) []byte {
	var tmp [maxUintvarLen]byte
	i := len(tmp) - 1
	tmp[i] = byte(v & 0x7f)
	v >>= 7
	for v > 0 {
		i--
		tmp[i] = byte(v&0x7f) | 0x80
		v >>= 7
	}
	return append(dst, tmp[i:]...)
}

// DecodeValueLength decodes a length indicator (8.4.2.2 Length).
//
//	Value-length = Short-length | (Length-quote Length)
//	Short-length = <Any octet 0-30>
//	Length-quote = <Octet 31>
//	Length = Uintvar-integer
func DecodeValueLength(buf []byte, off int) (uint32, int, error) {
	b, err := byteAt(buf, off)
	if err != nil {
		return 0, 0, err
	}
	switch {
	case b <= shortLengthMax:
		return uint32(b), 1, nil
	case b == lengthQuote:
		v, n, err := DecodeUintvar(buf, off+1)
		if err != nil {
			return 0, 0, err
		}
		return v, n + 1, nil
	default:
		return 0, 0, fmt.Errorf("invalid value length at pos:%d value 0x%x: %w", off, b, ErrInvalid)
	}
}

// DecodeShortInteger decodes a Short-integer: an octet with the high bit set
// carrying a value 0-127 in the low bits.
func DecodeShortInteger(buf []byte, off int) (byte, int, error) {
	b, err := byteAt(buf, off)
	if err != nil {
		return 0, 0, err
	}
	if b&0x80 != 0x80 {
		return 0, 0, fmt.Errorf("invalid short int at pos:%d, value: 0x%x: %w", off, b, ErrInvalid)
	}
	return b & 0x7f, 1, nil
}

// DecodeLongInteger decodes a Long-integer.
//
//	Long-integer = Short-length Multi-octet-integer
//	Multi-octet-integer = 1*30 OCTET
//
// Values wider than 32 bits are rejected with ErrOverflow.
func DecodeLongInteger(buf []byte, off int) (uint32, int, error) {
	l, err := byteAt(buf, off)
	if err != nil {
		return 0, 0, err
	}
	if l > shortLengthMax {
		return 0, 0, fmt.Errorf("invalid long int at pos:%d, shortLen: 0x%x: %w", off, l, ErrInvalid)
	}
	if l > 4 {
		return 0, 0, fmt.Errorf("unsupported long int at pos:%d, byte size: %d: %w", off, l, ErrOverflow)
	}
	if off+1+int(l) > len(buf) {
		return 0, 0, fmt.Errorf("long int at pos:%d len:%d: %w", off, l, ErrTruncated)
	}

	var u uint32
	for _, b := range buf[off+1 : off+1+int(l)] {
		u <<= 8
		u |= uint32(b)
	}
	return u, 1 + int(l), nil
}

// DecodeIntegerValue decodes an Integer-value, which is either a
// Short-integer or a Long-integer.
func DecodeIntegerValue(buf []byte, off int) (uint32, int, error) {
	b, err := byteAt(buf, off)
	if err != nil {
		return 0, 0, err
	}
	if b&0x80 == 0x80 {
		return uint32(b & 0x7f), 1, nil
	}
	return DecodeLongInteger(buf, off)
}

func isIntegerValue(b byte) bool {
	return b&0x80 == 0x80 || b <= shortLengthMax
}

func decodeCString(buf []byte, off int) ([]byte, int, error) {
	if off < 0 || off >= len(buf) {
		return nil, 0, fmt.Errorf("text at pos:%d: %w", off, ErrTruncated)
	}
	i := bytes.IndexByte(buf[off:], 0)
	if i < 0 {
		return nil, 0, fmt.Errorf("unterminated text at pos:%d: %w", off, ErrTruncated)
	}
	return buf[off : off+i], i + 1, nil
}

// DecodeTextString decodes a Text-string.
//
//	Text-string = [Quote] *TEXT End-of-string
//	Quote = <Octet 127>
func DecodeTextString(buf []byte, off int) (string, int, error) {
	text, n, err := decodeCString(buf, off)
	if err != nil {
		return "", 0, err
	}
	if len(text) > 0 && text[0] == textQuote {
		text = text[1:]
	}
	return string(text), n, nil
}

// DecodeTokenText decodes a Token-text (a NUL terminated token).
func DecodeTokenText(buf []byte, off int) (string, int, error) {
	text, n, err := decodeCString(buf, off)
	if err != nil {
		return "", 0, err
	}
	return string(text), n, nil
}

// DecodeExtensionMedia decodes an Extension-Media: *TEXT End-of-string.
func DecodeExtensionMedia(buf []byte, off int) (string, int, error) {
	return DecodeTokenText(buf, off)
}
