package wsp

import (
	"fmt"
	"strconv"
)

// SeekApplicationID scans the header fields in buf[start:end] for an
// X-Wap-Application-Id field and returns the offset of its value.
//
//	Header = Message-header | Shift-sequence
//	Message-header = Well-known-header | Application-header
//	Well-known-header = Well-known-field-name Wap-value
//	Application-header = Token-text Application-specific-value
//
// Field values are skipped by their leading octet:
//
//	0-30    Short-length followed by that many octets
//	31      Length-quote, Uintvar length, then the octets
//	32-127  Text-string
//	128-255 a single encoded Short-integer
func SeekApplicationID(buf []byte, start, end int) (int, bool) {
	if end > len(buf) {
		end = len(buf)
	}
	if end < 0 {
		return 0, false
	}
	hdr := buf[:end]

	for i := start; i < end; {
		if field, n, err := DecodeIntegerValue(hdr, i); err == nil {
			if field == FieldXWapApplicationID {
				return i + n, true
			}
			i += n
		} else {
			_, n, err := DecodeTextString(hdr, i)
			if err != nil {
				return 0, false
			}
			i += n
		}

		if i >= end {
			return 0, false
		}

		b := hdr[i]
		switch {
		case b <= shortLengthMax:
			i += int(b) + 1
		case b == lengthQuote:
			l, n, err := DecodeUintvar(hdr, i+1)
			if err != nil {
				return 0, false
			}
			if uint64(i)+1+uint64(n)+uint64(l) > uint64(end) {
				return 0, false
			}
			i += 1 + n + int(l)
		case b < 0x80:
			_, n, err := DecodeTextString(hdr, i)
			if err != nil {
				return 0, false
			}
			i += n
		default:
			i++
		}
	}
	return 0, false
}

// DecodeApplicationID decodes an X-Wap-Application-Id value.
//
//	Application-id-value = Uri-value | App-assigned-code
//	App-assigned-code = Integer-value
//
// Assigned codes are returned in decimal form.
func DecodeApplicationID(buf []byte, off int) (string, int, error) {
	b, err := byteAt(buf, off)
	if err != nil {
		return "", 0, err
	}
	if isIntegerValue(b) {
		v, n, err := DecodeIntegerValue(buf, off)
		if err != nil {
			return "", 0, fmt.Errorf("decode application id: %w", err)
		}
		return strconv.FormatUint(uint64(v), 10), n, nil
	}

	s, n, err := DecodeTextString(buf, off)
	if err != nil {
		return "", 0, fmt.Errorf("decode application id: %w", err)
	}
	return s, n, nil
}
