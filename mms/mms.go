package mms

import (
	"fmt"
	"time"

	"github.com/psanford/wappush/wsp"
)

type Message struct {
	Header map[Field][]HeaderField
}

type HeaderField interface {
	String() string
}

// Get returns the first value of field, or nil.
func (m *Message) Get(f Field) HeaderField {
	if vals := m.Header[f]; len(vals) > 0 {
		return vals[0]
	}
	return nil
}

// Unmarshal decodes the MMS headers of packet. Message bodies are not
// decoded.
func Unmarshal(packet []byte) (*Message, error) {
	hdr, err := decodeHeader(packet)
	if err != nil {
		return nil, err
	}
	return &Message{Header: hdr}, nil
}

// WAP-209: section 7.1
//
//	Header = MMS-header | Application-header
func decodeHeader(buf []byte) (map[Field][]HeaderField, error) {
	hdr := make(map[Field][]HeaderField)

	off := 0
	for off < len(buf) {
		f, n, err := wsp.DecodeShortInteger(buf, off)
		if err != nil {
			return nil, fmt.Errorf("decode mms field type: %w", err)
		}
		off += n
		field := Field(f)

		var v HeaderField
		switch field {
		case Bcc, Cc, ResponseText, RetrieveText, Subject, To:
			var s string
			s, n, err = decodeEncodedString(buf, off)
			v = headerString(s)
		case From:
			var s string
			s, n, err = decodeFrom(buf, off)
			v = headerString(s)
		case DeliveryReport, ReadReply, ReportAllowed:
			var b bool
			b, n, err = decodeBoolean(buf, off)
			hb := HeaderBool(b)
			v = &hb
		case ContentType:
			var ct wsp.ContentType
			ct, n, err = wsp.DecodeContentType(buf, off, len(buf))
			v = headerString(ct.MediaType)
		case Date:
			var u uint32
			u, n, err = wsp.DecodeLongInteger(buf, off)
			hd := HeaderTime(time.Unix(int64(u), 0))
			v = &hd
		case DeliveryTime, Expiry:
			v, n, err = decodeRelativeOrAbsoluteTime(buf, off)
		case MessageSize:
			var u uint32
			u, n, err = wsp.DecodeLongInteger(buf, off)
			hu := HeaderUint(u)
			v = &hu
		case MessageClass:
			var s string
			s, n, err = decodeMessageClass(buf, off)
			v = headerString(s)
		case MessageID, ContentLocation, TransactionID:
			var s string
			s, n, err = wsp.DecodeTextString(buf, off)
			v = headerString(s)
		case MessageType:
			var b byte
			b, n, err = decodeOctet(buf, off)
			mt := HeaderMessageType(b)
			if b < 128 || b > 134 {
				mt = UnknownMessageType
			}
			v = &mt
		case MMSVersion:
			var s string
			s, n, err = decodeVersion(buf, off)
			v = headerString(s)
		case Priority:
			var b byte
			b, n, err = decodeOctet(buf, off)
			p := HeaderPriority(b)
			v = &p
		case ResponseStatus:
			var b byte
			b, n, err = decodeOctet(buf, off)
			rs := HeaderResponseStatus(b)
			v = &rs
		case SenderVisibility:
			var b byte
			b, n, err = decodeOctet(buf, off)
			sv := HeaderSenderVisibility(b)
			v = &sv
		case StatusField:
			var b byte
			b, n, err = decodeOctet(buf, off)
			s := HeaderStatus(b)
			v = &s
		case RetrieveStatus, ReadStatus:
			var b byte
			b, n, err = decodeOctet(buf, off)
			hu := HeaderUint(b)
			v = &hu
		default:
			return nil, fmt.Errorf("unknown mms field type %s at pos:%d", field, off-1)
		}
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", field, err)
		}

		hdr[field] = append(hdr[field], v)
		off += n

		// ContentType will be the last header
		if field == ContentType {
			break
		}
	}

	return hdr, nil
}

func headerString(s string) *HeaderString {
	hs := HeaderString(s)
	return &hs
}

func decodeOctet(buf []byte, off int) (byte, int, error) {
	if off >= len(buf) {
		return 0, 0, fmt.Errorf("read at pos:%d: %w", off, wsp.ErrTruncated)
	}
	return buf[off], 1, nil
}

// 7.2.9. Encoded-string-value
//
//	Encoded-string-value = Text-string | Value-length Char-set Text-string
//
// The Char-set values are registered by IANA as MIBEnum value. Only
// us-ascii compatible charsets are supported; the text is returned as is.
func decodeEncodedString(buf []byte, off int) (string, int, error) {
	b, _, err := decodeOctet(buf, off)
	if err != nil {
		return "", 0, err
	}
	if b > 31 {
		return wsp.DecodeTextString(buf, off)
	}

	l, ln, err := wsp.DecodeValueLength(buf, off)
	if err != nil {
		return "", 0, err
	}
	if l == 0 || uint64(off+ln)+uint64(l) > uint64(len(buf)) {
		return "", 0, fmt.Errorf("encoded string at pos:%d len:%d: %w", off, l, wsp.ErrTruncated)
	}
	field := buf[:off+ln+int(l)]

	_, cn, err := wsp.DecodeIntegerValue(field, off+ln)
	if err != nil {
		return "", 0, fmt.Errorf("decode charset: %w", err)
	}
	s, _, err := wsp.DecodeTextString(field, off+ln+cn)
	if err != nil {
		return "", 0, err
	}
	return s, ln + int(l), nil
}

// InsertAddressToken is reported as the From value when the sender asked
// the relay to insert its address.
const InsertAddressToken = "<insert-address-token>"

// From-value = Value-length (Address-present-token Encoded-string-value | Insert-address-token )
// Address-present-token = <Octet 128>
// Insert-address-token = <Octet 129>
func decodeFrom(buf []byte, off int) (string, int, error) {
	l, ln, err := wsp.DecodeValueLength(buf, off)
	if err != nil {
		return "", 0, err
	}
	if l < 1 {
		return "", 0, fmt.Errorf("invalid from field")
	}
	if uint64(off+ln)+uint64(l) > uint64(len(buf)) {
		return "", 0, fmt.Errorf("from at pos:%d len:%d: %w", off, l, wsp.ErrTruncated)
	}
	end := off + ln + int(l)

	switch tok := buf[off+ln]; tok {
	case 128:
		s, _, err := decodeEncodedString(buf[:end], off+ln+1)
		if err != nil {
			return "", 0, err
		}
		return s, ln + int(l), nil
	case 129:
		return InsertAddressToken, ln + int(l), nil
	default:
		return "", 0, fmt.Errorf("invalid from field token state: 0x%x", tok)
	}
}

func decodeBoolean(buf []byte, off int) (bool, int, error) {
	b, n, err := decodeOctet(buf, off)
	if err != nil {
		return false, 0, err
	}

	switch b {
	case 128:
		return true, n, nil
	case 129:
		return false, n, nil
	}

	return false, 0, fmt.Errorf("invalid boolean value at pos:%d, value: 0x%x", off, b)
}

// 7.2.12. Message-Class field
//
//	Message-class-value = Class-identifier | Token-text
//	Class-identifier = Personal | Advertisement | Informational | Auto
func decodeMessageClass(buf []byte, off int) (string, int, error) {
	b, n, err := decodeOctet(buf, off)
	if err != nil {
		return "", 0, err
	}

	if b < 128 {
		return wsp.DecodeTokenText(buf, off)
	}

	switch b {
	case 128:
		return "personal", n, nil
	case 129:
		return "advertisement", n, nil
	case 130:
		return "informational", n, nil
	case 131:
		return "auto", n, nil
	default:
		return fmt.Sprintf("UnknownMessageClass<%d>", b), n, nil
	}
}

// 7.2.7. Delivery-Time field
//
//	Delivery-time-value = Value-length (Absolute-token Date-value | Relative-token Delta-seconds-value)
//	Absolute-token = <Octet 128>
//	Relative-token = <Octet 129>
func decodeRelativeOrAbsoluteTime(buf []byte, off int) (*HeaderRelativeOrAbsoluteTime, int, error) {
	const (
		absolute = 128
		relative = 129
	)

	l, ln, err := wsp.DecodeValueLength(buf, off)
	if err != nil {
		return nil, 0, err
	}
	if l < 2 || uint64(off+ln)+uint64(l) > uint64(len(buf)) {
		return nil, 0, fmt.Errorf("time value at pos:%d len:%d: %w", off, l, wsp.ErrTruncated)
	}
	field := buf[:off+ln+int(l)]

	mode := field[off+ln]
	val, _, err := wsp.DecodeLongInteger(field, off+ln+1)
	if err != nil {
		return nil, 0, err
	}

	var result HeaderRelativeOrAbsoluteTime
	switch mode {
	case absolute:
		ts := time.Unix(int64(val), 0)
		result.Absolute = &ts
	case relative:
		d := time.Duration(int64(val)) * time.Second
		result.Relative = &d
	default:
		return nil, 0, fmt.Errorf("invalid delivery_time mode: 0x%x", mode)
	}

	return &result, ln + int(l), nil
}

// MMS-version-value = Short-integer
//
// The three most significant bits of the Short-integer are interpreted to
// encode a major version number in the range 1-7, and the four least
// significant bits contain a minor version number in the range 0-14. If
// there is only a major version number, this is encoded by placing the value
// 15 in the four least significant bits [WAPWSP].
func decodeVersion(buf []byte, off int) (string, int, error) {
	b, n, err := wsp.DecodeShortInteger(buf, off)
	if err != nil {
		return "", 0, err
	}

	major := (b & 0x70) >> 4
	minor := b & 0x0f
	if minor == 15 {
		minor = 0
	}
	return fmt.Sprintf("%d.%d", major, minor), n, nil
}
