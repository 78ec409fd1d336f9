package wsp

import (
	"fmt"
	"strconv"
	"strings"
)

// ContentType is a decoded Content-type-value.
type ContentType struct {
	// MediaType is the textual media type. It is empty when the field
	// carried a numeric code with no known assignment.
	MediaType string
	// Code is the well-known media code, or -1 for an extension media type
	// with no numeric assignment.
	Code   int64
	Params map[string]string
}

// DecodeContentType decodes a Content-type-value starting at buf[off].
// end bounds the header the field lives in and is used to tell a general
// form from a bare well-known code.
//
// 8.4.2.24 Content type field
//
//	Content-type-value = Constrained-media | Content-general-form
//	Content-general-form = Value-length Media-type
//	Media-type = (Well-known-media | Extension-Media) *(Parameter)
//	Constrained-media = Constrained-encoding
//	Constrained-encoding = Extension-Media | Short-integer
func DecodeContentType(buf []byte, off, end int) (ContentType, int, error) {
	b, err := byteAt(buf, off)
	if err != nil {
		return ContentType{}, 0, err
	}

	switch {
	case b >= 0x80:
		code := int64(b & 0x7f)
		return ContentType{MediaType: MediaTypeName(code), Code: code}, 1, nil
	case b > lengthQuote:
		s, n, err := DecodeExtensionMedia(buf, off)
		if err != nil {
			return ContentType{}, 0, fmt.Errorf("decode extension media: %w", err)
		}
		return ContentType{MediaType: s, Code: MediaTypeCode(s)}, n, nil
	case b < lengthQuote && (b == 0 || off+1+int(b) > end):
		// A short length that cannot describe a general form inside the
		// header is a bare well-known media code.
		code := int64(b)
		return ContentType{MediaType: MediaTypeName(code), Code: code}, 1, nil
	}

	return decodeGeneralContentType(buf, off)
}

func decodeGeneralContentType(buf []byte, off int) (ContentType, int, error) {
	l, ln, err := DecodeValueLength(buf, off)
	if err != nil {
		return ContentType{}, 0, fmt.Errorf("decode content type length: %w", err)
	}
	start := off + ln
	if uint64(start)+uint64(l) > uint64(len(buf)) {
		return ContentType{}, 0, fmt.Errorf("content type at pos:%d len:%d: %w", off, l, ErrTruncated)
	}
	limit := start + int(l)
	// Confine the rest of the field to its declared length.
	field := buf[:limit]

	var ct ContentType
	b, err := byteAt(field, start)
	if err != nil {
		return ContentType{}, 0, err
	}

	var n int
	if isIntegerValue(b) {
		var code uint32
		code, n, err = DecodeIntegerValue(field, start)
		if err != nil {
			return ContentType{}, 0, fmt.Errorf("decode well-known media: %w", err)
		}
		ct.Code = int64(code)
		ct.MediaType = MediaTypeName(ct.Code)
	} else {
		ct.MediaType, n, err = DecodeExtensionMedia(field, start)
		if err != nil {
			return ContentType{}, 0, fmt.Errorf("decode extension media: %w", err)
		}
		ct.Code = MediaTypeCode(ct.MediaType)
	}

	ct.Params, err = decodeParameters(field, start+n, limit)
	if err != nil {
		return ContentType{}, 0, fmt.Errorf("decode content type params err: %w", err)
	}

	return ct, ln + int(l), nil
}

func decodeParameters(buf []byte, off, limit int) (map[string]string, error) {
	params := make(map[string]string)
	for off < limit {
		name, value, n, err := decodeParameter(buf, off)
		if err != nil {
			return nil, err
		}
		params[name] = value
		off += n
	}
	return params, nil
}

// decodeParameter decodes one Parameter.
//
//	Parameter = Typed-parameter | Untyped-parameter
//	Typed-parameter = Well-known-parameter-token Typed-value
//	Untyped-parameter = Token-text Untyped-value
//	Untyped-value = Integer-value | Text-value
func decodeParameter(buf []byte, off int) (string, string, int, error) {
	b, err := byteAt(buf, off)
	if err != nil {
		return "", "", 0, err
	}

	var (
		name string
		n    int
	)
	if b&0x80 == 0 && b > lengthQuote {
		name, n, err = DecodeTokenText(buf, off)
		if err != nil {
			return "", "", 0, fmt.Errorf("decode parameter name: %w", err)
		}
	} else {
		var code uint32
		code, n, err = DecodeIntegerValue(buf, off)
		if err != nil {
			return "", "", 0, fmt.Errorf("decode parameter token: %w", err)
		}
		name = ParameterName(code)

		if code == ParamQ {
			q, qn, err := DecodeUintvar(buf, off+n)
			if err != nil {
				return "", "", 0, fmt.Errorf("decode q value: %w", err)
			}
			return name, strconv.FormatUint(uint64(q), 10), n + qn, nil
		}
	}

	vb, err := byteAt(buf, off+n)
	if err != nil {
		return "", "", 0, fmt.Errorf("decode %s value: %w", name, err)
	}

	switch {
	case vb == 0:
		// No-value
		return name, "", n + 1, nil
	case isIntegerValue(vb):
		v, vn, err := DecodeIntegerValue(buf, off+n)
		if err != nil {
			return "", "", 0, fmt.Errorf("decode %s value: %w", name, err)
		}
		return name, strconv.FormatUint(uint64(v), 10), n + vn, nil
	default:
		v, vn, err := DecodeTokenText(buf, off+n)
		if err != nil {
			return "", "", 0, fmt.Errorf("decode %s value: %w", name, err)
		}
		return name, strings.TrimPrefix(v, `"`), n + vn, nil
	}
}
