// Package wap decodes WAP push PDUs delivered over SMS.
package wap

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/psanford/wappush/wsp"
)

const (
	// MimeTypeConnectionlessPush payloads are self describing and are
	// handed to consumers from offset 0 of the original PDU.
	MimeTypeConnectionlessPush = "application/vnd.wap.coc"
	MimeTypeMMS                = "application/vnd.wap.mms-message"
)

// ErrNotAPush is returned for WSP PDUs that are not PUSH or CONFIRMED_PUSH.
// Callers treat it as handled and drop the PDU.
var ErrNotAPush = errors.New("not a wap push pdu")

// ErrMalformed matches every *MalformedError with errors.Is.
var ErrMalformed = errors.New("malformed wap push pdu")

// MalformedError reports which field of the PDU failed to decode.
type MalformedError struct {
	Field  string
	Offset int
	Err    error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed wap push pdu: %s at pos:%d: %v", e.Field, e.Offset, e.Err)
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}

func (e *MalformedError) Is(target error) bool {
	return target == ErrMalformed
}

func malformed(field string, off int, err error) error {
	return &MalformedError{Field: field, Offset: off, Err: err}
}

// Push is a decoded WAP push.
type Push struct {
	TransactionID byte
	PDUType       byte
	// MimeType is empty when the content type was a numeric code with no
	// known media type.
	MimeType          string
	BinaryContentType int64
	Header            []byte
	Body              []byte
	// ApplicationID is the X-Wap-Application-Id header value, empty if the
	// header was absent.
	ApplicationID         string
	ContentTypeParameters map[string]string
}

func (p *Push) IsMMS() bool {
	return p.MimeType == MimeTypeMMS
}

func (p *Push) HasApplicationID() bool {
	return p.ApplicationID != ""
}

func (p *Push) IsConnectionlessPush() bool {
	return p.MimeType == MimeTypeConnectionlessPush
}

func (p *Push) String() string {
	return fmt.Sprintf("tid=%d type=0x%02x mime=%q code=0x%x app_id=%q header=%d body=%d",
		p.TransactionID, p.PDUType, p.MimeType, p.BinaryContentType, p.ApplicationID, len(p.Header), len(p.Body))
}

type options struct {
	fallbackHeaderIndex int
}

type Option func(*options)

// WithFallbackHeaderIndex sets the offset at which the transaction id and
// PDU type are re-read when the PDU does not start with a push PDU type.
// Some networks prepend an SMS specific prefix to the WSP PDU.
func WithFallbackHeaderIndex(i int) Option {
	return func(o *options) {
		o.fallbackHeaderIndex = i
	}
}

// Decode decodes a reassembled WAP push PDU.
//
// It returns ErrNotAPush for non-push WSP traffic and a *MalformedError for
// any encoding or bounds violation.
func Decode(pdu []byte, opts ...Option) (push *Push, err error) {
	o := options{fallbackHeaderIndex: -1}
	for _, opt := range opts {
		opt(&o)
	}

	// Each field is bounds checked; this only converts a missed check into
	// a decode failure.
	defer func() {
		if r := recover(); r != nil {
			push = nil
			err = malformed("pdu", -1, fmt.Errorf("%v", r))
		}
	}()

	off := 0
	tid, typ, err := decodePDUType(pdu, off)
	if err != nil {
		return nil, err
	}
	off += 2

	if !isPush(typ) {
		if o.fallbackHeaderIndex < 0 {
			return nil, ErrNotAPush
		}
		off = o.fallbackHeaderIndex
		tid, typ, err = decodePDUType(pdu, off)
		if err != nil {
			return nil, err
		}
		off += 2
		if !isPush(typ) {
			return nil, ErrNotAPush
		}
	}

	headerLength, n, err := wsp.DecodeUintvar(pdu, off)
	if err != nil {
		return nil, malformed("header length", off, err)
	}
	off += n

	headerStart := off
	headerEnd := uint64(headerStart) + uint64(headerLength)

	ctEnd := len(pdu)
	if headerEnd < uint64(ctEnd) {
		ctEnd = int(headerEnd)
	}
	ct, n, err := wsp.DecodeContentType(pdu, headerStart, ctEnd)
	if err != nil {
		return nil, malformed("content type", headerStart, err)
	}
	off += n

	if headerEnd > uint64(len(pdu)) {
		return nil, malformed("header", headerStart, fmt.Errorf("header length %d exceeds pdu length %d: %w",
			headerLength, len(pdu), wsp.ErrTruncated))
	}
	end := int(headerEnd)

	push = &Push{
		TransactionID:         tid,
		PDUType:               typ,
		MimeType:              ct.MediaType,
		BinaryContentType:     ct.Code,
		Header:                bytes.Clone(pdu[headerStart:end]),
		ContentTypeParameters: ct.Params,
	}
	if push.ContentTypeParameters == nil {
		push.ContentTypeParameters = make(map[string]string)
	}

	if push.IsConnectionlessPush() {
		push.Body = bytes.Clone(pdu)
	} else {
		push.Body = append([]byte{}, pdu[end:]...)
	}

	// A malformed application id is treated as absent.
	if valOff, ok := wsp.SeekApplicationID(pdu, off, end); ok {
		if id, _, err := wsp.DecodeApplicationID(pdu[:end], valOff); err == nil {
			push.ApplicationID = id
		}
	}

	return push, nil
}

func decodePDUType(pdu []byte, off int) (byte, byte, error) {
	if off < 0 || off > len(pdu)-2 {
		return 0, 0, malformed("pdu type", off, fmt.Errorf("pdu length %d: %w", len(pdu), wsp.ErrTruncated))
	}
	return pdu[off], pdu[off+1], nil
}

func isPush(typ byte) bool {
	return typ == wsp.PDUPush || typ == wsp.PDUConfirmedPush
}
