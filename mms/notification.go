package mms

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrNotNotification = errors.New("mms message is not an m-notification-ind")

// Notification is the m-notification-ind a relay pushes to announce a new
// message (WAP-209 section 6.2).
type Notification struct {
	TransactionID   string
	Version         string
	From            string
	Subject         string
	MessageClass    string
	MessageSize     uint32
	Expiry          *HeaderRelativeOrAbsoluteTime
	ContentLocation string
}

// Sender returns the originator address without its /TYPE= suffix, or ""
// when the notification carries no usable address.
func (n *Notification) Sender() string {
	if n.From == "" || n.From == InsertAddressToken {
		return ""
	}
	addr := n.From
	if i := strings.Index(addr, "/TYPE="); i >= 0 {
		addr = addr[:i]
	}
	return addr
}

// Parser decodes notification bodies of MMS WAP pushes.
type Parser struct{}

func (Parser) ParseNotification(body []byte) (*Notification, error) {
	return ParseNotification(body)
}

func ParseNotification(body []byte) (*Notification, error) {
	msg, err := Unmarshal(body)
	if err != nil {
		return nil, err
	}

	mt, ok := msg.Get(MessageType).(*HeaderMessageType)
	if !ok {
		return nil, fmt.Errorf("missing %s: %w", MessageType, ErrNotNotification)
	}
	if *mt != MNotificationInd {
		return nil, fmt.Errorf("message type %s: %w", mt, ErrNotNotification)
	}

	n := Notification{
		TransactionID:   stringField(msg, TransactionID),
		Version:         stringField(msg, MMSVersion),
		From:            stringField(msg, From),
		Subject:         stringField(msg, Subject),
		MessageClass:    stringField(msg, MessageClass),
		ContentLocation: stringField(msg, ContentLocation),
	}
	if size, ok := msg.Get(MessageSize).(*HeaderUint); ok {
		n.MessageSize = uint32(*size)
	}
	if exp, ok := msg.Get(Expiry).(*HeaderRelativeOrAbsoluteTime); ok {
		n.Expiry = exp
	}

	return &n, nil
}

// ExpiresAt resolves the notification expiry relative to when it was
// received. The zero time is returned when no expiry was sent.
func (n *Notification) ExpiresAt(received time.Time) time.Time {
	if n.Expiry == nil {
		return time.Time{}
	}
	return n.Expiry.At(received)
}

func stringField(msg *Message, f Field) string {
	if v := msg.Get(f); v != nil {
		return v.String()
	}
	return ""
}
