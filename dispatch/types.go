package dispatch

import (
	"reflect"
	"sync"
	"time"

	"github.com/psanford/wappush/mms"
)

// Outcome is the terminal state of a single dispatch.
type Outcome int

const (
	Handled Outcome = iota
	GenericError
	DeliveredToManager
	DeliveredToDefaultConsumer
	DeliveredToAllConsumers
)

func (o Outcome) String() string {
	switch o {
	case Handled:
		return "Handled"
	case GenericError:
		return "GenericError"
	case DeliveredToManager:
		return "DeliveredToManager"
	case DeliveredToDefaultConsumer:
		return "DeliveredToDefaultConsumer"
	case DeliveredToAllConsumers:
		return "DeliveredToAllConsumers"
	}
	return "UnknownOutcome"
}

// Status maps the outcome to the caller visible status code.
func (o Outcome) Status() Status {
	switch o {
	case Handled, DeliveredToManager:
		return StatusHandled
	case DeliveredToDefaultConsumer, DeliveredToAllConsumers:
		return StatusOK
	}
	return StatusGenericError
}

// Status is the three-way result reported back to the SMS layer.
type Status int

const (
	StatusOK Status = iota
	StatusHandled
	StatusGenericError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusHandled:
		return "HANDLED"
	}
	return "GENERIC_ERROR"
}

// Permission and app-op tags a consumer must hold to receive a delivery.
const (
	PermissionReceiveMMS     = "android.permission.RECEIVE_MMS"
	PermissionReceiveWAPPush = "android.permission.RECEIVE_WAP_PUSH"
	AppOpReceiveMMS          = "android:receive_mms"
	AppOpReceiveWAPPush      = "android:receive_wap_push"
)

// ResultFlags are returned by a push manager's ProcessMessage.
type ResultFlags int

const (
	MessageHandled    ResultFlags = 0x1
	FurtherProcessing ResultFlags = 0x2
)

// Subscription identifies the subscription/phone a PDU arrived on.
type Subscription struct {
	SubID   int `json:"sub_id"`
	PhoneID int `json:"phone_id"`
}

// Inbound is a reassembled PDU handed over by the SMS layer.
type Inbound struct {
	PDU                []byte
	OriginatingAddress string
	// MessageID is used for tracing only; 0 means unset.
	MessageID    int64
	Subscription Subscription
}

// Envelope is the decoded content handed to a push manager or consumer.
type Envelope struct {
	TransactionID         byte              `json:"transaction_id"`
	PDUType               byte              `json:"pdu_type"`
	MimeType              string            `json:"mime_type"`
	Header                []byte            `json:"header"`
	Data                  []byte            `json:"data"`
	ContentTypeParameters map[string]string `json:"content_type_parameters"`
	Address               string            `json:"address,omitempty"`
	MessageID             int64             `json:"message_id,omitempty"`
	Subscription          Subscription      `json:"subscription"`
}

// Consumer identifies an application that receives decoded pushes.
type Consumer struct {
	Name string `json:"name"`
}

type DeliveryOptions struct {
	// TemporaryAllowlist is how long the target consumer runs with
	// elevated priority while handling the delivery.
	TemporaryAllowlist time.Duration `json:"temporary_allowlist,omitempty"`
}

// Delivery is a single hand off to the delivery sink. A nil Target means
// every consumer holding Permission receives it.
type Delivery struct {
	Envelope   Envelope        `json:"envelope"`
	Permission string          `json:"permission"`
	AppOp      string          `json:"app_op"`
	Options    DeliveryOptions `json:"options"`
	Target     *Consumer       `json:"target,omitempty"`
}

// Manager is an external push manager that may claim pushes by
// application id.
type Manager interface {
	ProcessMessage(applicationID, contentType string, env Envelope) (ResultFlags, error)
}

// ManagerLocator returns the currently bound push manager, if any.
type ManagerLocator interface {
	BoundManager() (Manager, bool)
}

type BlockList interface {
	IsBlocked(address string) bool
}

type NotificationParser interface {
	ParseNotification(body []byte) (*mms.Notification, error)
}

type ConsumerResolver interface {
	DefaultConsumer(mimeType string) (Consumer, bool)
}

type Sink interface {
	Deliver(d Delivery)
}

// ManagerBinding is a shared, rebindable handle to a push manager. The
// owner binds and unbinds it as the manager connects and disconnects;
// the dispatcher only reads it.
type ManagerBinding struct {
	mu sync.RWMutex
	m  Manager
}

// Bind sets the bound manager. A nil pointer wrapped in m is treated as
// unbinding.
func (b *ManagerBinding) Bind(m Manager) {
	if m != nil {
		if v := reflect.ValueOf(m); v.Kind() == reflect.Ptr && v.IsNil() {
			m = nil
		}
	}
	b.mu.Lock()
	b.m = m
	b.mu.Unlock()
}

func (b *ManagerBinding) Unbind() {
	b.Bind(nil)
}

func (b *ManagerBinding) BoundManager() (Manager, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.m, b.m != nil
}
