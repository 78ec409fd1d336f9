package mms

import (
	"fmt"
	"strconv"
	"time"
)

type HeaderString string

func (hs *HeaderString) String() string {
	return string(*hs)
}

type HeaderUint uint32

func (hu *HeaderUint) String() string {
	return strconv.FormatUint(uint64(*hu), 10)
}

type HeaderBool bool

func (hb *HeaderBool) String() string {
	return strconv.FormatBool(bool(*hb))
}

type HeaderTime time.Time

func (hd *HeaderTime) String() string {
	return time.Time(*hd).Format(time.RFC3339)
}

type HeaderRelativeOrAbsoluteTime struct {
	Relative *time.Duration
	Absolute *time.Time
}

func (h *HeaderRelativeOrAbsoluteTime) String() string {
	if h.Absolute != nil {
		return h.Absolute.Format(time.RFC3339)
	}
	return h.Relative.String()
}

// At resolves the time against now, the time the header was received.
func (h *HeaderRelativeOrAbsoluteTime) At(now time.Time) time.Time {
	if h.Absolute != nil {
		return *h.Absolute
	}
	return now.Add(*h.Relative)
}

type HeaderMessageType int

const (
	UnknownMessageType HeaderMessageType = 0
	MSendReq           HeaderMessageType = 128
	MSendConf          HeaderMessageType = 129
	MNotificationInd   HeaderMessageType = 130
	MNotifyrespInd     HeaderMessageType = 131
	MRetrieveConf      HeaderMessageType = 132
	MAcknowledgeInd    HeaderMessageType = 133
	MDeliveryInd       HeaderMessageType = 134
)

var messageTypeNames = map[HeaderMessageType]string{
	MSendReq:         "m-send-req",
	MSendConf:        "m-send-conf",
	MNotificationInd: "m-notification-ind",
	MNotifyrespInd:   "m-notifyresp-ind",
	MRetrieveConf:    "m-retrieve-conf",
	MAcknowledgeInd:  "m-acknowledge-ind",
	MDeliveryInd:     "m-delivery-ind",
}

func (mt *HeaderMessageType) String() string {
	return enumName(messageTypeNames, *mt, "UnknownMessageType")
}

type HeaderPriority int

const (
	Low    HeaderPriority = 128
	Medium HeaderPriority = 129
	High   HeaderPriority = 130
)

var priorityNames = map[HeaderPriority]string{
	Low:    "low",
	Medium: "medium",
	High:   "high",
}

func (p *HeaderPriority) String() string {
	return enumName(priorityNames, *p, "UnknownPriority")
}

type HeaderResponseStatus int

const (
	StatusOk                            HeaderResponseStatus = 128
	StatusErrorUnspecified              HeaderResponseStatus = 129
	StatusErrorServiceDenied            HeaderResponseStatus = 130
	StatusErrorMessageFormatCorrupt     HeaderResponseStatus = 131
	StatusErrorSendingAddressUnresolved HeaderResponseStatus = 132
	StatusErrorMessageNotFound          HeaderResponseStatus = 133
	StatusErrorNetworkProblem           HeaderResponseStatus = 134
	StatusErrorContentNotAccepted       HeaderResponseStatus = 135
	StatusErrorUnsupportedMessage       HeaderResponseStatus = 136
)

var responseStatusNames = map[HeaderResponseStatus]string{
	StatusOk:                            "Ok",
	StatusErrorUnspecified:              "Error-unspecified",
	StatusErrorServiceDenied:            "Error-service-denied",
	StatusErrorMessageFormatCorrupt:     "Error-message-format-corrupt",
	StatusErrorSendingAddressUnresolved: "Error-sending-address-unresolved",
	StatusErrorMessageNotFound:          "Error-message-not-found",
	StatusErrorNetworkProblem:           "Error-network-problem",
	StatusErrorContentNotAccepted:       "Error-content-not-accepted",
	StatusErrorUnsupportedMessage:       "Error-unsupported-message",
}

func (rs *HeaderResponseStatus) String() string {
	return enumName(responseStatusNames, *rs, "Error-unspecified")
}

type HeaderSenderVisibility int

const (
	Hide HeaderSenderVisibility = 128
	Show HeaderSenderVisibility = 129
)

var senderVisibilityNames = map[HeaderSenderVisibility]string{
	Hide: "hide",
	Show: "show",
}

func (v *HeaderSenderVisibility) String() string {
	return enumName(senderVisibilityNames, *v, fmt.Sprintf("SenderVisibilityUnknown<%d>", int(*v)))
}

type HeaderStatus int

const (
	StatusExpired      HeaderStatus = 128
	StatusRetrieved    HeaderStatus = 129
	StatusRejected     HeaderStatus = 130
	StatusDeferred     HeaderStatus = 131
	StatusUnrecognised HeaderStatus = 132
)

var statusNames = map[HeaderStatus]string{
	StatusExpired:      "expired",
	StatusRetrieved:    "retrieved",
	StatusRejected:     "rejected",
	StatusDeferred:     "deferred",
	StatusUnrecognised: "unrecognised",
}

func (s *HeaderStatus) String() string {
	return enumName(statusNames, *s, fmt.Sprintf("StatusUnknown<%d>", int(*s)))
}

func enumName[T comparable](names map[T]string, v T, unknown string) string {
	if name, ok := names[v]; ok {
		return name
	}
	return unknown
}
