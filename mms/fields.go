package mms

import "fmt"

// Field is an MMS header field name with the Short-integer high bit
// stripped (WAP-209 section 7.3, Table 8).
type Field int

const (
	Bcc              Field = 0x01
	Cc               Field = 0x02
	ContentLocation  Field = 0x03
	ContentType      Field = 0x04
	Date             Field = 0x05
	DeliveryReport   Field = 0x06
	DeliveryTime     Field = 0x07
	Expiry           Field = 0x08
	From             Field = 0x09
	MessageClass     Field = 0x0a
	MessageID        Field = 0x0b
	MessageType      Field = 0x0c
	MMSVersion       Field = 0x0d
	MessageSize      Field = 0x0e
	Priority         Field = 0x0f
	ReadReply        Field = 0x10
	ReportAllowed    Field = 0x11
	ResponseStatus   Field = 0x12
	ResponseText     Field = 0x13
	SenderVisibility Field = 0x14
	StatusField      Field = 0x15
	Subject          Field = 0x16
	To               Field = 0x17
	TransactionID    Field = 0x18
	RetrieveStatus   Field = 0x19
	RetrieveText     Field = 0x1a
	ReadStatus       Field = 0x1b
)

var fieldNames = map[Field]string{
	Bcc:              "Bcc",
	Cc:               "Cc",
	ContentLocation:  "Content-Location",
	ContentType:      "Content-Type",
	Date:             "Date",
	DeliveryReport:   "Delivery-Report",
	DeliveryTime:     "Delivery-Time",
	Expiry:           "Expiry",
	From:             "From",
	MessageClass:     "Message-Class",
	MessageID:        "Message-ID",
	MessageType:      "Message-Type",
	MMSVersion:       "MMS-Version",
	MessageSize:      "Message-Size",
	Priority:         "Priority",
	ReadReply:        "Read-Reply",
	ReportAllowed:    "Report-Allowed",
	ResponseStatus:   "Response-Status",
	ResponseText:     "Response-Text",
	SenderVisibility: "Sender-Visibility",
	StatusField:      "Status",
	Subject:          "Subject",
	To:               "To",
	TransactionID:    "Transaction-ID",
	RetrieveStatus:   "Retrieve-Status",
	RetrieveText:     "Retrieve-Text",
	ReadStatus:       "Read-Status",
}

func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return fmt.Sprintf("UnknownMMSField<%d>", int(f))
}
