// Package ingest accepts reassembled WAP push PDUs from the SMS layer over
// HTTP.
package ingest

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/psanford/wappush/dispatch"
	log "github.com/sirupsen/logrus"
)

// MaxPDUSize bounds the request body. A concatenated SMS tops out well
// below it.
const MaxPDUSize = 64 << 10

const (
	HeaderOriginatingAddress = "X-Originating-Address"
	HeaderMessageID          = "X-Message-Id"
	HeaderSubID              = "X-Sub-Id"
	HeaderPhoneID            = "X-Phone-Id"
)

type PDUHandler interface {
	HandlePDU(in dispatch.Inbound) dispatch.Status
}

type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Handler serves POST requests whose body is the raw PDU and replies with
// the dispatch status as JSON.
func Handler(h PDUHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			writeJSON(w, http.StatusMethodNotAllowed, Response{
				Status: dispatch.StatusGenericError.String(),
				Error:  "method not allowed",
			})
			return
		}

		in, err := parseInbound(w, r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, Response{
				Status: dispatch.StatusGenericError.String(),
				Error:  err.Error(),
			})
			return
		}

		status := h.HandlePDU(in)
		log.WithFields(log.Fields{
			"remote":     r.RemoteAddr,
			"message_id": in.MessageID,
			"len":        len(in.PDU),
			"status":     status,
		}).Info("pdu handled")

		writeJSON(w, http.StatusOK, Response{Status: status.String()})
	})
}

func parseInbound(w http.ResponseWriter, r *http.Request) (dispatch.Inbound, error) {
	var in dispatch.Inbound

	pdu, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxPDUSize))
	if err != nil {
		return in, err
	}
	in.PDU = pdu
	in.OriginatingAddress = r.Header.Get(HeaderOriginatingAddress)

	if v := r.Header.Get(HeaderMessageID); v != "" {
		if in.MessageID, err = strconv.ParseInt(v, 10, 64); err != nil {
			return in, errBadHeader(HeaderMessageID, v)
		}
	}
	if v := r.Header.Get(HeaderSubID); v != "" {
		if in.Subscription.SubID, err = strconv.Atoi(v); err != nil {
			return in, errBadHeader(HeaderSubID, v)
		}
	}
	if v := r.Header.Get(HeaderPhoneID); v != "" {
		if in.Subscription.PhoneID, err = strconv.Atoi(v); err != nil {
			return in, errBadHeader(HeaderPhoneID, v)
		}
	}

	return in, nil
}

type headerError struct {
	name, value string
}

func (e *headerError) Error() string {
	return "invalid " + e.name + " header: " + strconv.Quote(e.value)
}

func errBadHeader(name, value string) error {
	return &headerError{name: name, value: value}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Debug("write response failed")
	}
}
