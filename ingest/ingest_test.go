package ingest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/psanford/wappush/dispatch"
)

type recordingHandler struct {
	status dispatch.Status
	got    []dispatch.Inbound
}

func (h *recordingHandler) HandlePDU(in dispatch.Inbound) dispatch.Status {
	h.got = append(h.got, in)
	return h.status
}

func post(t *testing.T, h http.Handler, body []byte, hdr map[string]string) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/pdu", bytes.NewReader(body))
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	return rec, resp
}

func TestHandler(t *testing.T) {
	rh := &recordingHandler{status: dispatch.StatusHandled}
	pdu := []byte{0x00, 0x06, 0x01, 0x03}

	rec, resp := post(t, Handler(rh), pdu, map[string]string{
		HeaderOriginatingAddress: "+15551234567",
		HeaderMessageID:          "42",
		HeaderSubID:              "3",
		HeaderPhoneID:            "1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("code %d", rec.Code)
	}
	if resp.Status != "HANDLED" {
		t.Fatalf("status %q", resp.Status)
	}

	want := []dispatch.Inbound{{
		PDU:                pdu,
		OriginatingAddress: "+15551234567",
		MessageID:          42,
		Subscription:       dispatch.Subscription{SubID: 3, PhoneID: 1},
	}}
	if diff := cmp.Diff(want, rh.got); diff != "" {
		t.Fatalf("inbound mismatch (-want +got):\n%s", diff)
	}
}

func TestHandlerBadRequest(t *testing.T) {
	rh := &recordingHandler{}

	rec, resp := post(t, Handler(rh), []byte{0x00}, map[string]string{HeaderMessageID: "x"})
	if rec.Code != http.StatusBadRequest || resp.Status != "GENERIC_ERROR" {
		t.Fatalf("code %d status %q", rec.Code, resp.Status)
	}

	rec, _ = post(t, Handler(rh), bytes.Repeat([]byte{0}, MaxPDUSize+1), nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("oversized pdu code %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/pdu", nil)
	w := httptest.NewRecorder()
	Handler(rh).ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("get code %d", w.Code)
	}

	if len(rh.got) != 0 {
		t.Fatalf("handler invoked %d times", len(rh.got))
	}
}

func TestHandlerEndToEnd(t *testing.T) {
	var deliveries []dispatch.Delivery
	d := dispatch.New(dispatch.Config{}, dispatch.Deps{Sink: sinkFunc(func(del dispatch.Delivery) {
		deliveries = append(deliveries, del)
	})})
	h := Handler(d)

	tests := []struct {
		name string
		pdu  []byte
		want string
	}{
		{"minimal push", []byte{0x00, 0x06, 0x01, 0x03}, "OK"},
		{"not a push", []byte{0x00, 0x01}, "HANDLED"},
		{"empty", nil, "GENERIC_ERROR"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, resp := post(t, h, tc.pdu, nil)
			if resp.Status != tc.want {
				t.Fatalf("status %q want %q", resp.Status, tc.want)
			}
		})
	}
	if len(deliveries) != 1 {
		t.Fatalf("deliveries %d", len(deliveries))
	}
}

type sinkFunc func(dispatch.Delivery)

func (f sinkFunc) Deliver(d dispatch.Delivery) {
	f(d)
}
