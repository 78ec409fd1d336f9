package manager

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/psanford/wappush/dispatch"
)

func TestProcessMessage(t *testing.T) {
	env := dispatch.Envelope{
		TransactionID:         1,
		PDUType:               0x06,
		MimeType:              "application/vnd.wap.mms-message",
		Header:                []byte{0xbe, 0xaf, 0x84},
		Data:                  []byte{0x8c, 0x82},
		ContentTypeParameters: map[string]string{},
		Address:               "+15551234567",
		Subscription:          dispatch.Subscription{SubID: 1},
	}

	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Error(err)
		}
		json.NewEncoder(w).Encode(Response{Flags: dispatch.MessageHandled})
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	flags, err := c.ProcessMessage("4", env.MimeType, env)
	if err != nil {
		t.Fatal(err)
	}
	if flags != dispatch.MessageHandled {
		t.Fatalf("flags %d", flags)
	}

	want := Request{ApplicationID: "4", ContentType: env.MimeType, Envelope: env}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("request mismatch (-want +got):\n%s", diff)
	}
}

func TestProcessMessageErrors(t *testing.T) {
	tests := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		},
		"bad body": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		},
	}
	for name, h := range tests {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(h)
			defer srv.Close()

			if _, err := New(srv.URL, time.Second).ProcessMessage("4", "text/plain", dispatch.Envelope{}); err == nil {
				t.Fatal("expected error")
			}
		})
	}

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	if _, err := New(url, time.Second).ProcessMessage("4", "text/plain", dispatch.Envelope{}); err == nil {
		t.Fatal("expected error for unreachable manager")
	}
}

func TestDispatchFallsBackOnManagerFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	var binding dispatch.ManagerBinding
	binding.Bind(New(srv.URL, time.Second))

	var delivered int
	d := dispatch.New(dispatch.Config{}, dispatch.Deps{
		Managers: &binding,
		Sink:     sinkFunc(func(dispatch.Delivery) { delivered++ }),
	})

	pdu := []byte{0x01, 0x06, 0x03, 0x83, 0xaf, 0x84}
	if got := d.HandlePDU(dispatch.Inbound{PDU: pdu}); got != dispatch.StatusOK {
		t.Fatalf("status %s", got)
	}
	if delivered != 1 {
		t.Fatalf("delivered %d", delivered)
	}
}

type sinkFunc func(dispatch.Delivery)

func (f sinkFunc) Deliver(d dispatch.Delivery) {
	f(d)
}
