package delivery

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"
	"github.com/psanford/wappush/dispatch"
)

func broadcast(tid byte) dispatch.Delivery {
	return dispatch.Delivery{
		Envelope: dispatch.Envelope{
			TransactionID:         tid,
			PDUType:               0x06,
			MimeType:              "application/vnd.wap.mms-message",
			Header:                []byte{0xbe},
			Data:                  []byte{0x8c, 0x82},
			ContentTypeParameters: map[string]string{},
		},
		Permission: dispatch.PermissionReceiveMMS,
		AppOp:      dispatch.AppOpReceiveMMS,
	}
}

func targeted(tid byte, name string) dispatch.Delivery {
	d := broadcast(tid)
	d.Target = &dispatch.Consumer{Name: name}
	d.Options.TemporaryAllowlist = time.Minute
	return d
}

func recv(t *testing.T, sub Subscription) dispatch.Delivery {
	t.Helper()
	select {
	case msg := <-sub:
		d, ok := msg.(dispatch.Delivery)
		if !ok {
			t.Fatalf("unexpected message %T", msg)
		}
		return d
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for delivery")
	}
	return dispatch.Delivery{}
}

func TestBusRouting(t *testing.T) {
	bus := NewBus(4)
	defer bus.Close()

	perm := bus.Subscribe(PermissionTopic(dispatch.PermissionReceiveMMS))
	app := bus.Subscribe(ConsumerTopic("messaging"))

	bus.Deliver(targeted(1, "messaging"))
	bus.Deliver(broadcast(2))

	if got := recv(t, app); got.Envelope.TransactionID != 1 || got.Target == nil {
		t.Fatalf("consumer topic got %+v", got)
	}
	if got := recv(t, perm); got.Envelope.TransactionID != 2 || got.Target != nil {
		t.Fatalf("targeted delivery leaked to permission topic: %+v", got)
	}
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus(1)
	defer bus.Close()

	topic := PermissionTopic(dispatch.PermissionReceiveWAPPush)
	stale := bus.Subscribe(topic)
	live := bus.Subscribe(topic)

	// Fill stale's buffer so the bus would block on it.
	d := broadcast(1)
	d.Permission = dispatch.PermissionReceiveWAPPush
	bus.Deliver(d)
	recv(t, live)

	bus.Unsubscribe(stale)

	d.Envelope.TransactionID = 2
	bus.Deliver(d)
	if got := recv(t, live); got.Envelope.TransactionID != 2 {
		t.Fatalf("got tid %d", got.Envelope.TransactionID)
	}
}

func TestBusClose(t *testing.T) {
	bus := NewBus(0)
	sub := bus.Subscribe(ConsumerTopic("a"))
	bus.Close()
	bus.Close()

	if _, ok := <-sub; ok {
		t.Fatal("subscription still open after close")
	}

	bus.Deliver(targeted(1, "a"))
	if _, ok := <-bus.Subscribe(ConsumerTopic("a")); ok {
		t.Fatal("subscribe on closed bus returned an open channel")
	}
	bus.Unsubscribe(sub)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.DefaultConsumer("text/plain"); ok {
		t.Fatal("empty registry resolved a consumer")
	}

	r.SetDefault("Application/vnd.wap.mms-message", dispatch.Consumer{Name: "messaging"})
	r.SetFallback(dispatch.Consumer{Name: "catch-all"})

	tests := map[string]string{
		"application/vnd.wap.mms-message": "messaging",
		"text/plain":                      "catch-all",
	}
	for mime, want := range tests {
		c, ok := r.DefaultConsumer(mime)
		if !ok || c.Name != want {
			t.Errorf("%s: got %q %v, want %q", mime, c.Name, ok, want)
		}
	}

	r.SetFallback(dispatch.Consumer{})
	r.ClearDefault("application/vnd.wap.mms-message")
	if c, ok := r.DefaultConsumer("application/vnd.wap.mms-message"); ok {
		t.Fatalf("cleared registry resolved %q", c.Name)
	}
}

func TestWSHandler(t *testing.T) {
	bus := NewBus(4)
	defer bus.Close()

	srv := httptest.NewServer(NewWSHandler(bus, false))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?topic=" + ConsumerTopic("messaging")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var hello Hello
	if err := conn.ReadJSON(&hello); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Hello{Subscribed: []string{"consumer/messaging"}}, hello); diff != "" {
		t.Fatalf("hello mismatch (-want +got):\n%s", diff)
	}

	want := targeted(7, "messaging")
	bus.Deliver(want)

	var got dispatch.Delivery
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("delivery mismatch (-want +got):\n%s", diff)
	}
}

func TestWSHandlerRequiresTopic(t *testing.T) {
	srv := httptest.NewServer(NewWSHandler(NewBus(1), false))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d", resp.StatusCode)
	}
}
