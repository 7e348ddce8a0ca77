package alert

import (
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestBrokerPublishAndAutoClear(t *testing.T) {
	b := NewBroker(25 * time.Millisecond)
	defer b.Close()

	b.Publish("session_expired", "Your session has expired. Please log in again.")

	a := b.Pending()
	if a == nil {
		t.Fatal("Pending() = nil immediately after Publish")
	}
	if a.Kind != "session_expired" || a.Message == "" || a.ID == "" {
		t.Errorf("Pending() = %+v, want populated alert", a)
	}

	deadline := time.Now().Add(2 * time.Second)
	for b.Pending() != nil {
		if time.Now().After(deadline) {
			t.Fatal("alert never auto-cleared")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBrokerReplacementOutlivesOldClearTimer(t *testing.T) {
	b := NewBroker(30 * time.Millisecond)
	defer b.Close()

	b.Publish("session_expired", "first")
	time.Sleep(20 * time.Millisecond)
	b.Publish("forbidden", "second")

	// The first alert's window has passed; the replacement must still be
	// pending because publishing re-arms the clear timer.
	time.Sleep(15 * time.Millisecond)
	a := b.Pending()
	if a == nil || a.Kind != "forbidden" {
		t.Fatalf("Pending() = %+v, want the replacement alert", a)
	}
}

func TestBrokerSubscription(t *testing.T) {
	b := NewBroker(time.Minute)
	defer b.Close()

	var got []Alert
	sub := b.Subscribe(func(a Alert) { got = append(got, a) })

	b.Publish("invalid_token", "Invalid token. Please log in again.")
	if len(got) != 1 {
		t.Fatalf("deliveries = %d, want 1", len(got))
	}

	sub.Cancel()
	sub.Cancel() // safe twice

	b.Publish("invalid_token", "again")
	if len(got) != 1 {
		t.Errorf("deliveries after Cancel = %d, want 1", len(got))
	}
}

func TestBrokerClose(t *testing.T) {
	b := NewBroker(time.Minute)
	b.Publish("session_expired", "msg")
	b.Close()

	if b.Pending() != nil {
		t.Error("Pending() non-nil after Close")
	}
	b.Publish("session_expired", "ignored")
	if b.Pending() != nil {
		t.Error("Publish after Close recorded an alert")
	}
}
