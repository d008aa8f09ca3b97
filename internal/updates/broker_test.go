package updates

import (
	"encoding/json"
	"testing"
	"time"
)

func publishDoc(b *Broker, docID, payload string) {
	b.Publish(Update{
		Kind:  KindResume,
		DocID: docID,
		Doc:   json.RawMessage(payload),
		At:    time.Now().UTC(),
	})
}

func recvOrFail(t *testing.T, ch <-chan Update) Update {
	t.Helper()
	select {
	case u := <-ch:
		return u
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for update")
		return Update{}
	}
}

func TestBrokerDeliversToMultipleSubscribers(t *testing.T) {
	b := NewBroker()

	ch1, cancel1 := b.Subscribe("doc-1")
	defer cancel1()
	ch2, cancel2 := b.Subscribe("doc-1")
	defer cancel2()

	publishDoc(b, "doc-1", `{"v":1}`)

	u1 := recvOrFail(t, ch1)
	u2 := recvOrFail(t, ch2)
	if u1.Seq != u2.Seq || u1.Seq == 0 {
		t.Fatalf("expected identical nonzero seq, got %d and %d", u1.Seq, u2.Seq)
	}
}

func TestBrokerFiltersByDocumentID(t *testing.T) {
	b := NewBroker()

	ch, cancel := b.Subscribe("doc-1")
	defer cancel()

	publishDoc(b, "doc-2", `{"v":1}`)
	publishDoc(b, "doc-1", `{"v":2}`)

	u := recvOrFail(t, ch)
	if u.DocID != "doc-1" {
		t.Fatalf("expected doc-1 update, got %q", u.DocID)
	}
	select {
	case extra := <-ch:
		t.Fatalf("unexpected extra update: %+v", extra)
	default:
	}
}

func TestBrokerSubscribeAllSeesEveryDocument(t *testing.T) {
	b := NewBroker()

	ch, cancel := b.SubscribeAll()
	defer cancel()

	publishDoc(b, "doc-1", `{"v":1}`)
	publishDoc(b, "doc-2", `{"v":2}`)

	first := recvOrFail(t, ch)
	second := recvOrFail(t, ch)
	if first.DocID != "doc-1" || second.DocID != "doc-2" {
		t.Fatalf("expected publish order, got %q then %q", first.DocID, second.DocID)
	}
	if second.Seq <= first.Seq {
		t.Fatalf("expected monotonic seq, got %d then %d", first.Seq, second.Seq)
	}
}

func TestBrokerUnsubscribeStopsDeliveryAndClosesChannel(t *testing.T) {
	b := NewBroker()

	ch, cancel := b.Subscribe("doc-1")
	cancel()
	// A second cancel is a no-op.
	cancel()

	publishDoc(b, "doc-1", `{"v":1}`)

	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel after unsubscribe")
	}
}

func TestBrokerDropsOldestWhenSubscriberLags(t *testing.T) {
	b := NewBroker()

	ch, cancel := b.Subscribe("doc-1")
	defer cancel()

	// Overfill the buffer without draining.
	for i := 0; i < defaultSubscriberBuffer+5; i++ {
		publishDoc(b, "doc-1", `{"v":1}`)
	}

	first := recvOrFail(t, ch)
	if first.Seq == 1 {
		t.Fatalf("expected the oldest update to have been evicted")
	}

	// The newest update is still delivered.
	var last Update
	for {
		var done bool
		select {
		case u := <-ch:
			last = u
		default:
			done = true
		}
		if done {
			break
		}
	}
	if last.Seq != int64(defaultSubscriberBuffer+5) {
		t.Fatalf("expected newest seq %d, got %d", defaultSubscriberBuffer+5, last.Seq)
	}
}
