package updates

import (
	"sync"

	"resume-studio-backend/internal/shared/metrics"
)

const defaultSubscriberBuffer = 16

// Broker is a typed publish/subscribe channel for document updates.
// It supports any number of subscribers per document and explicit
// unsubscribe; publishing never blocks the publisher. A subscriber that
// falls behind its buffer loses its oldest pending update.
type Broker struct {
	mu      sync.Mutex
	seq     int64
	subs    map[*subscriber]struct{}
	bufSize int
}

type subscriber struct {
	docID string // "" subscribes to every document
	ch    chan Update
}

// NewBroker constructs a Broker.
func NewBroker() *Broker {
	return &Broker{
		subs:    make(map[*subscriber]struct{}),
		bufSize: defaultSubscriberBuffer,
	}
}

// Subscribe registers interest in updates for one document id.
// The returned cancel func must be called when the editing session ends;
// it closes the channel.
func (b *Broker) Subscribe(docID string) (<-chan Update, func()) {
	return b.subscribe(docID)
}

// SubscribeAll registers interest in updates for every document.
func (b *Broker) SubscribeAll() (<-chan Update, func()) {
	return b.subscribe("")
}

func (b *Broker) subscribe(docID string) (<-chan Update, func()) {
	sub := &subscriber{
		docID: docID,
		ch:    make(chan Update, b.bufSize),
	}

	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, sub)
			close(sub.ch)
			b.mu.Unlock()
		})
	}
	return sub.ch, cancel
}

// Publish delivers u to every matching subscriber in publish order.
func (b *Broker) Publish(u Update) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	u.Seq = b.seq

	for sub := range b.subs {
		if sub.docID != "" && sub.docID != u.DocID {
			continue
		}
		select {
		case sub.ch <- u:
		default:
			// Buffer full: evict the oldest pending update for this subscriber.
			select {
			case <-sub.ch:
				metrics.IncUpdatesDropped()
			default:
			}
			select {
			case sub.ch <- u:
			default:
				metrics.IncUpdatesDropped()
			}
		}
	}
}
