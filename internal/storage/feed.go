package storage

import (
	"context"
	"sync"
)

const feedBuffer = 16

// feed broadcasts repository changes to any number of subscribers. Delivery
// is best-effort: a subscriber that stops draining its channel loses entries
// rather than blocking writers.
type feed struct {
	mu   sync.Mutex
	subs map[int]chan Change
	next int
}

func newFeed() *feed {
	return &feed{subs: make(map[int]chan Change)}
}

func (f *feed) subscribe(ctx context.Context) <-chan Change {
	f.mu.Lock()
	id := f.next
	f.next++
	ch := make(chan Change, feedBuffer)
	f.subs[id] = ch
	f.mu.Unlock()

	go func() {
		<-ctx.Done()
		f.mu.Lock()
		delete(f.subs, id)
		close(ch)
		f.mu.Unlock()
	}()

	return ch
}

func (f *feed) publish(change Change) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs {
		select {
		case ch <- change:
		default:
		}
	}
}
