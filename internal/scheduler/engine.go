package scheduler

import (
	"container/heap"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/example/dropd/internal/notify"
)

var ErrInvalidFireInstant = errors.New("scheduler: invalid fire instant")

type queueItem struct {
	req notify.Request
	gen uint64
}

type priorityQueue []queueItem

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	return pq[i].req.FireAt.Before(pq[j].req.FireAt)
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
}

func (pq *priorityQueue) Push(x any) {
	*pq = append(*pq, x.(queueItem))
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[0 : n-1]
	return item
}

// Engine is the in-process platform notification service for desktop
// sessions: a min-heap of pending notifications drained by a single timer
// loop. Scheduling a notification id that is already pending supersedes the
// older entry; superseded and cancelled entries are dropped lazily when they
// reach the top of the heap.
type Engine struct {
	mu      sync.Mutex
	queue   priorityQueue
	pending map[int32]uint64
	nextGen uint64
	out     chan notify.Request
	wakeup  chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool
	dropped uint64
}

var _ notify.Platform = (*Engine)(nil)

func NewEngine(bufferSize int) *Engine {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Engine{
		queue:   make(priorityQueue, 0),
		pending: make(map[int32]uint64),
		out:     make(chan notify.Request, bufferSize),
		wakeup:  make(chan struct{}, 1),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

// C delivers notifications when their fire instant arrives.
func (e *Engine) C() <-chan notify.Request {
	return e.out
}

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	e.started = true
	heap.Init(&e.queue)
	go e.loop()
}

func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started || e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	close(e.stopCh)
	e.mu.Unlock()
	<-e.doneCh
}

func (e *Engine) Schedule(_ context.Context, req notify.Request) error {
	if req.FireAt.IsZero() {
		return ErrInvalidFireInstant
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return errors.New("scheduler: engine stopped")
	}

	e.nextGen++
	e.pending[req.ID] = e.nextGen
	heap.Push(&e.queue, queueItem{req: req, gen: e.nextGen})
	e.signalWakeup()
	return nil
}

func (e *Engine) Cancel(_ context.Context, id int32) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.pending, id)
	e.signalWakeup()
	return nil
}

func (e *Engine) CancelAll(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending = make(map[int32]uint64)
	e.signalWakeup()
	return nil
}

// PendingCount reports how many distinct notification ids are still live.
func (e *Engine) PendingCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pending)
}

func (e *Engine) Dropped() uint64 {
	return atomic.LoadUint64(&e.dropped)
}

func (e *Engine) loop() {
	defer close(e.doneCh)
	defer close(e.out)

	var timer *time.Timer
	for {
		next, hasNext := e.peek()
		if !hasNext {
			select {
			case <-e.wakeup:
				continue
			case <-e.stopCh:
				return
			}
		}

		wait := time.Until(next.FireAt)
		if wait < 0 {
			wait = 0
		}
		timer = resetTimer(timer, wait)

		select {
		case <-timer.C:
			due := e.popDue(time.Now())
			for _, req := range due {
				select {
				case e.out <- req:
				default:
					atomic.AddUint64(&e.dropped, 1)
				}
			}
		case <-e.wakeup:
			continue
		case <-e.stopCh:
			if timer != nil {
				stopTimer(timer)
			}
			return
		}
	}
}

func (e *Engine) signalWakeup() {
	select {
	case e.wakeup <- struct{}{}:
	default:
	}
}

// peek returns the earliest live queue entry, discarding dead ones.
func (e *Engine) peek() (notify.Request, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for len(e.queue) > 0 {
		head := e.queue[0]
		if e.pending[head.req.ID] == head.gen {
			return head.req, true
		}
		heap.Pop(&e.queue)
	}
	return notify.Request{}, false
}

func (e *Engine) popDue(now time.Time) []notify.Request {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]notify.Request, 0)
	for len(e.queue) > 0 {
		head := e.queue[0]
		if e.pending[head.req.ID] != head.gen {
			heap.Pop(&e.queue)
			continue
		}
		if head.req.FireAt.After(now) {
			break
		}
		item := heap.Pop(&e.queue).(queueItem)
		delete(e.pending, item.req.ID)
		out = append(out, item.req)
	}
	return out
}

func resetTimer(timer *time.Timer, d time.Duration) *time.Timer {
	if timer == nil {
		return time.NewTimer(d)
	}
	stopTimer(timer)
	timer.Reset(d)
	return timer
}

func stopTimer(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
