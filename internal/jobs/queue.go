package jobs

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrQueueEmpty  = errors.New("queue is empty")
	ErrQueueClosed = errors.New("queue is closed")
)

// Queue hands pending job ids to workers in FIFO order. Pop blocks until
// a job arrives, the queue closes or the context is cancelled.
type Queue struct {
	ids    []string
	mu     sync.Mutex
	cond   *sync.Cond
	closed bool
}

func NewQueue() *Queue {
	q := &Queue{ids: make([]string, 0)}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *Queue) Push(id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}

	q.ids = append(q.ids, id)
	q.cond.Signal()
	return nil
}

func (q *Queue) Pop(ctx context.Context) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.ids) == 0 && !q.closed {
		done := make(chan struct{})
		go func() {
			q.cond.Wait()
			close(done)
		}()

		select {
		case <-ctx.Done():
			q.cond.Signal()
			return "", ctx.Err()
		case <-done:
		}
	}

	if q.closed && len(q.ids) == 0 {
		return "", ErrQueueClosed
	}
	if len(q.ids) == 0 {
		return "", ErrQueueEmpty
	}

	id := q.ids[0]
	q.ids = q.ids[1:]
	return id, nil
}

func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ids)
}

func (q *Queue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	q.cond.Broadcast()
	return nil
}
