package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/okian/laurel/internal/domain/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func request(id string) Request {
	return Request{
		RequestID:   "req-" + id,
		Ref:         model.ContentRef{Kind: model.KindDocument, ID: id},
		SubmittedAt: time.Now(),
	}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
	if err := q.Enqueue(ctx, request("1")); err != nil {
		t.Fatalf("expected enqueue to succeed, got %v", err)
	}
	if l := q.Len(); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	r := <-q.Dequeue()
	if r.Ref.ID != "1" {
		t.Errorf("expected document 1, got %v", r.Ref)
	}
	if l := q.Len(); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
	_ = q.Close()
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	defer q.Close()
	ctx := context.Background()

	for _, id := range []string{"1", "2"} {
		if err := q.Enqueue(ctx, request(id)); err != nil {
			t.Fatalf("expected enqueue to succeed, got %v", err)
		}
	}
	if err := q.Enqueue(ctx, request("3")); !errors.Is(err, ErrQueueFull) {
		t.Errorf("expected ErrQueueFull, got %v", err)
	}
	if q.Capacity() != 2 {
		t.Errorf("expected capacity 2, got %d", q.Capacity())
	}
}

func TestInMemoryQueue_CancelledContext(t *testing.T) {
	q := NewInMemoryQueue()
	defer q.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := q.Enqueue(ctx, request("1")); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(100))
	ctx := context.Background()
	const producers, perProducer = 10, 100

	var consumed sync.WaitGroup
	counts := make(chan int, producers)
	for i := 0; i < producers; i++ {
		consumed.Add(1)
		go func() {
			defer consumed.Done()
			n := 0
			for range q.Dequeue() {
				n++
			}
			counts <- n
		}()
	}

	var produced sync.WaitGroup
	for i := 0; i < producers; i++ {
		produced.Add(1)
		go func(p int) {
			defer produced.Done()
			for j := 0; j < perProducer; j++ {
				for q.Enqueue(ctx, request(fmt.Sprintf("%d-%d", p, j))) != nil {
					time.Sleep(time.Millisecond)
				}
			}
		}(i)
	}
	produced.Wait()
	_ = q.Close()
	consumed.Wait()
	close(counts)

	total := 0
	for n := range counts {
		total += n
	}
	if total != producers*perProducer {
		t.Errorf("expected %d requests consumed, got %d", producers*perProducer, total)
	}
}

func TestInMemoryQueue_GracefulShutdown(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	if err := q.Enqueue(ctx, request("1")); err != nil {
		t.Fatalf("expected enqueue to succeed, got %v", err)
	}
	if q.IsClosed() {
		t.Error("expected queue to be open initially")
	}
	if err := q.Close(); err != nil {
		t.Errorf("expected close to succeed, got %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to be closed after Close()")
	}
	if err := q.Enqueue(ctx, request("2")); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("expected ErrQueueClosed, got %v", err)
	}

	// Pending requests drain before the channel reports closed.
	r, ok := <-q.Dequeue()
	if !ok || r.Ref.ID != "1" {
		t.Errorf("expected pending request to drain, got %v %v", r, ok)
	}
	if _, ok := <-q.Dequeue(); ok {
		t.Error("expected dequeue channel to be closed")
	}
	if err := q.Close(); err != nil {
		t.Errorf("expected second close to succeed, got %v", err)
	}
}
