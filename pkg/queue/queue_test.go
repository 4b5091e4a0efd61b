package queue

import (
	"sync"
	"testing"
	"time"
)

func TestQueueFIFO(t *testing.T) {
	q := New[int]()
	for i := 0; i < 5; i++ {
		if !q.Push(i) {
			t.Fatalf("Push %d rejected on open queue", i)
		}
	}
	if q.Len() != 5 {
		t.Fatalf("Expected length 5, got %d", q.Len())
	}
	for i := 0; i < 5; i++ {
		v, ok := q.TryPop()
		if !ok || v != i {
			t.Fatalf("Expected (%d, true), got (%d, %v)", i, v, ok)
		}
	}
	if _, ok := q.TryPop(); ok {
		t.Fatalf("Expected empty queue")
	}
}

func TestQueueCloseRejectsPushButDrains(t *testing.T) {
	q := New[string]()
	q.Push("a")
	q.Close()
	q.Close()

	if q.Push("b") {
		t.Errorf("Push after Close should be rejected")
	}
	if q.Drained() {
		t.Errorf("Queue with a pending item is not drained")
	}
	if v, ok := q.TryPop(); !ok || v != "a" {
		t.Errorf("Expected pending item after Close, got (%q, %v)", v, ok)
	}
	if !q.Drained() {
		t.Errorf("Expected queue to be drained")
	}
	// Reads after close are "no data", not errors.
	if _, ok := q.TryPop(); ok {
		t.Errorf("Expected no data after drain")
	}
}

func TestQueueReadySignalsAfterLastItemOfClosedQueue(t *testing.T) {
	q := New[int]()
	q.Push(1)
	q.Close()

	<-q.Ready()
	if _, ok := q.TryPop(); !ok {
		t.Fatalf("Expected item")
	}

	select {
	case <-q.Ready():
	case <-time.After(time.Second):
		t.Fatalf("Consumer was not woken to observe the drained queue")
	}
	if !q.Drained() {
		t.Errorf("Expected drained queue")
	}
}

func TestQueueConcurrentProducerConsumer(t *testing.T) {
	const count = 10000
	q := New[int]()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < count; i++ {
			q.Push(i)
		}
		q.Close()
	}()

	next := 0
	for {
		<-q.Ready()
		for {
			v, ok := q.TryPop()
			if !ok {
				break
			}
			if v != next {
				t.Fatalf("Out of order: expected %d, got %d", next, v)
			}
			next++
		}
		if q.Drained() {
			break
		}
	}
	wg.Wait()

	if next != count {
		t.Errorf("Expected %d items, got %d", count, next)
	}
}
