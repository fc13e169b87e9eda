// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package queue_test

import (
	"errors"
	"sync"
	"testing"

	"code.hybscloud.com/tracefab/internal/queue"
)

func TestMPSCBasic(t *testing.T) {
	q := queue.NewMPSC[int](3)

	if q.Cap() != 4 {
		t.Fatalf("Cap: got %d, want 4", q.Cap())
	}

	for i := range 4 {
		v := i + 100
		if err := q.Enqueue(&v); err != nil {
			t.Fatalf("Enqueue(%d): %v", i, err)
		}
	}

	for i := range 4 {
		val, err := q.Dequeue()
		if err != nil {
			t.Fatalf("Dequeue(%d): %v", i, err)
		}
		if val != i+100 {
			t.Fatalf("Dequeue(%d): got %d, want %d", i, val, i+100)
		}
	}

	if _, err := q.Dequeue(); !errors.Is(err, queue.ErrWouldBlock) {
		t.Fatalf("Dequeue on empty: got %v, want ErrWouldBlock", err)
	}
}

func TestMPSCDrainIsHintOnly(t *testing.T) {
	q := queue.NewMPSC[int](4)
	var _ queue.Drainer = q

	v := 1
	if err := q.Enqueue(&v); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	q.Drain()

	got, err := q.Dequeue()
	if err != nil {
		t.Fatalf("Dequeue after Drain: %v", err)
	}
	if got != 1 {
		t.Fatalf("Dequeue after Drain = %d, want 1", got)
	}
}

func TestMPSCConcurrentProducers(t *testing.T) {
	const producers = 8
	const perProducer = 2000
	q := queue.NewMPSC[int](256)

	var wg sync.WaitGroup
	wg.Add(producers)
	for p := range producers {
		go func(p int) {
			defer wg.Done()
			for i := range perProducer {
				v := p*perProducer + i
				for q.Enqueue(&v) != nil {
				}
			}
		}(p)
	}

	seen := make(map[int]bool, producers*perProducer)
	done := make(chan struct{})
	go func() {
		for len(seen) < producers*perProducer {
			v, err := q.Dequeue()
			if err != nil {
				continue
			}
			seen[v] = true
		}
		close(done)
	}()

	wg.Wait()
	<-done

	if len(seen) != producers*perProducer {
		t.Fatalf("saw %d distinct values, want %d", len(seen), producers*perProducer)
	}
}
