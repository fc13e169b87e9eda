// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tracefab

import (
	"sync"
	"testing"
)

func TestEventSiteRegistersOnce(t *testing.T) {
	site := NewEventSite("hello {}", 1)

	var calls int
	var mu sync.Mutex
	publish := func(a *EventAttributes) {
		mu.Lock()
		calls++
		mu.Unlock()
	}

	var wg sync.WaitGroup
	results := make([]*EventAttributes, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = site.EnsureRegistered(publish)
		}(i)
	}
	wg.Wait()

	if calls != 1 {
		t.Fatalf("publish called %d times, want exactly 1", calls)
	}
	for i, r := range results {
		if r != results[0] {
			t.Fatalf("result[%d] = %p, want all goroutines to observe the same *EventAttributes (%p)", i, r, results[0])
		}
	}
	if results[0].ArgCount != 1 {
		t.Fatalf("ArgCount = %d, want 1", results[0].ArgCount)
	}
	if results[0].MessageFormat != "hello {}" {
		t.Fatalf("MessageFormat = %q, want %q", results[0].MessageFormat, "hello {}")
	}
}

func TestEventSiteDistinctIDs(t *testing.T) {
	a := NewEventSite("a {}", 1)
	b := NewEventSite("b {}", 1)

	attrA := a.EnsureRegistered(func(*EventAttributes) {})
	attrB := b.EnsureRegistered(func(*EventAttributes) {})

	if attrA.ID == attrB.ID {
		t.Fatalf("two distinct event sites got the same attribute id %d", attrA.ID)
	}
}

func TestAttributeRegistryLookup(t *testing.T) {
	r := newAttributeRegistry()
	if _, ok := r.lookup(1); ok {
		t.Fatalf("lookup on empty registry must report false")
	}

	attr := &EventAttributes{ID: 1, MessageFormat: "x"}
	r.publish(attr)

	got, ok := r.lookup(1)
	if !ok || got != attr {
		t.Fatalf("lookup(1) = (%v, %v), want (%v, true)", got, ok, attr)
	}
}
