package sequence

import (
	"sync"
	"testing"
)

func TestSequencerMonotonic(t *testing.T) {
	s := New(0)
	if got := s.Next(); got != 1 {
		t.Fatalf("first id = %d, want 1", got)
	}
	if got := s.Next(); got != 2 {
		t.Fatalf("second id = %d, want 2", got)
	}
	if s.Current() != 2 {
		t.Errorf("Current = %d, want 2", s.Current())
	}
}

func TestSequencerStart(t *testing.T) {
	s := New(41)
	if got := s.Next(); got != 42 {
		t.Errorf("id after start=41 is %d, want 42", got)
	}
}

func TestSequencerConcurrentUnique(t *testing.T) {
	s := New(0)
	const workers, per = 8, 1000

	var mu sync.Mutex
	seen := make(map[uint64]bool, workers*per)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids := make([]uint64, 0, per)
			for i := 0; i < per; i++ {
				ids = append(ids, s.Next())
			}
			mu.Lock()
			defer mu.Unlock()
			for _, id := range ids {
				if seen[id] {
					t.Errorf("duplicate id %d", id)
				}
				seen[id] = true
			}
		}()
	}
	wg.Wait()

	if len(seen) != workers*per {
		t.Errorf("issued %d unique ids, want %d", len(seen), workers*per)
	}
}
