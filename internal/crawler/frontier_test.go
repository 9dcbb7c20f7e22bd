package crawler

import (
	"fmt"
	"sync"
	"testing"
)

func TestFrontier(t *testing.T) {
	t.Parallel()

	t.Run("FIFO order without duplicates", func(t *testing.T) {
		t.Parallel()

		f := NewFrontier()
		for _, u := range []string{"a", "b", "a", "c", "b"} {
			f.Push(u)
		}

		if f.Len() != 3 {
			t.Fatalf("expected 3 queued URLs, got %d", f.Len())
		}

		var got []string
		for {
			u, ok := f.Pop()
			if !ok {
				break
			}
			got = append(got, u)
		}
		if fmt.Sprint(got) != "[a b c]" {
			t.Errorf("unexpected order %v", got)
		}
	})

	t.Run("popped URLs stay seen", func(t *testing.T) {
		t.Parallel()

		f := NewFrontier()
		f.Push("a")
		f.Pop()

		if f.Push("a") {
			t.Error("a URL must be queued at most once")
		}
		if !f.Seen("a") || f.Seen("b") {
			t.Error("unexpected Seen result")
		}
		if _, ok := f.Pop(); ok {
			t.Error("expected empty frontier")
		}
	})

	t.Run("large queues stay consistent", func(t *testing.T) {
		t.Parallel()

		f := NewFrontier()
		for i := range 5000 {
			f.Push(fmt.Sprint(i))
		}
		for i := range 5000 {
			u, ok := f.Pop()
			if !ok || u != fmt.Sprint(i) {
				t.Fatalf("pop %d = %q, %v", i, u, ok)
			}
			if i%2 == 0 {
				f.Push(fmt.Sprint("extra", i))
			}
		}
		if f.Len() != 2500 {
			t.Errorf("expected 2500 remaining, got %d", f.Len())
		}
	})
}

func TestVisitedSet(t *testing.T) {
	t.Parallel()

	t.Run("marks once", func(t *testing.T) {
		t.Parallel()

		v := NewVisitedSet()
		if !v.MarkIfNotVisited("a") {
			t.Error("first mark should succeed")
		}
		if v.MarkIfNotVisited("a") {
			t.Error("second mark should fail")
		}
		if !v.Contains("a") || v.Contains("b") {
			t.Error("unexpected Contains result")
		}
		if v.Len() != 1 {
			t.Errorf("expected 1 URL, got %d", v.Len())
		}
	})

	t.Run("check and insert is atomic", func(t *testing.T) {
		t.Parallel()

		v := NewVisitedSet()
		var wg sync.WaitGroup
		var mu sync.Mutex
		wins := 0

		for range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if v.MarkIfNotVisited("same") {
					mu.Lock()
					wins++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		if wins != 1 {
			t.Errorf("expected exactly one winner, got %d", wins)
		}
	})
}
