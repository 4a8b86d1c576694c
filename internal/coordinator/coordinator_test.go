package coordinator

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
)

func TestBuildExecutesOnce(t *testing.T) {
	c := New[int]()
	var calls int32

	const n = 20
	var wg sync.WaitGroup
	results := make([]int, n)
	wg.Add(n)
	for i := 0; i < n; i++ {
		i := i
		go func() {
			defer wg.Done()
			r, err := c.Build(context.Background(), "App", func() int {
				atomic.AddInt32(&calls, 1)
				return 42
			})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			results[i] = r
		}()
	}
	wg.Wait()

	if calls != 1 {
		t.Fatalf("fn called %d times, want 1", calls)
	}
	for i, r := range results {
		if r != 42 {
			t.Errorf("results[%d] = %d, want 42", i, r)
		}
	}
}

func TestBuildCachesAcrossSeparateCalls(t *testing.T) {
	c := New[string]()
	var calls int32

	fn := func() string {
		atomic.AddInt32(&calls, 1)
		return "ok"
	}

	first, err := c.Build(context.Background(), "Core", fn)
	if err != nil || first != "ok" {
		t.Fatalf("first call: %v, %v", first, err)
	}
	second, err := c.Build(context.Background(), "Core", fn)
	if err != nil || second != "ok" {
		t.Fatalf("second call: %v, %v", second, err)
	}
	if calls != 1 {
		t.Fatalf("fn called %d times, want 1", calls)
	}
}

func TestBuildIsPerKey(t *testing.T) {
	c := New[int]()
	a, _ := c.Build(context.Background(), "A", func() int { return 1 })
	b, _ := c.Build(context.Background(), "B", func() int { return 2 })
	if a != 1 || b != 2 {
		t.Fatalf("a=%d b=%d", a, b)
	}
	if !c.Finished("A") || !c.Finished("B") {
		t.Fatal("expected both keys finished")
	}
	if c.Finished("C") {
		t.Fatal("unstarted key should not report finished")
	}
}
