package name

import (
	"strings"
	"sync"
	"testing"
)

func TestGenerate(t *testing.T) {
	n := Generate()

	// Check format
	if !strings.HasPrefix(n, Prefix) {
		t.Errorf("expected name to start with %q, got %s", Prefix, n)
	}
	if !strings.HasSuffix(n, Extension) {
		t.Errorf("expected name to end with %q, got %s", Extension, n)
	}
	if got := len(n) - len(Prefix) - len(Extension); got != 32 {
		t.Errorf("expected 32 hex chars, got %d in %s", got, n)
	}

	// Check uniqueness
	n2 := Generate()
	if n == n2 {
		t.Error("expected different names for consecutive calls")
	}
}

func TestGenerate_Uniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		n := Generate()
		if seen[n] {
			t.Errorf("duplicate name generated: %s", n)
		}
		seen[n] = true
	}
}

func TestGenerate_ConcurrentUniqueness(t *testing.T) {
	const workers, perWorker = 8, 250

	var (
		mu   sync.Mutex
		seen = make(map[string]struct{}, workers*perWorker)
		wg   sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]string, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				local = append(local, Generate())
			}
			mu.Lock()
			for _, n := range local {
				seen[n] = struct{}{}
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(seen) != workers*perWorker {
		t.Errorf("expected %d distinct names, got %d", workers*perWorker, len(seen))
	}
}
