package pipeline

import (
	"sync"
	"testing"
)

func TestSyncMapBasics(t *testing.T) {
	m := NewSyncMap[string, int]()

	if _, ok := m.Load("a"); ok {
		t.Error("empty map reported a value")
	}

	m.Store("a", 1)
	if v, ok := m.Load("a"); !ok || v != 1 {
		t.Errorf("Load(a) = (%d, %t), want (1, true)", v, ok)
	}

	if v, loaded := m.LoadOrStore("a", 2); !loaded || v != 1 {
		t.Errorf("LoadOrStore(a) = (%d, %t), want existing (1, true)", v, loaded)
	}
	if v, loaded := m.LoadOrStore("b", 2); loaded || v != 2 {
		t.Errorf("LoadOrStore(b) = (%d, %t), want stored (2, false)", v, loaded)
	}

	if m.Len() != 2 {
		t.Errorf("Len = %d, want 2", m.Len())
	}

	m.Delete("a")
	if _, ok := m.Load("a"); ok {
		t.Error("deleted key still present")
	}
}

func TestSyncMapConcurrentLoadOrStore(t *testing.T) {
	m := NewSyncMap[string, *sync.Mutex]()

	var wg sync.WaitGroup
	results := make([]*sync.Mutex, 50)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			lock, _ := m.LoadOrStore("shared", &sync.Mutex{})
			results[i] = lock
		}(i)
	}
	wg.Wait()

	for i := 1; i < len(results); i++ {
		if results[i] != results[0] {
			t.Fatal("concurrent LoadOrStore returned different values for one key")
		}
	}
}
