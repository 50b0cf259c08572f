package cache

import (
	"bytes"
	"fmt"
	"sync"
	"testing"
)

func TestMemoryCacheGetSet(t *testing.T) {
	c := NewMemoryCache(10)

	if _, exists, _ := c.Get("missing"); exists {
		t.Fatal("empty cache reported a hit")
	}

	want := TileCacheValue("tile-bytes")
	if err := c.Set("a", want); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, exists, err := c.Get("a")
	if err != nil || !exists {
		t.Fatalf("Get(a) = exists=%v err=%v, want hit", exists, err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Get(a) = %q, want %q", got, want)
	}
}

func TestMemoryCacheInsertionOrderEviction(t *testing.T) {
	c := NewMemoryCache(3)

	for _, key := range []string{"a", "b", "c"} {
		c.Set(key, TileCacheValue(key))
	}

	// Touch "a" with a read. Insertion-order eviction must ignore it and
	// still evict "a" first.
	c.Get("a")

	c.Set("d", TileCacheValue("d"))

	if _, exists, _ := c.Get("a"); exists {
		t.Error("oldest entry survived eviction")
	}
	for _, key := range []string{"b", "c", "d"} {
		if _, exists, _ := c.Get(key); !exists {
			t.Errorf("entry %q evicted unexpectedly", key)
		}
	}
	if got := c.Len(); got != 3 {
		t.Errorf("Len() = %d, want 3", got)
	}
}

func TestMemoryCacheUpdateDoesNotGrow(t *testing.T) {
	c := NewMemoryCache(2)
	c.Set("a", TileCacheValue("1"))
	c.Set("a", TileCacheValue("2"))
	c.Set("b", TileCacheValue("3"))

	if got := c.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2", got)
	}

	got, exists, _ := c.Get("a")
	if !exists || !bytes.Equal(got, TileCacheValue("2")) {
		t.Errorf("Get(a) = %q exists=%v, want updated value", got, exists)
	}
}

func TestMemoryCacheNeverExceedsBound(t *testing.T) {
	const maxTiles = 50
	c := NewMemoryCache(maxTiles)

	for i := 0; i < 500; i++ {
		c.Set(fmt.Sprintf("tile-%d", i), TileCacheValue("x"))
		if got := c.Len(); got > maxTiles {
			t.Fatalf("cache grew to %d entries after %d inserts, bound is %d", got, i+1, maxTiles)
		}
	}
}

func TestMemoryCacheConcurrentAccess(t *testing.T) {
	c := NewMemoryCache(100)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("tile-%d-%d", g, i)
				c.Set(key, TileCacheValue("v"))
				c.Get(key)
			}
		}(g)
	}
	wg.Wait()

	if got := c.Len(); got > 100 {
		t.Errorf("Len() = %d, bound is 100", got)
	}
}
