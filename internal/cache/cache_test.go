package cache

import (
	"errors"
	"strconv"
	"sync"
	"testing"
)

func TestCacheGetSet(t *testing.T) {
	c := New[string, int](10)
	c.Set("key1", 42)

	val, ok := c.Get("key1")
	if !ok || val != 42 {
		t.Errorf("Get(key1) = %d, %v; want 42, true", val, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Error("Get(missing) reported a hit")
	}

	c.Set("key1", 7)
	if val, _ := c.Get("key1"); val != 7 {
		t.Errorf("overwrite: got %d, want 7", val)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[string, int](3)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	// Touch a so b becomes the oldest.
	c.Get("a")
	c.Set("d", 4)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	for _, k := range []string{"a", "c", "d"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("%s should still be cached", k)
		}
	}
	if s := c.Stats(); s.Evictions != 1 || s.Len != 3 {
		t.Errorf("Stats = %+v, want 1 eviction and 3 entries", s)
	}
}

func TestCacheGetOrCreate(t *testing.T) {
	c := New[string, int](10)
	calls := 0
	create := func() (int, error) {
		calls++
		return 100, nil
	}

	for range 3 {
		val, err := c.GetOrCreate("k", create)
		if err != nil || val != 100 {
			t.Fatalf("GetOrCreate = %d, %v", val, err)
		}
	}
	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}

	boom := errors.New("boom")
	if _, err := c.GetOrCreate("bad", func() (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
	if _, ok := c.Get("bad"); ok {
		t.Error("failed create must not be cached")
	}
}

func TestCacheDelete(t *testing.T) {
	c := New[string, int](0)
	c.Set("a", 1)

	if !c.Delete("a") {
		t.Error("Delete(a) = false")
	}
	if c.Delete("a") {
		t.Error("second Delete(a) = true")
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0", c.Len())
	}
}

func TestCacheDeleteFunc(t *testing.T) {
	type key struct{ id, version int }
	c := New[key, string](0)
	c.Set(key{1, 0}, "a")
	c.Set(key{1, 1}, "b")
	c.Set(key{2, 0}, "c")

	if n := c.DeleteFunc(func(k key) bool { return k.id == 1 }); n != 2 {
		t.Errorf("DeleteFunc removed %d, want 2", n)
	}
	if _, ok := c.Get(key{2, 0}); !ok {
		t.Error("unrelated entry was removed")
	}
}

func TestCacheClearAndStats(t *testing.T) {
	c := New[int, int](5)
	for i := range 5 {
		c.Set(i, i)
	}
	c.Get(0)
	c.Get(99)

	s := c.Stats()
	if s.Hits != 1 || s.Misses != 1 || s.HitRate != 0.5 || s.Capacity != 5 {
		t.Errorf("Stats = %+v", s)
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len after Clear = %d", c.Len())
	}
	c.Set(1, 1)
	if v, ok := c.Get(1); !ok || v != 1 {
		t.Error("cache unusable after Clear")
	}
}

func TestCacheConcurrent(t *testing.T) {
	c := New[string, int](50)
	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				k := strconv.Itoa((g*31 + i) % 80)
				c.Set(k, i)
				c.Get(k)
			}
		}()
	}
	wg.Wait()

	if c.Len() > 50 {
		t.Errorf("Len = %d exceeds limit", c.Len())
	}
}

func TestLRUListOrder(t *testing.T) {
	l := newLRUList[int]()
	n1 := l.PushFront(1)
	l.PushFront(2)
	l.PushFront(3)
	l.MoveToFront(n1)

	want := []int{2, 3, 1}
	for _, w := range want {
		k, ok := l.RemoveOldest()
		if !ok || k != w {
			t.Fatalf("RemoveOldest = %d, %v; want %d", k, ok, w)
		}
	}
	if _, ok := l.RemoveOldest(); ok {
		t.Error("empty list returned a key")
	}
	if l.Len() != 0 {
		t.Errorf("Len = %d, want 0", l.Len())
	}
}
