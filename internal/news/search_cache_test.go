package news

import (
	"testing"
	"time"
)

func TestCacheLookupMiss(t *testing.T) {
	c := NewSearchCache(0)
	if _, ok := c.Lookup("nope"); ok {
		t.Error("expected miss on empty cache")
	}
}

func TestCacheStoreAndLookup(t *testing.T) {
	c := NewSearchCache(time.Minute)
	c.Store("sig", []Article{{URL: "https://a.com"}})

	hit, ok := c.Lookup("sig")
	if !ok {
		t.Fatal("expected hit")
	}
	articles := hit.([]Article)
	if len(articles) != 1 || articles[0].URL != "https://a.com" {
		t.Errorf("unexpected payload: %v", articles)
	}
}

func TestCacheTTLExpiry(t *testing.T) {
	c := NewSearchCache(5 * time.Minute)
	base := time.Now()
	c.now = func() time.Time { return base }

	c.Store("sig", []Article{{URL: "https://a.com"}})

	c.now = func() time.Time { return base.Add(4 * time.Minute) }
	if _, ok := c.Lookup("sig"); !ok {
		t.Error("expected hit within TTL")
	}

	c.now = func() time.Time { return base.Add(5 * time.Minute) }
	if _, ok := c.Lookup("sig"); ok {
		t.Error("expected miss after TTL elapsed")
	}
}

func TestCacheStoreOverwrites(t *testing.T) {
	c := NewSearchCache(time.Minute)
	c.Store("sig", []Article{{URL: "https://old.com"}})
	c.Store("sig", []Article{{URL: "https://new.com"}})

	hit, ok := c.Lookup("sig")
	if !ok {
		t.Fatal("expected hit")
	}
	if hit.([]Article)[0].URL != "https://new.com" {
		t.Error("expected overwritten payload")
	}
	if c.Stats().Entries != 1 {
		t.Errorf("expected 1 entry, got %d", c.Stats().Entries)
	}
}

func TestCacheClear(t *testing.T) {
	c := NewSearchCache(time.Minute)
	c.Store("a", 1)
	c.Store("b", 2)
	c.Clear()
	if c.Stats().Entries != 0 {
		t.Errorf("expected empty cache after clear, got %d entries", c.Stats().Entries)
	}
	if _, ok := c.Lookup("a"); ok {
		t.Error("expected miss after clear")
	}
}

func TestCacheStats(t *testing.T) {
	c := NewSearchCache(0)
	if c.Stats().TTL != DefaultCacheTTL {
		t.Errorf("expected default TTL, got %v", c.Stats().TTL)
	}
}
