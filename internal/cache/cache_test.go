package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/Tanya-123182/digest-microsite/internal/news"
)

func testDB(t *testing.T) (*Cache, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, dbPath
}

func sampleArticles() []news.Article {
	return []news.Article{
		{URL: "https://a.com/1", Title: "Chips everywhere", Description: "silicon news", Source: "Wired", Category: "Technology", Keyword: "hardware"},
		{URL: "https://b.com/2", Title: "Markets rally", Description: "stocks up on earnings", Source: "FT", Category: "Business", Keyword: "markets"},
		{URL: "https://c.com/3", Title: "New exoplanet found", Description: "a distant world", Source: "Nature", Category: "Science", Keyword: "space"},
	}
}

func TestUpsertAndQuery(t *testing.T) {
	db, _ := testDB(t)
	if err := db.UpsertArticles(sampleArticles(), time.Now()); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := db.Articles(QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 articles, got %d", len(got))
	}
}

func TestUpsertUpdatesExisting(t *testing.T) {
	db, _ := testDB(t)
	articles := sampleArticles()
	if err := db.UpsertArticles(articles, time.Now()); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	articles[0].AISummary = "A short summary."
	articles[0].KeyPoints = []string{"one", "two"}
	articles[0].ReadingTime = 3
	if err := db.UpsertArticles(articles[:1], time.Now()); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, ok, err := db.Get("https://a.com/1")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got.AISummary != "A short summary." || got.ReadingTime != 3 {
		t.Errorf("enrichment not updated: %+v", got)
	}
	if len(got.KeyPoints) != 2 || got.KeyPoints[0] != "one" {
		t.Errorf("key points did not round-trip: %v", got.KeyPoints)
	}

	all, err := db.Articles(QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 articles after upsert, got %d", len(all))
	}
}

func TestQueryByCategory(t *testing.T) {
	db, _ := testDB(t)
	if err := db.UpsertArticles(sampleArticles(), time.Now()); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := db.Articles(QueryOpts{Category: "Business"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 1 || got[0].URL != "https://b.com/2" {
		t.Errorf("unexpected result: %v", got)
	}
}

func TestQuerySearch(t *testing.T) {
	db, _ := testDB(t)
	if err := db.UpsertArticles(sampleArticles(), time.Now()); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := db.Articles(QueryOpts{Search: "exoplanet"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 1 || got[0].Category != "Science" {
		t.Errorf("unexpected result: %v", got)
	}
}

func TestQuerySince(t *testing.T) {
	db, _ := testDB(t)
	old := sampleArticles()[:1]
	recent := sampleArticles()[1:]
	if err := db.UpsertArticles(old, time.Now().Add(-48*time.Hour)); err != nil {
		t.Fatalf("upsert old: %v", err)
	}
	if err := db.UpsertArticles(recent, time.Now()); err != nil {
		t.Fatalf("upsert recent: %v", err)
	}

	got, err := db.Articles(QueryOpts{Since: time.Now().Add(-24 * time.Hour)})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 recent articles, got %d", len(got))
	}
}

func TestGetMissing(t *testing.T) {
	db, _ := testDB(t)
	_, ok, err := db.Get("https://nowhere.com")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Error("expected miss for unknown url")
	}
}

func TestSkipsArticlesWithoutURL(t *testing.T) {
	db, _ := testDB(t)
	if err := db.UpsertArticles([]news.Article{{Title: "no url"}}, time.Now()); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, err := db.Articles(QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected url-less article skipped, got %d rows", len(got))
	}
}

func TestPrune(t *testing.T) {
	db, _ := testDB(t)
	if err := db.UpsertArticles(sampleArticles()[:1], time.Now().Add(-10*24*time.Hour)); err != nil {
		t.Fatalf("upsert old: %v", err)
	}
	if err := db.UpsertArticles(sampleArticles()[1:], time.Now()); err != nil {
		t.Fatalf("upsert recent: %v", err)
	}

	deleted, err := db.Prune(7 * 24 * time.Hour)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 deleted, got %d", deleted)
	}

	got, err := db.Articles(QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 remaining, got %d", len(got))
	}
}

func TestStats(t *testing.T) {
	db, dbPath := testDB(t)
	if err := db.UpsertArticles(sampleArticles(), time.Now()); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	count, size, err := db.Stats(dbPath)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
	if size == 0 {
		t.Error("expected non-zero db size")
	}
}

func TestNeedsRefresh(t *testing.T) {
	db, _ := testDB(t)
	if !db.NeedsRefresh(time.Hour) {
		t.Error("fresh db should need refresh")
	}
	if err := db.SetLastRefresh(); err != nil {
		t.Fatalf("set last refresh: %v", err)
	}
	if db.NeedsRefresh(time.Hour) {
		t.Error("should not need refresh right after SetLastRefresh")
	}
	if !db.NeedsRefresh(0) {
		t.Error("zero interval should always need refresh")
	}
}
