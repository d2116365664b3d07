package news

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Tanya-123182/digest-microsite/internal/interest"
)

const articlesBody = `{
	"status": "ok",
	"totalResults": 2,
	"articles": [
		{"source": {"id": "wired", "name": "Wired"}, "title": "Post A", "description": "Desc A",
		 "url": "https://example.com/a", "urlToImage": "https://example.com/a.png", "publishedAt": "2025-03-09T10:00:00Z"},
		{"source": {"id": null, "name": "Ars"}, "title": "Post B", "content": "Body B",
		 "url": "https://example.com/b", "publishedAt": "2025-03-09T09:00:00Z"}
	]
}`

func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient("test-key", WithBaseURL(srv.URL), WithCallDelay(0))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	c.sleep = func(time.Duration) {}
	return c, srv
}

func TestNewClientRejectsMissingKey(t *testing.T) {
	if _, err := NewClient(""); err == nil {
		t.Fatal("expected error for empty key")
	}
	_, err := NewClient("your_news_api_key_here")
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError for placeholder key, got %v", err)
	}
}

func TestSearchNormalizesArticles(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "ai" {
			t.Errorf("expected q=ai, got %q", got)
		}
		if got := r.URL.Query().Get("sortBy"); got != "publishedAt" {
			t.Errorf("expected default sortBy, got %q", got)
		}
		if r.URL.Query().Get("apiKey") == "" {
			t.Error("expected apiKey parameter")
		}
		w.Write([]byte(articlesBody))
	}))

	articles, err := c.Search(context.Background(), SearchParams{Query: "ai"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(articles))
	}
	if articles[0].Source != "Wired" || articles[0].URL != "https://example.com/a" {
		t.Errorf("unexpected first article: %+v", articles[0])
	}
	if articles[1].Body() != "Body B" {
		t.Errorf("expected content fallback body, got %q", articles[1].Body())
	}
}

func TestSearchUsesCache(t *testing.T) {
	calls := 0
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(articlesBody))
	}))

	first, err := c.Search(context.Background(), SearchParams{Query: "ai"})
	if err != nil {
		t.Fatalf("first search: %v", err)
	}
	second, err := c.Search(context.Background(), SearchParams{Query: "ai"})
	if err != nil {
		t.Fatalf("second search: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 provider call, got %d", calls)
	}
	if len(first) != len(second) || first[0].URL != second[0].URL {
		t.Error("expected identical cached result")
	}

	// Different parameters miss the cache.
	if _, err := c.Search(context.Background(), SearchParams{Query: "ai", PageSize: 5}); err != nil {
		t.Fatalf("third search: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 provider calls after parameter change, got %d", calls)
	}
}

func TestSearchCacheExpires(t *testing.T) {
	calls := 0
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(articlesBody))
	}))

	base := time.Now()
	c.cache.now = func() time.Time { return base }

	if _, err := c.Search(context.Background(), SearchParams{Query: "ai"}); err != nil {
		t.Fatalf("first search: %v", err)
	}

	c.cache.now = func() time.Time { return base.Add(DefaultCacheTTL + time.Second) }
	if _, err := c.Search(context.Background(), SearchParams{Query: "ai"}); err != nil {
		t.Fatalf("second search: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected a fresh provider call after TTL, got %d calls", calls)
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		status int
		check  func(error) bool
	}{
		{http.StatusUnauthorized, func(err error) bool { var e *AuthError; return errors.As(err, &e) }},
		{http.StatusTooManyRequests, func(err error) bool { var e *RateLimitError; return errors.As(err, &e) }},
		{http.StatusInternalServerError, func(err error) bool { var e *ProviderError; return errors.As(err, &e) }},
	}
	for _, tt := range tests {
		c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))
		_, err := c.Search(context.Background(), SearchParams{Query: "ai"})
		if err == nil {
			t.Fatalf("status %d: expected error", tt.status)
		}
		if !tt.check(err) {
			t.Errorf("status %d: wrong error type: %v", tt.status, err)
		}
	}
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c, err := NewClient("test-key", WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	_, err = c.Search(context.Background(), SearchParams{Query: "ai"})
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}

func TestTopHeadlines(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("country"); got != "us" {
			t.Errorf("expected default country us, got %q", got)
		}
		if got := r.URL.Query().Get("category"); got != "technology" {
			t.Errorf("expected category technology, got %q", got)
		}
		w.Write([]byte(articlesBody))
	}))

	articles, err := c.TopHeadlines(context.Background(), HeadlinesParams{Category: "technology"})
	if err != nil {
		t.Fatalf("TopHeadlines: %v", err)
	}
	if len(articles) != 2 {
		t.Errorf("expected 2 articles, got %d", len(articles))
	}
}

func TestSources(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok","sources":[{"id":"wired","name":"Wired","category":"technology"}]}`))
	}))

	sources, err := c.Sources(context.Background(), SourceParams{})
	if err != nil {
		t.Fatalf("Sources: %v", err)
	}
	if len(sources) != 1 || sources[0].Name != "Wired" {
		t.Errorf("unexpected sources: %v", sources)
	}
}

func TestFetchByInterestsTagsArticles(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("pageSize"); got != "5" {
			t.Errorf("expected pageSize=5, got %q", got)
		}
		if r.URL.Query().Get("from") == "" {
			t.Error("expected a from date")
		}
		w.Write([]byte(articlesBody))
	}))

	articles := c.FetchByInterests(context.Background(), []string{"Technology"}, interest.Daily)
	// 2 keywords x 2 articles each
	if len(articles) != 4 {
		t.Fatalf("expected 4 articles, got %d", len(articles))
	}
	for _, a := range articles {
		if a.Category != "Technology" {
			t.Errorf("expected category tag, got %q", a.Category)
		}
		if a.Keyword == "" {
			t.Error("expected keyword tag")
		}
	}
	if articles[0].Keyword == articles[2].Keyword {
		t.Error("expected distinct keywords across the fan-out")
	}
}

func TestFetchByInterestsPartialFailure(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "artificial intelligence" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(articlesBody))
	}))

	articles := c.FetchByInterests(context.Background(), []string{"Technology", "Business"}, interest.Daily)
	// One of Technology's two keywords fails; Business contributes 2x2.
	if len(articles) != 6 {
		t.Fatalf("expected 6 articles from surviving calls, got %d", len(articles))
	}
}

func TestFetchByInterestsSkipsUnknownInterest(t *testing.T) {
	calls := 0
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(articlesBody))
	}))

	articles := c.FetchByInterests(context.Background(), []string{"Astrology"}, interest.Weekly)
	if calls != 0 {
		t.Errorf("expected no provider calls for unknown interest, got %d", calls)
	}
	if len(articles) != 0 {
		t.Errorf("expected no articles, got %d", len(articles))
	}
}

func TestProviderErrorBody(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"error","code":"parameterInvalid","message":"bad from date"}`))
	}))

	_, err := c.Search(context.Background(), SearchParams{Query: "ai", From: "not-a-date"})
	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProviderError for status=error body, got %v", err)
	}
}
