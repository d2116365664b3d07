// Package news wraps the NewsAPI-style search provider: query building,
// response normalization, typed error classification, and a TTL cache in
// front of every endpoint.
package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Tanya-123182/digest-microsite/internal/interest"
)

const (
	defaultBaseURL = "https://newsapi.org/v2"

	requestTimeout = 10 * time.Second

	// maxPageSize caps every list request.
	maxPageSize = 20

	// interestPageSize keeps the per-keyword fan-out small.
	interestPageSize = 5

	// interestCallDelay spaces out provider calls during an interest fetch.
	interestCallDelay = 100 * time.Millisecond
)

// Client talks to the news search provider.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	cache   *SearchCache
	log     *slog.Logger

	callDelay time.Duration
	sleep     func(time.Duration)
	now       func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the provider base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l.With("component", "news.client") }
}

// WithCacheTTL sets the search-cache TTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) { c.cache = NewSearchCache(ttl) }
}

// WithCallDelay sets the pause between provider calls in FetchByInterests.
func WithCallDelay(d time.Duration) Option {
	return func(c *Client) { c.callDelay = d }
}

// NewClient validates the API key and builds a client. A missing or
// placeholder key is a ConfigError: it must surface before any network call.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if err := checkKey("NEWS_API_KEY", apiKey); err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   defaultBaseURL,
		apiKey:    apiKey,
		http:      &http.Client{Timeout: requestTimeout},
		cache:     NewSearchCache(DefaultCacheTTL),
		log:       slog.Default().With("component", "news.client"),
		callDelay: interestCallDelay,
		sleep:     time.Sleep,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func checkKey(name, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return &ConfigError{Name: name, Reason: "not set"}
	}
	if strings.HasPrefix(strings.ToLower(key), "your_") {
		return &ConfigError{Name: name, Reason: "still set to the placeholder value"}
	}
	return nil
}

// Cache exposes the search cache for stats and manual clearing.
func (c *Client) Cache() *SearchCache { return c.cache }

// SearchParams filters an everything-endpoint query. Zero values fall back
// to the provider defaults applied in normalize.
type SearchParams struct {
	Query    string
	From     string // YYYY-MM-DD, optional
	SortBy   string
	Language string
	PageSize int
}

func (p *SearchParams) normalize() {
	if p.SortBy == "" {
		p.SortBy = "publishedAt"
	}
	if p.Language == "" {
		p.Language = "en"
	}
	if p.PageSize <= 0 || p.PageSize > maxPageSize {
		p.PageSize = maxPageSize
	}
}

// Search queries the everything endpoint, consulting the cache first.
func (c *Client) Search(ctx context.Context, p SearchParams) ([]Article, error) {
	p.normalize()
	sig := fmt.Sprintf("search|%s|%s|%s|%s|%d", p.Query, p.From, p.SortBy, p.Language, p.PageSize)
	if hit, ok := c.cache.Lookup(sig); ok {
		return hit.([]Article), nil
	}

	params := url.Values{}
	params.Set("q", p.Query)
	params.Set("sortBy", p.SortBy)
	params.Set("language", p.Language)
	params.Set("pageSize", fmt.Sprint(p.PageSize))
	if p.From != "" {
		params.Set("from", p.From)
	}

	var resp apiResponse
	if err := c.get(ctx, "everything", params, &resp); err != nil {
		return nil, err
	}
	articles := make([]Article, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		articles = append(articles, a.normalize())
	}
	c.cache.Store(sig, articles)
	return articles, nil
}

// HeadlinesParams filters a top-headlines query.
type HeadlinesParams struct {
	Country  string
	Category string // optional
	PageSize int
}

func (p *HeadlinesParams) normalize() {
	if p.Country == "" {
		p.Country = "us"
	}
	if p.PageSize <= 0 || p.PageSize > maxPageSize {
		p.PageSize = maxPageSize
	}
}

// TopHeadlines queries the top-headlines endpoint, consulting the cache first.
func (c *Client) TopHeadlines(ctx context.Context, p HeadlinesParams) ([]Article, error) {
	p.normalize()
	sig := fmt.Sprintf("headlines|%s|%s|%d", p.Country, p.Category, p.PageSize)
	if hit, ok := c.cache.Lookup(sig); ok {
		return hit.([]Article), nil
	}

	params := url.Values{}
	params.Set("country", p.Country)
	params.Set("pageSize", fmt.Sprint(p.PageSize))
	if p.Category != "" {
		params.Set("category", p.Category)
	}

	var resp apiResponse
	if err := c.get(ctx, "top-headlines", params, &resp); err != nil {
		return nil, err
	}
	articles := make([]Article, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		articles = append(articles, a.normalize())
	}
	c.cache.Store(sig, articles)
	return articles, nil
}

// SourceParams filters a source listing.
type SourceParams struct {
	Category string // optional
	Language string
	Country  string
}

func (p *SourceParams) normalize() {
	if p.Language == "" {
		p.Language = "en"
	}
	if p.Country == "" {
		p.Country = "us"
	}
}

// Sources lists available outlets, consulting the cache first.
func (c *Client) Sources(ctx context.Context, p SourceParams) ([]Source, error) {
	p.normalize()
	sig := fmt.Sprintf("sources|%s|%s|%s", p.Category, p.Language, p.Country)
	if hit, ok := c.cache.Lookup(sig); ok {
		return hit.([]Source), nil
	}

	params := url.Values{}
	params.Set("language", p.Language)
	params.Set("country", p.Country)
	if p.Category != "" {
		params.Set("category", p.Category)
	}

	var resp apiResponse
	if err := c.get(ctx, "top-headlines/sources", params, &resp); err != nil {
		return nil, err
	}
	sources := resp.Sources
	if sources == nil {
		sources = []Source{}
	}
	c.cache.Store(sig, sources)
	return sources, nil
}

// FetchByInterests expands each known interest into its search keywords and
// queries them over the frequency window, tagging every article with the
// interest and keyword that produced it. Failing sub-requests are logged and
// skipped; partial results are fine, and total failure yields an empty slice.
func (c *Client) FetchByInterests(ctx context.Context, interests []string, freq interest.Frequency) []Article {
	from := interest.WindowStart(freq, c.now())

	var all []Article
	for _, cat := range interests {
		if !interest.Valid(cat) {
			c.log.Warn("skipping unknown interest", "interest", cat)
			continue
		}
		for _, kw := range interest.SearchKeywords(cat) {
			articles, err := c.Search(ctx, SearchParams{
				Query:    kw,
				From:     from,
				PageSize: interestPageSize,
			})
			if err != nil {
				c.log.Warn("interest search failed", "interest", cat, "keyword", kw, "error", err)
				continue
			}
			for _, a := range articles {
				a.Category = cat
				a.Keyword = kw
				all = append(all, a)
			}
			c.sleep(c.callDelay)
		}
	}
	return all
}

// get issues a provider request and classifies failures into the error
// taxonomy: 401 auth, 429 rate limit, transport, or generic provider error.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out *apiResponse) error {
	params.Set("apiKey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return &AuthError{}
	case http.StatusTooManyRequests:
		return &RateLimitError{}
	default:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &ProviderError{Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	if out.Status == "error" {
		return &ProviderError{Status: resp.StatusCode, Body: out.Message}
	}
	return nil
}
