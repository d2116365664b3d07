// Package summarize wraps the Gemini generative backend for article
// enrichment. Every operation is best-effort: backend or parse failures
// degrade to a documented fallback value and are never surfaced as errors.
package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Tanya-123182/digest-microsite/internal/news"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-2.0-flash"

	requestTimeout = 30 * time.Second

	// Prompt-embedding limits; the backend slows down on long inputs.
	summaryContentLimit  = 1500
	analysisContentLimit = 1000

	maxKeyPoints    = 5
	maxDigestInput  = 10
	wordsPerMinute  = 225
	fallbackMinutes = 2
)

const summarizePrompt = `Provide a concise and engaging summary of this news article in %d words or less:

Title: %s
Content: %s

Focus on the key facts and main story. Use clear, concise language and keep a journalistic tone.`

const categorizePrompt = `Based on the title and content, categorize this article into one of these categories:
%s

Title: %s
Content: %s

Respond with only the category name.`

const keyPointsPrompt = `Extract 3-5 key points from this news article:

Title: %s
Content: %s

Format as a bulleted list with concise points.`

const digestPrompt = `Create a brief digest summary of these news articles:

%s

Provide a 2-3 sentence overview highlighting the main themes and most important stories.`

const sentimentPrompt = `Analyze the sentiment of this news article and provide:
1. Overall sentiment (Positive, Negative, Neutral)
2. Confidence level (High, Medium, Low)
3. Brief explanation

Title: %s
Content: %s

Format your response as:
Sentiment: [sentiment]
Confidence: [confidence]
Explanation: [brief explanation]`

// ConfigError reports a missing or placeholder backend key.
type ConfigError struct {
	Name   string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Name, e.Reason)
}

// Sentiment is the parsed result of a sentiment analysis. Fields the model
// failed to emit stay empty.
type Sentiment struct {
	Sentiment   string
	Confidence  string
	Explanation string
}

// Client calls the generative backend.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
	log     *slog.Logger
	sleep   func(time.Duration)
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the backend base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithModel overrides the model name.
func WithModel(m string) Option {
	return func(c *Client) { c.model = m }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l.With("component", "summarize.client") }
}

// NewClient validates the API key and builds a client. Key problems surface
// here as a ConfigError, before any network call.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	key := strings.TrimSpace(apiKey)
	if key == "" {
		return nil, &ConfigError{Name: "GEMINI_API_KEY", Reason: "not set"}
	}
	if strings.HasPrefix(strings.ToLower(key), "your_") {
		return nil, &ConfigError{Name: "GEMINI_API_KEY", Reason: "still set to the placeholder value"}
	}
	c := &Client{
		baseURL: defaultBaseURL,
		apiKey:  key,
		model:   defaultModel,
		http:    &http.Client{Timeout: requestTimeout},
		log:     slog.Default().With("component", "summarize.client"),
		sleep:   time.Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Summarize returns a short summary of the article, or
// "Summary unavailable: <reason>" when the backend fails.
func (c *Client) Summarize(ctx context.Context, title, content string, maxWords int) string {
	if maxWords <= 0 {
		maxWords = 200
	}
	prompt := fmt.Sprintf(summarizePrompt, maxWords, title, truncate(cleanContent(content), summaryContentLimit))
	text, err := c.call(ctx, prompt)
	if err != nil {
		c.log.Warn("summarize failed", "title", title, "error", err)
		return "Summary unavailable: " + err.Error()
	}
	return strings.TrimSpace(text)
}

// Categorize assigns one of the interest categories, falling back to
// "General" on failure or an off-list model answer.
func (c *Client) Categorize(ctx context.Context, title, content string, categories []string) string {
	prompt := fmt.Sprintf(categorizePrompt,
		"- "+strings.Join(categories, "\n- "),
		title, truncate(cleanContent(content), analysisContentLimit))
	text, err := c.call(ctx, prompt)
	if err != nil {
		c.log.Warn("categorize failed", "title", title, "error", err)
		return "General"
	}
	answer := strings.TrimSpace(text)
	for _, cat := range categories {
		if strings.EqualFold(answer, cat) {
			return cat
		}
	}
	return "General"
}

// KeyPoints extracts up to 5 bullet points, falling back to a single
// "Key points unavailable" entry.
func (c *Client) KeyPoints(ctx context.Context, title, content string) []string {
	prompt := fmt.Sprintf(keyPointsPrompt, title, truncate(cleanContent(content), analysisContentLimit))
	text, err := c.call(ctx, prompt)
	if err != nil {
		c.log.Warn("key points failed", "title", title, "error", err)
		return []string{"Key points unavailable"}
	}
	points := parseBullets(text)
	if len(points) == 0 {
		return []string{"Key points unavailable"}
	}
	return points
}

// DigestSummary builds a numbered "category: title" list from the first 10
// articles and asks for a short overview.
func (c *Client) DigestSummary(ctx context.Context, articles []news.Article) string {
	if len(articles) == 0 {
		return "No articles to summarize."
	}
	if len(articles) > maxDigestInput {
		articles = articles[:maxDigestInput]
	}

	var sb strings.Builder
	for i, a := range articles {
		category := a.Category
		if category == "" {
			category = "General"
		}
		title := a.Title
		if title == "" {
			title = "Unknown title"
		}
		fmt.Fprintf(&sb, "%d. %s: %s\n", i+1, category, title)
	}

	text, err := c.call(ctx, fmt.Sprintf(digestPrompt, strings.TrimRight(sb.String(), "\n")))
	if err != nil {
		c.log.Warn("digest summary failed", "articles", len(articles), "error", err)
		return "Digest summary unavailable: " + err.Error()
	}
	return strings.TrimSpace(text)
}

// AnalyzeSentiment parses the model's "Key: value" reply. Fallback is
// {Unknown, Low, "Analysis failed: <reason>"}.
func (c *Client) AnalyzeSentiment(ctx context.Context, title, content string) Sentiment {
	prompt := fmt.Sprintf(sentimentPrompt, title, truncate(cleanContent(content), analysisContentLimit))
	text, err := c.call(ctx, prompt)
	if err != nil {
		c.log.Warn("sentiment analysis failed", "title", title, "error", err)
		return Sentiment{
			Sentiment:   "Unknown",
			Confidence:  "Low",
			Explanation: "Analysis failed: " + err.Error(),
		}
	}
	return parseSentiment(text)
}

// ReadingTime estimates minutes at 225 words per minute, minimum 1.
// Empty content falls back to 2 minutes.
func ReadingTime(content string) int {
	words := len(strings.Fields(content))
	if words == 0 {
		return fallbackMinutes
	}
	minutes := words / wordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

// BatchSummarize attaches a summary, key points, and reading time to each
// article, sleeping delay between articles to respect backend rate limits.
// Per-article failures attach fallback values; the batch never stops early.
func (c *Client) BatchSummarize(ctx context.Context, articles []news.Article, delay time.Duration) []news.Article {
	out := make([]news.Article, 0, len(articles))
	for i, a := range articles {
		a.AISummary = c.Summarize(ctx, a.Title, a.Body(), 0)
		a.KeyPoints = c.KeyPoints(ctx, a.Title, a.Body())
		a.ReadingTime = ReadingTime(a.Body())
		out = append(out, a)
		if i < len(articles)-1 {
			c.sleep(delay)
		}
	}
	return out
}

// parseBullets recovers bullet-style lines from free text, stripping the
// leading marker. At most 5 points are kept.
func parseBullets(text string) []string {
	var points []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "•") && !strings.HasPrefix(line, "*") {
			continue
		}
		point := strings.TrimSpace(strings.TrimLeft(line, "-•* "))
		if point == "" {
			continue
		}
		points = append(points, point)
		if len(points) >= maxKeyPoints {
			break
		}
	}
	return points
}

// parseSentiment picks known keys out of "Key: value" lines. Unknown lines
// are ignored; missing keys stay empty.
func parseSentiment(text string) Sentiment {
	var s Sentiment
	for _, line := range strings.Split(text, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "sentiment":
			s.Sentiment = value
		case "confidence":
			s.Confidence = value
		case "explanation":
			s.Explanation = value
		}
	}
	return s
}

// cleanContent normalizes whitespace and common HTML entities before the
// text is embedded in a prompt.
func cleanContent(content string) string {
	cleaned := strings.Join(strings.Fields(content), " ")
	r := strings.NewReplacer("&nbsp;", " ", "&amp;", "&", "&lt;", "<", "&gt;", ">")
	return r.Replace(cleaned)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// Gemini wire types.

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (c *Client) call(ctx context.Context, prompt string) (string, error) {
	body, _ := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})

	u := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini API error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("gemini API %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var gr geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return "", err
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty gemini response")
	}
	return gr.Candidates[0].Content.Parts[0].Text, nil
}
