package news

// Article is a normalized news record. Identity is the URL: two articles with
// equal URLs are the same article regardless of title or source.
type Article struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Content     string `json:"content,omitempty"`
	Source      string `json:"source,omitempty"`
	PublishedAt string `json:"published_at,omitempty"`
	URL         string `json:"url"`
	ImageURL    string `json:"image_url,omitempty"`

	// Assigned by the caller, not the provider.
	Category string `json:"category,omitempty"`
	Keyword  string `json:"keyword,omitempty"`

	// Enrichment attached by the summarizer.
	AISummary   string   `json:"ai_summary,omitempty"`
	KeyPoints   []string `json:"key_points,omitempty"`
	ReadingTime int      `json:"reading_time,omitempty"`
}

// Body returns the best available summarization input for the article.
func (a Article) Body() string {
	if a.Description != "" {
		return a.Description
	}
	return a.Content
}

// Source is a news outlet as listed by the provider.
type Source struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
	Category    string `json:"category,omitempty"`
	Language    string `json:"language,omitempty"`
	Country     string `json:"country,omitempty"`
}

// Provider wire types.

type apiSource struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type apiArticle struct {
	Source      apiSource `json:"source"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	URL         string    `json:"url"`
	URLToImage  string    `json:"urlToImage"`
	PublishedAt string    `json:"publishedAt"`
}

type apiResponse struct {
	Status       string       `json:"status"`
	Code         string       `json:"code"`
	Message      string       `json:"message"`
	TotalResults int          `json:"totalResults"`
	Articles     []apiArticle `json:"articles"`
	Sources      []Source     `json:"sources"`
}

func (a apiArticle) normalize() Article {
	return Article{
		Title:       a.Title,
		Description: a.Description,
		Content:     a.Content,
		Source:      a.Source.Name,
		PublishedAt: a.PublishedAt,
		URL:         a.URL,
		ImageURL:    a.URLToImage,
	}
}
