// Package store persists per-user state as JSON flat files: preferences,
// saved articles, ratings, and a capped analytics log. Every operation is
// read-whole/write-whole with no locking; concurrent writers race with
// last-writer-wins semantics, an accepted limitation of the single-user
// design. I/O failures are logged and degrade to safe defaults, never
// propagated as errors.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/Tanya-123182/digest-microsite/internal/news"
)

const (
	preferencesFile   = "user_preferences.json"
	savedArticlesFile = "saved_articles.json"
	ratingsFile       = "ratings.json"
	analyticsFile     = "analytics.json"

	// maxAnalyticsEvents bounds the analytics log; oldest entries are
	// evicted first.
	maxAnalyticsEvents = 100
)

// Preferences holds the user's topic selections and display options.
// Saves replace the whole record; there is no partial patching.
type Preferences struct {
	Interests     []string `json:"interests"`
	Frequency     string   `json:"frequency"`
	Notifications bool     `json:"notifications"`
	Theme         string   `json:"theme"`
	LastUpdated   string   `json:"last_updated,omitempty"`
}

// DefaultPreferences is what a fresh user gets.
func DefaultPreferences() Preferences {
	return Preferences{
		Interests:     []string{},
		Frequency:     "daily",
		Notifications: true,
		Theme:         "light",
	}
}

// SavedArticle is an article plus the time it was saved.
type SavedArticle struct {
	news.Article
	SavedAt string `json:"saved_at"`
}

// Rating is a 1-5 score for an article, keyed by URL in the store.
type Rating struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
	RatedAt string `json:"rated_at"`
}

// Event is one analytics log entry.
type Event struct {
	Name      string         `json:"name"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp string         `json:"timestamp"`
}

// Stats is the derived view over the other stores, recomputed on demand.
type Stats struct {
	TotalSavedArticles int      `json:"total_saved_articles"`
	TotalRatings       int      `json:"total_ratings"`
	AverageRating      float64  `json:"average_rating"`
	FavoriteCategory   string   `json:"favorite_category"`
	Interests          []string `json:"interests"`
	Frequency          string   `json:"frequency"`
	LastActivity       string   `json:"last_activity,omitempty"`
}

// Store is a file-backed user-data store rooted at a data directory.
type Store struct {
	dir string
	log *slog.Logger
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l.With("component", "store") }
}

// New creates a store rooted at dir, creating the directory if needed.
func New(dir string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	s := &Store{
		dir: dir,
		log: slog.Default().With("component", "store"),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Dir returns the data directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *Store) timestamp() string {
	return s.now().Format(time.RFC3339)
}

// readJSON loads a file into out. A missing file is not an error: out keeps
// its preset default.
func (s *Store) readJSON(name string, out any) error {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	return nil
}

func (s *Store) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	if err := os.WriteFile(s.path(name), data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// LoadPreferences returns the stored preferences, or defaults if the file
// is absent or unreadable.
func (s *Store) LoadPreferences() Preferences {
	prefs := DefaultPreferences()
	if err := s.readJSON(preferencesFile, &prefs); err != nil {
		s.log.Warn("loading preferences", "error", err)
		return DefaultPreferences()
	}
	return prefs
}

// SavePreferences stamps last_updated and overwrites the whole record.
func (s *Store) SavePreferences(p Preferences) bool {
	p.LastUpdated = s.timestamp()
	if err := s.writeJSON(preferencesFile, p); err != nil {
		s.log.Warn("saving preferences", "error", err)
		return false
	}
	return true
}

// SaveArticle appends the article to the saved list, stamping saved_at.
// Returns false without writing when an entry with the same URL exists.
func (s *Store) SaveArticle(a news.Article) bool {
	saved := s.SavedArticles()
	for _, existing := range saved {
		if existing.URL == a.URL {
			return false
		}
	}
	saved = append(saved, SavedArticle{Article: a, SavedAt: s.timestamp()})
	if err := s.writeJSON(savedArticlesFile, saved); err != nil {
		s.log.Warn("saving article", "url", a.URL, "error", err)
		return false
	}
	return true
}

// SavedArticles returns the saved list in insertion order.
func (s *Store) SavedArticles() []SavedArticle {
	var saved []SavedArticle
	if err := s.readJSON(savedArticlesFile, &saved); err != nil {
		s.log.Warn("loading saved articles", "error", err)
		return []SavedArticle{}
	}
	if saved == nil {
		return []SavedArticle{}
	}
	return saved
}

// RemoveSavedArticle drops every entry matching url. Removing an absent URL
// is not an error.
func (s *Store) RemoveSavedArticle(url string) bool {
	saved := s.SavedArticles()
	kept := saved[:0]
	for _, a := range saved {
		if a.URL != url {
			kept = append(kept, a)
		}
	}
	if err := s.writeJSON(savedArticlesFile, kept); err != nil {
		s.log.Warn("removing saved article", "url", url, "error", err)
		return false
	}
	return true
}

// SaveRating upserts a 1-5 rating for url, stamping rated_at.
func (s *Store) SaveRating(url string, rating int, comment string) bool {
	if rating < 1 || rating > 5 {
		s.log.Warn("rating out of range", "url", url, "rating", rating)
		return false
	}
	ratings := s.Ratings()
	ratings[url] = Rating{Rating: rating, Comment: comment, RatedAt: s.timestamp()}
	if err := s.writeJSON(ratingsFile, ratings); err != nil {
		s.log.Warn("saving rating", "url", url, "error", err)
		return false
	}
	return true
}

// Ratings returns all ratings keyed by article URL.
func (s *Store) Ratings() map[string]Rating {
	ratings := map[string]Rating{}
	if err := s.readJSON(ratingsFile, &ratings); err != nil {
		s.log.Warn("loading ratings", "error", err)
		return map[string]Rating{}
	}
	return ratings
}

// Rating returns the rating for url, if any.
func (s *Store) Rating(url string) (Rating, bool) {
	r, ok := s.Ratings()[url]
	return r, ok
}

// AppendEvent stamps and appends an analytics event, trimming the log to
// the most recent entries.
func (s *Store) AppendEvent(name string, data map[string]any) bool {
	events := s.Events()
	events = append(events, Event{Name: name, Data: data, Timestamp: s.timestamp()})
	if len(events) > maxAnalyticsEvents {
		events = events[len(events)-maxAnalyticsEvents:]
	}
	if err := s.writeJSON(analyticsFile, events); err != nil {
		s.log.Warn("appending analytics event", "event", name, "error", err)
		return false
	}
	return true
}

// Events returns the analytics log in chronological order.
func (s *Store) Events() []Event {
	var events []Event
	if err := s.readJSON(analyticsFile, &events); err != nil {
		s.log.Warn("loading analytics", "error", err)
		return []Event{}
	}
	if events == nil {
		return []Event{}
	}
	return events
}

// UserStats recomputes the derived view from the current file contents.
func (s *Store) UserStats() Stats {
	saved := s.SavedArticles()
	ratings := s.Ratings()
	prefs := s.LoadPreferences()

	avg := 0.0
	if len(ratings) > 0 {
		total := 0
		for _, r := range ratings {
			total += r.Rating
		}
		avg = math.Round(float64(total)/float64(len(ratings))*10) / 10
	}

	return Stats{
		TotalSavedArticles: len(saved),
		TotalRatings:       len(ratings),
		AverageRating:      avg,
		FavoriteCategory:   favoriteCategory(saved),
		Interests:          prefs.Interests,
		Frequency:          prefs.Frequency,
		LastActivity:       prefs.LastUpdated,
	}
}

// favoriteCategory picks the most common category among saved articles.
// Ties go to the category whose first article was saved earliest, which
// keeps the result deterministic.
func favoriteCategory(saved []SavedArticle) string {
	if len(saved) == 0 {
		return "None"
	}
	counts := map[string]int{}
	var order []string
	for _, a := range saved {
		category := a.Category
		if category == "" {
			category = "Unknown"
		}
		if _, seen := counts[category]; !seen {
			order = append(order, category)
		}
		counts[category]++
	}
	best := order[0]
	for _, category := range order[1:] {
		if counts[category] > counts[best] {
			best = category
		}
	}
	return best
}

type exportDocument struct {
	Preferences   Preferences       `json:"preferences"`
	SavedArticles []SavedArticle    `json:"saved_articles"`
	Ratings       map[string]Rating `json:"ratings"`
	Analytics     []Event           `json:"analytics"`
	ExportedAt    string            `json:"exported_at"`
}

// ExportAll writes all four stores plus an exported_at stamp to path.
func (s *Store) ExportAll(path string) bool {
	doc := exportDocument{
		Preferences:   s.LoadPreferences(),
		SavedArticles: s.SavedArticles(),
		Ratings:       s.Ratings(),
		Analytics:     s.Events(),
		ExportedAt:    s.timestamp(),
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		s.log.Warn("encoding export", "error", err)
		return false
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.log.Warn("writing export", "path", path, "error", err)
		return false
	}
	return true
}

// ImportAll replaces the preferences, saved-articles, and ratings stores
// from an export document. Analytics is deliberately not imported. Returns
// false when the document is unreadable or missing any required section.
func (s *Store) ImportAll(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		s.log.Warn("reading import", "path", path, "error", err)
		return false
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		s.log.Warn("parsing import", "path", path, "error", err)
		return false
	}
	for _, key := range []string{"preferences", "saved_articles", "ratings"} {
		if _, ok := raw[key]; !ok {
			s.log.Warn("import missing required section", "path", path, "section", key)
			return false
		}
	}

	var (
		prefs   Preferences
		saved   []SavedArticle
		ratings map[string]Rating
	)
	if err := json.Unmarshal(raw["preferences"], &prefs); err != nil {
		s.log.Warn("parsing imported preferences", "error", err)
		return false
	}
	if err := json.Unmarshal(raw["saved_articles"], &saved); err != nil {
		s.log.Warn("parsing imported saved articles", "error", err)
		return false
	}
	if err := json.Unmarshal(raw["ratings"], &ratings); err != nil {
		s.log.Warn("parsing imported ratings", "error", err)
		return false
	}

	if err := s.writeJSON(preferencesFile, prefs); err != nil {
		s.log.Warn("writing imported preferences", "error", err)
		return false
	}
	if err := s.writeJSON(savedArticlesFile, saved); err != nil {
		s.log.Warn("writing imported saved articles", "error", err)
		return false
	}
	if err := s.writeJSON(ratingsFile, ratings); err != nil {
		s.log.Warn("writing imported ratings", "error", err)
		return false
	}
	return true
}

// ClearAll deletes all four backing files; subsequent loads return defaults.
func (s *Store) ClearAll() bool {
	ok := true
	for _, name := range []string{preferencesFile, savedArticlesFile, ratingsFile, analyticsFile} {
		if err := os.Remove(s.path(name)); err != nil && !os.IsNotExist(err) {
			s.log.Warn("removing store file", "file", name, "error", err)
			ok = false
		}
	}
	return ok
}

// DataSizes reports the byte size of each backing file, 0 when absent.
func (s *Store) DataSizes() map[string]int64 {
	sizes := map[string]int64{}
	files := map[string]string{
		"preferences":    preferencesFile,
		"saved_articles": savedArticlesFile,
		"ratings":        ratingsFile,
		"analytics":      analyticsFile,
	}
	for name, file := range files {
		info, err := os.Stat(s.path(file))
		if err != nil {
			sizes[name] = 0
			continue
		}
		sizes[name] = info.Size()
	}
	return sizes
}
