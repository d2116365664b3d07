// Package cache keeps a durable local copy of fetched articles in sqlite so
// the last fetch can be browsed again without spending provider quota. This
// is separate from the in-memory search cache, which only memoizes recent
// provider queries.
package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Tanya-123182/digest-microsite/internal/news"
)

type Cache struct {
	readDB  *sql.DB
	writeDB *sql.DB
}

func Open(dbPath string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	readDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}

	c := &Cache{readDB: readDB, writeDB: writeDB}
	if err := c.init(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Cache) init() error {
	_, err := c.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS articles (
			url          TEXT PRIMARY KEY,
			title        TEXT NOT NULL,
			description  TEXT NOT NULL DEFAULT '',
			content      TEXT NOT NULL DEFAULT '',
			source       TEXT NOT NULL DEFAULT '',
			published    TEXT NOT NULL DEFAULT '',
			image_url    TEXT NOT NULL DEFAULT '',
			category     TEXT NOT NULL DEFAULT '',
			keyword      TEXT NOT NULL DEFAULT '',
			ai_summary   TEXT NOT NULL DEFAULT '',
			key_points   TEXT NOT NULL DEFAULT '',
			reading_time INTEGER NOT NULL DEFAULT 0,
			fetched_at   DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_articles_fetched ON articles(fetched_at DESC);
		CREATE INDEX IF NOT EXISTS idx_articles_category ON articles(category);

		CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (c *Cache) Close() error {
	var errs []error
	if c.readDB != nil {
		errs = append(errs, c.readDB.Close())
	}
	if c.writeDB != nil {
		errs = append(errs, c.writeDB.Close())
	}
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

// UpsertArticles stores fetched articles keyed by URL, refreshing content
// and enrichment on conflict. Articles without a URL are skipped.
func (c *Cache) UpsertArticles(articles []news.Article, fetchedAt time.Time) error {
	tx, err := c.writeDB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO articles (url, title, description, content, source, published,
			image_url, category, keyword, ai_summary, key_points, reading_time, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			content = excluded.content,
			category = excluded.category,
			keyword = excluded.keyword,
			ai_summary = excluded.ai_summary,
			key_points = excluded.key_points,
			reading_time = excluded.reading_time,
			fetched_at = excluded.fetched_at
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, a := range articles {
		if a.URL == "" {
			continue
		}
		_, err := stmt.Exec(a.URL, a.Title, a.Description, a.Content, a.Source, a.PublishedAt,
			a.ImageURL, a.Category, a.Keyword, a.AISummary, strings.Join(a.KeyPoints, "\n"),
			a.ReadingTime, fetchedAt)
		if err != nil {
			return fmt.Errorf("upserting article %s: %w", a.URL, err)
		}
	}

	return tx.Commit()
}

// QueryOpts filters a cached-article query.
type QueryOpts struct {
	Category string
	Search   string
	Since    time.Time
	Limit    int
}

// Articles returns cached articles, newest fetch first.
func (c *Cache) Articles(opts QueryOpts) ([]news.Article, error) {
	var (
		where []string
		args  []interface{}
	)

	if opts.Category != "" {
		where = append(where, "category = ?")
		args = append(args, opts.Category)
	}

	if opts.Search != "" {
		where = append(where, "(title LIKE ? OR description LIKE ?)")
		term := "%" + opts.Search + "%"
		args = append(args, term, term)
	}

	if !opts.Since.IsZero() {
		where = append(where, "fetched_at >= ?")
		args = append(args, opts.Since)
	}

	query := `SELECT url, title, description, content, source, published,
		image_url, category, keyword, ai_summary, key_points, reading_time FROM articles`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY fetched_at DESC, url"

	limit := opts.Limit
	if limit <= 0 {
		limit = 200
	}
	query += fmt.Sprintf(" LIMIT %d", limit)

	rows, err := c.readDB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying articles: %w", err)
	}
	defer rows.Close()

	var articles []news.Article
	for rows.Next() {
		var (
			a         news.Article
			keyPoints string
		)
		err := rows.Scan(&a.URL, &a.Title, &a.Description, &a.Content, &a.Source, &a.PublishedAt,
			&a.ImageURL, &a.Category, &a.Keyword, &a.AISummary, &keyPoints, &a.ReadingTime)
		if err != nil {
			return nil, fmt.Errorf("scanning article: %w", err)
		}
		if keyPoints != "" {
			a.KeyPoints = strings.Split(keyPoints, "\n")
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// Get returns a single cached article by URL.
func (c *Cache) Get(url string) (news.Article, bool, error) {
	var (
		a         news.Article
		keyPoints string
	)
	err := c.readDB.QueryRow(`SELECT url, title, description, content, source, published,
		image_url, category, keyword, ai_summary, key_points, reading_time
		FROM articles WHERE url = ?`, url).
		Scan(&a.URL, &a.Title, &a.Description, &a.Content, &a.Source, &a.PublishedAt,
			&a.ImageURL, &a.Category, &a.Keyword, &a.AISummary, &keyPoints, &a.ReadingTime)
	if err == sql.ErrNoRows {
		return news.Article{}, false, nil
	}
	if err != nil {
		return news.Article{}, false, fmt.Errorf("querying article %s: %w", url, err)
	}
	if keyPoints != "" {
		a.KeyPoints = strings.Split(keyPoints, "\n")
	}
	return a, true, nil
}

// Prune deletes articles fetched before the retention window. Returns the
// number of deleted rows.
func (c *Cache) Prune(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	res, err := c.writeDB.Exec("DELETE FROM articles WHERE fetched_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning articles: %w", err)
	}
	deleted, _ := res.RowsAffected()
	return deleted, nil
}

// Stats returns the article count and the database file size.
func (c *Cache) Stats(dbPath string) (int, int64, error) {
	var count int
	if err := c.readDB.QueryRow("SELECT COUNT(*) FROM articles").Scan(&count); err != nil {
		return 0, 0, fmt.Errorf("counting articles: %w", err)
	}
	info, err := os.Stat(dbPath)
	if err != nil {
		return count, 0, fmt.Errorf("statting db: %w", err)
	}
	return count, info.Size(), nil
}

// NeedsRefresh reports whether the last recorded fetch is older than
// interval. Missing or malformed metadata counts as stale.
func (c *Cache) NeedsRefresh(interval time.Duration) bool {
	var value string
	err := c.readDB.QueryRow("SELECT value FROM meta WHERE key = 'last_refresh'").Scan(&value)
	if err != nil {
		return true
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return true
	}
	return time.Since(t) > interval
}

func (c *Cache) SetLastRefresh() error {
	_, err := c.writeDB.Exec(`
		INSERT INTO meta (key, value) VALUES ('last_refresh', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, time.Now().Format(time.RFC3339))
	return err
}
