// Package interest maps topic interests to search keywords and date windows.
package interest

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Frequency controls how far back the fetch window reaches.
type Frequency string

const (
	Daily  Frequency = "daily"
	Weekly Frequency = "weekly"
)

// ParseFrequency validates a frequency string, defaulting to daily when empty.
func ParseFrequency(s string) (Frequency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(Daily):
		return Daily, nil
	case string(Weekly):
		return Weekly, nil
	default:
		return "", fmt.Errorf("unknown frequency %q (valid: daily, weekly)", s)
	}
}

// WindowStart returns the provider-compatible start date for a fetch window:
// 1 day back for daily, 7 days back for weekly.
func WindowStart(f Frequency, now time.Time) string {
	days := 1
	if f == Weekly {
		days = 7
	}
	return now.AddDate(0, 0, -days).Format("2006-01-02")
}

// searchKeywordsPerCategory bounds the provider fan-out per interest.
const searchKeywordsPerCategory = 2

var categoryOrder = []string{
	"Technology", "Business", "Science", "Politics", "Sports", "Entertainment",
}

var categoryKeywords = map[string][]string{
	"Technology":    {"artificial intelligence", "cybersecurity", "software", "hardware", "startups"},
	"Business":      {"finance", "economy", "markets", "entrepreneurship", "corporate"},
	"Science":       {"research", "discoveries", "health", "environment", "space"},
	"Politics":      {"government", "policy", "elections", "international relations"},
	"Sports":        {"football", "basketball", "tennis", "olympics", "soccer"},
	"Entertainment": {"movies", "music", "celebrity", "gaming", "streaming"},
}

// Categories returns all interest categories in canonical order.
func Categories() []string {
	out := make([]string, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// Valid reports whether name is a known interest category.
func Valid(name string) bool {
	_, ok := categoryKeywords[name]
	return ok
}

// Resolve maps a case-insensitive name to its canonical category.
func Resolve(name string) (string, error) {
	name = strings.TrimSpace(name)
	for _, cat := range categoryOrder {
		if strings.EqualFold(cat, name) {
			return cat, nil
		}
	}
	return "", fmt.Errorf("unknown interest %q (valid: %s)", name, strings.Join(categoryOrder, ", "))
}

// Keywords returns the full keyword list for a category.
func Keywords(category string) []string {
	kws, ok := categoryKeywords[category]
	if !ok {
		return nil
	}
	out := make([]string, len(kws))
	copy(out, kws)
	return out
}

// SearchKeywords returns the keywords actually queried for a category.
func SearchKeywords(category string) []string {
	kws := Keywords(category)
	if len(kws) > searchKeywordsPerCategory {
		kws = kws[:searchKeywordsPerCategory]
	}
	return kws
}

// Guess assigns the best-matching category for an article that did not come
// out of an interest-driven search. Title hits are weighted 2x. Returns
// "General" when nothing matches.
func Guess(title, description string) string {
	titleLower := strings.ToLower(title)
	descLower := strings.ToLower(description)
	titleTokens := tokenize(title)
	descTokens := tokenize(description)

	bestCat := ""
	bestScore := 0
	for _, cat := range categoryOrder {
		score := 0
		for _, kw := range categoryKeywords[cat] {
			if strings.Contains(kw, " ") {
				if strings.Contains(titleLower, kw) {
					score += 2
				}
				if strings.Contains(descLower, kw) {
					score++
				}
				continue
			}
			for _, t := range titleTokens {
				if t == kw {
					score += 2
				}
			}
			for _, t := range descTokens {
				if t == kw {
					score++
				}
			}
		}
		if score > bestScore {
			bestScore = score
			bestCat = cat
		}
	}
	if bestScore == 0 {
		return "General"
	}
	return bestCat
}

func tokenize(s string) []string {
	var tokens []string
	for _, word := range strings.Fields(strings.ToLower(s)) {
		word = strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if word != "" {
			tokens = append(tokens, word)
		}
	}
	return tokens
}
