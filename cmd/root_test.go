package cmd

import (
	"testing"
	"time"

	"github.com/Tanya-123182/digest-microsite/internal/config"
	"github.com/Tanya-123182/digest-microsite/internal/interest"
	"github.com/Tanya-123182/digest-microsite/internal/store"
)

func TestParseDays(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"30d", 30 * 24 * time.Hour},
		{"1d", 24 * time.Hour},
		{"720h", 720 * time.Hour},
		{"45m", 45 * time.Minute},
	}
	for _, tt := range tests {
		got, err := parseDays(tt.input)
		if err != nil {
			t.Errorf("parseDays(%q): %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseDays(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
	if _, err := parseDays("bogus"); err == nil {
		t.Error("expected error for invalid duration")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		input int64
		want  string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{3 << 20, "3.0 MB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.input); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	if got := formatDuration(48 * time.Hour); got != "2d" {
		t.Errorf("formatDuration(48h) = %q, want 2d", got)
	}
	if got := formatDuration(5 * time.Hour); got != "5h" {
		t.Errorf("formatDuration(5h) = %q, want 5h", got)
	}
}

func TestResolveFetchScope(t *testing.T) {
	s, err := store.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{Interests: []string{"Entertainment"}, Frequency: "daily"}

	// Config is the fallback when nothing is stored.
	interests, freq, err := resolveFetchScope(cfg, s)
	if err != nil {
		t.Fatalf("resolveFetchScope: %v", err)
	}
	if len(interests) != 1 || interests[0] != "Entertainment" {
		t.Errorf("expected config interests, got %v", interests)
	}
	if freq != interest.Daily {
		t.Errorf("expected daily, got %v", freq)
	}

	// Saved preferences win over config.
	s.SavePreferences(store.Preferences{Interests: []string{"Sports"}, Frequency: "weekly"})
	interests, freq, err = resolveFetchScope(cfg, s)
	if err != nil {
		t.Fatalf("resolveFetchScope: %v", err)
	}
	if len(interests) != 1 || interests[0] != "Sports" {
		t.Errorf("expected stored interests, got %v", interests)
	}
	if freq != interest.Weekly {
		t.Errorf("expected weekly, got %v", freq)
	}

	// Flags win over everything.
	flagFetchInterests = []string{"science"}
	flagFetchFrequency = "daily"
	t.Cleanup(func() {
		flagFetchInterests = nil
		flagFetchFrequency = ""
	})
	interests, freq, err = resolveFetchScope(cfg, s)
	if err != nil {
		t.Fatalf("resolveFetchScope: %v", err)
	}
	if len(interests) != 1 || interests[0] != "Science" {
		t.Errorf("expected flag interests resolved, got %v", interests)
	}
	if freq != interest.Daily {
		t.Errorf("expected daily, got %v", freq)
	}
}

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"fetch", "headlines", "sources", "digest", "browse", "prune", "save", "saved", "unsave", "rate", "ratings", "prefs", "stats", "data", "version"} {
		found := false
		for _, c := range rootCmd.Commands() {
			if c.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
}
