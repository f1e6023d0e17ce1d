package model

import (
	"testing"
	"time"
)

func TestFormatTimestamp(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 3, 9, 7, 5, 1, 0, time.UTC)
	if got := FormatTimestamp(ts); got != "2024-03-09 07:05:01" {
		t.Errorf("expected '2024-03-09 07:05:01', got %q", got)
	}
}

func TestCrawlStatusLastIndexBuildText(t *testing.T) {
	t.Parallel()

	t.Run("zero time is N/A", func(t *testing.T) {
		t.Parallel()
		if got := (CrawlStatus{}).LastIndexBuildText(); got != "N/A" {
			t.Errorf("expected N/A, got %q", got)
		}
	})

	t.Run("set time is formatted", func(t *testing.T) {
		t.Parallel()
		s := CrawlStatus{LastIndexBuild: time.Date(2025, 1, 2, 3, 4, 5, 0, time.Local)}
		if got := s.LastIndexBuildText(); got != "2025-01-02 03:04:05" {
			t.Errorf("unexpected text %q", got)
		}
	})
}
