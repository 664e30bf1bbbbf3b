package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/jfmyers9/collagefm/internal/collage"
	"github.com/jfmyers9/collagefm/internal/history"
	"github.com/mattn/go-runewidth"
)

func TestPadToWidth(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		width    int
		expected string
	}{
		{
			name:     "no padding when width is 0",
			input:    "rj",
			width:    0,
			expected: "rj",
		},
		{
			name:     "no padding when width is negative",
			input:    "rj",
			width:    -1,
			expected: "rj",
		},
		{
			name:     "pad short text with spaces",
			input:    "Week",
			width:    8,
			expected: "Week    ",
		},
		{
			name:     "exact width unchanged",
			input:    "10x10",
			width:    5,
			expected: "10x10",
		},
		{
			name:     "truncate long text with ellipsis",
			input:    "a_very_long_lastfm_username",
			width:    16,
			expected: "a_very_long_l...",
		},
		{
			name:     "handle emoji correctly",
			input:    "🎵 rj",
			width:    8,
			expected: "🎵 rj   ",
		},
		{
			name:     "handle unicode characters",
			input:    "日本語",
			width:    10,
			expected: "日本語    ",
		},
		{
			name:     "truncate unicode text",
			input:    "日本語とても長いテキスト",
			width:    10,
			expected: "日本語... ",
		},
		{
			name:     "empty string padding",
			input:    "",
			width:    5,
			expected: "     ",
		},
		{
			name:     "minimum width for truncation",
			input:    "Extra large",
			width:    3,
			expected: "...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := padToWidth(tt.input, tt.width)
			if result != tt.expected {
				t.Errorf("padToWidth(%q, %d) = %q, expected %q",
					tt.input, tt.width, result, tt.expected)
			}

			if tt.width > 0 {
				resultWidth := runewidth.StringWidth(result)
				if resultWidth != tt.width {
					t.Errorf("padToWidth(%q, %d) produced width %d, expected %d",
						tt.input, tt.width, resultWidth, tt.width)
				}
			}
		})
	}
}

func TestFailedRuns(t *testing.T) {
	runs := []history.Run{
		{ID: 1, Result: "ok"},
		{ID: 2, Result: "InvalidUser"},
		{ID: 3, Result: "ok"},
		{ID: 4, Result: "NetworkError"},
		{ID: 5, Result: "canceled"},
	}

	got := failedRuns(runs, 0)
	if len(got) != 3 || got[0].ID != 2 || got[1].ID != 4 || got[2].ID != 5 {
		t.Errorf("expected runs 2, 4, 5, got %+v", got)
	}

	got = failedRuns(runs, 2)
	if len(got) != 2 || got[1].ID != 4 {
		t.Errorf("expected limit of 2 failed runs, got %+v", got)
	}
}

func TestWriteRuns(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 30, 0, 0, time.Local)
	runs := []history.Run{
		{
			Username:  "rj",
			Period:    "Week",
			Dimension: "3x3",
			ImageSize: "Small",
			Result:    "ok",
			Images:    9,
			Width:     102,
			Height:    102,
			Output:    "collage.png",
			Duration:  1500 * time.Millisecond,
			Timestamp: ts,
		},
		{
			Username:  "ghost",
			Period:    "1 Year",
			Dimension: "10x10",
			ImageSize: "Extra large",
			Result:    "InvalidUser",
			Message:   `user "ghost" does not exist`,
			Timestamp: ts,
		},
	}

	var buf bytes.Buffer
	writeRuns(&buf, runs)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "WHEN") {
		t.Errorf("expected header row, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "102x102, 9 albums, 1.5s -> collage.png") {
		t.Errorf("unexpected success row: %q", lines[1])
	}
	if !strings.HasSuffix(lines[2], `user "ghost" does not exist`) {
		t.Errorf("unexpected failure row: %q", lines[2])
	}

	// Columns line up regardless of content
	detail := strings.Index(lines[0], "DETAIL")
	if strings.Index(lines[1], "102x102") != detail || strings.Index(lines[2], "user") != detail {
		t.Errorf("detail column misaligned:\n%s", buf.String())
	}
}

func TestMergeRequest(t *testing.T) {
	persisted := collage.Request{Username: "rj", Period: "1 Year", Dimension: "5x5", ImageSize: "Large"}

	got := mergeRequest(persisted, collage.Request{Period: "Week"})
	want := collage.Request{Username: "rj", Period: "Week", Dimension: "5x5", ImageSize: "Large"}
	if got != want {
		t.Errorf("mergeRequest() = %+v, want %+v", got, want)
	}

	got = mergeRequest(persisted, collage.Request{})
	if got != persisted {
		t.Errorf("expected persisted options without flags, got %+v", got)
	}
}
