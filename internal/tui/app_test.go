package tui

import (
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jfmyers9/collagefm/internal/collage"
	"github.com/jfmyers9/collagefm/internal/history"
	"github.com/rs/zerolog"
)

type fakeStore struct {
	initial collage.Request
	saved   []collage.Request
}

func (f *fakeStore) Load() (collage.Request, error) { return f.initial, nil }

func (f *fakeStore) Save(req collage.Request) error {
	f.saved = append(f.saved, req)
	return nil
}

type fakeRecorder struct {
	runs []history.Run
}

func (f *fakeRecorder) Record(ctx context.Context, run history.Run) (int64, error) {
	f.runs = append(f.runs, run)
	return int64(len(f.runs)), nil
}

type fakeGenerator struct{}

func (fakeGenerator) Start(ctx context.Context, req collage.Request) <-chan collage.Result {
	out := make(chan collage.Result, 1)
	out <- collage.Result{}
	close(out)
	return out
}

func newTestApp(t *testing.T, initial collage.Request) (*App, *fakeStore, *fakeRecorder) {
	t.Helper()

	store := &fakeStore{initial: initial}
	rec := &fakeRecorder{}
	cfg := Config{Output: filepath.Join(t.TempDir(), "collage.png")}
	return New(cfg, fakeGenerator{}, store, rec, zerolog.Nop()), store, rec
}

func TestNew_LoadsPersistedOptions(t *testing.T) {
	initial := collage.Request{Username: "rj", Period: "6 Months", Dimension: "10x10", ImageSize: "Large"}
	app, _, _ := newTestApp(t, initial)

	if got := app.request(); got != initial {
		t.Errorf("expected form to start at %+v, got %+v", initial, got)
	}
}

func TestNew_DefaultsForUnknownLabels(t *testing.T) {
	app, _, _ := newTestApp(t, collage.Request{Period: "Decade"})

	want := collage.Request{Period: "Week", Dimension: "3x3", ImageSize: "Small"}
	if got := app.request(); got != want {
		t.Errorf("expected defaults %+v, got %+v", want, got)
	}
}

func TestComplete_Success(t *testing.T) {
	app, store, rec := newTestApp(t, collage.Request{})
	req := collage.Request{Username: "rj", Period: "Week", Dimension: "3x3", ImageSize: "Small"}

	c, err := collage.Compose([]image.Image{image.NewRGBA(image.Rect(0, 0, 4, 4))}, 3, collage.DefaultBackground)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}

	text := app.complete(req, collage.Result{Collage: c}, 1500*time.Millisecond)
	if !strings.Contains(text, "12x12") || !strings.Contains(text, "1.5s") {
		t.Errorf("unexpected status %q", text)
	}

	f, err := os.Open(app.config.Output)
	if err != nil {
		t.Fatalf("collage not written: %v", err)
	}
	defer f.Close()
	if _, err := png.Decode(f); err != nil {
		t.Errorf("output is not PNG: %v", err)
	}

	if len(store.saved) != 1 || store.saved[0] != req {
		t.Errorf("expected options saved once, got %+v", store.saved)
	}
	if len(rec.runs) != 1 || !rec.runs[0].OK() || rec.runs[0].Output != app.config.Output {
		t.Errorf("expected one successful run, got %+v", rec.runs)
	}
}

func TestComplete_Failure(t *testing.T) {
	app, store, rec := newTestApp(t, collage.Request{})
	req := collage.Request{Username: "ghost", Period: "Week", Dimension: "3x3", ImageSize: "Small"}

	text := app.complete(req, collage.Result{Err: &collage.Error{Kind: collage.KindInvalidUser, Username: "ghost"}}, time.Second)

	// The kind tag is escaped so tview prints it literally
	if !strings.Contains(text, `[InvalidUser[] - user "ghost" does not exist`) {
		t.Errorf("unexpected status %q", text)
	}
	if len(store.saved) != 0 {
		t.Error("expected options not to be saved after a failure")
	}
	if _, err := os.Stat(app.config.Output); !errors.Is(err, os.ErrNotExist) {
		t.Error("expected no output file after a failure")
	}
	if len(rec.runs) != 1 || rec.runs[0].Result != "InvalidUser" {
		t.Errorf("expected one failed run, got %+v", rec.runs)
	}
}

func TestComplete_ClearsRunningState(t *testing.T) {
	app, _, _ := newTestApp(t, collage.Request{})
	app.running = true
	app.cancelRun = func() {}

	app.complete(collage.Request{Username: "rj"}, collage.Result{Err: context.Canceled}, 0)

	if app.running || app.cancelRun != nil {
		t.Error("expected run state to be cleared")
	}
}

func TestRecentRuns(t *testing.T) {
	app, _, _ := newTestApp(t, collage.Request{})

	app.mu.Lock()
	defer app.mu.Unlock()

	if got := app.renderRecent(); !strings.Contains(got, "No runs yet") {
		t.Errorf("expected empty placeholder, got %q", got)
	}

	for i := 0; i < 7; i++ {
		outcome := "ok"
		if i%2 == 1 {
			outcome = "NoRecentPlays"
		}
		app.addRecentRun(RecentRun{Username: string(rune('a' + i)), Dimension: "3x3", Outcome: outcome})
	}

	runs := app.getRecentRuns()
	if len(runs) != maxRecentRuns {
		t.Fatalf("expected %d runs, got %d", maxRecentRuns, len(runs))
	}
	if runs[0].Username != "g" || runs[maxRecentRuns-1].Username != "c" {
		t.Errorf("expected most recent first, got %+v", runs)
	}

	text := app.renderRecent()
	if strings.Count(text, "\n") != maxRecentRuns-1 {
		t.Errorf("expected %d lines, got %q", maxRecentRuns, text)
	}
	if !strings.Contains(text, "NoRecentPlays") {
		t.Errorf("expected failure outcome in %q", text)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := map[time.Duration]string{
		-time.Second:            "0.0s",
		1500 * time.Millisecond: "1.5s",
		75 * time.Second:        "01:15",
	}
	for d, want := range tests {
		if got := formatDuration(d); got != want {
			t.Errorf("formatDuration(%v) = %q, want %q", d, got, want)
		}
	}
}
