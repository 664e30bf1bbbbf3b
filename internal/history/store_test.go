package history

import (
	"context"
	"image"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jfmyers9/collagefm/internal/collage"
)

// createTestStore creates an in-memory SQLite store for testing
func createTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

func TestNewStore(t *testing.T) {
	t.Run("in-memory database", func(t *testing.T) {
		store, err := NewStore(":memory:")
		if err != nil {
			t.Fatalf("failed to create in-memory store: %v", err)
		}
		defer func() { _ = store.Close() }()

		if store.db == nil {
			t.Error("store database is nil")
		}
	})

	t.Run("file-based database survives reopen", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), FileName)
		ctx := context.Background()

		store, err := NewStore(path)
		if err != nil {
			t.Fatalf("failed to create file-based store: %v", err)
		}
		if _, err := store.Record(ctx, Run{Username: "rj", Period: "Week", Dimension: "3x3", ImageSize: "Small", Result: "ok"}); err != nil {
			t.Fatalf("failed to record run: %v", err)
		}
		_ = store.Close()

		reopened, err := NewStore(path)
		if err != nil {
			t.Fatalf("failed to reopen store: %v", err)
		}
		defer func() { _ = reopened.Close() }()

		count, err := reopened.Count(ctx, false)
		if err != nil {
			t.Fatalf("failed to count: %v", err)
		}
		if count != 1 {
			t.Errorf("expected 1 run after reopen, got %d", count)
		}
	})
}

func TestStoreRecord(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	ts := time.Unix(1700000000, 0)
	run := Run{
		Username:  "rj",
		Period:    "1 Month",
		Dimension: "5x5",
		ImageSize: "Extra large",
		Result:    "ok",
		Images:    25,
		Width:     1500,
		Height:    1500,
		Output:    "collage.png",
		Duration:  1250 * time.Millisecond,
		Timestamp: ts,
	}

	id, err := store.Record(ctx, run)
	if err != nil {
		t.Fatalf("failed to record run: %v", err)
	}
	if id <= 0 {
		t.Errorf("expected positive id, got %d", id)
	}

	runs, err := store.Recent(ctx, "", 0)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}

	got := runs[0]
	run.ID = id
	if got != run {
		t.Errorf("round trip mismatch:\nwant %+v\ngot  %+v", run, got)
	}
	if !got.OK() {
		t.Error("expected run to be OK")
	}
}

func TestStoreRecord_Failure(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	before := time.Now().Add(-time.Second)
	_, err := store.Record(ctx, Run{
		Username:  "ghost",
		Period:    "Week",
		Dimension: "3x3",
		ImageSize: "Small",
		Result:    "InvalidUser",
		Message:   `collage: user "ghost" does not exist`,
	})
	if err != nil {
		t.Fatalf("failed to record run: %v", err)
	}

	runs, err := store.Recent(ctx, "", 0)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if runs[0].OK() {
		t.Error("expected failed run")
	}
	if runs[0].Output != "" || runs[0].Message == "" {
		t.Errorf("unexpected output/message: %+v", runs[0])
	}
	if runs[0].Timestamp.Before(before) {
		t.Errorf("expected zero timestamp to be recorded as now, got %v", runs[0].Timestamp)
	}
}

func TestStoreRecent(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i, user := range []string{"rj", "alice", "rj", "bob", "rj"} {
		_, err := store.Record(ctx, Run{
			Username:  user,
			Period:    "Week",
			Dimension: "3x3",
			ImageSize: "Small",
			Result:    "ok",
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("failed to record run %d: %v", i, err)
		}
	}

	t.Run("newest first", func(t *testing.T) {
		runs, err := store.Recent(ctx, "", 0)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 5 {
			t.Fatalf("expected 5 runs, got %d", len(runs))
		}
		for i := 1; i < len(runs); i++ {
			if runs[i].Timestamp.After(runs[i-1].Timestamp) {
				t.Errorf("runs not ordered newest first at %d", i)
			}
		}
	})

	t.Run("limit", func(t *testing.T) {
		runs, err := store.Recent(ctx, "", 2)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 2 {
			t.Errorf("expected 2 runs, got %d", len(runs))
		}
	})

	t.Run("by user", func(t *testing.T) {
		runs, err := store.Recent(ctx, "rj", 0)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 3 {
			t.Errorf("expected 3 runs for rj, got %d", len(runs))
		}
		for _, r := range runs {
			if r.Username != "rj" {
				t.Errorf("unexpected user %q", r.Username)
			}
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		runs, err := store.Recent(ctx, "nobody", 0)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 0 {
			t.Errorf("expected no runs, got %d", len(runs))
		}
	})
}

func TestStoreCleanup(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	now := time.Now()
	for _, age := range []time.Duration{40 * 24 * time.Hour, 31 * 24 * time.Hour, time.Hour, 0} {
		_, err := store.Record(ctx, Run{
			Username: "rj", Period: "Week", Dimension: "3x3", ImageSize: "Small",
			Result: "ok", Timestamp: now.Add(-age),
		})
		if err != nil {
			t.Fatalf("failed to record run: %v", err)
		}
	}

	deleted, err := store.Cleanup(ctx, 30*24*time.Hour)
	if err != nil {
		t.Fatalf("failed to cleanup: %v", err)
	}
	if deleted != 2 {
		t.Errorf("expected 2 deleted, got %d", deleted)
	}

	count, err := store.Count(ctx, false)
	if err != nil {
		t.Fatalf("failed to count: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 remaining, got %d", count)
	}
}

func TestStoreCount(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	for _, result := range []string{"ok", "InvalidUser", "ok", "NoRecentPlays", "canceled"} {
		_, err := store.Record(ctx, Run{
			Username: "rj", Period: "Week", Dimension: "3x3", ImageSize: "Small", Result: result,
		})
		if err != nil {
			t.Fatalf("failed to record run: %v", err)
		}
	}

	all, err := store.Count(ctx, false)
	if err != nil {
		t.Fatalf("failed to count: %v", err)
	}
	failed, err := store.Count(ctx, true)
	if err != nil {
		t.Fatalf("failed to count failed: %v", err)
	}

	if all != 5 {
		t.Errorf("expected 5 runs, got %d", all)
	}
	if failed != 3 {
		t.Errorf("expected 3 failed runs, got %d", failed)
	}
}

func TestStoreConcurrentRecord(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Record(ctx, Run{
				Username: "rj", Period: "Week", Dimension: "3x3", ImageSize: "Small", Result: "ok",
			})
			if err != nil {
				t.Errorf("concurrent record failed: %v", err)
			}
		}()
	}
	wg.Wait()

	count, err := store.Count(ctx, false)
	if err != nil {
		t.Fatalf("failed to count: %v", err)
	}
	if count != 10 {
		t.Errorf("expected 10 runs, got %d", count)
	}
}

func TestNewRun(t *testing.T) {
	req := collage.Request{Username: "rj", Period: "Week", Dimension: "3x3", ImageSize: "Small"}

	t.Run("success", func(t *testing.T) {
		img := image.NewRGBA(image.Rect(0, 0, 4, 4))
		c, err := collage.Compose([]image.Image{img}, 3, collage.DefaultBackground)
		if err != nil {
			t.Fatalf("Compose() error = %v", err)
		}

		run := NewRun(req, c, nil, "out.png", time.Second)
		if !run.OK() || run.Images != 1 || run.Width != 12 || run.Height != 12 {
			t.Errorf("unexpected run %+v", run)
		}
		if run.Output != "out.png" || run.Message != "" {
			t.Errorf("unexpected output/message %+v", run)
		}
	})

	t.Run("failure", func(t *testing.T) {
		err := &collage.Error{Kind: collage.KindInvalidUser, Username: "rj"}

		run := NewRun(req, nil, err, "out.png", time.Second)
		if run.Result != "InvalidUser" {
			t.Errorf("expected InvalidUser, got %q", run.Result)
		}
		if run.Output != "" || run.Message == "" {
			t.Errorf("expected message and no output, got %+v", run)
		}
	})
}
