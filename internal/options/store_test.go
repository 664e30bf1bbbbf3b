package options

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jfmyers9/collagefm/internal/collage"
	"github.com/rs/zerolog"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", FileName)
	return NewStore(path, collage.DefaultTables(), zerolog.Nop())
}

func TestStore_LoadMissingFile(t *testing.T) {
	store := newTestStore(t)

	req, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := collage.Request{Period: "Week", Dimension: "3x3", ImageSize: "Small"}
	if req != want {
		t.Errorf("expected defaults %+v, got %+v", want, req)
	}
}

func TestStore_RoundTrip(t *testing.T) {
	tests := []collage.Request{
		{Username: "rj", Period: "1 Month", Dimension: "5x5", ImageSize: "Extra large"},
		{Username: "user with spaces", Period: "1 Year", Dimension: "10x10", ImageSize: "Medium"},
		{Username: "a=b:c#d!e", Period: "Week", Dimension: "3x3", ImageSize: "Small"},
		{Username: "日本語ユーザー", Period: "6 Months", Dimension: "3x3", ImageSize: "Large"},
		{Username: "${HOME}", Period: "3 Months", Dimension: "5x5", ImageSize: "Small"},
	}

	for _, want := range tests {
		t.Run(want.Username, func(t *testing.T) {
			store := newTestStore(t)

			if err := store.Save(want); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			got, err := store.Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if got != want {
				t.Errorf("round trip mismatch: saved %+v, loaded %+v", want, got)
			}
		})
	}
}

func TestStore_SaveWritesLabels(t *testing.T) {
	store := newTestStore(t)

	req := collage.Request{Username: "rj", Period: "1 Month", Dimension: "5x5", ImageSize: "Extra large"}
	if err := store.Save(req); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatalf("failed to read options file: %v", err)
	}
	content := string(data)

	for _, key := range []string{"username", "period", "dimension", "image-size"} {
		if !strings.Contains(content, key) {
			t.Errorf("expected key %q in options file:\n%s", key, content)
		}
	}
	// Labels are persisted, never API tokens
	if strings.Contains(content, "1month") || strings.Contains(content, "extralarge") {
		t.Errorf("expected friendly labels, got:\n%s", content)
	}
}

func TestStore_LoadUnknownLabelsFallBack(t *testing.T) {
	store := newTestStore(t)

	if err := os.MkdirAll(filepath.Dir(store.Path()), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	content := "username = rj\nperiod = Decade\ndimension = 5x5\nimage-size = huge\n"
	if err := os.WriteFile(store.Path(), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write options: %v", err)
	}

	req, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := collage.Request{Username: "rj", Period: "Week", Dimension: "5x5", ImageSize: "Small"}
	if req != want {
		t.Errorf("expected %+v, got %+v", want, req)
	}
}

func TestStore_LoadPartialFile(t *testing.T) {
	store := newTestStore(t)

	if err := os.MkdirAll(filepath.Dir(store.Path()), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(store.Path(), []byte("# saved options\nusername=rj\n"), 0644); err != nil {
		t.Fatalf("failed to write options: %v", err)
	}

	req, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := collage.Request{Username: "rj", Period: "Week", Dimension: "3x3", ImageSize: "Small"}
	if req != want {
		t.Errorf("expected %+v, got %+v", want, req)
	}
}

func TestStore_LoadedOptionsMap(t *testing.T) {
	store := newTestStore(t)
	if err := store.Save(collage.Request{Username: "rj", Period: "1 Year", Dimension: "10x10", ImageSize: "Large"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	req, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	params, err := collage.NewMapper(collage.DefaultTables()).Map(req)
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	if params.Period != "12month" || params.Limit != 100 || params.ImageSize != "large" {
		t.Errorf("unexpected params %+v", params)
	}
}
