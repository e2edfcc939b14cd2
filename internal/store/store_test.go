package store

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/jdavis-cyber/lliam-ai-agent/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(context.Background(), filepath.Join(dir, "memory.json"), testLogger())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.Create(ctx, CreateParams{Content: "the user prefers dark mode", Category: model.CategoryPreference})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == "" {
		t.Fatal("expected non-empty id")
	}

	rec, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec == nil {
		t.Fatal("expected record")
	}
	if rec.Content != "the user prefers dark mode" {
		t.Errorf("content %q", rec.Content)
	}
	if rec.Category != model.CategoryPreference {
		t.Errorf("category %q", rec.Category)
	}
	if rec.Confidence != 1.0 {
		t.Errorf("default confidence %v, want 1.0", rec.Confidence)
	}
	if rec.SourceType != model.SourceManual {
		t.Errorf("default source %q, want manual", rec.SourceType)
	}
	if rec.UpdatedAt < rec.CreatedAt {
		t.Error("updatedAt before createdAt")
	}
}

func TestGet_Missing(t *testing.T) {
	s := newTestStore(t)
	rec, err := s.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec != nil {
		t.Error("expected nil for missing id")
	}
}

func TestAccessTracking(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, _ := s.Create(ctx, CreateParams{Content: "remember this"})

	first, _ := s.Get(ctx, id)
	if first.AccessCount != 1 {
		t.Errorf("first get: access count %d, want 1", first.AccessCount)
	}
	second, _ := s.Get(ctx, id)
	if second.AccessCount != 2 {
		t.Errorf("second get: access count %d, want 2", second.AccessCount)
	}
	if second.LastAccessedAt == 0 {
		t.Error("lastAccessedAt not set")
	}
}

func TestCreate_Validation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.Create(ctx, CreateParams{Content: ""}); err == nil {
		t.Error("expected error for empty content")
	}
	if _, err := s.Create(ctx, CreateParams{Content: "x", Category: "mood"}); err == nil {
		t.Error("expected error for invalid category")
	}
	if _, err := s.Create(ctx, CreateParams{Content: "x", Confidence: 1.5}); err == nil {
		t.Error("expected error for out-of-range confidence")
	}
}

func TestCountByCategory(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Create(ctx, CreateParams{Content: "likes go", Category: model.CategoryPreference})
	s.Create(ctx, CreateParams{Content: "hates yaml", Category: model.CategoryPreference})
	s.Create(ctx, CreateParams{Content: "works at acme", Category: model.CategoryFact})

	n, err := s.Count(ctx, model.CategoryPreference)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("preference count %d, want 2", n)
	}
	total, _ := s.Count(ctx, "")
	if total != 3 {
		t.Errorf("total %d, want 3", total)
	}
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, _ := s.Create(ctx, CreateParams{Content: "drinks coffee"})

	content := "drinks tea"
	conf := 0.5
	ok, err := s.Update(ctx, id, UpdateParams{Content: &content, Confidence: &conf})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !ok {
		t.Fatal("expected update to report true")
	}

	rec, _ := s.Get(ctx, id)
	if rec.Content != "drinks tea" || rec.Confidence != 0.5 {
		t.Errorf("update not applied: %+v", rec)
	}

	// Content change rewrote the index entry.
	hits, err := s.KeywordSearch(ctx, "tea", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].ID != id {
		t.Errorf("expected new content indexed, got %v", hits)
	}
	hits, _ = s.KeywordSearch(ctx, "coffee", 10)
	if len(hits) != 0 {
		t.Errorf("expected old content deindexed, got %v", hits)
	}
}

func TestUpdate_MissingID(t *testing.T) {
	s := newTestStore(t)
	content := "anything"
	ok, err := s.Update(context.Background(), "missing", UpdateParams{Content: &content})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if ok {
		t.Error("update of missing id reported true; rows-affected semantics expected")
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, _ := s.Create(ctx, CreateParams{Content: "soon gone"})
	ok, err := s.Delete(ctx, id)
	if err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}

	rec, _ := s.Get(ctx, id)
	if rec != nil {
		t.Error("expected nil after delete")
	}
	hits, _ := s.KeywordSearch(ctx, "soon gone", 10)
	if len(hits) != 0 {
		t.Error("expected index entry removed with record")
	}

	ok, _ = s.Delete(ctx, id)
	if ok {
		t.Error("second delete reported true")
	}
}

func TestDeleteBySession(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Create(ctx, CreateParams{Content: "a", SourceSession: "sess-1"})
	s.Create(ctx, CreateParams{Content: "b", SourceSession: "sess-1"})
	s.Create(ctx, CreateParams{Content: "c", SourceSession: "sess-2"})

	n, err := s.DeleteBySession(ctx, "sess-1")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("deleted %d, want 2", n)
	}
	total, _ := s.Count(ctx, "")
	if total != 1 {
		t.Errorf("remaining %d, want 1", total)
	}
}

func TestList_FiltersAndOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Create(ctx, CreateParams{Content: "first", Category: model.CategoryFact, Tags: []string{"infra"}})
	s.Create(ctx, CreateParams{Content: "second", Category: model.CategoryDecision, Tags: []string{"infra", "deploy"}})
	s.Create(ctx, CreateParams{Content: "third", Category: model.CategoryFact})

	facts, _ := s.List(ctx, ListParams{Category: model.CategoryFact})
	if len(facts) != 2 {
		t.Fatalf("facts %d, want 2", len(facts))
	}

	tagged, _ := s.List(ctx, ListParams{Tag: "infra"})
	if len(tagged) != 2 {
		t.Fatalf("tagged %d, want 2", len(tagged))
	}

	all, _ := s.List(ctx, ListParams{})
	if len(all) != 3 {
		t.Fatalf("all %d, want 3", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].CreatedAt < all[i].CreatedAt {
			t.Error("expected newest-first ordering")
		}
	}

	limited, _ := s.List(ctx, ListParams{Limit: 2, Offset: 2})
	if len(limited) != 1 {
		t.Fatalf("offset page %d, want 1", len(limited))
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "memory.json")

	s, err := Open(ctx, path, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	id, err := s.Create(ctx, CreateParams{
		Content:    "persisted across restarts",
		Category:   model.CategoryDecision,
		Confidence: 0.8,
		Tags:       []string{"keep"},
		Embedding:  []float32{0.6, 0.8},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s2, err := Open(ctx, path, testLogger())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()

	records, err := s2.List(ctx, ListParams{})
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("records %d, want 1", len(records))
	}
	rec := records[0]
	if rec.ID != id || rec.Content != "persisted across restarts" ||
		rec.Category != model.CategoryDecision || rec.Confidence != 0.8 {
		t.Errorf("record changed across restart: %+v", rec)
	}
	if len(rec.Embedding) != 2 || rec.Embedding[0] != 0.6 || rec.Embedding[1] != 0.8 {
		t.Errorf("embedding changed across restart: %v", rec.Embedding)
	}

	// Reopened index must serve keyword search without an explicit rebuild.
	hits, err := s2.KeywordSearch(ctx, "restarts", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].ID != id {
		t.Errorf("expected reopened index to match, got %v", hits)
	}
}

func TestSave_NoTempArtifacts(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "memory.json")

	s, err := Open(ctx, path, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	s.Create(ctx, CreateParams{Content: "one"})
	if err := s.Save(); err != nil {
		t.Fatal(err)
	}
	s.Create(ctx, CreateParams{Content: "two"})
	if err := s.Save(); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "memory.json" {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Errorf("expected only memory.json, found %v", names)
	}
}

func TestOpen_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "memory.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Open(context.Background(), path, testLogger()); err == nil {
		t.Fatal("expected error for corrupt store file, not a silent empty store")
	}
}

func TestOperationsAfterClose(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := Open(ctx, filepath.Join(dir, "memory.json"), testLogger())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Get(ctx, "x"); err != ErrNotOpen {
		t.Errorf("expected ErrNotOpen, got %v", err)
	}
	if _, err := s.Create(ctx, CreateParams{Content: "x"}); err != ErrNotOpen {
		t.Errorf("expected ErrNotOpen, got %v", err)
	}
}

func TestByIDs_PreservesOrderSkipsMissing(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a, _ := s.Create(ctx, CreateParams{Content: "alpha"})
	b, _ := s.Create(ctx, CreateParams{Content: "beta"})

	got, err := s.ByIDs(ctx, []string{b, "ghost", a})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != b || got[1].ID != a {
		t.Errorf("unexpected hydration result: %v", got)
	}
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	n, err := s.Import(ctx, []model.Memory{
		{Content: "imported fact", Category: model.CategoryFact, Confidence: 0.7},
		{Content: "imported preference", Category: model.CategoryPreference, Confidence: 0.9},
	})
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("imported %d, want 2", n)
	}

	recs, _ := s.List(ctx, ListParams{SourceType: model.SourceImport})
	if len(recs) != 2 {
		t.Fatalf("expected import provenance on %d records, got %d", 2, len(recs))
	}
}
