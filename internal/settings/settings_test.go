package settings

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/valpere/peredict/internal/dict"
)

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	s, err := New(dbPath, opts...)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_New(t *testing.T) {
	s := newTestStore(t)

	if s == nil {
		t.Fatal("expected non-nil store")
	}
	if s.ttl != DefaultLanguagesTTL {
		t.Errorf("expected default TTL, got %v", s.ttl)
	}
}

func TestStore_New_InvalidPath(t *testing.T) {
	_, err := New("/nonexistent/path/test.db")
	if err == nil {
		t.Error("expected error for invalid path")
	}
}

func TestStore_LanguageCodes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if got := s.SourceLangCode(ctx); got != "" {
		t.Errorf("expected empty source code, got %q", got)
	}
	if got := s.DestLangCode(ctx); got != "" {
		t.Errorf("expected empty dest code, got %q", got)
	}

	if err := s.SetSourceLangCode(ctx, "en"); err != nil {
		t.Fatalf("SetSourceLangCode failed: %v", err)
	}
	if err := s.SetDestLangCode(ctx, "fr"); err != nil {
		t.Fatalf("SetDestLangCode failed: %v", err)
	}
	if err := s.SetSourceLangCode(ctx, "de"); err != nil {
		t.Fatalf("SetSourceLangCode overwrite failed: %v", err)
	}

	if got := s.SourceLangCode(ctx); got != "de" {
		t.Errorf("SourceLangCode = %q, want de", got)
	}
	if got := s.DestLangCode(ctx); got != "fr" {
		t.Errorf("DestLangCode = %q, want fr", got)
	}
}

func TestStore_Defaults(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if s.SearchFilter(ctx) != 0 {
		t.Error("expected no search filter by default")
	}
	if !s.LookupReverse(ctx) {
		t.Error("expected reverse lookup on by default")
	}
	if !s.ShareIncludeTranscription(ctx) {
		t.Error("expected share transcription on by default")
	}
}

func TestStore_Toggles(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SetSearchFilter(ctx, dict.FlagMorpho|dict.FlagPosFilter); err != nil {
		t.Fatalf("SetSearchFilter failed: %v", err)
	}
	if err := s.SetLookupReverse(ctx, false); err != nil {
		t.Fatalf("SetLookupReverse failed: %v", err)
	}
	if err := s.SetShareIncludeTranscription(ctx, false); err != nil {
		t.Fatalf("SetShareIncludeTranscription failed: %v", err)
	}

	if got := s.SearchFilter(ctx); got != dict.FlagMorpho|dict.FlagPosFilter {
		t.Errorf("SearchFilter = %d", got)
	}
	if s.LookupReverse(ctx) {
		t.Error("expected reverse lookup off")
	}
	if s.ShareIncludeTranscription(ctx) {
		t.Error("expected share transcription off")
	}
}

func TestStore_LoadLanguages_Empty(t *testing.T) {
	s := newTestStore(t)

	_, err := s.LoadLanguages(context.Background())
	if !errors.Is(err, ErrNoCachedLanguages) {
		t.Errorf("expected ErrNoCachedLanguages, got %v", err)
	}
}

func TestStore_SaveAndLoadLanguages(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	langs := []dict.Language{
		{Code: "uk", Name: "Ukrainian", Favorite: true},
		{Code: "en", Name: "English"},
		{Code: "fr", Name: "French"},
	}
	if err := s.SaveLanguages(ctx, langs, time.Now()); err != nil {
		t.Fatalf("SaveLanguages failed: %v", err)
	}

	got, err := s.LoadLanguages(ctx)
	if err != nil {
		t.Fatalf("LoadLanguages failed: %v", err)
	}
	if len(got) != len(langs) {
		t.Fatalf("expected %d languages, got %d", len(langs), len(got))
	}
	for i := range langs {
		if got[i] != langs[i] {
			t.Errorf("language %d = %+v, want %+v", i, got[i], langs[i])
		}
	}

	// Saving again replaces the list instead of appending.
	if err := s.SaveLanguages(ctx, langs[:1], time.Time{}); err != nil {
		t.Fatalf("SaveLanguages replace failed: %v", err)
	}
	got, err = s.LoadLanguages(ctx)
	if err != nil {
		t.Fatalf("LoadLanguages failed: %v", err)
	}
	if len(got) != 1 || got[0].Code != "uk" {
		t.Errorf("expected only uk after replace, got %v", got)
	}
}

func TestStore_ShouldRefreshLanguages(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := newTestStore(t, WithLanguagesTTL(24*time.Hour), WithClock(func() time.Time { return now }))
	ctx := context.Background()

	if !s.ShouldRefreshLanguages(ctx) {
		t.Error("expected refresh when nothing was ever fetched")
	}

	langs := []dict.Language{{Code: "en", Name: "English"}}
	if err := s.SaveLanguages(ctx, langs, now.Add(-2*time.Hour)); err != nil {
		t.Fatalf("SaveLanguages failed: %v", err)
	}
	if s.ShouldRefreshLanguages(ctx) {
		t.Error("expected fresh cache two hours after fetch")
	}

	// A local save keeps the original fetch time.
	if err := s.SaveLanguages(ctx, langs, time.Time{}); err != nil {
		t.Fatalf("SaveLanguages failed: %v", err)
	}
	ts, ok := s.LanguagesFetchedAt(ctx)
	if !ok || !ts.Equal(now.Add(-2*time.Hour)) {
		t.Errorf("LanguagesFetchedAt = %v, %v", ts, ok)
	}

	now = now.Add(23 * time.Hour)
	if !s.ShouldRefreshLanguages(ctx) {
		t.Error("expected stale cache after TTL")
	}
}

func TestStore_ClearLanguages(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	langs := []dict.Language{{Code: "en", Name: "English"}, {Code: "fr", Name: "French"}}
	if err := s.SaveLanguages(ctx, langs, time.Now()); err != nil {
		t.Fatalf("SaveLanguages failed: %v", err)
	}

	n, err := s.ClearLanguages(ctx)
	if err != nil {
		t.Fatalf("ClearLanguages failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 removed, got %d", n)
	}
	if !s.ShouldRefreshLanguages(ctx) {
		t.Error("expected refresh after clear")
	}
	if _, err := s.LoadLanguages(ctx); !errors.Is(err, ErrNoCachedLanguages) {
		t.Errorf("expected ErrNoCachedLanguages after clear, got %v", err)
	}
}

func TestStore_ExpireLanguages(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	langs := []dict.Language{{Code: "en", Name: "English"}, {Code: "fr", Name: "French", Favorite: true}}
	if err := s.SaveLanguages(ctx, langs, time.Now()); err != nil {
		t.Fatalf("SaveLanguages failed: %v", err)
	}
	if s.ShouldRefreshLanguages(ctx) {
		t.Fatal("expected fresh cache after save")
	}

	if err := s.ExpireLanguages(ctx); err != nil {
		t.Fatalf("ExpireLanguages failed: %v", err)
	}
	if !s.ShouldRefreshLanguages(ctx) {
		t.Error("expected refresh after expire")
	}

	got, err := s.LoadLanguages(ctx)
	if err != nil {
		t.Fatalf("LoadLanguages failed: %v", err)
	}
	if len(got) != 2 || !got[1].Favorite {
		t.Errorf("expected cached rows and favorites to survive, got %v", got)
	}
}

func TestStore_Preferences(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SetSourceLangCode(ctx, "en"); err != nil {
		t.Fatalf("SetSourceLangCode failed: %v", err)
	}
	if err := s.SetLookupReverse(ctx, false); err != nil {
		t.Fatalf("SetLookupReverse failed: %v", err)
	}

	prefs, err := s.Preferences(ctx)
	if err != nil {
		t.Fatalf("Preferences failed: %v", err)
	}
	if len(prefs) != 2 {
		t.Fatalf("expected 2 preferences, got %d", len(prefs))
	}
	if prefs[0].Key != KeyLookupReverse || prefs[0].Value != "false" {
		t.Errorf("unexpected first preference %+v", prefs[0])
	}
	if prefs[1].Key != KeySourceLang || prefs[1].Value != "en" {
		t.Errorf("unexpected second preference %+v", prefs[1])
	}
}
