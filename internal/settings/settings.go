// Package settings persists user preferences and the cached language list
// in a local SQLite database.
package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"github.com/valpere/peredict/internal/dict"
)

// DefaultLanguagesTTL is how long a cached language list stays fresh.
const DefaultLanguagesTTL = 7 * 24 * time.Hour

// Preference keys.
const (
	KeySourceLang       = "source_lang"
	KeyDestLang         = "dest_lang"
	KeySearchFilter     = "search_filter"
	KeyLookupReverse    = "lookup_reverse"
	KeyShareTranscript  = "share_transcription"
	KeyLanguagesFetched = "languages_fetched_at"
)

// ErrNoCachedLanguages is returned by LoadLanguages when the cache is empty.
var ErrNoCachedLanguages = errors.New("no cached languages")

// Store is the SQLite-backed settings store. Getters never fail: when a
// value is missing or unreadable they return its default.
type Store struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLanguagesTTL overrides DefaultLanguagesTTL. Non-positive values are ignored.
func WithLanguagesTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func New(dbPath string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, ttl: DefaultLanguagesTTL, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS preferences (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	-- languages caches the backend's language list in display order
	CREATE TABLE IF NOT EXISTS languages (
		code TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		favorite BOOLEAN DEFAULT FALSE,
		position INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_languages_position ON languages(position);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *Store) set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, s.now())
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

func (s *Store) getString(ctx context.Context, key string) string {
	value, _, err := s.get(ctx, key)
	if err != nil {
		return ""
	}
	return value
}

func (s *Store) getBool(ctx context.Context, key string, def bool) bool {
	value, ok, err := s.get(ctx, key)
	if err != nil || !ok {
		return def
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return def
	}
	return b
}

// SourceLangCode returns the stored source language code, or "" when unset.
func (s *Store) SourceLangCode(ctx context.Context) string {
	return s.getString(ctx, KeySourceLang)
}

func (s *Store) SetSourceLangCode(ctx context.Context, code string) error {
	return s.set(ctx, KeySourceLang, code)
}

// DestLangCode returns the stored destination language code, or "" when unset.
func (s *Store) DestLangCode(ctx context.Context) string {
	return s.getString(ctx, KeyDestLang)
}

func (s *Store) SetDestLangCode(ctx context.Context, code string) error {
	return s.set(ctx, KeyDestLang, code)
}

// SearchFilter returns the lookup filter flags (none by default).
func (s *Store) SearchFilter(ctx context.Context) dict.LookupFlags {
	value, ok, err := s.get(ctx, KeySearchFilter)
	if err != nil || !ok {
		return 0
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return dict.LookupFlags(n)
}

func (s *Store) SetSearchFilter(ctx context.Context, flags dict.LookupFlags) error {
	return s.set(ctx, KeySearchFilter, strconv.Itoa(int(flags)))
}

// LookupReverse reports whether an empty lookup is retried in the reverse
// direction (on by default).
func (s *Store) LookupReverse(ctx context.Context) bool {
	return s.getBool(ctx, KeyLookupReverse, true)
}

func (s *Store) SetLookupReverse(ctx context.Context, enabled bool) error {
	return s.set(ctx, KeyLookupReverse, strconv.FormatBool(enabled))
}

// ShareIncludeTranscription reports whether shared results carry the
// transcription next to the headword (on by default).
func (s *Store) ShareIncludeTranscription(ctx context.Context) bool {
	return s.getBool(ctx, KeyShareTranscript, true)
}

func (s *Store) SetShareIncludeTranscription(ctx context.Context, enabled bool) error {
	return s.set(ctx, KeyShareTranscript, strconv.FormatBool(enabled))
}

// LanguagesFetchedAt returns when the language list was last fetched from
// the network, and false if it never was.
func (s *Store) LanguagesFetchedAt(ctx context.Context) (time.Time, bool) {
	value, ok, err := s.get(ctx, KeyLanguagesFetched)
	if err != nil || !ok {
		return time.Time{}, false
	}
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// ShouldRefreshLanguages reports whether the cached language list is
// missing or older than the configured TTL.
func (s *Store) ShouldRefreshLanguages(ctx context.Context) bool {
	ts, ok := s.LanguagesFetchedAt(ctx)
	if !ok {
		return true
	}
	return s.now().Sub(ts) > s.ttl
}

// LoadLanguages returns the cached language list in its saved order.
func (s *Store) LoadLanguages(ctx context.Context) ([]dict.Language, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT code, name, favorite FROM languages ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to read languages: %w", err)
	}
	defer rows.Close()

	var langs []dict.Language
	for rows.Next() {
		var l dict.Language
		if err := rows.Scan(&l.Code, &l.Name, &l.Favorite); err != nil {
			return nil, fmt.Errorf("failed to read languages: %w", err)
		}
		langs = append(langs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read languages: %w", err)
	}

	if len(langs) == 0 {
		return nil, ErrNoCachedLanguages
	}
	return langs, nil
}

// SaveLanguages replaces the cached list. A zero fetchedAt keeps the
// stored fetch timestamp, so local edits do not extend the cache lifetime.
func (s *Store) SaveLanguages(ctx context.Context, langs []dict.Language, fetchedAt time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to save languages: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM languages`); err != nil {
		return fmt.Errorf("failed to save languages: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO languages (code, name, favorite, position) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to save languages: %w", err)
	}
	defer stmt.Close()

	for i, l := range langs {
		if _, err := stmt.ExecContext(ctx, l.Code, l.Name, l.Favorite, i); err != nil {
			return fmt.Errorf("failed to save language %s: %w", l.Code, err)
		}
	}

	if !fetchedAt.IsZero() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			KeyLanguagesFetched, fetchedAt.UTC().Format(time.RFC3339Nano), s.now()); err != nil {
			return fmt.Errorf("failed to save languages timestamp: %w", err)
		}
	}

	return tx.Commit()
}

// ExpireLanguages forgets the fetch timestamp so the next load refetches
// the list. Cached rows, and with them the favorites, are kept.
func (s *Store) ExpireLanguages(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM preferences WHERE key = ?`, KeyLanguagesFetched); err != nil {
		return fmt.Errorf("failed to expire languages: %w", err)
	}
	return nil
}

// ClearLanguages drops the cached list and its timestamp and reports how
// many languages were removed.
func (s *Store) ClearLanguages(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM languages`)
	if err != nil {
		return 0, err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM preferences WHERE key = ?`, KeyLanguagesFetched); err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Preference is a stored key/value pair.
type Preference struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

// Preferences returns every stored preference ordered by key.
func (s *Store) Preferences(ctx context.Context) ([]Preference, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value, updated_at FROM preferences ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prefs []Preference
	for rows.Next() {
		var p Preference
		if err := rows.Scan(&p.Key, &p.Value, &p.UpdatedAt); err != nil {
			return nil, err
		}
		prefs = append(prefs, p)
	}
	return prefs, rows.Err()
}
