package orchestrator

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/valpere/peredict/internal/dict"
	"github.com/valpere/peredict/internal/dictapi"
)

type fakeClient struct {
	languagesFunc func(ctx context.Context) ([]dict.Language, error)
	lookupFunc    func(ctx context.Context, req dictapi.LookupRequest) ([]dict.Definition, error)
	langCalls     atomic.Int32

	mu       sync.Mutex
	requests []dictapi.LookupRequest
}

func (f *fakeClient) Name() string { return "fake" }

func (f *fakeClient) GetLanguages(ctx context.Context, apiKey, uiLocale string) ([]dict.Language, error) {
	f.langCalls.Add(1)
	if f.languagesFunc != nil {
		return f.languagesFunc(ctx)
	}
	return []dict.Language{{Code: "en", Name: "English"}, {Code: "fr", Name: "French"}}, nil
}

func (f *fakeClient) Lookup(ctx context.Context, apiKey string, req dictapi.LookupRequest) ([]dict.Definition, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.lookupFunc != nil {
		return f.lookupFunc(ctx, req)
	}
	return echoDefinitions(req), nil
}

func (f *fakeClient) Requests() []dictapi.LookupRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]dictapi.LookupRequest(nil), f.requests...)
}

func echoDefinitions(req dictapi.LookupRequest) []dict.Definition {
	return []dict.Definition{{
		Text: req.Text,
		Pos:  "noun",
		Ts:   "ts",
		Tr:   []dict.Translation{{Text: req.Text + "-" + req.Dest}},
	}}
}

type fakeSettings struct {
	mu        sync.Mutex
	source    string
	dest      string
	filter    dict.LookupFlags
	reverse   bool
	share     bool
	refresh   bool
	cached    []dict.Language
	loadErr   error
	saved     []dict.Language
	savedAt   time.Time
	saveCalls int
}

func newFakeSettings() *fakeSettings {
	return &fakeSettings{reverse: true, share: true, refresh: true}
}

func (s *fakeSettings) SourceLangCode(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

func (s *fakeSettings) SetSourceLangCode(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.source = code
	return nil
}

func (s *fakeSettings) DestLangCode(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dest
}

func (s *fakeSettings) SetDestLangCode(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dest = code
	return nil
}

func (s *fakeSettings) SearchFilter(ctx context.Context) dict.LookupFlags {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

func (s *fakeSettings) LookupReverse(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reverse
}

func (s *fakeSettings) ShareIncludeTranscription(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.share
}

func (s *fakeSettings) ShouldRefreshLanguages(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refresh
}

func (s *fakeSettings) LoadLanguages(ctx context.Context) ([]dict.Language, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return append([]dict.Language(nil), s.cached...), nil
}

func (s *fakeSettings) SaveLanguages(ctx context.Context, langs []dict.Language, fetchedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append([]dict.Language(nil), langs...)
	s.savedAt = fetchedAt
	s.saveCalls++
	return nil
}

func (s *fakeSettings) selection() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source, s.dest
}

type event struct {
	kind        string
	langs       []dict.Language
	sourceIndex int
	destIndex   int
	result      *dict.Result
	category    ErrorCategory
}

type recordingView struct {
	events chan event
}

func newRecordingView() *recordingView {
	return &recordingView{events: make(chan event, 32)}
}

func (v *recordingView) OnLanguagesReady(langs []dict.Language, sourceIndex, destIndex int) {
	v.events <- event{kind: "ready", langs: langs, sourceIndex: sourceIndex, destIndex: destIndex}
}

func (v *recordingView) OnLanguagesLoadFailed() {
	v.events <- event{kind: "load-failed"}
}

func (v *recordingView) OnLookupSucceeded(result *dict.Result) {
	v.events <- event{kind: "succeeded", result: result}
}

func (v *recordingView) OnLookupEmpty() {
	v.events <- event{kind: "empty"}
}

func (v *recordingView) OnLookupFailed(category ErrorCategory) {
	v.events <- event{kind: "failed", category: category}
}

func (v *recordingView) next(t *testing.T) event {
	t.Helper()
	select {
	case e := <-v.events:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for view event")
		return event{}
	}
}

func (v *recordingView) expectKind(t *testing.T, kind string) event {
	t.Helper()
	e := v.next(t)
	if e.kind != kind {
		t.Fatalf("event = %q, want %q", e.kind, kind)
	}
	return e
}

func (v *recordingView) expectQuiet(t *testing.T, d time.Duration) {
	t.Helper()
	select {
	case e := <-v.events:
		t.Fatalf("unexpected event %q", e.kind)
	case <-time.After(d):
	}
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestOrchestrator(t *testing.T, client *fakeClient, settings *fakeSettings, device string) (*Orchestrator, *recordingView) {
	t.Helper()
	o := New(client, settings, Config{
		APIKey:         "key",
		UILocale:       "en",
		DeviceLanguage: device,
		Debounce:       30 * time.Millisecond,
		RequestTimeout: 2 * time.Second,
		Logger:         quietLogger(),
	})
	t.Cleanup(o.Close)
	v := newRecordingView()
	o.Attach(v)
	return o, v
}

// readyOrchestrator returns an orchestrator with [en, fr] loaded, en as
// source and fr as destination.
func readyOrchestrator(t *testing.T, client *fakeClient, settings *fakeSettings) (*Orchestrator, *recordingView) {
	t.Helper()
	settings.source, settings.dest = "en", "fr"
	o, v := newTestOrchestrator(t, client, settings, "en")
	o.LoadLanguages()
	v.expectKind(t, "ready")
	return o, v
}
