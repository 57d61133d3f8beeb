// Package orchestrator turns raw user input into dictionary lookups.
//
// An Orchestrator owns the language selection, debounces typed text,
// keeps at most one lookup in flight, retries empty lookups in the reverse
// direction and reports everything to an optional, replaceable View.
package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/valpere/peredict/internal/debounce"
	"github.com/valpere/peredict/internal/dict"
	"github.com/valpere/peredict/internal/dictapi"
)

const (
	// DefaultDebounce is the quiet period after the last keystroke before a
	// lookup is sent.
	DefaultDebounce = 450 * time.Millisecond
	// DefaultRequestTimeout bounds a lookup or a language list fetch.
	DefaultRequestTimeout = 30 * time.Second
)

// View renders orchestrator output. Callbacks run on orchestrator
// goroutines. Lookup callbacks are serialized and must not call LookupNow.
type View interface {
	OnLanguagesReady(langs []dict.Language, sourceIndex, destIndex int)
	OnLanguagesLoadFailed()
	OnLookupSucceeded(result *dict.Result)
	OnLookupEmpty()
	OnLookupFailed(category ErrorCategory)
}

// Settings is the persisted preference store the orchestrator reads and
// writes. Getters return defaults instead of failing.
type Settings interface {
	SourceLangCode(ctx context.Context) string
	SetSourceLangCode(ctx context.Context, code string) error
	DestLangCode(ctx context.Context) string
	SetDestLangCode(ctx context.Context, code string) error
	SearchFilter(ctx context.Context) dict.LookupFlags
	LookupReverse(ctx context.Context) bool
	ShareIncludeTranscription(ctx context.Context) bool
	ShouldRefreshLanguages(ctx context.Context) bool
	LoadLanguages(ctx context.Context) ([]dict.Language, error)
	SaveLanguages(ctx context.Context, langs []dict.Language, fetchedAt time.Time) error
}

type Config struct {
	APIKey string
	// UILocale is sent with lookups and used to name languages.
	UILocale string
	// DeviceLanguage is the fallback language code when no selection is stored.
	DeviceLanguage string
	Debounce       time.Duration
	RequestTimeout time.Duration
	Logger         *logrus.Logger
}

// State is the phase of the lookup slot.
type State int

const (
	StateIdle State = iota
	StateDebouncing
	StateInFlight
	StateInFlightFallback
	StateResolved
	StateEmpty
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDebouncing:
		return "debouncing"
	case StateInFlight:
		return "in-flight"
	case StateInFlightFallback:
		return "in-flight-fallback"
	case StateResolved:
		return "resolved"
	case StateEmpty:
		return "empty"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type Orchestrator struct {
	client   dictapi.Client
	settings Settings
	config   Config
	logger   *logrus.Logger

	ctx       context.Context
	stop      context.CancelFunc
	debouncer *debounce.Debouncer[string]

	// deliverMu orders lookup starts against result delivery, so a result
	// is never delivered after a newer lookup has started.
	deliverMu sync.Mutex

	mu           sync.Mutex
	view         View
	closed       bool
	langs        []dict.Language
	source       dict.Language
	dest         dict.Language
	ready        bool
	langsLoading bool
	cancelLangs  context.CancelFunc
	state        State
	seq          uint64
	cancelLookup context.CancelFunc
	lastResult   *dict.Result
	history      []string
}

func New(client dictapi.Client, settings Settings, config Config) *Orchestrator {
	if config.Debounce <= 0 {
		config.Debounce = DefaultDebounce
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = DefaultRequestTimeout
	}
	if config.UILocale == "" {
		config.UILocale = "en"
	}
	if config.DeviceLanguage == "" {
		config.DeviceLanguage = config.UILocale
	}
	logger := config.Logger
	if logger == nil {
		logger = logrus.New()
	}

	ctx, stop := context.WithCancel(context.Background())
	o := &Orchestrator{
		client:   client,
		settings: settings,
		config:   config,
		logger:   logger,
		ctx:      ctx,
		stop:     stop,
	}
	o.debouncer = debounce.New(config.Debounce, func(text string) {
		o.executeLookup(text)
	})
	return o
}

// Attach makes view the current observer, replacing any previous one.
func (o *Orchestrator) Attach(view View) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.view = view
}

// Detach drops the observer. Work in progress keeps running and its
// results are stored but not delivered.
func (o *Orchestrator) Detach() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.view = nil
}

// Close cancels the debounce window, the in-flight lookup and any language
// load. It is safe to call more than once.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	if o.cancelLookup != nil {
		o.cancelLookup()
		o.cancelLookup = nil
	}
	if o.cancelLangs != nil {
		o.cancelLangs()
		o.cancelLangs = nil
	}
	o.langsLoading = false
	o.state = StateIdle
	o.mu.Unlock()

	o.debouncer.Stop()
	o.stop()
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// RequestInProgress reports whether a lookup request is outstanding.
func (o *Orchestrator) RequestInProgress() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cancelLookup != nil
}

func (o *Orchestrator) LanguagesLoading() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.langsLoading
}
