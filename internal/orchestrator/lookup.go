package orchestrator

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/valpere/peredict/internal/dict"
	"github.com/valpere/peredict/internal/dictapi"
	"github.com/valpere/peredict/internal/sanitize"
)

// Submit queues text for lookup. Input that is empty after sanitizing is
// dropped. Submissions within the debounce window collapse to the last one.
func (o *Orchestrator) Submit(text string) {
	text = sanitize.Input(text)
	if text == "" {
		return
	}

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.state = StateDebouncing
	o.mu.Unlock()

	o.debouncer.Submit(text)
}

// LookupNow sanitizes text and looks it up immediately, bypassing the
// debounce window. It blocks until the lookup has been delivered and
// returns false when nothing was sent.
func (o *Orchestrator) LookupNow(text string) bool {
	text = sanitize.Input(text)
	if text == "" {
		return false
	}
	return o.executeLookup(text)
}

// executeLookup cancels the previous lookup and runs a new one for text.
func (o *Orchestrator) executeLookup(text string) bool {
	o.deliverMu.Lock()
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		o.deliverMu.Unlock()
		return false
	}
	if !o.ready {
		o.state = StateIdle
		o.mu.Unlock()
		o.deliverMu.Unlock()
		o.logger.WithField("text", text).Debug("Languages not loaded, dropping lookup")
		return false
	}

	if o.cancelLookup != nil {
		o.cancelLookup()
	}
	o.seq++
	seq := o.seq
	ctx, cancel := context.WithTimeout(o.ctx, o.config.RequestTimeout)
	o.cancelLookup = cancel
	o.state = StateInFlight

	req := dictapi.LookupRequest{
		Source: o.source.Code,
		Dest:   o.dest.Code,
		Text:   text,
		UI:     o.config.UILocale,
	}
	o.mu.Unlock()
	o.deliverMu.Unlock()

	req.Flags = o.settings.SearchFilter(ctx)

	log := o.logger.WithFields(logrus.Fields{
		"request_id": uuid.NewString(),
		"lang":       req.Pair(),
		"text":       text,
	})
	log.Debug("Looking up text")

	defs, err := o.client.Lookup(ctx, o.config.APIKey, req)
	if err == nil && len(defs) == 0 && o.settings.LookupReverse(ctx) && o.advance(seq, StateInFlightFallback) {
		rev := req.Reverse()
		log.WithField("reverse_lang", rev.Pair()).Debug("No results, looking up in reverse direction")
		defs, err = o.client.Lookup(ctx, o.config.APIKey, rev)
	}

	o.finishLookup(seq, cancel, defs, err, log)
	return true
}

// advance moves the lookup slot to state if seq is still the current lookup.
// A pending debounce keeps the slot in StateDebouncing.
func (o *Orchestrator) advance(seq uint64, state State) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed || seq != o.seq {
		return false
	}
	o.state = state
	if o.debouncer.Pending() {
		o.state = StateDebouncing
	}
	return true
}

func (o *Orchestrator) finishLookup(seq uint64, cancel context.CancelFunc, defs []dict.Definition, err error, log *logrus.Entry) {
	cancel()

	o.deliverMu.Lock()
	defer o.deliverMu.Unlock()

	o.mu.Lock()
	if o.closed || seq != o.seq {
		o.mu.Unlock()
		log.Debug("Discarding result of a superseded lookup")
		return
	}
	o.cancelLookup = nil

	var result *dict.Result
	var category ErrorCategory
	if err != nil {
		category = Categorize(err)
		o.state = StateFailed
		log.WithError(err).WithField("category", category.String()).Debug("Lookup failed")
	} else if result = dict.NewResult(defs); result == nil {
		o.state = StateEmpty
		log.Debug("Lookup found nothing")
	} else {
		o.state = StateResolved
		o.lastResult = result
		o.addHistoryLocked(result.Text)
		log.WithField("entries", len(result.Entries)).Debug("Lookup succeeded")
	}
	if o.debouncer.Pending() {
		o.state = StateDebouncing
	}
	view := o.view
	o.mu.Unlock()

	if view == nil {
		return
	}
	switch {
	case err != nil:
		view.OnLookupFailed(category)
	case result == nil:
		view.OnLookupEmpty()
	default:
		view.OnLookupSucceeded(result)
	}
}

func (o *Orchestrator) addHistoryLocked(text string) {
	for _, h := range o.history {
		if h == text {
			return
		}
	}
	o.history = append(o.history, text)
}

// LastResult returns the most recent successful lookup, or nil.
func (o *Orchestrator) LastResult() *dict.Result {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastResult
}

// History returns the distinct looked-up texts in first-lookup order.
func (o *Orchestrator) History() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.history...)
}

// ShareResult renders the last result for sharing: a title line (with the
// transcription when the preference allows it) and the translations.
func (o *Orchestrator) ShareResult() (title, body string, ok bool) {
	result := o.LastResult()
	if result == nil {
		return "", "", false
	}

	title = result.Text
	if result.Transcription != "" && o.settings.ShareIncludeTranscription(o.ctx) {
		title = fmt.Sprintf("%s [%s]", result.Text, result.Transcription)
	}
	return title, result.String(), true
}
