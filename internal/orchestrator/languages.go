package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/valpere/peredict/internal/dict"
)

// LoadLanguages resolves the language list and reports it through
// View.OnLanguagesReady. When languages are already resident the view is
// notified synchronously. A call made while a load is running is ignored.
// Failures are reported once through View.OnLanguagesLoadFailed and are
// not retried until LoadLanguages is called again.
func (o *Orchestrator) LoadLanguages() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	if o.ready {
		langs, si, di := o.snapshotLocked()
		view := o.view
		o.mu.Unlock()
		if view != nil {
			view.OnLanguagesReady(langs, si, di)
		}
		return
	}
	if o.langsLoading {
		o.mu.Unlock()
		return
	}
	o.langsLoading = true
	ctx, cancel := context.WithTimeout(o.ctx, o.config.RequestTimeout)
	o.cancelLangs = cancel
	o.mu.Unlock()

	go o.fetchLanguages(ctx, cancel)
}

func (o *Orchestrator) fetchLanguages(ctx context.Context, cancel context.CancelFunc) {
	defer cancel()

	langs, fetched, err := o.resolveLanguages(ctx)
	if err != nil {
		o.mu.Lock()
		o.langsLoading = false
		o.cancelLangs = nil
		closed, view := o.closed, o.view
		o.mu.Unlock()

		if closed {
			return
		}
		o.logger.WithError(err).Debug("Failed to load languages")
		if view != nil {
			view.OnLanguagesLoadFailed()
		}
		return
	}

	source := pickLanguage(langs, o.settings.SourceLangCode(o.ctx), o.config.DeviceLanguage)
	dest := pickLanguage(langs, o.settings.DestLangCode(o.ctx), "")
	dict.SortLanguages(langs)

	if fetched {
		if err := o.settings.SaveLanguages(o.ctx, langs, time.Now()); err != nil {
			o.logger.WithError(err).Warn("Failed to cache languages")
		}
	}
	o.persistSelection(source, dest)

	o.mu.Lock()
	o.langsLoading = false
	o.cancelLangs = nil
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.langs = langs
	o.source = source
	o.dest = dest
	o.ready = true
	snapshot, si, di := o.snapshotLocked()
	view := o.view
	o.mu.Unlock()

	o.logger.WithFields(logrus.Fields{
		"count":   len(snapshot),
		"fetched": fetched,
		"source":  source.Code,
		"dest":    dest.Code,
	}).Debug("Languages ready")

	if view != nil {
		view.OnLanguagesReady(snapshot, si, di)
	}
}

// resolveLanguages reads the cache when it is fresh and readable and
// falls back to the network otherwise. fetched reports a network fetch.
func (o *Orchestrator) resolveLanguages(ctx context.Context) (langs []dict.Language, fetched bool, err error) {
	if !o.settings.ShouldRefreshLanguages(ctx) {
		cached, err := o.settings.LoadLanguages(ctx)
		if err == nil && len(cached) > 0 {
			return cached, false, nil
		}
		o.logger.WithError(err).Debug("Language cache unreadable, fetching from network")
	}

	langs, err = o.client.GetLanguages(ctx, o.config.APIKey, o.config.UILocale)
	if err != nil {
		return nil, false, err
	}
	if len(langs) == 0 {
		return nil, false, errNoLanguages
	}
	o.carryFavorites(ctx, langs)
	return langs, true, nil
}

// carryFavorites copies favorite marks from the cached list onto a freshly
// fetched one. A missing or unreadable cache leaves langs untouched.
func (o *Orchestrator) carryFavorites(ctx context.Context, langs []dict.Language) {
	cached, err := o.settings.LoadLanguages(ctx)
	if err != nil {
		return
	}
	favorites := make(map[string]bool)
	for _, l := range cached {
		if l.Favorite {
			favorites[l.Code] = true
		}
	}
	for i := range langs {
		if favorites[langs[i].Code] {
			langs[i].Favorite = true
		}
	}
}

// pickLanguage selects by stored code, then by the device language when
// one is given, then falls back to the first language of the list. Only
// the source side uses the device language.
func pickLanguage(langs []dict.Language, stored, device string) dict.Language {
	code := stored
	if code == "" {
		code = device
	}
	if i := dict.IndexOf(langs, code); i >= 0 {
		return langs[i]
	}
	return langs[0]
}

func (o *Orchestrator) persistSelection(source, dest dict.Language) {
	if err := o.settings.SetSourceLangCode(o.ctx, source.Code); err != nil {
		o.logger.WithError(err).Warn("Failed to save source language")
	}
	if err := o.settings.SetDestLangCode(o.ctx, dest.Code); err != nil {
		o.logger.WithError(err).Warn("Failed to save destination language")
	}
}

func (o *Orchestrator) snapshotLocked() ([]dict.Language, int, int) {
	langs := append([]dict.Language(nil), o.langs...)
	return langs, dict.IndexOf(langs, o.source.Code), dict.IndexOf(langs, o.dest.Code)
}

// Languages returns a copy of the current sorted language list.
func (o *Orchestrator) Languages() []dict.Language {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]dict.Language(nil), o.langs...)
}

// SourceLanguage returns the selected source language, if languages are loaded.
func (o *Orchestrator) SourceLanguage() (dict.Language, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.source, o.ready
}

// DestLanguage returns the selected destination language, if languages are loaded.
func (o *Orchestrator) DestLanguage() (dict.Language, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.dest, o.ready
}

// SetSourceLanguage selects the source language by its position in the
// current list and reports whether the selection changed.
func (o *Orchestrator) SetSourceLanguage(index int) (bool, error) {
	return o.setLanguage(index, &o.source, o.settings.SetSourceLangCode)
}

// SetDestLanguage selects the destination language by its position in the
// current list and reports whether the selection changed.
func (o *Orchestrator) SetDestLanguage(index int) (bool, error) {
	return o.setLanguage(index, &o.dest, o.settings.SetDestLangCode)
}

func (o *Orchestrator) setLanguage(index int, slot *dict.Language, persist func(context.Context, string) error) (bool, error) {
	o.mu.Lock()
	if !o.ready {
		o.mu.Unlock()
		return false, ErrLanguagesNotLoaded
	}
	if index < 0 || index >= len(o.langs) {
		o.mu.Unlock()
		return false, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	l := o.langs[index]
	if slot.Equal(l) {
		o.mu.Unlock()
		return false, nil
	}
	*slot = l
	o.mu.Unlock()

	if err := persist(o.ctx, l.Code); err != nil {
		return true, fmt.Errorf("failed to save language %s: %w", l.Code, err)
	}
	return true, nil
}

// SelectLanguages selects source and destination by code and reports
// whether either side changed. An empty code leaves that side unchanged.
func (o *Orchestrator) SelectLanguages(sourceCode, destCode string) (bool, error) {
	changed := false
	for _, sel := range []struct {
		code string
		set  func(int) (bool, error)
	}{
		{sourceCode, o.SetSourceLanguage},
		{destCode, o.SetDestLanguage},
	} {
		if sel.code == "" {
			continue
		}
		o.mu.Lock()
		ready, idx := o.ready, dict.IndexOf(o.langs, sel.code)
		o.mu.Unlock()
		if !ready {
			return changed, ErrLanguagesNotLoaded
		}
		if idx < 0 {
			return changed, fmt.Errorf("%w: %s", ErrUnknownLanguage, sel.code)
		}
		c, err := sel.set(idx)
		changed = changed || c
		if err != nil {
			return changed, err
		}
	}
	return changed, nil
}

// SwapLanguages exchanges source and destination. It refuses and returns
// false when both are the same language.
func (o *Orchestrator) SwapLanguages() bool {
	o.mu.Lock()
	if !o.ready || o.source.Equal(o.dest) {
		o.mu.Unlock()
		return false
	}
	o.source, o.dest = o.dest, o.source
	source, dest := o.source, o.dest
	o.mu.Unlock()

	o.persistSelection(source, dest)
	return true
}

// SetFavorite marks or unmarks a language as favorite, re-sorts the list,
// saves it and reports the new order to the view.
func (o *Orchestrator) SetFavorite(code string, favorite bool) error {
	o.mu.Lock()
	if !o.ready {
		o.mu.Unlock()
		return ErrLanguagesNotLoaded
	}
	i := dict.IndexOf(o.langs, code)
	if i < 0 {
		o.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownLanguage, code)
	}
	o.langs[i].Favorite = favorite
	dict.SortLanguages(o.langs)
	langs, si, di := o.snapshotLocked()
	view := o.view
	o.mu.Unlock()

	if err := o.settings.SaveLanguages(o.ctx, langs, time.Time{}); err != nil {
		return fmt.Errorf("failed to save languages: %w", err)
	}
	if view != nil {
		view.OnLanguagesReady(langs, si, di)
	}
	return nil
}
