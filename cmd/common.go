/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/valpere/peredict/internal/dict"
	"github.com/valpere/peredict/internal/dictapi"
	"github.com/valpere/peredict/internal/i18n"
	"github.com/valpere/peredict/internal/orchestrator"
	"github.com/valpere/peredict/internal/settings"
)

// buildClient constructs the dictionary backend selected by the backend key.
func buildClient(backend string) (dictapi.Client, error) {
	switch backend {
	case "", "yandex":
		return dictapi.NewYandexClient(viper.GetString("base_url"), logger), nil
	case "google":
		return dictapi.NewGoogleClient(viper.GetString("google_credentials"), logger), nil
	default:
		return nil, fmt.Errorf("unknown backend: %s", backend)
	}
}

func openSettings() (*settings.Store, error) {
	path := viper.GetString("db")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	store, err := settings.New(path, settings.WithLanguagesTTL(viper.GetDuration("languages_ttl")))
	if err != nil {
		return nil, fmt.Errorf("failed to open settings: %w", err)
	}
	return store, nil
}

// uiLocale is the base language of the interface, also used as the
// device language when no selection is stored.
func uiLocale() string {
	lang := viper.GetString("ui_lang")
	if lang == "" {
		lang = i18n.DetectLocale()
	}
	return i18n.BaseLanguage(lang)
}

func newOrchestrator(client dictapi.Client, store orchestrator.Settings) *orchestrator.Orchestrator {
	locale := uiLocale()
	return orchestrator.New(client, store, orchestrator.Config{
		APIKey:         viper.GetString("api_key"),
		UILocale:       locale,
		DeviceLanguage: locale,
		Debounce:       viper.GetDuration("debounce"),
		RequestTimeout: viper.GetDuration("request_timeout"),
		Logger:         logger,
	})
}

// session bundles the services a command works with.
type session struct {
	store *settings.Store
	orch  *orchestrator.Orchestrator
}

func openSession() (*session, error) {
	client, err := buildClient(viper.GetString("backend"))
	if err != nil {
		return nil, err
	}
	store, err := openSettings()
	if err != nil {
		return nil, err
	}
	return &session{store: store, orch: newOrchestrator(client, store)}, nil
}

func (s *session) Close() {
	s.orch.Close()
	s.store.Close()
}

// cliView collects orchestrator output for non-interactive commands.
// Lookup callbacks run on the goroutine that called LookupNow.
type cliView struct {
	loaded chan bool

	result   *dict.Result
	empty    bool
	category orchestrator.ErrorCategory
}

func newCLIView() *cliView {
	return &cliView{loaded: make(chan bool, 1)}
}

func (v *cliView) OnLanguagesReady(langs []dict.Language, sourceIndex, destIndex int) {
	select {
	case v.loaded <- true:
	default:
	}
}

func (v *cliView) OnLanguagesLoadFailed() {
	select {
	case v.loaded <- false:
	default:
	}
}

func (v *cliView) OnLookupSucceeded(result *dict.Result) {
	v.result, v.empty, v.category = result, false, 0
}

func (v *cliView) OnLookupEmpty() {
	v.result, v.empty, v.category = nil, true, 0
}

func (v *cliView) OnLookupFailed(category orchestrator.ErrorCategory) {
	v.result, v.empty, v.category = nil, false, category
}

// loadLanguages attaches view and blocks until the language list is ready.
func loadLanguages(ctx context.Context, orch *orchestrator.Orchestrator, view *cliView) error {
	orch.Attach(view)
	orch.LoadLanguages()
	select {
	case ok := <-view.loaded:
		if !ok {
			return errors.New(i18n.T("Failed to load languages"))
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// categoryMessage is the user-facing text for a failed lookup.
func categoryMessage(c orchestrator.ErrorCategory) string {
	switch c {
	case orchestrator.CategoryConnectivity:
		return i18n.T("No connection")
	case orchestrator.CategoryUnsupportedLanguagePair:
		return i18n.T("This language pair is not supported")
	case orchestrator.CategoryRequestTooLarge:
		return i18n.T("The request is too long")
	case orchestrator.CategoryRateLimitedOrUnauthorized:
		return i18n.T("Error")
	default:
		return i18n.T("Something went wrong, please try again")
	}
}
