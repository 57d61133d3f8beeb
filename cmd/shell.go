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
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/valpere/peredict/internal/dict"
	"github.com/valpere/peredict/internal/i18n"
	"github.com/valpere/peredict/internal/orchestrator"
)

const shellHelp = `Type a word or phrase to look it up. Commands:
  :swap           swap source and destination languages
  :src CODE       set the source language
  :dst CODE       set the destination language
  :langs          list languages (or retry loading them)
  :fav CODE       mark a language as favorite
  :unfav CODE     remove a language from favorites
  :history [N]    list looked-up texts, or look up entry N again
  :share          print the last result for sharing
  :help           show this help
  :quit           exit`

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive lookup shell",
	Long: `Start an interactive shell. Typed lines are looked up after a short
quiet period; typing again before the result arrives replaces the pending
lookup. Type :help for the list of commands.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		if addr := viper.GetString("metrics_addr"); addr != "" {
			srv := startMetricsServer(addr)
			defer srv.Close()
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sh := newShell(s.orch, cmd.OutOrStdout())
		s.orch.Attach(sh)
		defer s.orch.Detach()

		fmt.Fprintln(sh.out, "peredict "+version+", type :help for commands")
		s.orch.LoadLanguages()
		return sh.run(ctx, cmd.InOrStdin())
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)

	shellCmd.Flags().Duration("debounce", orchestrator.DefaultDebounce, "Quiet period before a typed line is looked up")
	shellCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	viper.BindPFlag("debounce", shellCmd.Flags().Lookup("debounce"))
	viper.BindPFlag("metrics_addr", shellCmd.Flags().Lookup("metrics-addr"))
}

func startMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	logger.WithFields(logrus.Fields{
		"addr": addr,
	}).Info("Serving metrics")

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("Metrics server failed")
		}
	}()
	return srv
}

// shell is the interactive presentation surface. It implements
// orchestrator.View and serializes everything it writes.
type shell struct {
	orch *orchestrator.Orchestrator

	mu  sync.Mutex
	out io.Writer

	// last is the most recently submitted text, looked up again when the
	// language pair changes. Only execute touches it.
	last string
}

func newShell(orch *orchestrator.Orchestrator, out io.Writer) *shell {
	return &shell{orch: orch, out: out}
}

func (s *shell) println(a ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.out, a...)
}

func (s *shell) OnLanguagesReady(langs []dict.Language, sourceIndex, destIndex int) {
	s.println(fmt.Sprintf("%s -> %s (%d)", langs[sourceIndex], langs[destIndex], len(langs)))
}

func (s *shell) OnLanguagesLoadFailed() {
	s.println(i18n.T("Failed to load languages") + " (:langs)")
}

func (s *shell) OnLookupSucceeded(result *dict.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := writeResult(s.out, "text", result); err != nil {
		logger.WithError(err).Warn("Failed to render result")
	}
}

func (s *shell) OnLookupEmpty() {
	s.println(i18n.T("Nothing found"))
}

func (s *shell) OnLookupFailed(category orchestrator.ErrorCategory) {
	s.println(categoryMessage(category))
}

// run reads lines from in until EOF, :quit or ctx is done.
func (s *shell) run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	errc := make(chan error, 1)
	// The reader stays blocked in Scan after ctx is done when in is a
	// terminal; it is abandoned and ends with the process.
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- scanner.Err()
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return <-errc
			}
			if s.execute(line) {
				return nil
			}
		}
	}
}

// execute handles one input line and reports whether the shell should exit.
func (s *shell) execute(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, ":") {
		s.submit(line)
		return false
	}

	fields := strings.Fields(line[1:])
	if len(fields) == 0 {
		return false
	}
	name, args := fields[0], fields[1:]

	switch name {
	case "q", "quit", "exit":
		return true
	case "help":
		s.println(shellHelp)
	case "swap":
		if !s.orch.SwapLanguages() {
			s.println(i18n.T("Languages are the same"))
			return false
		}
		s.printSelection()
		s.relookup()
	case "src", "dst":
		if len(args) != 1 {
			s.println("usage: :" + name + " CODE")
			return false
		}
		var changed bool
		var err error
		if name == "src" {
			changed, err = s.orch.SelectLanguages(args[0], "")
		} else {
			changed, err = s.orch.SelectLanguages("", args[0])
		}
		if err != nil {
			s.printError(err)
			return false
		}
		s.printSelection()
		if changed {
			s.relookup()
		}
	case "langs":
		src, ok := s.orch.SourceLanguage()
		if !ok {
			s.orch.LoadLanguages()
			return false
		}
		dst, _ := s.orch.DestLanguage()
		s.mu.Lock()
		err := writeLanguages(s.out, "text", s.orch.Languages(), src.Code, dst.Code)
		s.mu.Unlock()
		if err != nil {
			s.printError(err)
		}
	case "fav", "unfav":
		if len(args) != 1 {
			s.println("usage: :" + name + " CODE")
			return false
		}
		if err := s.orch.SetFavorite(args[0], name == "fav"); err != nil {
			s.printError(err)
		}
	case "history":
		s.history(args)
	case "share":
		title, body, ok := s.orch.ShareResult()
		if !ok {
			s.println(i18n.T("Nothing to share"))
			return false
		}
		s.println(title + "\n\n" + body)
	default:
		s.println("unknown command :" + name + ", type :help")
	}
	return false
}

func (s *shell) history(args []string) {
	entries := s.orch.History()
	if len(args) == 0 {
		s.mu.Lock()
		for i, text := range entries {
			fmt.Fprintf(s.out, "%3d  %s\n", i+1, text)
		}
		s.mu.Unlock()
		return
	}

	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(entries) {
		s.println("no history entry " + args[0])
		return
	}
	s.last = entries[n-1]
	s.orch.LookupNow(s.last)
}

func (s *shell) submit(text string) {
	s.last = text
	s.orch.Submit(text)
}

// relookup repeats the last lookup for a new language pair.
func (s *shell) relookup() {
	if s.last != "" {
		s.orch.Submit(s.last)
	}
}

func (s *shell) printSelection() {
	src, _ := s.orch.SourceLanguage()
	dst, _ := s.orch.DestLanguage()
	s.println(fmt.Sprintf("%s -> %s", src, dst))
}

func (s *shell) printError(err error) {
	if errors.Is(err, orchestrator.ErrLanguagesNotLoaded) {
		s.println(i18n.T("Languages are not loaded yet"))
		return
	}
	s.println(err.Error())
}
