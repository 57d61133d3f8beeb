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
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/valpere/peredict/internal/detector"
	"github.com/valpere/peredict/internal/i18n"
)

var (
	lookupSource string
	lookupTarget string
	lookupOutput string
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <text>",
	Short: "Look up a word or phrase",
	Long: `Look up a word or phrase in the selected language pair.

When nothing is found the lookup is retried in the reverse direction,
unless disabled with "peredict settings set reverse false".

Languages given with --source and --target are remembered for the next run.
Use --source auto to guess the source language from the text.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")

		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), viper.GetDuration("request_timeout"))
		defer cancel()

		view := newCLIView()
		if err := loadLanguages(ctx, s.orch, view); err != nil {
			return err
		}

		source := lookupSource
		if source == "auto" {
			source = ""
			if code, ok := detector.New().Guess(text, s.orch.Languages()); ok {
				source = code
				logger.WithField("lang", code).Info("Detected source language")
			}
		}
		if _, err := s.orch.SelectLanguages(source, lookupTarget); err != nil {
			return err
		}

		if !s.orch.LookupNow(text) {
			return errors.New(i18n.T("Nothing found"))
		}

		switch {
		case view.result != nil:
			return writeResult(cmd.OutOrStdout(), lookupOutput, view.result)
		case view.empty:
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("Nothing found"))
			return nil
		default:
			return errors.New(categoryMessage(view.category))
		}
	},
}

func init() {
	rootCmd.AddCommand(lookupCmd)

	lookupCmd.Flags().StringVarP(&lookupSource, "source", "s", "", "Source language code, or auto (default: last used)")
	lookupCmd.Flags().StringVarP(&lookupTarget, "target", "t", "", "Target language code (default: last used)")
	lookupCmd.Flags().StringVarP(&lookupOutput, "output", "o", "text", "Output format: text, json or yaml")
}
