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
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/valpere/peredict/internal/dict"
	"github.com/valpere/peredict/internal/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show and change stored preferences",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show stored preferences",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSettings()
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := cmd.Context()
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "source\t%s\n", store.SourceLangCode(ctx))
		fmt.Fprintf(w, "dest\t%s\n", store.DestLangCode(ctx))
		fmt.Fprintf(w, "reverse\t%v\n", store.LookupReverse(ctx))
		fmt.Fprintf(w, "share-transcription\t%v\n", store.ShareIncludeTranscription(ctx))
		fmt.Fprintf(w, "filter\t%s\n", formatFlags(store.SearchFilter(ctx)))
		if ts, ok := store.LanguagesFetchedAt(ctx); ok {
			fmt.Fprintf(w, "languages fetched\t%s (stale: %v)\n",
				ts.Local().Format("2006-01-02 15:04"), store.ShouldRefreshLanguages(ctx))
		} else {
			fmt.Fprintf(w, "languages fetched\tnever\n")
		}
		fmt.Fprintf(w, "database\t%s\n", viper.GetString("db"))
		return w.Flush()
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a preference",
	Long: `Change a stored preference. Keys:
  source                 source language code
  dest                   destination language code
  reverse                retry empty lookups in the reverse direction (true/false)
  share-transcription    include the transcription when sharing (true/false)
  filter                 comma-separated lookup filters: family, morpho, pos-filter, or none`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSettings()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := setPreference(cmd.Context(), store, args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Set %s = %s\n", args[0], args[1])
		return nil
	},
}

func setPreference(ctx context.Context, store *settings.Store, key, value string) error {
	switch key {
	case "source":
		return store.SetSourceLangCode(ctx, value)
	case "dest":
		return store.SetDestLangCode(ctx, value)
	case "reverse", "share-transcription":
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %q", key, value)
		}
		if key == "reverse" {
			return store.SetLookupReverse(ctx, enabled)
		}
		return store.SetShareIncludeTranscription(ctx, enabled)
	case "filter":
		flags, err := parseFlags(value)
		if err != nil {
			return err
		}
		return store.SetSearchFilter(ctx, flags)
	default:
		return fmt.Errorf("unknown setting: %s", key)
	}
}

func parseFlags(value string) (dict.LookupFlags, error) {
	var flags dict.LookupFlags
	if value == "" || value == "none" {
		return 0, nil
	}
	for _, name := range strings.Split(value, ",") {
		flag, ok := dict.ParseLookupFlag(strings.TrimSpace(name))
		if !ok {
			return 0, fmt.Errorf("unknown filter: %s", name)
		}
		flags |= flag
	}
	return flags, nil
}

func formatFlags(flags dict.LookupFlags) string {
	names := flags.Names()
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ",")
}

func init() {
	rootCmd.AddCommand(settingsCmd)

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
}
