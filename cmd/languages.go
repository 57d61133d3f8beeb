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

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	languagesOutput string
	favoriteOff     bool
)

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "Manage the cached language list",
	Long:  `List, refresh, and clear the language list cached in the settings database.`,
}

var languagesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available languages",
	Long: `List available languages, favorites first. The list is fetched from the
backend when the cache is missing or stale.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listLanguages(cmd)
	},
}

var languagesRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Fetch the language list from the backend again",
	Long:  `Fetch the language list from the backend again. Favorites are kept.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSettings()
		if err != nil {
			return err
		}
		err = store.ExpireLanguages(cmd.Context())
		store.Close()
		if err != nil {
			return err
		}
		return listLanguages(cmd)
	},
}

var languagesClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the cached language list",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSettings()
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := store.ClearLanguages(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to clear languages: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d cached languages.\n", n)
		return nil
	},
}

var languagesFavoriteCmd = &cobra.Command{
	Use:   "favorite <code>",
	Short: "Mark a language as favorite (or unmark it with --off)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), viper.GetDuration("request_timeout"))
		defer cancel()
		if err := loadLanguages(ctx, s.orch, newCLIView()); err != nil {
			return err
		}
		if err := s.orch.SetFavorite(args[0], !favoriteOff); err != nil {
			return err
		}

		if favoriteOff {
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from favorites\n", args[0])
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s to favorites\n", args[0])
		}
		return nil
	},
}

func listLanguages(cmd *cobra.Command) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), viper.GetDuration("request_timeout"))
	defer cancel()
	if err := loadLanguages(ctx, s.orch, newCLIView()); err != nil {
		return err
	}

	src, _ := s.orch.SourceLanguage()
	dst, _ := s.orch.DestLanguage()
	return writeLanguages(cmd.OutOrStdout(), languagesOutput, s.orch.Languages(), src.Code, dst.Code)
}

func init() {
	rootCmd.AddCommand(languagesCmd)

	languagesCmd.PersistentFlags().StringVarP(&languagesOutput, "output", "o", "text", "Output format: text, json or yaml")
	languagesFavoriteCmd.Flags().BoolVar(&favoriteOff, "off", false, "Remove the language from favorites")

	languagesCmd.AddCommand(languagesListCmd)
	languagesCmd.AddCommand(languagesRefreshCmd)
	languagesCmd.AddCommand(languagesClearCmd)
	languagesCmd.AddCommand(languagesFavoriteCmd)
}
