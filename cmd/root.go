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
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/valpere/peredict/internal/i18n"
	"github.com/valpere/peredict/internal/orchestrator"
	"github.com/valpere/peredict/internal/settings"
)

var version = "0.1.0"

var (
	cfgFile   string
	configErr error

	logger = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "peredict",
	Short: "CLI dictionary client",
	Long: `A command-line dictionary client. Looks up words and short phrases,
retries in the reverse direction when nothing is found and remembers
the selected languages between runs.

Supported backends: Yandex Dictionary (default), Google Cloud Translation

Use "peredict lookup --help" for one-shot lookups and "peredict shell"
for the interactive mode.`,
	Version:      version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()
		i18n.Init(viper.GetString("ui_lang"))
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (default $XDG_CONFIG_HOME/peredict/config.yaml)")
	pf.String("api-key", "", "Dictionary API key")
	pf.String("backend", "yandex", "Dictionary backend: yandex or google")
	pf.String("base-url", "", "Dictionary API base URL (yandex backend)")
	pf.String("google-credentials", "", "Path to Google Cloud credentials (google backend)")
	pf.String("db", defaultDBPath(), "Settings database path")
	pf.String("log-level", "info", "Log level: debug, info, warn, error")
	pf.String("ui-lang", "", "Interface language (default from LANGUAGE/LC_ALL/LANG)")
	pf.Duration("request-timeout", orchestrator.DefaultRequestTimeout, "Timeout for a single lookup")
	pf.Duration("languages-ttl", settings.DefaultLanguagesTTL, "How long the cached language list stays fresh")

	for key, flag := range map[string]string{
		"api_key":            "api-key",
		"backend":            "backend",
		"base_url":           "base-url",
		"google_credentials": "google-credentials",
		"db":                 "db",
		"log_level":          "log-level",
		"ui_lang":            "ui-lang",
		"request_timeout":    "request-timeout",
		"languages_ttl":      "languages-ttl",
	} {
		viper.BindPFlag(key, pf.Lookup(flag))
	}
}

// initConfig reads the config file and PEREDICT_* environment variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		if dir, err := os.UserConfigDir(); err == nil {
			viper.AddConfigPath(filepath.Join(dir, "peredict"))
		}
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("peredict")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			configErr = err
		}
	}
}

func setupLogging() {
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	level, err := logrus.ParseLevel(viper.GetString("log_level"))
	if err != nil {
		logger.WithError(err).Warn("Invalid log level, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if configErr != nil {
		logger.WithError(configErr).Warn("Failed to read config file")
	} else if used := viper.ConfigFileUsed(); used != "" {
		logger.WithField("config", used).Debug("Using config file")
	}
}

func defaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join("data", "peredict.db")
	}
	return filepath.Join(dir, "peredict", "peredict.db")
}
