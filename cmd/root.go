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
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/valpere/transly/internal/config"
	"github.com/valpere/transly/internal/logging"
)

var version = "0.1.0"

var (
	configFile string

	v      = config.New()
	cfg    *config.Config
	logger = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "transly",
	Short: "Translate text and documents through the transly service",
	Long: `A CLI client for the transly translation service.

Long texts are split into sentence-aligned chunks that are translated one
after another and joined back together. The monthly character quota of the
account is checked before anything is sent.

Engines:
  - backend    the transly service (requires "transly login")
  - google     Google Cloud Translation (requires credentials)
  - mymemory   MyMemory (free, 5000 chars/day)

Use "transly translate --help" for translation options.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(v, configFile)
		if err != nil {
			return err
		}
		logger, err = logging.New(os.Stderr, cfg.Log.Level)
		if err != nil {
			return err
		}
		if cfg.File != "" {
			logger.Debug().Str("path", cfg.File).Msg("Loaded configuration")
		}
		return nil
	},
}

// Execute runs the root command. An interrupt cancels the running
// translation; nothing is written for a cancelled request.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		rootCmd.PrintErrln("Error:", err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Config file (default $XDG_CONFIG_HOME/transly/config.yaml)")
	flags.String("log-level", logging.DefaultLevel, "Log level: debug, info, warn, error, off")
	flags.String("api-url", "", "Backend base URL")
	flags.StringP("engine", "e", "", "Translation engine: backend, google, mymemory")

	bindFlag(v, "log.level", flags.Lookup("log-level"))
	bindFlag(v, "api.base_url", flags.Lookup("api-url"))
	bindFlag(v, "engine", flags.Lookup("engine"))
}

// bindFlag lets a flag override the config key when it is set on the command
// line.
func bindFlag(v *viper.Viper, key string, f *pflag.Flag) {
	if err := v.BindPFlag(key, f); err != nil {
		panic(err)
	}
}
