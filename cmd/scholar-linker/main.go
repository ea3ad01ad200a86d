// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the scholar-linker CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/scholar-linker/internal/logging"
	"github.com/pdiddy/scholar-linker/internal/secrets"
	"github.com/pdiddy/scholar-linker/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// app carries the per-run state every subcommand closes over. The logger
// and secrets are filled in by the root command before a subcommand runs.
type app struct {
	v        *viper.Viper
	log      zerolog.Logger
	secrets  secrets.Secrets
	closeLog func() error
}

func newApp() *app {
	return &app{
		v:        viper.New(),
		log:      zerolog.Nop(),
		secrets:  secrets.Secrets{},
		closeLog: func() error { return nil },
	}
}

// newRootCmd builds the base command for the scholar-linker CLI with every
// subcommand attached.
func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "scholar-linker",
		Short: "Link publication bylines to seeded researchers",
		Long: `scholar-linker keeps a SQLite database of researchers, their author
identities, and the papers they contributed to. Seed it from roster exports,
then run update against a bibliographic source (wos, acm, ieee) to attach
contact details and roles observed on each paper to the right identity.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfgFile, _ := cmd.Flags().GetString("config")
			a.initConfig(cfgFile)
			return a.start()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.closeLog()
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (default: ./scholar-linker.yaml or ~/.config/scholar-linker/scholar-linker.yaml)")
	pf.String("db", "", "SQLite database path (default scholar.db)")
	pf.String("log-level", "", "log level: debug, info, warn, error, off")
	pf.String("log-format", "", "log format: auto, json, console")
	pf.String("log-output", "", "log output: stderr, stdout, discard, or a file path")

	_ = a.v.BindPFlag("store.path", pf.Lookup("db"))
	_ = a.v.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = a.v.BindPFlag("log.format", pf.Lookup("log-format"))
	_ = a.v.BindPFlag("log.output", pf.Lookup("log-output"))

	root.AddCommand(
		newUpdateCmd(a),
		newSeedCmd(a),
		newReportCmd(a),
		newPendingCmd(a),
		newSourcesCmd(),
		newVersionCmd(),
	)
	return root
}

// start builds the logger and loads secrets for this run.
func (a *app) start() error {
	log, closeFn, err := logging.New(a.logConfig())
	if err != nil {
		return err
	}
	a.log, a.closeLog = log, closeFn

	s, err := secrets.Load(secrets.DefaultDir, a.log)
	if err != nil {
		return err
	}
	a.secrets = s
	return nil
}

// loadEnv reads .env then .env.local into the process environment. Missing
// files are ignored and existing variables are never overwritten.
func loadEnv() {
	for _, name := range []string{".env", ".env.local"} {
		_ = godotenv.Load(name)
	}
}

func (a *app) initConfig(cfgFile string) {
	loadEnv()

	v := a.v
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("scholar-linker")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "scholar-linker"))
		}
	}

	v.SetEnvPrefix("SCHOLAR_LINKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", v.ConfigFileUsed())
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.path", "scholar.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "auto")
	v.SetDefault("log.output", "stderr")
	v.SetDefault("update.source", "wos")
	v.SetDefault("update.batch_size", 150)
	v.SetDefault("update.workers", 4)
	v.SetDefault("fetch.inbox_dir", "inbox")
	v.SetDefault("fetch.timeout", 60*time.Second)
	v.SetDefault("fetch.user_agent", "scholar-linker/"+version)
	v.SetDefault("fetch.requests_per_second", 1.0)
	v.SetDefault("fetch.max_retries", 5)
}

func (a *app) logConfig() types.LogConfig {
	return types.LogConfig{
		Level:  a.v.GetString("log.level"),
		Format: a.v.GetString("log.format"),
		Output: a.v.GetString("log.output"),
	}
}

// config assembles the full configuration from flags, environment, config
// file, and defaults, in that order of precedence.
func (a *app) config() types.LinkerConfig {
	v := a.v
	return types.LinkerConfig{
		Store: types.StoreConfig{Path: v.GetString("store.path")},
		Log:   a.logConfig(),
		Update: types.UpdateConfig{
			Source:    v.GetString("update.source"),
			BatchSize: v.GetInt("update.batch_size"),
			Workers:   v.GetInt("update.workers"),
		},
		Fetch: types.FetchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   v.GetDuration("fetch.timeout"),
				UserAgent: v.GetString("fetch.user_agent"),
			},
			InboxDir:          v.GetString("fetch.inbox_dir"),
			URLTemplate:       v.GetString("fetch.url_template"),
			APIKey:            v.GetString("fetch.api_key"),
			RequestsPerSecond: v.GetFloat64("fetch.requests_per_second"),
			MaxRetries:        v.GetInt("fetch.max_retries"),
		},
	}
}

func main() {
	if err := newRootCmd(newApp()).Execute(); err != nil {
		os.Exit(1)
	}
}
