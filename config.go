/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Seednode/wordchain/games/wordchain"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"
)

type Config struct {
	bind            string
	cacheSize       int
	countdown       int
	cycles          int
	dictionaryKey   string
	dictionaryURL   string
	httpPort        int
	judgeTimeout    time.Duration
	maxPending      int
	players         int
	port            int
	prefix          string
	profile         bool
	rate            float64
	burst           int
	registerTimeout time.Duration
	tlsCert         string
	tlsKey          string
	turnTime        time.Duration
	verbose         bool
	version         bool
	wordList        string

	log zerolog.Logger
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.httpPort < 0 || c.httpPort > 65535 {
		return fmt.Errorf("invalid http port (must be between 0-65535 inclusive): %d", c.httpPort)
	}
	if c.httpPort != 0 && c.httpPort == c.port {
		return fmt.Errorf("--port and --http-port must differ: %d", c.port)
	}
	if c.cacheSize < 1 {
		return fmt.Errorf("invalid cache size (must be positive): %d", c.cacheSize)
	}
	if c.rate <= 0 {
		return fmt.Errorf("invalid rate (must be positive): %v", c.rate)
	}
	if c.wordList == "" && !strings.Contains(c.dictionaryURL, "%s") {
		return fmt.Errorf("--dictionary-url must contain %%s: %q", c.dictionaryURL)
	}

	return c.settings().Validate()
}

func (c *Config) settings() wordchain.Settings {
	s := wordchain.DefaultSettings()

	s.PlayerCap = c.players
	s.Cycles = c.cycles
	s.TurnTime = c.turnTime
	s.Countdown = c.countdown
	s.JudgeTimeout = c.judgeTimeout
	s.Rate = rate.Limit(c.rate)
	s.Burst = c.burst
	s.RegisterTimeout = c.registerTimeout
	s.MaxPending = c.maxPending

	return s
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func newCmd(cfg *Config) *cobra.Command {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("WORDCHAIN")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "wordchain",
		Short:         "A multiplayer word-chain game server.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}

			cfg.log = newLogger(cfg)

			return Serve(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	defaults := wordchain.DefaultSettings()

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: WORDCHAIN_BIND)")
	fs.IntVar(&cfg.burst, "burst", defaults.Burst, "submissions a player may send in a burst (env: WORDCHAIN_BURST)")
	fs.IntVar(&cfg.cacheSize, "cache-size", 4096, "number of word lookups to remember (env: WORDCHAIN_CACHE_SIZE)")
	fs.IntVar(&cfg.countdown, "countdown", defaults.Countdown, "seconds to count down before the first turn (env: WORDCHAIN_COUNTDOWN)")
	fs.IntVar(&cfg.cycles, "cycles", defaults.Cycles, "full rounds of turns per game (env: WORDCHAIN_CYCLES)")
	fs.StringVar(&cfg.dictionaryKey, "dictionary-key", "", "api key sent to the dictionary service (env: WORDCHAIN_DICTIONARY_KEY)")
	fs.StringVar(&cfg.dictionaryURL, "dictionary-url", wordchain.DefaultDictionaryURL, "dictionary lookup url, with %s in place of the word (env: WORDCHAIN_DICTIONARY_URL)")
	fs.IntVar(&cfg.httpPort, "http-port", 8080, "port for the websocket and status server, 0 to disable (env: WORDCHAIN_HTTP_PORT)")
	fs.DurationVar(&cfg.judgeTimeout, "judge-timeout", defaults.JudgeTimeout, "time allowed for a word lookup (env: WORDCHAIN_JUDGE_TIMEOUT)")
	fs.IntVar(&cfg.maxPending, "max-pending", defaults.MaxPending, "connections allowed to wait without a nickname (env: WORDCHAIN_MAX_PENDING)")
	fs.IntVar(&cfg.players, "players", defaults.PlayerCap, "players needed to start a game (env: WORDCHAIN_PLAYERS)")
	fs.IntVarP(&cfg.port, "port", "p", 12345, "port to listen on for line-protocol clients (env: WORDCHAIN_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: WORDCHAIN_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: WORDCHAIN_PROFILE)")
	fs.Float64Var(&cfg.rate, "rate", float64(defaults.Rate), "submissions per second a player may sustain (env: WORDCHAIN_RATE)")
	fs.DurationVar(&cfg.registerTimeout, "register-timeout", defaults.RegisterTimeout, "time a connection may take to choose a nickname (env: WORDCHAIN_REGISTER_TIMEOUT)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: WORDCHAIN_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: WORDCHAIN_TLS_KEY)")
	fs.DurationVar(&cfg.turnTime, "turn-time", defaults.TurnTime, "time limit for each turn (env: WORDCHAIN_TURN_TIME)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: WORDCHAIN_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: WORDCHAIN_VERSION)")
	fs.StringVar(&cfg.wordList, "word-list", "", "file of accepted words, one per line, used instead of the dictionary service (env: WORDCHAIN_WORD_LIST)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("wordchain v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
