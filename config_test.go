/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"testing"
	"time"

	"github.com/Seednode/wordchain/games/wordchain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseConfig(t *testing.T, args ...string) *Config {
	t.Helper()

	cfg := &Config{}
	require.NoError(t, newCmd(cfg).ParseFlags(args))

	return cfg
}

func TestDefaults(t *testing.T) {
	cfg := parseConfig(t)

	assert.Equal(t, 12345, cfg.port)
	assert.Equal(t, 8080, cfg.httpPort)
	assert.Equal(t, 4, cfg.players)
	assert.Equal(t, 5, cfg.cycles)
	assert.Equal(t, 30*time.Second, cfg.turnTime)
	assert.Equal(t, time.Minute, cfg.registerTimeout)
	assert.Equal(t, 8, cfg.maxPending)
	assert.Equal(t, wordchain.DefaultDictionaryURL, cfg.dictionaryURL)
	assert.NoError(t, cfg.validate())
}

func TestFlagsAndEnvironment(t *testing.T) {
	t.Setenv("WORDCHAIN_CYCLES", "7")
	t.Setenv("WORDCHAIN_TURN_TIME", "10s")
	t.Setenv("WORDCHAIN_REGISTER_TIMEOUT", "15s")

	cfg := parseConfig(t, "--players", "2", "--word-list", "words.txt", "--max-pending", "3")

	assert.Equal(t, 2, cfg.players)
	assert.Equal(t, 7, cfg.cycles)
	assert.Equal(t, 10*time.Second, cfg.turnTime)
	assert.Equal(t, "words.txt", cfg.wordList)

	s := cfg.settings()
	assert.Equal(t, 2, s.PlayerCap)
	assert.Equal(t, 7, s.Cycles)
	assert.Equal(t, 10*time.Second, s.TurnTime)
	assert.Equal(t, 15*time.Second, s.RegisterTimeout)
	assert.Equal(t, 3, s.MaxPending)
}

func TestValidate(t *testing.T) {
	cases := map[string][]string{
		"port out of range":    {"--port", "0"},
		"http port clash":      {"--port", "9000", "--http-port", "9000"},
		"tls cert only":        {"--tls-cert", "cert.pem"},
		"no cache":             {"--cache-size", "0"},
		"no rate":              {"--rate", "0"},
		"no placeholder":       {"--dictionary-url", "https://example.com/words"},
		"turn shorter than 1s": {"--turn-time", "500ms"},
		"no pending slots":     {"--max-pending", "0"},
		"no register timeout":  {"--register-timeout", "0s"},
	}

	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, parseConfig(t, args...).validate())
		})
	}

	t.Run("no players", func(t *testing.T) {
		assert.ErrorIs(t, parseConfig(t, "--players", "0").validate(), wordchain.ErrInvalidSettings)
	})

	t.Run("word list skips url check", func(t *testing.T) {
		assert.NoError(t, parseConfig(t, "--dictionary-url", "none", "--word-list", "words.txt").validate())
	})

	t.Run("http disabled", func(t *testing.T) {
		assert.NoError(t, parseConfig(t, "--http-port", "0").validate())
	})
}
