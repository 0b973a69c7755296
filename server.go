/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/Seednode/wordchain/games/wordchain"
)

func newJudge(cfg *Config) (wordchain.Judge, error) {
	var inner wordchain.Judge

	if cfg.wordList != "" {
		list, err := wordchain.LoadListJudge(cfg.wordList)
		if err != nil {
			return nil, err
		}

		cfg.log.Info().Str("path", cfg.wordList).Int("words", list.Len()).Msg("START: Loaded word list")

		inner = list
	} else {
		client := &http.Client{Timeout: cfg.judgeTimeout}

		lookup, err := wordchain.NewHTTPJudge(client, cfg.dictionaryURL, cfg.dictionaryKey)
		if err != nil {
			return nil, err
		}

		cfg.log.Info().Str("url", cfg.dictionaryURL).Msg("START: Using dictionary service")

		inner = lookup
	}

	return wordchain.NewCachedJudge(inner, cfg.cacheSize)
}

// acceptLines hands every line-protocol connection to the coordinator
// until the listener is closed.
func acceptLines(ctx context.Context, cfg *Config, ln net.Listener, coord *wordchain.Coordinator) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}

			cfg.log.Error().Err(err).Msg("SERVE: Accept failed")

			time.Sleep(50 * time.Millisecond)

			continue
		}

		go func() {
			remote := conn.RemoteAddr().String()

			cfg.log.Debug().Str("remote", remote).Msg("SERVE: Line client connected")

			err := coord.Serve(ctx, wordchain.NewLineConn(conn))
			switch {
			case err == nil:
				cfg.log.Debug().Str("remote", remote).Msg("SERVE: Line client disconnected")
			case errors.Is(err, wordchain.ErrSessionFull):
				cfg.log.Info().Str("remote", remote).Msg("SERVE: Turned away line client, session full")
			default:
				cfg.log.Debug().Err(err).Str("remote", remote).Msg("SERVE: Line client closed")
			}
		}()
	}
}

func Serve(ctx context.Context, cfg *Config) error {
	var err error

	timeZone := os.Getenv("TZ")
	if timeZone != "" {
		time.Local, err = time.LoadLocation(timeZone)
		if err != nil {
			return err
		}
	}

	cfg.log.Info().Msgf("START: wordchain v%s", releaseVersion)

	judge, err := newJudge(cfg)
	if err != nil {
		return err
	}

	coord, err := wordchain.NewCoordinator(cfg.settings(), judge, wordchain.WithLogger(cfg.log))
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(cfg.bind, strconv.Itoa(cfg.port))

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	cfg.log.Info().Msgf("SERVE: Listening for players on %s", addr)

	go func() {
		_ = coord.Run(ctx)
	}()

	go acceptLines(ctx, cfg, ln, coord)

	var srv *http.Server
	if cfg.httpPort != 0 {
		srv = newWebServer(ctx, cfg, coord)

		go func() {
			var err error

			cfg.log.Info().Msgf("SERVE: Listening on %s://%s%s/", cfg.scheme(), srv.Addr, cfg.prefix)

			if cfg.tlsKey != "" && cfg.tlsCert != "" {
				err = srv.ListenAndServeTLS(cfg.tlsCert, cfg.tlsKey)
			} else {
				err = srv.ListenAndServe()
			}
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				cfg.log.Error().Err(err).Msg("SERVE: Web server failed")
			}
		}()
	}

	<-ctx.Done()

	cfg.log.Info().Msg("SERVE: Shutting down")

	_ = ln.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if srv != nil {
		_ = srv.Shutdown(shutdownCtx)
	}

	select {
	case <-coord.Done():
	case <-shutdownCtx.Done():
	}

	return nil
}
