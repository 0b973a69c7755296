/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Seednode/wordchain/games/wordchain"
	"github.com/julienschmidt/httprouter"
)

const (
	logDate string        = `2006-01-02T15:04:05.000-07:00`
	timeout time.Duration = 10 * time.Second
)

func securityHeaders(cfg *Config, w http.ResponseWriter) {
	w.Header().Set("Cross-Origin-Embedder-Policy", "require-corp")
	w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
	w.Header().Set("Cross-Origin-Resource-Policy", "same-site")
	w.Header().Set("Permissions-Policy", "geolocation=(), midi=(), sync-xhr=(), microphone=(), camera=(), magnetometer=(), gyroscope=(), fullscreen=(), payment=()")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Security-Policy", "default-src 'self'")

	if cfg.scheme() == "https" {
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
	}
}

func realIP(r *http.Request) string {
	host, port, _ := net.SplitHostPort(r.RemoteAddr)
	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		if net.ParseIP(ip) != nil {
			host = ip
		}
	} else if ip := r.Header.Get("X-Real-IP"); ip != "" {
		if net.ParseIP(ip) != nil {
			host = ip
		}
	}
	if net.ParseIP(host) != nil && strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if port != "" {
		return host + ":" + port
	}
	return host
}

func serveVersion(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		startTime := time.Now()

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(cfg, w)
		w.WriteHeader(http.StatusOK)

		written, err := w.Write([]byte("wordchain v" + releaseVersion + "\n"))
		if err != nil {
			errs <- err

			return
		}

		cfg.log.Debug().
			Int("bytes", written).
			Str("remote", realIP(r)).
			Dur("elapsed", time.Since(startTime)).
			Msg("SERVE: Version page")
	}
}

func serveStatus(cfg *Config, coord *wordchain.Coordinator, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		startTime := time.Now()

		snapshot, err := coord.Snapshot(r.Context())
		if err != nil {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			securityHeaders(cfg, w)
			w.WriteHeader(http.StatusServiceUnavailable)

			_, _ = io.WriteString(w, "Unavailable\n")

			return
		}

		data, err := json.Marshal(snapshot)
		if err != nil {
			errs <- err

			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		securityHeaders(cfg, w)

		written, err := w.Write(data)
		if err != nil {
			errs <- err

			return
		}

		cfg.log.Debug().
			Int("bytes", written).
			Str("remote", realIP(r)).
			Dur("elapsed", time.Since(startTime)).
			Msg("SERVE: Status")
	}
}

// newRouter wires every HTTP route onto a fresh router. Handler errors
// are reported on errs.
func newRouter(ctx context.Context, cfg *Config, coord *wordchain.Coordinator, errs chan<- error) *httprouter.Router {
	mux := httprouter.New()

	mux.PanicHandler = func(w http.ResponseWriter, r *http.Request, i any) {
		cfg.log.Error().Interface("panic", i).Str("path", r.URL.Path).Msg("SERVE: Recovered from panic")

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)
		w.WriteHeader(http.StatusInternalServerError)

		_, _ = io.WriteString(w, newPage("Server Error", "An error has occurred. Please try again."))
	}

	cfg.prefix = strings.TrimSuffix(cfg.prefix, "/")

	mux.GET(cfg.prefix+"/", serveHomePage(cfg, errs))

	mux.GET(cfg.prefix+"/healthz", serveHealthCheck(cfg, errs))

	mux.GET(cfg.prefix+"/robots.txt", serveRobots(cfg, errs))

	mux.GET(cfg.prefix+"/version", serveVersion(cfg, errs))

	mux.GET(cfg.prefix+"/status", serveStatus(cfg, coord, errs))

	mux.GET(cfg.prefix+"/qr", serveQR(cfg, errs))

	mux.GET(cfg.prefix+"/ws", serveWebSocket(ctx, cfg, coord))

	if cfg.profile {
		registerProfileHandlers(cfg, mux)
	}

	return mux
}

func newWebServer(ctx context.Context, cfg *Config, coord *wordchain.Coordinator) *http.Server {
	errs := make(chan error, 64)

	go func() {
		for {
			select {
			case err := <-errs:
				cfg.log.Debug().Err(err).Msg("SERVE: Write failed")
			case <-ctx.Done():
				return
			}
		}
	}()

	return &http.Server{
		Addr:              net.JoinHostPort(cfg.bind, strconv.Itoa(cfg.httpPort)),
		Handler:           newRouter(ctx, cfg, coord, errs),
		IdleTimeout:       10 * time.Minute,
		ReadTimeout:       timeout,
		ReadHeaderTimeout: timeout,
		WriteTimeout:      timeout,
	}
}
