/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"html"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
)

func homeBody(cfg *Config, r *http.Request) string {
	host := r.Host
	if h, _, err := net.SplitHostPort(r.Host); err == nil {
		host = h
	}

	var b strings.Builder

	b.WriteString("<h1>wordchain</h1>")
	b.WriteString("<p>Take turns naming words that start with the last letter of the word before.</p>")
	b.WriteString(fmt.Sprintf("<p>Play from a terminal with <code>nc %s %d</code>, ",
		html.EscapeString(host), cfg.port))
	b.WriteString(fmt.Sprintf("or connect a websocket client to <code>%s</code>.</p>",
		html.EscapeString(websocketURL(cfg, r))))
	b.WriteString(fmt.Sprintf(`<p><img src="%s/qr" alt="QR code for the websocket address" width="256" height="256"></p>`, cfg.prefix))
	b.WriteString(fmt.Sprintf(`<p><a href="%s/status">Current game</a></p>`, cfg.prefix))

	return b.String()
}

func serveHomePage(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)

		written, err := w.Write([]byte(newPage("wordchain", homeBody(cfg, r))))
		if err != nil {
			errs <- err

			return
		}

		cfg.log.Debug().
			Int("bytes", written).
			Str("remote", realIP(r)).
			Dur("elapsed", time.Since(startTime)).
			Msg("SERVE: Home page")
	}
}

func serveHealthCheck(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(cfg, w)

		_, err := w.Write([]byte("Ok\n"))
		if err != nil {
			errs <- err

			return
		}
	}
}

func serveRobots(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		data := `User-agent: Amazonbot
Disallow: /

User-agent: Applebot-Extended
Disallow: /

User-agent: Bytespider
Disallow: /

User-agent: CCBot
Disallow: /

User-agent: ClaudeBot
Disallow: /

User-agent: Google-Extended
Disallow: /

User-agent: GPTBot
Disallow: /

User-agent: meta-externalagent
Disallow: /`

		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		securityHeaders(cfg, w)

		_, err := w.Write([]byte(data))
		if err != nil {
			errs <- err

			return
		}
	}
}
