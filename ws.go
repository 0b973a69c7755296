/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Seednode/wordchain/games/wordchain"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

const (
	qrSize       = 320
	wsReadLimit  = 1024
	wsWriteLimit = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsConn carries the JSON form of the protocol over a websocket.
type wsConn struct {
	conn   *websocket.Conn
	remote string
}

func newWSConn(conn *websocket.Conn, remote string) *wsConn {
	conn.SetReadLimit(wsReadLimit)

	return &wsConn{conn: conn, remote: remote}
}

func (c *wsConn) Read() (wordchain.Command, error) {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				return wordchain.Command{}, io.EOF
			}

			return wordchain.Command{}, err
		}

		// Frames that do not decode are ignored like unknown types.
		var msg wordchain.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		if cmd, ok := msg.Command(); ok {
			return cmd, nil
		}
	}
}

func (c *wsConn) Write(m wordchain.Message) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteLimit))

	return c.conn.WriteJSON(m)
}

// Close drops the socket without a close handshake; it is called from the
// coordinator loop and must not block.
func (c *wsConn) Close() error {
	return c.conn.Close()
}

func (c *wsConn) RemoteAddr() string {
	return c.remote
}

func serveWebSocket(ctx context.Context, cfg *Config, coord *wordchain.Coordinator) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		remote := realIP(r)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			cfg.log.Debug().Err(err).Str("remote", remote).Msg("SERVE: Websocket upgrade failed")

			return
		}

		cfg.log.Debug().Str("remote", remote).Msg("SERVE: Websocket client connected")

		err = coord.Serve(ctx, newWSConn(conn, remote))
		switch {
		case err == nil:
			cfg.log.Debug().Str("remote", remote).Msg("SERVE: Websocket client disconnected")
		case errors.Is(err, wordchain.ErrSessionFull):
			cfg.log.Info().Str("remote", remote).Msg("SERVE: Turned away websocket client, session full")
		default:
			cfg.log.Debug().Err(err).Str("remote", remote).Msg("SERVE: Websocket client closed")
		}
	}
}

// websocketURL is the address players should dial, as seen by r.
func websocketURL(cfg *Config, r *http.Request) string {
	scheme := "ws"
	if r.TLS != nil || cfg.scheme() == "https" {
		scheme = "wss"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.Replace(strings.ToLower(proto), "http", "ws", 1)
	}

	return scheme + "://" + r.Host + cfg.prefix + "/ws"
}

func serveQR(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		png, err := qrcode.Encode(websocketURL(cfg, r), qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)

			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(cfg, w)

		if _, err := w.Write(png); err != nil {
			errs <- err
		}
	}
}
