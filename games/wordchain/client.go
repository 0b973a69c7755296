/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package wordchain

import (
	"bufio"
	"context"
	"io"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

const (
	sendBuffer   = 64
	maxLineBytes = 1024
	writeTimeout = 10 * time.Second
)

// Conn is one player's transport, already decoded into commands and
// messages.
type Conn interface {
	Read() (Command, error)
	Write(Message) error
	Close() error
	RemoteAddr() string
}

type lineConn struct {
	conn net.Conn
	r    *bufio.Reader
	w    *bufio.Writer
}

// NewLineConn speaks the newline-terminated text protocol over conn.
func NewLineConn(conn net.Conn) Conn {
	return &lineConn{
		conn: conn,
		r:    bufio.NewReaderSize(conn, maxLineBytes),
		w:    bufio.NewWriter(conn),
	}
}

// Read returns the next command. Lines longer than maxLineBytes are
// skipped whole.
func (l *lineConn) Read() (Command, error) {
	for {
		line, err := l.r.ReadSlice('\n')
		if errors.Is(err, bufio.ErrBufferFull) {
			if err := l.skipLine(); err != nil {
				return Command{}, err
			}

			continue
		}

		if err != nil && len(line) == 0 {
			return Command{}, err
		}

		return ParseLine(strings.TrimRight(string(line), "\r\n")), nil
	}
}

func (l *lineConn) skipLine() error {
	for {
		_, err := l.r.ReadSlice('\n')
		if !errors.Is(err, bufio.ErrBufferFull) {
			return err
		}
	}
}

func (l *lineConn) Write(m Message) error {
	_ = l.conn.SetWriteDeadline(time.Now().Add(writeTimeout))

	if _, err := l.w.WriteString(EncodeLine(m) + "\n"); err != nil {
		return err
	}

	return l.w.Flush()
}

func (l *lineConn) Close() error {
	return l.conn.Close()
}

func (l *lineConn) RemoteAddr() string {
	return l.conn.RemoteAddr().String()
}

// Client is the server side of one connection. Everything below the
// limiter is owned by the coordinator loop.
type Client struct {
	id      uuid.UUID
	conn    Conn
	send    chan Message
	limiter *rate.Limiter

	player   *Player
	deadline Timer
	closed   bool
	broken   bool
}

func (c *Client) stopDeadline() {
	if c.deadline != nil {
		c.deadline.Stop()
		c.deadline = nil
	}
}

func newClient(conn Conn, limit rate.Limit, burst int) *Client {
	return &Client{
		id:      uuid.New(),
		conn:    conn,
		send:    make(chan Message, sendBuffer),
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Serve runs one connection until it disconnects, exits, or the
// session closes it. A connection that arrives while the session is
// full is told so and closed; Serve then returns ErrSessionFull.
func (co *Coordinator) Serve(ctx context.Context, conn Conn) error {
	c := newClient(conn, co.settings.Rate, co.settings.Burst)

	if err := co.admit(ctx, c); err != nil {
		if errors.Is(err, ErrSessionFull) {
			_ = conn.Write(Message{
				Type: MsgBusy,
				Text: "The game is full or already running. Please try again later.",
			})
		}

		_ = conn.Close()

		return err
	}

	go c.writePump()

	defer co.leave(c)

	return c.readPump(ctx, co)
}

func (c *Client) readPump(ctx context.Context, co *Coordinator) error {
	registered := false

	for {
		cmd, err := c.conn.Read()
		if err != nil {
			if isDisconnect(err) {
				return nil
			}

			return errors.Wrap(err, "read from client failed")
		}

		if cmd.Kind == CmdExit {
			return nil
		}

		if !registered {
			if !cmd.isNickname() {
				continue
			}

			err := co.join(ctx, c, cmd.Text)
			switch {
			case err == nil:
				registered = true
			case errors.Is(err, ErrNicknameInUse), errors.Is(err, ErrNicknameFormat):
			default:
				return err
			}

			continue
		}

		if cmd.Kind == CmdNickname {
			continue
		}

		if !co.submit(ctx, c, cmd) {
			return nil
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.Write(msg); err != nil {
			_ = c.conn.Close()

			for range c.send {
			}

			return
		}
	}
}

func isDisconnect(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, net.ErrClosed)
}
