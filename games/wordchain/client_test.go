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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lineClient is the player's end of a net.Pipe.
type lineClient struct {
	t     *testing.T
	conn  net.Conn
	lines chan string
}

func dialPipe(t *testing.T, ctx context.Context, co *Coordinator) (*lineClient, <-chan error) {
	t.Helper()

	server, client := net.Pipe()

	served := make(chan error, 1)
	go func() {
		served <- co.Serve(ctx, NewLineConn(server))
	}()

	lc := &lineClient{t: t, conn: client, lines: make(chan string, 64)}

	go func() {
		defer close(lc.lines)

		scanner := bufio.NewScanner(client)
		for scanner.Scan() {
			lc.lines <- scanner.Text()
		}
	}()

	t.Cleanup(func() { _ = client.Close() })

	return lc, served
}

func (lc *lineClient) send(line string) {
	lc.t.Helper()

	_, err := io.WriteString(lc.conn, line+"\n")
	require.NoError(lc.t, err)
}

func (lc *lineClient) next() string {
	lc.t.Helper()

	select {
	case line, ok := <-lc.lines:
		require.True(lc.t, ok, "connection closed")
		return line
	case <-time.After(2 * time.Second):
		lc.t.Fatal("no line arrived")
	}

	return ""
}

// until reads lines until one starts with prefix.
func (lc *lineClient) until(prefix string) string {
	lc.t.Helper()

	for {
		line := lc.next()
		if strings.HasPrefix(line, prefix) {
			return line
		}
	}
}

func (lc *lineClient) closed() bool {
	select {
	case _, ok := <-lc.lines:
		return !ok
	case <-time.After(2 * time.Second):
		return false
	}
}

func runCoordinator(t *testing.T, players, cycles int) (context.Context, *Coordinator) {
	t.Helper()

	judge, err := NewListJudge(strings.NewReader(testWords))
	require.NoError(t, err)

	s := DefaultSettings()
	s.PlayerCap = players
	s.Cycles = cycles
	s.Countdown = 0

	co, err := NewCoordinator(s, judge, WithRand(func(int) int { return 2 }))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		_ = co.Run(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		<-co.Done()
	})

	return ctx, co
}

func TestServeLineProtocol(t *testing.T) {
	ctx, co := runCoordinator(t, 1, 1)

	ann, served := dialPipe(t, ctx, co)

	assert.Equal(t, "NICKNAME :Enter your nickname:", ann.next())

	ann.send("Ann")
	assert.Equal(t, "WELCOME Ann :Welcome, Ann!", ann.next())
	assert.Equal(t, "PLAYERS Ann", ann.next())
	assert.True(t, strings.HasPrefix(ann.next(), "START c "))
	assert.True(t, strings.HasPrefix(ann.next(), "TURN Ann c "))
	assert.True(t, strings.HasPrefix(ann.next(), "YOUR_TURN c 30 "))
	assert.Equal(t, "STATUS 30 1", ann.next())

	ann.send("dog")
	assert.True(t, strings.HasPrefix(ann.until("REJECTED"), "REJECTED wrong_letter "))

	ann.send("Cat")
	assert.True(t, strings.HasPrefix(ann.until("ACCEPTED"), "ACCEPTED Ann cat 3 3 "))
	assert.Equal(t, "STANDINGS Ann:3 :All turns have been played.", ann.next())
	assert.True(t, strings.HasPrefix(ann.next(), "RESULT 1 3 "))
	assert.True(t, strings.HasPrefix(ann.next(), "SHUTDOWN "))
	assert.True(t, ann.closed())

	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
	}
}

func TestServeDuplicateNickname(t *testing.T) {
	ctx, co := runCoordinator(t, 3, 1)

	ann, _ := dialPipe(t, ctx, co)
	ann.next()
	ann.send("Ann")
	ann.until("WAITING")

	bo, _ := dialPipe(t, ctx, co)
	bo.next()
	bo.send("ann")
	assert.True(t, strings.HasPrefix(bo.next(), "NICKNAME_REJECTED in_use "))
	assert.Equal(t, "NICKNAME :Enter your nickname:", bo.next())

	bo.send("Bo")
	assert.Equal(t, "WELCOME Bo :Welcome, Bo!", bo.next())
	assert.Equal(t, "PLAYERS Ann Bo", bo.next())
}

func TestServeUnusableNickname(t *testing.T) {
	ctx, co := runCoordinator(t, 2, 1)

	ann, _ := dialPipe(t, ctx, co)
	ann.next()

	ann.send("Ann Lee")
	assert.True(t, strings.HasPrefix(ann.next(), "NICKNAME_REJECTED format "))
	assert.Equal(t, "NICKNAME :Enter your nickname:", ann.next())

	ann.send("Ann")
	assert.Equal(t, "WELCOME Ann :Welcome, Ann!", ann.next())
}

func TestServeSkipsLongLines(t *testing.T) {
	ctx, co := runCoordinator(t, 1, 1)

	ann, _ := dialPipe(t, ctx, co)
	ann.next()

	ann.send(strings.Repeat("x", 2*maxLineBytes))
	ann.send("Ann")
	assert.Equal(t, "WELCOME Ann :Welcome, Ann!", ann.next())
	ann.until("STATUS")

	ann.send(strings.Repeat("c", 3*maxLineBytes))
	ann.send("cat")
	assert.True(t, strings.HasPrefix(ann.until("ACCEPTED"), "ACCEPTED Ann cat 3 3 "))
}

func TestLineConnRead(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()

	go func() {
		_, _ = io.WriteString(client, strings.Repeat("z", maxLineBytes)+"\r\nend game\r\nlast")
		_ = client.Close()
	}()

	conn := NewLineConn(server)

	cmd, err := conn.Read()
	require.NoError(t, err)
	assert.Equal(t, CmdEndGame, cmd.Kind)

	cmd, err = conn.Read()
	require.NoError(t, err)
	assert.Equal(t, "last", cmd.Text)

	_, err = conn.Read()
	assert.ErrorIs(t, err, io.EOF)
}

func TestServeBusy(t *testing.T) {
	ctx, co := runCoordinator(t, 1, 5)

	ann, _ := dialPipe(t, ctx, co)
	ann.next()
	ann.send("Ann")
	ann.until("STATUS")

	late, served := dialPipe(t, ctx, co)
	assert.True(t, strings.HasPrefix(late.next(), "BUSY "))
	assert.True(t, late.closed())
	assert.ErrorIs(t, <-served, ErrSessionFull)
}

func TestServeExit(t *testing.T) {
	ctx, co := runCoordinator(t, 2, 1)

	ann, served := dialPipe(t, ctx, co)
	ann.next()
	ann.send("Ann")
	ann.until("WAITING")

	ann.send("exit")

	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
	}

	require.Eventually(t, func() bool {
		s, err := co.Snapshot(ctx)
		return err == nil && len(s.Players) == 0 && s.Connections == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestServeDisconnectMidGame(t *testing.T) {
	ctx, co := runCoordinator(t, 2, 5)

	ann, _ := dialPipe(t, ctx, co)
	ann.next()
	ann.send("Ann")
	ann.until("WAITING")

	bo, _ := dialPipe(t, ctx, co)
	bo.next()
	bo.send("Bo")
	bo.until("STATUS")

	_ = ann.conn.Close()

	assert.Equal(t, "LEFT Ann :Ann has left the game.", bo.until("LEFT"))
	assert.True(t, strings.HasPrefix(bo.until("YOUR_TURN"), "YOUR_TURN c "))
}

func TestServeShutdown(t *testing.T) {
	judge, err := NewListJudge(strings.NewReader(testWords))
	require.NoError(t, err)

	s := DefaultSettings()
	s.PlayerCap = 2

	co, err := NewCoordinator(s, judge)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		_ = co.Run(ctx)
	}()

	ann, _ := dialPipe(t, ctx, co)
	ann.next()
	ann.send("Ann")
	ann.until("WAITING")

	cancel()

	assert.Equal(t, "SHUTDOWN :The server is shutting down.", ann.until("SHUTDOWN"))
	assert.True(t, ann.closed())
	<-co.Done()
}
