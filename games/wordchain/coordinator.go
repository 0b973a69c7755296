/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package wordchain implements a multiplayer word-chain game.
//
// Players take turns submitting words that must start with the last
// letter of the previous accepted word. A single Coordinator owns the
// roster, the turn order, the per-turn clock and the scores; every
// connection talks to it through events that one goroutine handles in
// order, so no game state is ever shared between goroutines.
package wordchain

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

type Phase int

const (
	PhaseLobby Phase = iota
	PhaseCountdown
	PhaseInProgress
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseLobby:
		return "lobby"
	case PhaseCountdown:
		return "countdown"
	case PhaseInProgress:
		return "in_progress"
	case PhaseEnded:
		return "ended"
	}

	return "unknown"
}

// Settings are the tunable rules of a session.
type Settings struct {
	PlayerCap    int
	Cycles       int
	TurnTime     time.Duration
	Countdown    int
	Tick         time.Duration
	JudgeTimeout time.Duration
	Rate         rate.Limit
	Burst        int

	// RegisterTimeout is how long a connection may stay without a
	// nickname before it is dropped. MaxPending bounds how many such
	// connections are held at once.
	RegisterTimeout time.Duration
	MaxPending      int
}

func DefaultSettings() Settings {
	return Settings{
		PlayerCap:    4,
		Cycles:       5,
		TurnTime:     30 * time.Second,
		Countdown:    5,
		Tick:         time.Second,
		JudgeTimeout: 5 * time.Second,
		Rate:         2,
		Burst:        5,

		RegisterTimeout: time.Minute,
		MaxPending:      8,
	}
}

// Validate reports the first setting that cannot run a game.
func (s Settings) Validate() error {
	switch {
	case s.PlayerCap < 1:
		return errors.Wrapf(ErrInvalidSettings, "player cap must be at least 1, got %d", s.PlayerCap)
	case s.Cycles < 1:
		return errors.Wrapf(ErrInvalidSettings, "turn cycles must be at least 1, got %d", s.Cycles)
	case s.Tick <= 0:
		return errors.Wrapf(ErrInvalidSettings, "tick must be positive, got %s", s.Tick)
	case s.TurnTime < s.Tick:
		return errors.Wrapf(ErrInvalidSettings, "turn time must be at least one tick, got %s", s.TurnTime)
	case s.Countdown < 0:
		return errors.Wrapf(ErrInvalidSettings, "countdown must not be negative, got %d", s.Countdown)
	case s.JudgeTimeout <= 0:
		return errors.Wrapf(ErrInvalidSettings, "judge timeout must be positive, got %s", s.JudgeTimeout)
	case s.Burst < 1:
		return errors.Wrapf(ErrInvalidSettings, "burst must be at least 1, got %d", s.Burst)
	case s.RegisterTimeout <= 0:
		return errors.Wrapf(ErrInvalidSettings, "register timeout must be positive, got %s", s.RegisterTimeout)
	case s.MaxPending < 1:
		return errors.Wrapf(ErrInvalidSettings, "pending connections must be at least 1, got %d", s.MaxPending)
	}

	return nil
}

// Session is the state of the one live game.
type Session struct {
	Phase         Phase
	Current       int
	CyclesLeft    int
	TimeLeft      int
	CountdownLeft int
	StartLetter   rune
	LastWord      string
}

// Snapshot is a read-only view of the session for status pages.
type Snapshot struct {
	Phase       string     `json:"phase"`
	Players     []Standing `json:"players"`
	Current     string     `json:"current,omitempty"`
	Seconds     int        `json:"seconds"`
	Cycles      int        `json:"cycles"`
	StartLetter string     `json:"start_letter,omitempty"`
	LastWord    string     `json:"last_word,omitempty"`
	Words       []string   `json:"words"`
	Connections int        `json:"connections"`
	Capacity    int        `json:"capacity"`
}

type admitRequest struct {
	client *Client
	reply  chan error
}

type joinRequest struct {
	client   *Client
	nickname string
	reply    chan error
}

type submitRequest struct {
	client *Client
	cmd    Command
}

type leaveRequest struct {
	client *Client
}

type deadlineEvent struct {
	client *Client
}

type tickEvent struct {
	token uint64
}

type verdictEvent struct {
	pending *pendingWord
	valid   bool
}

type snapshotRequest struct {
	reply chan Snapshot
}

// pendingWord is a submission waiting on the judge.
type pendingWord struct {
	player *Player
	word   string
}

type Option func(*Coordinator)

func WithClock(clock Clock) Option {
	return func(c *Coordinator) {
		c.clock = clock
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Coordinator) {
		c.log = log
	}
}

// WithRand replaces the source used to pick the starting letter; intn
// must return a value in [0, n).
func WithRand(intn func(n int) int) Option {
	return func(c *Coordinator) {
		c.intn = intn
	}
}

type Coordinator struct {
	settings  Settings
	turnTicks int
	judge     Judge
	clock     Clock
	log       zerolog.Logger
	intn      func(n int) int

	inbox chan any
	done  chan struct{}
	ctx   context.Context

	clients map[*Client]struct{}
	roster  Roster
	ledger  *Ledger
	session Session
	token   uint64
	timer   Timer
	pending *pendingWord
}

func NewCoordinator(settings Settings, judge Judge, opts ...Option) (*Coordinator, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	if judge == nil {
		return nil, errors.Wrap(ErrInvalidSettings, "judge is required")
	}

	c := &Coordinator{
		settings:  settings,
		turnTicks: int((settings.TurnTime + settings.Tick - 1) / settings.Tick),
		judge:     judge,
		clock:     systemClock{},
		log:       zerolog.Nop(),
		intn:      rand.Intn,
		inbox:     make(chan any, 256),
		done:      make(chan struct{}),
		ctx:       context.Background(),
		clients:   make(map[*Client]struct{}),
		ledger:    NewLedger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Run handles events until ctx is cancelled. A game still running at
// that point is ended with the usual summaries before Run returns.
func (c *Coordinator) Run(ctx context.Context) error {
	c.ctx = ctx

	defer close(c.done)

	c.log.Info().
		Int("players", c.settings.PlayerCap).
		Int("cycles", c.settings.Cycles).
		Dur("turn_time", c.settings.TurnTime).
		Msg("GAMES: Lobby open")

	for {
		select {
		case <-ctx.Done():
			c.shutdown()

			return nil
		case ev := <-c.inbox:
			c.handle(ev)
		}
	}
}

// Done is closed once Run has returned.
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

func (c *Coordinator) Snapshot(ctx context.Context) (Snapshot, error) {
	reply := make(chan Snapshot, 1)

	if !c.post(ctx, snapshotRequest{reply: reply}) {
		return Snapshot{}, ErrClosed
	}

	select {
	case s := <-reply:
		return s, nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	case <-c.done:
		return Snapshot{}, ErrClosed
	}
}

func (c *Coordinator) post(ctx context.Context, ev any) bool {
	select {
	case c.inbox <- ev:
		return true
	case <-ctx.Done():
		return false
	case <-c.done:
		return false
	}
}

func (c *Coordinator) request(ctx context.Context, ev any, reply chan error) error {
	if !c.post(ctx, ev) {
		return ErrClosed
	}

	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return ErrClosed
	}
}

func (c *Coordinator) admit(ctx context.Context, cl *Client) error {
	reply := make(chan error, 1)

	return c.request(ctx, admitRequest{client: cl, reply: reply}, reply)
}

func (c *Coordinator) join(ctx context.Context, cl *Client, nickname string) error {
	reply := make(chan error, 1)

	return c.request(ctx, joinRequest{client: cl, nickname: nickname, reply: reply}, reply)
}

func (c *Coordinator) submit(ctx context.Context, cl *Client, cmd Command) bool {
	return c.post(ctx, submitRequest{client: cl, cmd: cmd})
}

func (c *Coordinator) leave(cl *Client) {
	c.post(context.Background(), leaveRequest{client: cl})
}

func (c *Coordinator) handle(ev any) {
	switch e := ev.(type) {
	case admitRequest:
		e.reply <- c.onAdmit(e.client)
	case joinRequest:
		e.reply <- c.onJoin(e.client, e.nickname)
	case submitRequest:
		c.onSubmit(e.client, e.cmd)
	case leaveRequest:
		c.onLeave(e.client)
	case deadlineEvent:
		c.onDeadline(e.client)
	case tickEvent:
		c.onTick(e.token)
	case verdictEvent:
		c.onVerdict(e)
	case snapshotRequest:
		e.reply <- c.snapshot()
	}
}

func (c *Coordinator) onAdmit(cl *Client) error {
	pending := len(c.clients) - c.roster.Len()

	if c.session.Phase != PhaseLobby ||
		c.roster.Len() >= c.settings.PlayerCap ||
		pending >= c.settings.MaxPending {
		c.log.Debug().
			Str("remote", cl.conn.RemoteAddr()).
			Stringer("phase", c.session.Phase).
			Int("pending", pending).
			Msg("GAMES: Turned away connection")

		return ErrSessionFull
	}

	c.clients[cl] = struct{}{}
	c.send(cl, Message{Type: MsgNickname, Text: "Enter your nickname:"})

	cl.deadline = c.clock.AfterFunc(c.settings.RegisterTimeout, func() {
		c.post(context.Background(), deadlineEvent{client: cl})
	})

	c.log.Debug().
		Str("remote", cl.conn.RemoteAddr()).
		Stringer("id", cl.id).
		Msg("GAMES: Connection admitted")

	return nil
}

func (c *Coordinator) onJoin(cl *Client, raw string) error {
	if _, ok := c.clients[cl]; !ok {
		return ErrClosed
	}

	if cl.player != nil {
		return nil
	}

	name := trimNickname(raw)
	if name == "" {
		c.send(cl, Message{
			Type:   MsgNicknameRejected,
			Reason: ReasonInvalidNickname,
			Text:   "Invalid nickname. Closing connection.",
		})
		c.drop(cl)

		return ErrInvalidNickname
	}

	if c.session.Phase != PhaseLobby {
		c.send(cl, Message{Type: MsgBusy, Text: "The game has already started."})
		c.drop(cl)

		return ErrSessionFull
	}

	if !validNickname(name) {
		c.send(cl, Message{
			Type:   MsgNicknameRejected,
			Reason: ReasonNicknameFormat,
			Text: fmt.Sprintf("Nicknames are up to %d characters, without spaces or ':'. Please choose another.",
				maxNicknameLength),
		})
		c.send(cl, Message{Type: MsgNickname, Text: "Enter your nickname:"})

		return ErrNicknameFormat
	}

	p := newPlayer(cl.id, name)
	if err := c.roster.Add(p); err != nil {
		c.send(cl, Message{
			Type:   MsgNicknameRejected,
			Reason: ReasonNicknameInUse,
			Text:   fmt.Sprintf("The nickname %q is already in use. Please choose another.", name),
		})
		c.send(cl, Message{Type: MsgNickname, Text: "Enter your nickname:"})

		return err
	}

	p.client = cl
	cl.player = p
	cl.stopDeadline()

	c.log.Info().Str("player", name).Int("roster", c.roster.Len()).Msg("GAMES: Player joined")

	c.send(cl, Message{Type: MsgWelcome, Nickname: name, Text: "Welcome, " + name + "!"})
	c.broadcastPlayers()

	if c.roster.Len() >= c.settings.PlayerCap {
		c.startCountdown()

		return nil
	}

	c.broadcast(c.waitingMessage())

	return nil
}

func (c *Coordinator) onLeave(cl *Client) {
	if _, ok := c.clients[cl]; !ok {
		return
	}

	c.drop(cl)

	p := cl.player
	if p == nil {
		return
	}

	idx := c.roster.Remove(p)
	if idx < 0 {
		return
	}

	c.log.Info().Str("player", p.Nickname).Stringer("phase", c.session.Phase).Msg("GAMES: Player left")

	c.broadcast(Message{Type: MsgLeft, Nickname: p.Nickname, Text: p.Nickname + " has left the game."})
	c.broadcastPlayers()

	switch c.session.Phase {
	case PhaseCountdown:
		if c.roster.Len() < c.settings.PlayerCap {
			c.cancelTimer()
			c.session.Phase = PhaseLobby
			c.session.CountdownLeft = 0

			c.log.Info().Msg("GAMES: Countdown aborted")

			c.broadcast(c.waitingMessage())
		}
	case PhaseInProgress:
		c.removeFromTurnOrder(idx)
	}
}

// onDeadline drops a connection that never registered a nickname.
func (c *Coordinator) onDeadline(cl *Client) {
	if _, ok := c.clients[cl]; !ok || cl.player != nil {
		return
	}

	c.log.Debug().Stringer("id", cl.id).Msg("GAMES: Dropping connection without a nickname")

	c.send(cl, Message{
		Type:   MsgNicknameRejected,
		Reason: ReasonTooSlow,
		Text:   "No nickname received. Closing connection.",
	})
	c.drop(cl)
}

// dropPending turns away every connection still choosing a nickname.
func (c *Coordinator) dropPending() {
	for cl := range c.clients {
		if cl.player == nil {
			c.send(cl, Message{Type: MsgBusy, Text: "The game is about to start."})
			c.drop(cl)
		}
	}
}

// drop forgets a connection and closes its outbound queue; the writer
// flushes what is queued and then closes the transport.
func (c *Coordinator) drop(cl *Client) {
	delete(c.clients, cl)
	cl.stopDeadline()

	if !cl.closed {
		cl.closed = true
		close(cl.send)
	}
}

// send never blocks the loop. A client whose queue is full has stopped
// reading; its transport is closed, which ends its read loop and
// removes it like any other disconnect.
func (c *Coordinator) send(cl *Client, m Message) {
	if cl == nil || cl.closed || cl.broken {
		return
	}

	select {
	case cl.send <- m:
	default:
		cl.broken = true

		c.log.Warn().Stringer("id", cl.id).Msg("GAMES: Client is not keeping up, disconnecting")

		_ = cl.conn.Close()
	}
}

// broadcast sends m to every registered player.
func (c *Coordinator) broadcast(m Message) {
	for cl := range c.clients {
		if cl.player != nil {
			c.send(cl, m)
		}
	}
}

func (c *Coordinator) broadcastPlayers() {
	c.broadcast(Message{Type: MsgPlayers, Players: c.roster.Names()})
}

func (c *Coordinator) broadcastStatus() {
	c.broadcast(Message{
		Type:    MsgStatus,
		Seconds: c.secondsLeft(),
		Cycles:  c.session.CyclesLeft,
	})
}

func (c *Coordinator) waitingMessage() Message {
	return Message{
		Type: MsgWaiting,
		Text: fmt.Sprintf("Waiting for players (%d/%d).", c.roster.Len(), c.settings.PlayerCap),
	}
}

func (c *Coordinator) secondsLeft() int {
	return int((time.Duration(c.session.TimeLeft) * c.settings.Tick).Round(time.Second) / time.Second)
}

func (c *Coordinator) snapshot() Snapshot {
	s := Snapshot{
		Phase:       c.session.Phase.String(),
		Players:     make([]Standing, 0, c.roster.Len()),
		Words:       c.ledger.Words(),
		Connections: len(c.clients),
		Capacity:    c.settings.PlayerCap,
	}

	for i := 0; i < c.roster.Len(); i++ {
		p := c.roster.At(i)
		s.Players = append(s.Players, Standing{Rank: i + 1, Nickname: p.Nickname, Score: p.Score})
	}

	if c.session.Phase == PhaseInProgress {
		if p := c.roster.At(c.session.Current); p != nil {
			s.Current = p.Nickname
		}

		s.Seconds = c.secondsLeft()
		s.Cycles = c.session.CyclesLeft
		s.StartLetter = string(c.session.StartLetter)
		s.LastWord = c.session.LastWord
	}

	return s
}

// shutdown ends whatever is running when the server stops.
func (c *Coordinator) shutdown() {
	if c.session.Phase == PhaseInProgress {
		c.endGame("The server is shutting down.")

		return
	}

	c.cancelTimer()

	for cl := range c.clients {
		c.send(cl, Message{Type: MsgShutdown, Text: "The server is shutting down."})
		c.drop(cl)
	}

	c.log.Info().Msg("GAMES: Coordinator stopped")
}
