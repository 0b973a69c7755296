/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package wordchain

import (
	"context"
	"fmt"
	"strconv"
)

func (c *Coordinator) startCountdown() {
	c.session.Phase = PhaseCountdown
	c.session.CountdownLeft = c.settings.Countdown

	c.log.Info().Int("countdown", c.settings.Countdown).Msg("GAMES: All players joined, counting down")

	c.dropPending()

	if c.session.CountdownLeft <= 0 {
		c.startGame()

		return
	}

	c.broadcastCountdown()
	c.armTick()
}

func (c *Coordinator) broadcastCountdown() {
	c.broadcast(Message{
		Type:  MsgCountdown,
		Count: c.session.CountdownLeft,
		Text:  fmt.Sprintf("The game starts in %d...", c.session.CountdownLeft),
	})
}

func (c *Coordinator) startGame() {
	c.ledger.Reset()

	c.session = Session{
		Phase:       PhaseInProgress,
		CyclesLeft:  c.settings.Cycles,
		StartLetter: rune('a' + c.intn(26)),
	}

	letter := string(c.session.StartLetter)

	c.log.Info().Str("letter", letter).Strs("players", c.roster.Names()).Msg("GAMES: Game started")

	c.broadcast(Message{
		Type:   MsgStart,
		Letter: letter,
		Text:   fmt.Sprintf("Everyone is here! The first word must start with '%s'.", letter),
	})

	c.beginTurn()
}

func (c *Coordinator) requiredLetter() rune {
	if c.session.LastWord == "" {
		return c.session.StartLetter
	}

	return lastLetter(c.session.LastWord)
}

// chains reports whether word may be played next.
func (c *Coordinator) chains(word string) bool {
	if c.session.LastWord == "" {
		return Chains(c.session.StartLetter, word)
	}

	return Follows(c.session.LastWord, word)
}

// beginTurn resets the clock for the player at the current index and
// announces the turn.
func (c *Coordinator) beginTurn() {
	c.cancelTimer()
	c.pending = nil

	c.session.TimeLeft = c.turnTicks

	p := c.roster.At(c.session.Current)
	letter := string(c.requiredLetter())

	c.broadcast(Message{
		Type:     MsgTurn,
		Nickname: p.Nickname,
		Letter:   letter,
		Text:     "It is " + p.Nickname + "'s turn.",
	})
	c.send(p.client, Message{
		Type:    MsgYourTurn,
		Letter:  letter,
		Seconds: c.secondsLeft(),
		Text:    fmt.Sprintf("Your turn! Enter a word starting with '%s'.", letter),
	})
	c.broadcastStatus()

	c.armTick()
}

// advance moves to the next player after a consumed turn.
func (c *Coordinator) advance() {
	c.session.Current++
	c.continueTurns()
}

// continueTurns starts the turn at the current index, wrapping to the
// front of the roster. Every wrap completes one cycle.
func (c *Coordinator) continueTurns() {
	if c.session.Current >= c.roster.Len() {
		c.session.Current = 0
		c.session.CyclesLeft--

		c.log.Debug().Int("cycles_left", c.session.CyclesLeft).Msg("GAMES: Cycle complete")
	}

	if c.session.CyclesLeft <= 0 {
		c.endGame("All turns have been played.")

		return
	}

	c.beginTurn()
}

// removeFromTurnOrder fixes the turn index after the player at idx left
// a running game.
func (c *Coordinator) removeFromTurnOrder(idx int) {
	switch {
	case c.roster.Len() == 0:
		c.endGame("All players have left.")
	case idx < c.session.Current:
		c.session.Current--
	case idx == c.session.Current:
		c.continueTurns()
	}
}

// armTick schedules the next one-tick callback under a fresh token, so
// any tick already in flight becomes stale.
func (c *Coordinator) armTick() {
	c.token++
	token := c.token

	c.timer = c.clock.AfterFunc(c.settings.Tick, func() {
		c.post(context.Background(), tickEvent{token: token})
	})
}

// cancelTimer stops the clock. Stop may lose the race with a timer that
// has already fired; bumping the token makes that tick a no-op.
func (c *Coordinator) cancelTimer() {
	c.token++

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Coordinator) onTick(token uint64) {
	if token != c.token {
		c.log.Debug().Uint64("token", token).Msg("GAMES: Ignoring stale tick")

		return
	}

	c.timer = nil

	switch c.session.Phase {
	case PhaseCountdown:
		c.session.CountdownLeft--
		if c.session.CountdownLeft <= 0 {
			c.startGame()

			return
		}

		c.broadcastCountdown()
		c.armTick()
	case PhaseInProgress:
		c.session.TimeLeft--
		if c.session.TimeLeft > 0 {
			c.broadcastStatus()
			c.armTick()

			return
		}

		p := c.roster.At(c.session.Current)

		c.log.Info().Str("player", p.Nickname).Msg("GAMES: Turn timed out")

		c.broadcast(Message{
			Type:     MsgTimeout,
			Nickname: p.Nickname,
			Text:     p.Nickname + " ran out of time!",
		})

		c.advance()
	}
}

func (c *Coordinator) reject(cl *Client, reason Reason, text string) {
	c.send(cl, Message{Type: MsgRejected, Reason: reason, Text: text})
}

func (c *Coordinator) onSubmit(cl *Client, cmd Command) {
	if _, ok := c.clients[cl]; !ok || cl.player == nil {
		return
	}

	if !cl.limiter.Allow() {
		c.reject(cl, ReasonThrottled, "Slow down!")

		return
	}

	if c.session.Phase != PhaseInProgress {
		c.send(cl, c.waitingMessage())

		return
	}

	p := cl.player
	if c.roster.Index(p) != c.session.Current {
		c.send(cl, Message{Type: MsgNotYourTurn, Text: "It is not your turn."})

		return
	}

	if cmd.Kind == CmdEndGame {
		c.log.Info().Str("player", p.Nickname).Msg("GAMES: Game ended on request")
		c.endGame(p.Nickname + " ended the game.")

		return
	}

	if !cmd.isWord() {
		return
	}

	if c.pending != nil {
		c.reject(cl, ReasonPending, "Your previous word is still being checked.")

		return
	}

	word := Normalize(cmd.Text)
	if word == "" {
		c.reject(cl, ReasonEmpty, "Please enter a word.")

		return
	}

	// The clock is paused while the word is checked and resumes, not
	// restarts, if the word is refused.
	c.cancelTimer()

	if !c.chains(word) {
		c.reject(cl, ReasonWrongLetter, fmt.Sprintf("%q does not start with '%c'.", word, c.requiredLetter()))
		c.resumeClock()

		return
	}

	if c.ledger.Has(word) {
		c.reject(cl, ReasonDuplicate, fmt.Sprintf("%q has already been used.", word))
		c.resumeClock()

		return
	}

	pw := &pendingWord{player: p, word: word}
	c.pending = pw

	go c.judgeWord(c.ctx, pw)
}

// judgeWord runs outside the loop; the verdict comes back as an event.
func (c *Coordinator) judgeWord(ctx context.Context, pw *pendingWord) {
	ctx, cancel := context.WithTimeout(ctx, c.settings.JudgeTimeout)
	defer cancel()

	valid, err := c.judge.Valid(ctx, pw.word)
	if err != nil {
		c.log.Warn().Err(err).Str("word", pw.word).Msg("GAMES: Word lookup failed, treating as invalid")

		valid = false
	}

	c.post(context.Background(), verdictEvent{pending: pw, valid: valid})
}

func (c *Coordinator) onVerdict(e verdictEvent) {
	if e.pending != c.pending {
		c.log.Debug().Str("word", e.pending.word).Msg("GAMES: Ignoring stale verdict")

		return
	}

	c.pending = nil

	p, word := e.pending.player, e.pending.word

	if !e.valid {
		c.reject(p.client, ReasonUnknownWord, fmt.Sprintf("%q is not a valid word.", word))
		c.resumeClock()

		return
	}

	if !c.ledger.Add(word) {
		c.reject(p.client, ReasonDuplicate, fmt.Sprintf("%q has already been used.", word))
		c.resumeClock()

		return
	}

	points := Score(word)
	p.Score += points
	c.session.LastWord = word

	c.log.Info().Str("player", p.Nickname).Str("word", word).Int("points", points).Msg("GAMES: Word accepted")

	c.broadcast(Message{
		Type:     MsgAccepted,
		Nickname: p.Nickname,
		Word:     word,
		Points:   points,
		Score:    p.Score,
		Text:     fmt.Sprintf("%s played %q for %d points.", p.Nickname, word, points),
	})

	c.advance()
}

func (c *Coordinator) resumeClock() {
	if c.session.Phase == PhaseInProgress && c.session.TimeLeft > 0 {
		c.armTick()
	}
}

// endGame sends every player their rank, closes every connection and
// opens a fresh lobby.
func (c *Coordinator) endGame(reason string) {
	c.cancelTimer()
	c.pending = nil
	c.session.Phase = PhaseEnded

	standings := c.roster.Standings()

	c.log.Info().Str("reason", reason).Interface("standings", standings).Msg("GAMES: Game over")

	c.broadcast(Message{Type: MsgStandings, Standings: standings, Text: reason})

	ranks := make(map[string]Standing, len(standings))
	for _, s := range standings {
		ranks[s.Nickname] = s
	}

	for i := 0; i < c.roster.Len(); i++ {
		p := c.roster.At(i)
		s := ranks[p.Nickname]

		c.send(p.client, Message{
			Type:  MsgResult,
			Rank:  s.Rank,
			Score: s.Score,
			Text:  "Game over! Your score: " + strconv.Itoa(s.Score) + ", rank: " + strconv.Itoa(s.Rank),
		})
	}

	for cl := range c.clients {
		c.send(cl, Message{Type: MsgShutdown, Text: "Thanks for playing!"})
		c.drop(cl)
	}

	c.roster.Reset()
	c.ledger.Reset()
	c.session = Session{Phase: PhaseLobby}

	c.log.Info().Msg("GAMES: Lobby open")
}
