/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package wordchain

import (
	"strconv"
	"strings"
)

type MessageType string

// Messages sent to clients
const (
	MsgNickname         MessageType = "nickname"
	MsgNicknameRejected MessageType = "nickname_rejected"
	MsgWelcome          MessageType = "welcome"
	MsgPlayers          MessageType = "players"
	MsgStatus           MessageType = "status"
	MsgCountdown        MessageType = "countdown"
	MsgStart            MessageType = "start"
	MsgTurn             MessageType = "turn"
	MsgYourTurn         MessageType = "your_turn"
	MsgNotYourTurn      MessageType = "not_your_turn"
	MsgWaiting          MessageType = "waiting"
	MsgAccepted         MessageType = "accepted"
	MsgRejected         MessageType = "rejected"
	MsgTimeout          MessageType = "timeout"
	MsgLeft             MessageType = "left"
	MsgResult           MessageType = "result"
	MsgStandings        MessageType = "standings"
	MsgBusy             MessageType = "busy"
	MsgShutdown         MessageType = "shutdown"
)

// Reason tells a client why a nickname or word was refused.
type Reason string

const (
	ReasonInvalidNickname Reason = "invalid"
	ReasonNicknameFormat  Reason = "format"
	ReasonNicknameInUse   Reason = "in_use"
	ReasonEmpty           Reason = "empty"
	ReasonWrongLetter     Reason = "wrong_letter"
	ReasonUnknownWord     Reason = "unknown_word"
	ReasonDuplicate       Reason = "duplicate"
	ReasonPending         Reason = "pending"
	ReasonThrottled       Reason = "throttled"
	ReasonTooSlow         Reason = "timeout"
)

// Message is the single server-to-client envelope. Numeric fields that
// are absent from the JSON form are zero.
type Message struct {
	Type      MessageType `json:"type"`
	Nickname  string      `json:"nickname,omitempty"`
	Word      string      `json:"word,omitempty"`
	Letter    string      `json:"letter,omitempty"`
	Reason    Reason      `json:"reason,omitempty"`
	Text      string      `json:"text,omitempty"`
	Points    int         `json:"points,omitempty"`
	Score     int         `json:"score,omitempty"`
	Seconds   int         `json:"seconds,omitempty"`
	Cycles    int         `json:"cycles,omitempty"`
	Count     int         `json:"count,omitempty"`
	Rank      int         `json:"rank,omitempty"`
	Players   []string    `json:"players,omitempty"`
	Standings []Standing  `json:"standings,omitempty"`
}

// EncodeLine renders m for the line protocol as
// "TYPE arg... [:trailing text]", without the newline.
func EncodeLine(m Message) string {
	var args []string

	switch m.Type {
	case MsgNicknameRejected, MsgRejected:
		args = append(args, string(m.Reason))
	case MsgWelcome, MsgTimeout, MsgLeft:
		args = append(args, m.Nickname)
	case MsgPlayers:
		args = append(args, m.Players...)
	case MsgStatus:
		args = append(args, strconv.Itoa(m.Seconds), strconv.Itoa(m.Cycles))
	case MsgCountdown:
		args = append(args, strconv.Itoa(m.Count))
	case MsgStart:
		args = append(args, m.Letter)
	case MsgTurn:
		args = append(args, m.Nickname, m.Letter)
	case MsgYourTurn:
		args = append(args, m.Letter, strconv.Itoa(m.Seconds))
	case MsgAccepted:
		args = append(args, m.Nickname, m.Word, strconv.Itoa(m.Points), strconv.Itoa(m.Score))
	case MsgResult:
		args = append(args, strconv.Itoa(m.Rank), strconv.Itoa(m.Score))
	case MsgStandings:
		for _, s := range m.Standings {
			args = append(args, s.Nickname+":"+strconv.Itoa(s.Score))
		}
	}

	var b strings.Builder

	b.WriteString(strings.ToUpper(string(m.Type)))

	for _, a := range args {
		b.WriteByte(' ')
		b.WriteString(a)
	}

	if m.Text != "" {
		b.WriteString(" :")
		b.WriteString(m.Text)
	}

	return b.String()
}

type CommandKind string

// Commands coming from clients
const (
	// CmdLine is untyped input from the line protocol: a nickname while
	// registering, a word afterwards.
	CmdLine     CommandKind = "line"
	CmdNickname CommandKind = "nickname"
	CmdWord     CommandKind = "word"
	CmdEndGame  CommandKind = "end_game"
	CmdExit     CommandKind = "exit"
)

type Command struct {
	Kind CommandKind
	Text string
}

// ParseLine decodes one line of client input.
func ParseLine(line string) Command {
	text := strings.TrimSpace(strings.TrimSuffix(line, "\r"))

	switch {
	case strings.EqualFold(text, "exit"):
		return Command{Kind: CmdExit}
	case strings.EqualFold(strings.Join(strings.Fields(text), " "), "end game"):
		return Command{Kind: CmdEndGame}
	}

	return Command{Kind: CmdLine, Text: text}
}

// ClientMessage is the JSON form of client input.
type ClientMessage struct {
	Type string `json:"type"` // "nickname", "word", "end_game", "exit"
	Text string `json:"text,omitempty"`
}

// Command decodes a ClientMessage; unknown types are reported as !ok.
func (m ClientMessage) Command() (Command, bool) {
	switch CommandKind(m.Type) {
	case CmdNickname, CmdWord:
		return Command{Kind: CommandKind(m.Type), Text: strings.TrimSpace(m.Text)}, true
	case CmdEndGame, CmdExit:
		return Command{Kind: CommandKind(m.Type)}, true
	}

	return Command{}, false
}

func (c Command) isNickname() bool {
	return c.Kind == CmdLine || c.Kind == CmdNickname
}

func (c Command) isWord() bool {
	return c.Kind == CmdLine || c.Kind == CmdWord
}
