/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package wordchain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeLine(t *testing.T) {
	cases := []struct {
		msg  Message
		want string
	}{
		{Message{Type: MsgNickname, Text: "Enter your nickname:"}, "NICKNAME :Enter your nickname:"},
		{Message{Type: MsgStatus, Seconds: 27, Cycles: 4}, "STATUS 27 4"},
		{Message{Type: MsgAccepted, Nickname: "Ann", Word: "cat", Points: 3, Score: 3}, "ACCEPTED Ann cat 3 3"},
		{Message{Type: MsgRejected, Reason: ReasonDuplicate, Text: "no"}, "REJECTED duplicate :no"},
		{Message{Type: MsgPlayers, Players: []string{"Ann", "Bo"}}, "PLAYERS Ann Bo"},
		{Message{Type: MsgTurn, Nickname: "Bo", Letter: "t"}, "TURN Bo t"},
		{Message{Type: MsgYourTurn, Letter: "t", Seconds: 30}, "YOUR_TURN t 30"},
		{Message{Type: MsgResult, Rank: 1, Score: 12}, "RESULT 1 12"},
		{
			Message{Type: MsgStandings, Standings: []Standing{{Rank: 1, Nickname: "Ann", Score: 12}, {Rank: 2, Nickname: "Bo", Score: 9}}},
			"STANDINGS Ann:12 Bo:9",
		},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, EncodeLine(tc.msg))
	}
}

func TestParseLine(t *testing.T) {
	assert.Equal(t, Command{Kind: CmdExit}, ParseLine("EXIT\r"))
	assert.Equal(t, Command{Kind: CmdEndGame}, ParseLine("  end   Game "))
	assert.Equal(t, Command{Kind: CmdLine, Text: "cat"}, ParseLine(" cat \r"))
	assert.Equal(t, Command{Kind: CmdLine, Text: ""}, ParseLine("   "))
}

func TestClientMessage(t *testing.T) {
	var msg ClientMessage
	require.NoError(t, json.Unmarshal([]byte(`{"type":"word","text":" cat "}`), &msg))

	cmd, ok := msg.Command()
	require.True(t, ok)
	assert.Equal(t, Command{Kind: CmdWord, Text: "cat"}, cmd)
	assert.True(t, cmd.isWord())
	assert.False(t, cmd.isNickname())

	cmd, ok = ClientMessage{Type: "end_game", Text: "ignored"}.Command()
	require.True(t, ok)
	assert.Equal(t, Command{Kind: CmdEndGame}, cmd)

	_, ok = ClientMessage{Type: "line", Text: "cat"}.Command()
	assert.False(t, ok)
}

func TestMessageJSON(t *testing.T) {
	data, err := json.Marshal(Message{Type: MsgStatus, Seconds: 12, Cycles: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"status","seconds":12,"cycles":2}`, string(data))
}
