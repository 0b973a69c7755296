/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package wordchain

import (
	"sort"

	"github.com/google/uuid"
)

// Player holds the data we keep for a registered connection.
type Player struct {
	ID       uuid.UUID
	Nickname string
	Score    int

	key    string
	client *Client
}

func newPlayer(id uuid.UUID, nickname string) *Player {
	return &Player{
		ID:       id,
		Nickname: nickname,
		key:      nicknameKey(nickname),
	}
}

// Standing is one line of the end-of-game ranking.
type Standing struct {
	Rank     int    `json:"rank"`
	Nickname string `json:"nickname"`
	Score    int    `json:"score"`
}

// Roster is the ordered list of registered players; join order is turn order.
type Roster struct {
	players []*Player
}

func (r *Roster) Len() int {
	return len(r.players)
}

func (r *Roster) At(i int) *Player {
	if i < 0 || i >= len(r.players) {
		return nil
	}

	return r.players[i]
}

func (r *Roster) Has(nickname string) bool {
	key := nicknameKey(nickname)
	for _, p := range r.players {
		if p.key == key {
			return true
		}
	}

	return false
}

func (r *Roster) Add(p *Player) error {
	if r.Has(p.Nickname) {
		return ErrNicknameInUse
	}

	r.players = append(r.players, p)

	return nil
}

func (r *Roster) Index(p *Player) int {
	for i, q := range r.players {
		if q == p {
			return i
		}
	}

	return -1
}

// Remove deletes p and returns the index it held, or -1.
func (r *Roster) Remove(p *Player) int {
	i := r.Index(p)
	if i < 0 {
		return -1
	}

	r.players = append(r.players[:i], r.players[i+1:]...)

	return i
}

func (r *Roster) Names() []string {
	names := make([]string, 0, len(r.players))
	for _, p := range r.players {
		names = append(names, p.Nickname)
	}

	return names
}

// Standings ranks players by score, highest first; equal scores keep
// join order.
func (r *Roster) Standings() []Standing {
	sorted := append([]*Player(nil), r.players...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	out := make([]Standing, 0, len(sorted))
	for i, p := range sorted {
		out = append(out, Standing{
			Rank:     i + 1,
			Nickname: p.Nickname,
			Score:    p.Score,
		})
	}

	return out
}

func (r *Roster) Reset() {
	r.players = nil
}
