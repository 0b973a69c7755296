/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package wordchain

// Ledger records the words accepted during one session, in order.
// It is owned by the coordinator loop and is not safe for concurrent use.
type Ledger struct {
	seen  map[string]struct{}
	order []string
}

func NewLedger() *Ledger {
	return &Ledger{
		seen: make(map[string]struct{}),
	}
}

// Add records word and reports whether it was new.
func (l *Ledger) Add(word string) bool {
	key := Normalize(word)
	if key == "" {
		return false
	}

	if _, ok := l.seen[key]; ok {
		return false
	}

	l.seen[key] = struct{}{}
	l.order = append(l.order, key)

	return true
}

func (l *Ledger) Has(word string) bool {
	_, ok := l.seen[Normalize(word)]

	return ok
}

func (l *Ledger) Len() int {
	return len(l.order)
}

// Words returns a copy of the accepted words in acceptance order.
func (l *Ledger) Words() []string {
	words := make([]string, len(l.order))
	copy(words, l.order)

	return words
}

func (l *Ledger) Reset() {
	clear(l.seen)
	l.order = l.order[:0]
}
