/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package wordchain

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const maxNicknameLength = 24

// Normalize trims surrounding whitespace and lowercases a word, so the
// ledger, the judge cache and the chain rule all agree on one spelling.
func Normalize(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

// Score is the point value of an accepted word: one point per letter,
// plus one bonus point for every full five letters.
func Score(word string) int {
	n := utf8.RuneCountInString(Normalize(word))

	return n + n/5
}

func firstLetter(word string) rune {
	r, _ := utf8.DecodeRuneInString(Normalize(word))
	if r == utf8.RuneError {
		return 0
	}

	return r
}

func lastLetter(word string) rune {
	r, _ := utf8.DecodeLastRuneInString(Normalize(word))
	if r == utf8.RuneError {
		return 0
	}

	return r
}

// Chains reports whether word starts with the required letter.
func Chains(required rune, word string) bool {
	first := firstLetter(word)

	return first != 0 && first == unicode.ToLower(required)
}

// Follows reports whether next starts with the last letter of prev.
func Follows(prev, next string) bool {
	return Chains(lastLetter(prev), next)
}

// validNickname reports whether a non-empty name can be carried by the
// line protocol.
func validNickname(name string) bool {
	if name == "" || utf8.RuneCountInString(name) > maxNicknameLength {
		return false
	}

	for _, r := range name {
		if unicode.IsSpace(r) || unicode.IsControl(r) || r == ':' {
			return false
		}
	}

	return true
}

func trimNickname(raw string) string {
	return strings.TrimSpace(raw)
}

func nicknameKey(name string) string {
	return strings.ToLower(name)
}
