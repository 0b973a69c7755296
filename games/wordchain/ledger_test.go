/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package wordchain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLedger(t *testing.T) {
	l := NewLedger()

	assert.True(t, l.Add("cat"))
	assert.True(t, l.Add("Top"))
	assert.False(t, l.Add(" CAT "))
	assert.False(t, l.Add(""))

	assert.True(t, l.Has("top"))
	assert.False(t, l.Has("pot"))
	assert.Equal(t, 2, l.Len())
	assert.Equal(t, []string{"cat", "top"}, l.Words())

	words := l.Words()
	words[0] = "changed"
	assert.Equal(t, "cat", l.Words()[0])

	l.Reset()
	assert.Equal(t, 0, l.Len())
	assert.False(t, l.Has("cat"))
	assert.NotNil(t, l.Words())
	assert.True(t, l.Add("cat"))
}
