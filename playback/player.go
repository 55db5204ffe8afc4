// Package playback steps forward and backward through an allocator history.
package playback

import "github.com/QuangTung97/buddysim/allocator"

// Player is a cursor over a history. It never modifies the entries.
type Player struct {
	entries []allocator.HistoryEntry
	index   int
}

// New creates a player positioned at the last entry
func New(entries []allocator.HistoryEntry) *Player {
	p := &Player{}
	p.Follow(entries)
	return p
}

// Follow replaces the history and moves to its last entry
func (p *Player) Follow(entries []allocator.HistoryEntry) {
	p.entries = entries
	p.index = len(entries) - 1
	if p.index < 0 {
		p.index = 0
	}
}

// Len ...
func (p *Player) Len() int {
	return len(p.entries)
}

// Index ...
func (p *Player) Index() int {
	return p.index
}

// Current returns the entry at the cursor, ok = false for an empty history
func (p *Player) Current() (allocator.HistoryEntry, bool) {
	if len(p.entries) == 0 {
		return allocator.HistoryEntry{}, false
	}
	return p.entries[p.index], true
}

// Next moves one step forward, false at the last entry
func (p *Player) Next() bool {
	if p.index+1 >= len(p.entries) {
		return false
	}
	p.index++
	return true
}

// Prev moves one step backward, false at the first entry
func (p *Player) Prev() bool {
	if p.index == 0 {
		return false
	}
	p.index--
	return true
}

// Seek moves to i clamped into the history range and returns the new index
func (p *Player) Seek(i int) int {
	switch {
	case len(p.entries) == 0 || i < 0:
		i = 0
	case i >= len(p.entries):
		i = len(p.entries) - 1
	}
	p.index = i
	return i
}

// First ...
func (p *Player) First() {
	p.index = 0
}

// Last ...
func (p *Player) Last() {
	p.Seek(len(p.entries) - 1)
}

// AtEnd reports whether the cursor is on the most recent entry
func (p *Player) AtEnd() bool {
	return p.index+1 >= len(p.entries)
}
