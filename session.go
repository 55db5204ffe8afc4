// Package buddysim ties an allocator to its playback cursor.
package buddysim

import (
	"github.com/rs/xid"

	"github.com/QuangTung97/buddysim/allocator"
	"github.com/QuangTung97/buddysim/playback"
)

// SessionConfig ...
type SessionConfig struct {
	// ID is generated when empty
	ID       string
	Capacity int
	Hooks    []allocator.Hook
}

// Session is one allocator with a player that follows its history
type Session struct {
	id        string
	allocator *allocator.Allocator
	player    *playback.Player
}

// NewSession ...
func NewSession(conf SessionConfig) *Session {
	id := conf.ID
	if id == "" {
		id = NewSessionID()
	}

	alloc := allocator.New(allocator.Config{
		Capacity: conf.Capacity,
		Hooks:    conf.Hooks,
	})
	return &Session{
		id:        id,
		allocator: alloc,
		player:    playback.New(alloc.History()),
	}
}

// NewSessionID returns a new globally unique session id
func NewSessionID() string {
	return xid.New().String()
}

// ID ...
func (s *Session) ID() string {
	return s.id
}

// Allocator ...
func (s *Session) Allocator() *allocator.Allocator {
	return s.allocator
}

// Player ...
func (s *Session) Player() *playback.Player {
	return s.player
}

// Allocate ...
func (s *Session) Allocate(name string, size int) bool {
	ok := s.allocator.Allocate(name, size)
	s.player.Follow(s.allocator.History())
	return ok
}

// Free ...
func (s *Session) Free(name string) bool {
	ok := s.allocator.Free(name)
	s.player.Follow(s.allocator.History())
	return ok
}

// Reset keeps the current capacity when capacity <= 0
func (s *Session) Reset(capacity int) {
	if capacity <= 0 {
		s.allocator.Reset()
	} else {
		s.allocator.ResetCapacity(capacity)
	}
	s.player.Follow(s.allocator.History())
}

// LastMessage returns the message of the most recent history entry
func (s *Session) LastMessage() string {
	return s.allocator.LastEntry().Message
}
