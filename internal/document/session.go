package document

import (
	"fmt"
	"sync"
)

// Change is one edit to a session. A nil Range replaces the whole text.
type Change struct {
	Range *Range
	Text  string
}

type subscriber struct {
	id int
	fn func(*Snapshot)
}

// Session is an open document. Every content change produces a new
// Snapshot, and subscribers are notified synchronously with it once the
// session lock has been released. Deliveries from concurrent changes may
// reach a subscriber out of order; Snapshot.Generation tells them apart.
type Session struct {
	uri string

	mu         sync.RWMutex
	version    int32
	generation uint64
	snap       *Snapshot
	subs       []subscriber
	nextSub    int
}

// NewSession creates a session holding text at version.
func NewSession(uri string, version int32, text string) *Session {
	s := &Session{uri: uri}
	s.publish(version, New(text))
	return s
}

// publish stamps snap and makes it current; callers hold s.mu or own s
// exclusively. snap must not be shared yet.
func (s *Session) publish(version int32, snap *Snapshot) {
	s.generation++
	s.version = version
	snap.version = version
	snap.generation = s.generation
	s.snap = snap
}

func (s *Session) URI() string { return s.uri }

func (s *Session) Version() int32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *Session) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Subscribe registers fn for content-change notifications. The returned
// function removes the subscription.
func (s *Session) Subscribe(fn func(*Snapshot)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// Replace swaps the whole text.
func (s *Session) Replace(version int32, text string) {
	s.mu.Lock()
	s.publish(version, New(text))
	snap, subs := s.snap, s.subscribers()
	s.mu.Unlock()

	notify(snap, subs)
}

// ReplaceNext swaps the whole text under the next version number and
// returns that version.
func (s *Session) ReplaceNext(text string) int32 {
	s.mu.Lock()
	s.publish(s.version+1, New(text))
	snap, subs := s.snap, s.subscribers()
	s.mu.Unlock()

	notify(snap, subs)
	return snap.version
}

// Apply applies changes in order, each against the text produced by the
// previous one. On error the session is left unchanged.
func (s *Session) Apply(version int32, changes ...Change) error {
	s.mu.Lock()
	snap := s.snap
	for i, change := range changes {
		if change.Range == nil {
			snap = New(change.Text)
			continue
		}
		start := snap.Offset(change.Range.Start)
		end := snap.Offset(change.Range.End)
		if start > end {
			s.mu.Unlock()
			return fmt.Errorf("change %d: range start %v is after end %v", i, change.Range.Start, change.Range.End)
		}
		content := snap.Content()
		snap = New(content[:start] + change.Text + content[end:])
	}
	if snap == s.snap {
		snap = New(snap.Content())
	}
	s.publish(version, snap)
	subs := s.subscribers()
	s.mu.Unlock()

	notify(snap, subs)
	return nil
}

// Invalidate re-delivers the current snapshot to every subscriber so
// derived state is recomputed without a content change.
func (s *Session) Invalidate() {
	s.mu.RLock()
	snap, subs := s.snap, s.subscribers()
	s.mu.RUnlock()

	notify(snap, subs)
}

func (s *Session) close() {
	s.mu.Lock()
	s.subs = nil
	s.mu.Unlock()
}

// subscribers copies the subscription list; callers hold s.mu.
func (s *Session) subscribers() []subscriber {
	out := make([]subscriber, len(s.subs))
	copy(out, s.subs)
	return out
}

func notify(snap *Snapshot, subs []subscriber) {
	for _, sub := range subs {
		sub.fn(snap)
	}
}
