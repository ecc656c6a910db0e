// Package viewstate holds the per-view client state: the product detail
// state machine, the chat thread, and the request sequencing that keeps a
// slow response from overwriting a newer one.
package viewstate

import "sync"

// Sequencer orders the requests issued by a single control. Each outgoing
// request takes a ticket from Next; when its response arrives, Apply runs
// the state update only if no newer ticket has been issued since. Stale
// responses are discarded instead of winning by arrival order.
type Sequencer struct {
	mu     sync.Mutex
	issued uint64
}

// Next issues the next sequence number. Call it once per outgoing request.
func (s *Sequencer) Next() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.issued++
	return s.issued
}

// Apply runs fn only if seq is still the latest issued ticket, and reports
// whether it ran. fn executes under the sequencer's lock, so updates for
// the same control never interleave.
func (s *Sequencer) Apply(seq uint64, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.issued {
		return false
	}
	fn()
	return true
}
