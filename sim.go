package instruments

import (
	"fmt"
	"strings"
	"sync"
)

// Sim is a scripted Connection for tests and offline development. Commands
// are recorded as formatted strings, and queries consume canned replies in
// FIFO order per query command. No hardware required.
type Sim struct {
	mu       sync.Mutex
	writes   []string
	replies  map[string][]simReply
	sticky   map[string]simReply
	failures map[string]error
	cleared  int
}

type simReply struct {
	s   string
	err error
}

// NewSim returns an empty simulated connection.
func NewSim() *Sim {
	return &Sim{
		replies:  make(map[string][]simReply),
		sticky:   make(map[string]simReply),
		failures: make(map[string]error),
	}
}

// Reply queues one or more replies for the given query command.
func (s *Sim) Reply(cmd string, replies ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range replies {
		s.replies[cmd] = append(s.replies[cmd], simReply{s: r})
	}
}

// ReplyErr queues a failed read for the given query command.
func (s *Sim) ReplyErr(cmd string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies[cmd] = append(s.replies[cmd], simReply{err: err})
}

// Repeat sets the reply returned for cmd once its queue is exhausted.
func (s *Sim) Repeat(cmd, reply string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sticky[cmd] = simReply{s: reply}
}

// FailCommands makes every command starting with prefix return err.
func (s *Sim) FailCommands(prefix string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[prefix] = err
}

// Command records the formatted command string.
func (s *Sim) Command(format string, a ...any) error {
	cmd := format
	if len(a) > 0 {
		cmd = fmt.Sprintf(format, a...)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for prefix, err := range s.failures {
		if strings.HasPrefix(cmd, prefix) {
			return err
		}
	}
	s.writes = append(s.writes, cmd)
	return nil
}

// Query consumes the next scripted reply for cmd.
func (s *Sim) Query(cmd string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if q := s.replies[cmd]; len(q) > 0 {
		r := q[0]
		s.replies[cmd] = q[1:]
		return r.s, r.err
	}
	if r, ok := s.sticky[cmd]; ok {
		return r.s, r.err
	}
	return "", fmt.Errorf("sim: no reply scripted for %q", cmd)
}

// Clear counts the flush so tests can assert on it.
func (s *Sim) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleared++
	return nil
}

// Writes returns a copy of every command recorded so far.
func (s *Sim) Writes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.writes))
	copy(out, s.writes)
	return out
}

// Cleared reports how many times Clear was called.
func (s *Sim) Cleared() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cleared
}

var _ Connection = (*Sim)(nil)
