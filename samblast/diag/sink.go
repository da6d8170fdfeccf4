// Copyright © 2023-2024 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package diag

import (
	"fmt"
	"sync"

	"github.com/shenwei356/go-logging"
	"github.com/zeebo/wyhash"
)

// Reporter receives diagnostics of recoverable problems,
// e.g., inconsistent MD tag and CIGAR, or unrecognized MD characters.
type Reporter interface {
	Warningf(format string, args ...interface{})
}

// Warningf reports a message to r if r is not nil.
func Warningf(r Reporter, format string, args ...interface{}) {
	if r == nil {
		return
	}
	r.Warningf(format, args...)
}

const hashSeed uint64 = 1

// Sink is a Reporter which keeps each distinct message only once.
// It is safe for concurrent use.
type Sink struct {
	mu       sync.Mutex
	seen     map[uint64][]string // hash -> messages sharing the hash
	messages []string

	logger *logging.Logger
}

// NewSink creates a Sink. Messages are also sent to the logger at
// the WARNING level if the logger is not nil.
func NewSink(logger *logging.Logger) *Sink {
	return &Sink{
		seen:     make(map[uint64][]string, 64),
		messages: make([]string, 0, 64),
		logger:   logger,
	}
}

// Warningf records a message if it has not been seen yet.
func (s *Sink) Warningf(format string, args ...interface{}) {
	if s == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	h := wyhash.Hash([]byte(msg), hashSeed)

	s.mu.Lock()
	if s.has(h, msg) {
		s.mu.Unlock()
		return
	}
	s.seen[h] = append(s.seen[h], msg)
	s.messages = append(s.messages, msg)
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Warning(msg)
	}
}

// Seen tells whether the message has been recorded.
func (s *Sink) Seen(msg string) bool {
	h := wyhash.Hash([]byte(msg), hashSeed)
	s.mu.Lock()
	ok := s.has(h, msg)
	s.mu.Unlock()
	return ok
}

func (s *Sink) has(h uint64, msg string) bool {
	for _, m := range s.seen[h] {
		if m == msg {
			return true
		}
	}
	return false
}

// Messages returns a copy of recorded messages, in the order of arrival.
func (s *Sink) Messages() []string {
	s.mu.Lock()
	msgs := make([]string, len(s.messages))
	copy(msgs, s.messages)
	s.mu.Unlock()
	return msgs
}

// Len returns the number of distinct messages.
func (s *Sink) Len() int {
	s.mu.Lock()
	n := len(s.messages)
	s.mu.Unlock()
	return n
}

// Reset forgets all recorded messages.
func (s *Sink) Reset() {
	s.mu.Lock()
	clear(s.seen)
	s.messages = s.messages[:0]
	s.mu.Unlock()
}
