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
	"testing"

	"github.com/zeebo/wyhash"
)

func TestSink(t *testing.T) {
	s := NewSink(nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Warningf("message %d", j%10)
			}
		}(i)
	}
	wg.Wait()

	if s.Len() != 10 {
		t.Errorf("expected 10 distinct messages, results: %d", s.Len())
	}
	if !s.Seen("message 3") {
		t.Errorf("message 3 should have been seen")
	}
	if s.Seen("message 10") {
		t.Errorf("message 10 should not have been seen")
	}

	s.Reset()
	s.Warningf("b")
	s.Warningf("a")
	s.Warningf("b")
	msgs := s.Messages()
	if len(msgs) != 2 || msgs[0] != "b" || msgs[1] != "a" {
		t.Errorf("unexpected messages: %v", msgs)
	}

	// a nil reporter is allowed
	Warningf(nil, "nothing")
	var ns *Sink
	Warningf(ns, "nothing")
}

func TestSinkSameHash(t *testing.T) {
	s := NewSink(nil)
	msg := "MD tag is empty"
	h := wyhash.Hash([]byte(msg), hashSeed)
	s.seen[h] = []string{"another message"}

	if s.Seen(msg) {
		t.Errorf("message should not be seen yet")
	}
	s.Warningf("%s", msg)
	if !s.Seen(msg) || !s.Seen("another message") {
		t.Errorf("both messages should be seen")
	}
	if s.Len() != 1 || s.Messages()[0] != msg {
		t.Errorf("unexpected messages: %v", s.Messages())
	}
	s.Warningf("%s", msg)
	if s.Len() != 1 {
		t.Errorf("expected: 1, results: %d", s.Len())
	}
}

func TestValidationError(t *testing.T) {
	e := NewValidationError(InvalidCigar, NoRealOperator, "No real operator (M|I|D|N|=|X) in CIGAR", "read1", 3)
	expected := "ERROR: Record 3, Read name read1, No real operator (M|I|D|N|=|X) in CIGAR"
	if e.String() != expected {
		t.Errorf("expected: %s, results: %s", expected, e.String())
	}

	e2 := NewValidationError(AdjacentIndelInCigar, AdjacentIndel, "msg", "", 0)
	if e2.Severity() != Warning {
		t.Errorf("expected: %s, results: %s", Warning, e2.Severity())
	}
	if fmt.Sprint(e2.Type) != "ADJACENT_INDEL_IN_CIGAR" {
		t.Errorf("unexpected type name: %s", e2.Type)
	}

	if HasErrors([]ValidationError{e2}) {
		t.Errorf("warnings only")
	}
	if !HasErrors([]ValidationError{e2, e}) {
		t.Errorf("an error exists")
	}
}
