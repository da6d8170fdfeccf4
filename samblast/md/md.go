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

// Package md decodes MD tags of SAM records and reconstructs the gapped
// reference sequence from a gapped query and a reference template.
package md

import (
	"strconv"
	"strings"

	"github.com/shenwei356/samblast/samblast/diag"
)

// OpType is the type of an MD operation.
type OpType uint8

const (
	Match   OpType = iota // a run of identical bases
	Replace               // a reference base differing from the aligned query base
	Insert                // reference bases deleted from the query, i.e., the ^ runs
)

// Op is an MD operation.
type Op struct {
	Type  OpType
	Count int    // for Match
	Bases string // for Replace (one base) and Insert
}

func (op Op) String() string {
	switch op.Type {
	case Match:
		return "Match(" + strconv.Itoa(op.Count) + ")"
	case Replace:
		return "Replace(" + op.Bases + ")"
	default:
		return "Insert(" + op.Bases + ")"
	}
}

// RefLen returns the number of reference bases the operation covers.
func (op Op) RefLen() int {
	if op.Type == Match {
		return op.Count
	}
	return len(op.Bases)
}

func isLetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func isReplaceChar(b byte) bool {
	return isLetter(b) || b == '*' || b == '\\' || b == '/'
}

// Decode decodes an MD string, e.g., "10A5^AC6" to
// [Match(10) Replace(A) Match(5) Insert(AC) Match(6)].
// Zero-length match runs are dropped. Whitespaces are skipped, and other
// unrecognized characters are reported to r and skipped.
func Decode(s string, r diag.Reporter) []Op {
	ops := make([]Op, 0, 8)

	var b byte
	var j, n int
	for i := 0; i < len(s); {
		b = s[i]
		switch {
		case b >= '0' && b <= '9':
			n = 0
			for i < len(s) && s[i] >= '0' && s[i] <= '9' {
				n = n*10 + int(s[i]-'0')
				i++
			}
			if n > 0 {
				ops = append(ops, Op{Type: Match, Count: n})
			}
		case b == '^':
			i++
			j = i
			for i < len(s) && isLetter(s[i]) {
				i++
			}
			if i == j {
				diag.Warningf(r, "empty deletion run at position %d in MD tag: %s", j, s)
				continue
			}
			ops = append(ops, Op{Type: Insert, Bases: s[j:i]})

			// the 0 separating the deletion and a following mismatch
			if i < len(s) && s[i] == '0' {
				i++
			}
		case isReplaceChar(b):
			ops = append(ops, Op{Type: Replace, Bases: s[i : i+1]})
			i++
		case b == ' ' || b == '\t' || b == '\n' || b == '\r':
			i++
		default:
			diag.Warningf(r, "unrecognized character %q in MD tag: %s", b, s)
			i++
		}
	}

	return ops
}

// String encodes MD operations back to text in the canonical form, where
// a number (maybe 0) always precedes and follows a mismatch or a deletion run.
func String(ops []Op) string {
	var b strings.Builder
	var prevMatch bool
	for _, op := range ops {
		switch op.Type {
		case Match:
			b.WriteString(strconv.Itoa(op.Count))
			prevMatch = true
			continue
		case Replace:
			if !prevMatch {
				b.WriteByte('0')
			}
			b.WriteString(op.Bases)
		case Insert:
			if !prevMatch {
				b.WriteByte('0')
			}
			b.WriteByte('^')
			b.WriteString(op.Bases)
		}
		prevMatch = false
	}
	if !prevMatch {
		b.WriteByte('0')
	}
	return b.String()
}
