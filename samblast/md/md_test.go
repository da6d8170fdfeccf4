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

package md

import (
	"testing"

	"github.com/shenwei356/samblast/samblast/diag"
)

func opsEqual(a, b []Op) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDecode(t *testing.T) {
	cases := []struct {
		s   string
		ops []Op
	}{
		{"10A5^AC6", []Op{{Type: Match, Count: 10}, {Type: Replace, Bases: "A"},
			{Type: Match, Count: 5}, {Type: Insert, Bases: "AC"}, {Type: Match, Count: 6}}},
		{"0A0C5", []Op{{Type: Replace, Bases: "A"}, {Type: Replace, Bases: "C"}, {Type: Match, Count: 5}}},
		{"3^GT0A2", []Op{{Type: Match, Count: 3}, {Type: Insert, Bases: "GT"},
			{Type: Replace, Bases: "A"}, {Type: Match, Count: 2}}},
		{" 12 ", []Op{{Type: Match, Count: 12}}},
		{"4*2\\1", []Op{{Type: Match, Count: 4}, {Type: Replace, Bases: "*"},
			{Type: Match, Count: 2}, {Type: Replace, Bases: "\\"}, {Type: Match, Count: 1}}},
		{"", []Op{}},
	}
	for _, c := range cases {
		ops := Decode(c.s, nil)
		if !opsEqual(ops, c.ops) {
			t.Errorf("%q: expected: %v, results: %v", c.s, c.ops, ops)
		}
	}
}

func TestDecodeUnrecognized(t *testing.T) {
	sink := diag.NewSink(nil)
	ops := Decode("5#5", sink)
	expected := []Op{{Type: Match, Count: 5}, {Type: Match, Count: 5}}
	if !opsEqual(ops, expected) {
		t.Errorf("expected: %v, results: %v", expected, ops)
	}
	if sink.Len() != 1 {
		t.Errorf("expected 1 diagnostic message, results: %v", sink.Messages())
	}
}

func TestString(t *testing.T) {
	for _, s := range []string{"10A5^AC6", "0A0C5", "3^GT0A2", "0"} {
		if String(Decode(s, nil)) != s {
			t.Errorf("expected: %s, results: %s", s, String(Decode(s, nil)))
		}
	}
}

func TestGetReference(t *testing.T) {
	cases := []struct {
		md       string
		query    string
		template string
		ref      string
	}{
		{"8", "ACGTACGT", "????????", "ACGTACGT"},
		{"", "ACGTACGT", "????????", "ACGTACGT"},
		{"2A5", "ACGTTTACGT", "????--????", "ACaT--ACGT"},
		{"4^GG4", "ACGT--ACGT", "??????????", "ACGTggACGT"},
		{"2C1", "AC...GT", "??...??", "AC...cT"},
		{"4", "AC*GT", "??*??", "AC*GT"},
	}
	for _, c := range cases {
		sink := diag.NewSink(nil)
		ref := GetReference(c.md, c.query, c.template, sink)
		if ref != c.ref {
			t.Errorf("%s: expected: %s, results: %s", c.md, c.ref, ref)
		}
		if sink.Len() != 0 {
			t.Errorf("%s: unexpected diagnostics: %v", c.md, sink.Messages())
		}
	}
}

func TestGetReferenceInconsistent(t *testing.T) {
	// MD shorter than the alignment
	sink := diag.NewSink(nil)
	ref := GetReference("1G2", "ACGTAC-GT", "??????-??", sink)
	if ref != "AgGTAC-GT" {
		t.Errorf("expected: %s, results: %s", "AgGTAC-GT", ref)
	}
	if sink.Len() != 1 {
		t.Errorf("expected 1 diagnostic message, results: %v", sink.Messages())
	}

	// MD longer than the alignment
	sink.Reset()
	ref = GetReference("10", "ACGT", "????", sink)
	if ref != "ACGT" {
		t.Errorf("expected: %s, results: %s", "ACGT", ref)
	}
	if sink.Len() != 1 {
		t.Errorf("expected 1 diagnostic message, results: %v", sink.Messages())
	}
}
