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

package cigar

import (
	"errors"
	"testing"

	"github.com/shenwei356/samblast/samblast/diag"
)

func TestOperators(t *testing.T) {
	for _, c := range []byte("MIDNSHP=X\\/") {
		op, err := OperatorFromChar(c)
		if err != nil {
			t.Errorf("unexpected error for %c: %s", c, err)
			return
		}
		if op.Char() != c {
			t.Errorf("expected: %c, results: %c", c, op.Char())
		}
	}

	for _, c := range []byte("BZ0 m*") {
		_, err := OperatorFromChar(c)
		if !errors.Is(err, ErrInvalidOperator) {
			t.Errorf("expected ErrInvalidOperator for %q, results: %v", c, err)
		}
	}

	cases := []struct {
		op     Operator
		q, r   bool
		isReal bool
	}{
		{Match, true, true, true},
		{Insertion, true, false, true},
		{Deletion, false, true, true},
		{Skip, false, true, true},
		{SoftClip, true, false, false},
		{HardClip, false, false, false},
		{Padding, false, false, false},
		{SequenceMatch, true, true, true},
		{SequenceMismatch, true, true, true},
		{FrameShiftForward, true, false, false},
		{FrameShiftReverse, true, false, false},
	}
	for _, c := range cases {
		if c.op.ConsumesQuery() != c.q || c.op.ConsumesReference() != c.r || c.op.IsReal() != c.isReal {
			t.Errorf("unexpected properties of %s", c.op)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for _, s := range []string{
		"*",
		"10M",
		"5S10M2I3D20M5S",
		"3H2S10M1000N10M2S3H",
		"10=1X10=",
		"5M3P4M",
		"10M1\\5M1/5M",
		"4294967295M",
	} {
		c, err := Parse(s)
		if err != nil {
			t.Errorf("unexpected error for %s: %s", s, err)
			continue
		}
		if c.String() != s {
			t.Errorf("expected: %s, results: %s", s, c.String())
		}
		if Encode(c) != s {
			t.Errorf("expected: %s, results: %s", s, Encode(c))
		}
	}

	c, err := Decode("*")
	if err != nil || !c.IsEmpty() || c.String() != "*" {
		t.Errorf("* should be decoded to an empty Cigar")
	}
}

func TestParseTo(t *testing.T) {
	buf := make(Cigar, 0, 16)
	c, err := ParseTo(buf, "5S10M5S")
	if err != nil {
		t.Error(err)
		return
	}
	if c.String() != "5S10M5S" || &c[0] != &buf[:1][0] {
		t.Errorf("elements should be stored in the given slice")
	}

	c, err = ParseTo(c, "8M")
	if err != nil || c.String() != "8M" {
		t.Errorf("expected: 8M, results: %s (%v)", c, err)
	}

	c, err = ParseTo(c, "*")
	if err != nil || !c.IsEmpty() {
		t.Errorf("* should be parsed to an empty Cigar")
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		s   string
		err error
	}{
		{"", ErrMalformedCigar},
		{"M", ErrMalformedCigar},
		{"10M5", ErrMalformedCigar},
		{"10MI", ErrMalformedCigar},
		{"0M", ErrZeroLength},
		{"4294967296M", ErrMalformedCigar},
		{"10B", ErrInvalidOperator},
		{"10m", ErrInvalidOperator},
	}
	for _, c := range cases {
		_, err := Parse(c.s)
		if !errors.Is(err, c.err) {
			t.Errorf("%s: expected error: %v, results: %v", c.s, c.err, err)
		}
	}
}

func TestLengths(t *testing.T) {
	cases := []struct {
		s                  string
		ref, padded, read int
	}{
		{"*", 0, 0, 0},
		{"10M", 10, 10, 10},
		{"5S10M2I3D20M5S", 33, 33, 42},
		{"3H2S10M1000N10M2S3H", 1020, 1020, 24},
		{"5M3P4M", 9, 12, 9},
		{"10M1\\5M1/5M", 20, 20, 22},
	}
	for _, c := range cases {
		cg, err := Parse(c.s)
		if err != nil {
			t.Error(err)
			return
		}
		if cg.ReferenceLength() != c.ref {
			t.Errorf("%s: expected reference length: %d, results: %d", c.s, c.ref, cg.ReferenceLength())
		}
		if cg.PaddedReferenceLength() != c.padded {
			t.Errorf("%s: expected padded reference length: %d, results: %d", c.s, c.padded, cg.PaddedReferenceLength())
		}
		if cg.ReadLength() != c.read {
			t.Errorf("%s: expected read length: %d, results: %d", c.s, c.read, cg.ReadLength())
		}
		if cg.ReferenceLength() > cg.PaddedReferenceLength() {
			t.Errorf("%s: reference length > padded reference length", c.s)
		}
	}
}

func TestClips(t *testing.T) {
	c, _ := Parse("3H2S10M4S1H")
	h, s := c.LeadingClip()
	if h != 3 || s != 2 {
		t.Errorf("expected leading clips: 3, 2, results: %d, %d", h, s)
	}
	h, s = c.TrailingClip()
	if h != 1 || s != 4 {
		t.Errorf("expected trailing clips: 1, 4, results: %d, %d", h, s)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		s       string
		defects []diag.Defect
	}{
		{"*", nil},
		{"10M", nil},
		{"5S10M5S", nil},
		{"5H5S10M5S5H", nil},
		{"5M10S5H", nil},
		{"5M3P4M", nil},
		{"5I10M5I", nil},
		{"5I5D", nil},
		{"5I1P5I", nil},
		{"3P5M", []diag.Defect{diag.PaddingAtStart}},
		{"5M3P", []diag.Defect{diag.PaddingAtEnd}},
		{"5M3P5S", []diag.Defect{diag.PaddingNotBetweenRealOperators}},
		{"5I5I", []diag.Defect{diag.AdjacentIndel}},
		{"5D2N5D", nil},
		{"5D2I5D", []diag.Defect{diag.AdjacentIndel}},
		{"5S5H", []diag.Defect{diag.NoRealOperator}},
		{"5M5H5M", []diag.Defect{diag.HardClipNotAtEnd}},
		{"5M5S5M", []diag.Defect{diag.SoftClipNotInsideHardClip}},
		{"5M5M5S5M5M", []diag.Defect{diag.SoftClipNotAtEnd}},
		{"5M5S5M5M", []diag.Defect{diag.SoftClipNotInsideHardClip}},
		{"5M5M5S5M", []diag.Defect{diag.SoftClipNotInsideHardClip}},
	}
	for _, c := range cases {
		cg, err := Parse(c.s)
		if err != nil {
			t.Error(err)
			return
		}
		errs := cg.Validate("read1", 1)
		if len(errs) != len(c.defects) {
			t.Errorf("%s: expected %d errors, results: %v", c.s, len(c.defects), errs)
			continue
		}
		for i, e := range errs {
			if e.Defect != c.defects[i] {
				t.Errorf("%s: expected defect: %s, results: %s", c.s, c.defects[i], e.Defect)
			}
			if e.ReadName != "read1" || e.RecordNumber != 1 {
				t.Errorf("%s: read name and record number not kept", c.s)
			}
		}
	}

	cg, _ := Parse("5I5I")
	errs := cg.Validate("", 0)
	if len(errs) != 1 || errs[0].Type != diag.AdjacentIndelInCigar {
		t.Errorf("expected ADJACENT_INDEL_IN_CIGAR, results: %v", errs)
	}

	cg, _ = Parse("3P5M")
	errs = cg.Validate("", 0)
	if len(errs) != 1 || errs[0].Type != diag.InvalidCigar || errs[0].Severity() != diag.Error {
		t.Errorf("expected INVALID_CIGAR, results: %v", errs)
	}
}
