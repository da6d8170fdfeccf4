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

package sam

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/shenwei356/samblast/samblast/cigar"
	"github.com/shenwei356/samblast/samblast/diag"
)

func TestParseRecord(t *testing.T) {
	line := "read1/1\t0\tchr1\t100\t60\t5S10M\t*\t0\t0\tacgtaACGTACGTAC\t*\t" +
		"XA:A:c\tNM:i:-3\tXF:f:1.5\tXZ:Z:a:b c\tXH:H:1AE3\tMD:Z:10"
	r, err := ParseRecord(line, &ParseOptions{PairedSuffixes: []string{"/1", "/2"}})
	if err != nil {
		t.Error(err)
		return
	}

	if r.QName != "read1" {
		t.Errorf("expected: %s, results: %s", "read1", r.QName)
	}
	if r.Pos != 100 || r.MapQ != 60 || r.RName != "chr1" || r.RNext != "*" {
		t.Errorf("unexpected mandatory fields: %s", r)
	}
	if r.Cigar.String() != "5S10M" {
		t.Errorf("expected: %s, results: %s", "5S10M", r.Cigar)
	}
	if r.Seq != "ACGTAACGTACGTAC" {
		t.Errorf("SEQ should be in upper case: %s", r.Seq)
	}

	if v, ok := r.Tag("XA"); !ok || v.Type != TagChar || v.Char != 'c' {
		t.Errorf("unexpected XA: %v", v)
	}
	if v, ok := r.TagInt("NM"); !ok || v != -3 {
		t.Errorf("unexpected NM: %d", v)
	}
	if v, ok := r.TagFloat("XF"); !ok || v != 1.5 {
		t.Errorf("unexpected XF: %f", v)
	}
	if v, ok := r.TagString("XZ"); !ok || v != "a:b c" {
		t.Errorf("unexpected XZ: %s", v)
	}
	if v, ok := r.TagInt("XH"); !ok || v != 0x1AE3 {
		t.Errorf("unexpected XH: %d", v)
	}
	if v, ok := r.MD(); !ok || v != "10" {
		t.Errorf("unexpected MD: %s", v)
	}
	if _, ok := r.TagInt("XZ"); ok {
		t.Errorf("XZ is not an integer")
	}

	keys := r.TagKeys()
	if len(keys) != 6 || keys[0] != "XA" || keys[5] != "MD" {
		t.Errorf("unexpected tag order: %v", keys)
	}

	expected := "read1\t0\tchr1\t100\t60\t5S10M\t*\t0\t0\tACGTAACGTACGTAC\t*\t" +
		"XA:A:c\tNM:i:-3\tXF:f:1.5\tXZ:Z:a:b c\tXH:H:1AE3\tMD:Z:10"
	if r.String() != expected {
		t.Errorf("expected: %s, results: %s", expected, r.String())
	}

	if !r.IsMatch() || r.IsReverse() {
		t.Errorf("unexpected flag checks")
	}

	// hex values with the highest bit set
	_, v, err := ParseOptionalField("XH:H:FFFFFFFFFFFFFFF0")
	if err != nil {
		t.Error(err)
		return
	}
	if uint64(v.Int) != 0xFFFFFFFFFFFFFFF0 || v.String() != "FFFFFFFFFFFFFFF0" {
		t.Errorf("expected: FFFFFFFFFFFFFFF0, results: %s", v)
	}

	// lowercase md
	r, err = ParseRecord("r\t0\tchr1\t1\t60\t4M\t*\t0\t0\tACGT\t*\tmd:Z:4", nil)
	if err != nil {
		t.Error(err)
		return
	}
	if v, ok := r.MD(); !ok || v != "4" {
		t.Errorf("unexpected md: %s", v)
	}
}

func TestParseRecordErrors(t *testing.T) {
	cases := []struct {
		line string
		err  error
	}{
		{"r\t0\tchr1\t1\t60\t4M\t*\t0\t0\tACGT", ErrTooFewFields},
		{"r\t0\tchr1\t1\t60\t4M\t*\t0\t0\tACGT\t*\tAS20", ErrMalformedOptionalField},
		{"r\t0\tchr1\t1\t60\t4M\t*\t0\t0\tACGT\t*\tAS:i20", ErrMalformedOptionalField},
		{"r\t0\tchr1\t1\t60\t4M\t*\t0\t0\tACGT\t*\tASX:i:20", ErrMalformedOptionalField},
		{"r\t0\tchr1\t1\t60\t4M\t*\t0\t0\tACGT\t*\tAS:i:x", ErrMalformedOptionalField},
		{"r\t0\tchr1\t1\t60\t4M\t*\t0\t0\tACGT\t*\tXB:B:c,1", ErrUnknownTagType},
		{"r\t0\tchr1\t1\t60\t4Q\t*\t0\t0\tACGT\t*", cigar.ErrInvalidOperator},
		{"r\t0\tchr1\t1\t60\tM4\t*\t0\t0\tACGT\t*", cigar.ErrMalformedCigar},
		{"r\tx\tchr1\t1\t60\t4M\t*\t0\t0\tACGT\t*", ErrInvalidField},
		{"r\t0\tchr1\tx\t60\t4M\t*\t0\t0\tACGT\t*", ErrInvalidField},
	}
	for _, c := range cases {
		_, err := ParseRecord(c.line, nil)
		if !errors.Is(err, c.err) {
			t.Errorf("%q: expected error: %v, results: %v", c.line, c.err, err)
		}
	}
}

func TestRecordPool(t *testing.T) {
	r := NewRecord()
	if err := r.Parse("r\t0\tchr1\t1\t60\t4M\t*\t0\t0\tACGT\t*\tAS:i:3", nil); err != nil {
		t.Error(err)
		return
	}
	RecycleRecord(r)

	r = NewRecord()
	if r.QName != "" || len(r.Tags) != 0 || len(r.TagKeys()) != 0 || !r.Cigar.IsEmpty() {
		t.Errorf("record not reset")
	}
	RecycleRecord(r)
}

func TestValidateRecord(t *testing.T) {
	r, _ := ParseRecord("r\t0\tchr1\t1\t60\t5M\t*\t0\t0\tACGT\t*", nil)
	errs := r.Validate(7)
	if len(errs) != 1 || errs[0].Type != diag.MismatchReadLengthAndCigar || errs[0].RecordNumber != 7 {
		t.Errorf("unexpected validation errors: %v", errs)
	}

	r, _ = ParseRecord("r\t0\tchr1\t1\t300\t5S5H\t*\t0\t0\tACGTA\t*", nil)
	errs = r.Validate(1)
	if len(errs) != 2 || errs[0].Defect != diag.NoRealOperator || errs[1].Type != diag.InvalidMappingQuality {
		t.Errorf("unexpected validation errors: %v", errs)
	}

	r, _ = ParseRecord("r\t4\t*\t0\t0\t*\t*\t0\t0\t*\t*", nil)
	if errs = r.Validate(1); len(errs) != 0 {
		t.Errorf("unexpected validation errors: %v", errs)
	}
	if r.IsMatch() {
		t.Errorf("unmapped record")
	}
}

func TestCoordinates(t *testing.T) {
	cases := []struct {
		line       string
		mode       Mode
		start, end int
	}{
		{"r\t0\tchr1\t1\t60\t5S10M5S\t*\t0\t0\tAAAAACCCCCCCCCCGGGGG\t*", BlastN, 6, 15},
		{"r\t0\tchr1\t1\t60\t3H10M\t*\t0\t0\tCCCCCCCCCC\t*", BlastN, 4, 13},
		{"r\t0\tchr1\t1\t60\t5S10M5S\t*\t0\t0\tAAAAACCCCCCCCCCGGGGG\t*\tZS:i:20", BlastN, 20, 29},
		{"r\t0\tchr1\t1\t60\t5S10M5S\t*\t0\t0\tAAAAACCCCCCCCCCGGGGG\t*\tZS:i:20\tZQ:i:40", BlastN, 20, 40},
		{"r\t16\tchr1\t1\t60\t2S10M5S\t*\t0\t0\tAACCCCCCCCCCGGGGG\t*", BlastN, 6, 15},
		{"r\t0\tprot1\t1\t60\t2S8M\t*\t0\t0\tMKVLAAGICK\t*", BlastX, 7, 30},
		{"r\t0\tprot1\t1\t60\t2S8M\t*\t0\t0\tMKVLAAGICK\t*\tZF:i:2", BlastX, 8, 31},
		{"r\t16\tprot1\t1\t60\t10M\t*\t0\t0\tMKVLAAGICK\t*", BlastX, 30, 1},
		{"r\t0\tprot1\t1\t60\t3M1\\4M1/3M\t*\t0\t0\tMKVXLAAGXICK\t*", BlastX, 1, 30},
		{"r\t0\tprot1\t1\t60\t12M\t*\t0\t0\tMKV\\LAAG/ICK\t*", BlastX, 1, 30},
		{"r\t0\tprot1\t1\t60\t2S8M\t*\t0\t0\tMKVLAAGICK\t*", BlastP, 3, 10},
	}
	for _, c := range cases {
		r, err := ParseRecord(c.line, nil)
		if err != nil {
			t.Error(err)
			return
		}
		if s := r.AlignedQueryStart(c.mode); s != c.start {
			t.Errorf("%q: expected start: %d, results: %d", c.line, c.start, s)
		}
		if e := r.AlignedQueryEnd(c.mode); e != c.end {
			t.Errorf("%q: expected end: %d, results: %d", c.line, c.end, e)
		}
	}
}

func TestAlignmentPair(t *testing.T) {
	cases := []struct {
		line     string
		query    string
		ref      string
		hasDiags bool
	}{
		{"r\t0\tchr2\t50\t60\t3M2I3M1D2M\t*\t0\t0\tACGTTACGCA\t*\tMD:Z:6^T2",
			"ACGTTACG-CA", "ACG--ACGtCA", false},
		{"r\t0\tchr2\t50\t60\t2S4M100N4M\t*\t0\t0\tTTACGTACGT\t*\tMD:Z:2A5",
			"ACGT" + dots(100) + "ACGT", "ACaT" + dots(100) + "ACGT", false},
		{"r\t0\tchr2\t50\t60\t4M2P4M\t*\t0\t0\tACGTACGT\t*",
			"ACGT**ACGT", "????**????", false},
		{"r\t0\tchr2\t50\t60\t8M\t*\t0\t0\tACGTACGT\t*\tMD:Z:6",
			"ACGTACGT", "ACGTACGT", true},
		{"r\t0\tchr2\t50\t60\t10M\t*\t0\t0\tACGTACGT\t*\tMD:Z:10",
			"ACGTACGT??", "ACGTACGT??", true},
	}
	for _, c := range cases {
		r, err := ParseRecord(c.line, nil)
		if err != nil {
			t.Error(err)
			return
		}
		sink := diag.NewSink(nil)
		q, ref, err := r.AlignmentPair(sink)
		if err != nil {
			t.Error(err)
			return
		}
		if q != c.query {
			t.Errorf("%q: expected query: %s, results: %s", c.line, c.query, q)
		}
		if ref != c.ref {
			t.Errorf("%q: expected reference: %s, results: %s", c.line, c.ref, ref)
		}
		if (sink.Len() > 0) != c.hasDiags {
			t.Errorf("%q: unexpected diagnostics: %v", c.line, sink.Messages())
		}
	}

	r, _ := ParseRecord("r\t0\tchr2\t50\t60\t*\t*\t0\t0\tACGTACGT\t*", nil)
	if _, _, err := r.AlignmentPair(nil); !errors.Is(err, ErrNoAlignment) {
		t.Errorf("expected error: %v, results: %v", ErrNoAlignment, err)
	}
	r, _ = ParseRecord("r\t0\tchr2\t50\t60\t8M\t*\t0\t0\t*\t*", nil)
	if _, _, err := r.AlignmentPair(nil); !errors.Is(err, ErrNoSequence) {
		t.Errorf("expected error: %v, results: %v", ErrNoSequence, err)
	}
}

func dots(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = '.'
	}
	return string(b)
}

func TestBLOSUM62(t *testing.T) {
	cases := []struct {
		a, b  byte
		score int
	}{
		{'A', 'A', 4}, {'W', 'W', 11}, {'L', 'I', 2}, {'i', 'L', 2}, {'G', 'W', -2}, {'*', '*', 1}, {'K', 'R', 2},
	}
	for _, c := range cases {
		s, ok := BLOSUM62(c.a, c.b)
		if !ok || s != c.score {
			t.Errorf("%c-%c: expected: %d, results: %d", c.a, c.b, c.score, s)
		}
	}
	if _, ok := BLOSUM62('J', 'A'); ok {
		t.Errorf("J is not in BLOSUM62")
	}
}

func TestParseMode(t *testing.T) {
	for s, m := range map[string]Mode{"blastn": BlastN, "BlastP": BlastP, "x": BlastX} {
		mode, err := ParseMode(s)
		if err != nil || mode != m {
			t.Errorf("%s: expected: %s, results: %s", s, m, mode)
		}
	}
	if _, err := ParseMode("tblastn"); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("expected error: %v, results: %v", ErrUnknownMode, err)
	}
}
