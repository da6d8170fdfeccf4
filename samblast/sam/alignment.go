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
	"github.com/pkg/errors"
	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/samblast/samblast/cigar"
	"github.com/shenwei356/samblast/samblast/diag"
	"github.com/shenwei356/samblast/samblast/md"
	"github.com/shenwei356/samblast/samblast/util"
)

// ErrNoAlignment means the record is unmapped or the CIGAR is "*".
var ErrNoAlignment = errors.New("sam: no alignment")

// Alignment is a gapped pairwise alignment between the query and the reference
// of a record, with 1-based coordinates of both sequences.
type Alignment struct {
	Mode Mode

	Query     []byte
	Midline   []byte
	Reference []byte

	// whether a column consumes a query/reference position
	qCons []bool
	rCons []bool

	QueryStart, QueryEnd int
	RefStart, RefEnd     int

	QueryReverse bool // query coordinates run downward, i.e., negative frames of BlastX
	RefReverse   bool // reference coordinates run downward, i.e., minus strand of BlastN

	Frame int // reading frame, BlastX only

	Identities int
	Positives  int
	Gaps       int
	Length     int // number of columns, excluding skipped regions and paddings
}

// String returns the three lines of the alignment.
func (a *Alignment) String() string {
	buf := make([]byte, 0, len(a.Query)*3+3)
	buf = append(buf, a.Query...)
	buf = append(buf, '\n')
	buf = append(buf, a.Midline...)
	buf = append(buf, '\n')
	buf = append(buf, a.Reference...)
	buf = append(buf, '\n')
	return string(buf)
}

// EditDistance returns the number of mismatches and gap positions.
func (a *Alignment) EditDistance() int {
	var n int
	for i := range a.Query {
		if a.qCons[i] && a.rCons[i] {
			if upper(a.Query[i]) != upper(a.Reference[i]) {
				n++
			}
		} else if a.isGapColumn(i) {
			n++
		}
	}
	return n
}

func (a *Alignment) isGapColumn(i int) bool {
	if a.qCons[i] == a.rCons[i] { // padding
		return false
	}
	if !a.qCons[i] && a.Query[i] == '.' { // skipped region
		return false
	}
	return true
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 32
	}
	return b
}

func isLetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

// queryDelta returns the number of query positions covered by columns [i, j).
// For BlastX, an amino acid covers 3 bases, while a forward frame shift
// covers 1 base (3-2), and a reverse frame shift goes back 1 base (3-4).
func (a *Alignment) queryDelta(i, j int) int {
	if a.Mode != BlastX {
		return util.CountTrue(a.qCons[i:j])
	}
	var n, nF, nR int
	for k := i; k < j; k++ {
		if !a.qCons[k] {
			continue
		}
		n++
		switch a.Query[k] {
		case cigar.FrameShiftForwardChar:
			nF++
		case cigar.FrameShiftReverseChar:
			nR++
		}
	}
	return 3*n - 2*nF - 4*nR
}

// refDelta returns the number of reference positions covered by columns [i, j).
func (a *Alignment) refDelta(i, j int) int {
	return util.CountTrue(a.rCons[i:j])
}

// alignmentPair walks the CIGAR and creates the gapped query, the reference
// template, and the consumption masks of columns.
//
// Template characters: '?' for reference positions to be resolved by the MD tag,
// '-' for insertions and frame shifts, '.' for skipped regions, '*' for paddings.
func (r *Record) alignmentPair(rep diag.Reporter) (q, t []byte, qCons, rCons []bool, err error) {
	if r.Cigar.IsEmpty() {
		return nil, nil, nil, nil, errors.Wrapf(ErrNoAlignment, "read %s: CIGAR is *", r.QName)
	}
	if r.Seq == "*" || r.Seq == "" {
		return nil, nil, nil, nil, errors.Wrapf(ErrNoSequence, "read %s", r.QName)
	}

	var n int
	for _, e := range r.Cigar {
		if !e.Op.IsClipping() {
			n += int(e.Len)
		}
	}
	q = make([]byte, 0, n)
	t = make([]byte, 0, n)
	qCons = make([]bool, 0, n)
	rCons = make([]bool, 0, n)

	s := r.Seq
	var qi, k, l int
	var short bool
	// copies l query bases, missing bases are filled with '?'.
	copyQuery := func(l int) {
		for k = 0; k < l; k++ {
			if qi < len(s) {
				q = append(q, s[qi])
			} else {
				q = append(q, md.Placeholder)
				short = true
			}
			qi++
		}
	}
	fill := func(buf []byte, b byte, l int) []byte {
		for k = 0; k < l; k++ {
			buf = append(buf, b)
		}
		return buf
	}
	mask := func(buf []bool, b bool, l int) []bool {
		for k = 0; k < l; k++ {
			buf = append(buf, b)
		}
		return buf
	}

	for _, e := range r.Cigar {
		l = int(e.Len)
		switch e.Op {
		case cigar.Match, cigar.SequenceMatch, cigar.SequenceMismatch:
			copyQuery(l)
			t = fill(t, md.Placeholder, l)
			qCons = mask(qCons, true, l)
			rCons = mask(rCons, true, l)
		case cigar.Insertion:
			copyQuery(l)
			t = fill(t, '-', l)
			qCons = mask(qCons, true, l)
			rCons = mask(rCons, false, l)
		case cigar.Deletion:
			q = fill(q, '-', l)
			t = fill(t, md.Placeholder, l)
			qCons = mask(qCons, false, l)
			rCons = mask(rCons, true, l)
		case cigar.Skip:
			q = fill(q, '.', l)
			t = fill(t, '.', l)
			qCons = mask(qCons, false, l)
			rCons = mask(rCons, true, l)
		case cigar.Padding:
			q = fill(q, '*', l)
			t = fill(t, '*', l)
			qCons = mask(qCons, false, l)
			rCons = mask(rCons, false, l)
		case cigar.FrameShiftForward, cigar.FrameShiftReverse:
			// the glyph is shown whatever SEQ has at the position
			q = fill(q, e.Op.Char(), l)
			qi += l
			t = fill(t, '-', l)
			qCons = mask(qCons, true, l)
			rCons = mask(rCons, false, l)
		case cigar.SoftClip:
			qi += l
		case cigar.HardClip:
		}
	}

	if short || qi > len(s) {
		diag.Warningf(rep, "read %s: SEQ (%d) is shorter than the read length of CIGAR %s (%d)",
			r.QName, len(s), r.Cigar, r.Cigar.ReadLength())
	}

	return q, t, qCons, rCons, nil
}

// AlignmentPair returns the gapped query and the gapped reference.
// The reference is reconstructed from the MD tag if present, otherwise
// it is the template with '?' at all reference positions.
func (r *Record) AlignmentPair(rep diag.Reporter) (query, reference string, err error) {
	q, t, _, _, err := r.alignmentPair(rep)
	if err != nil {
		return "", "", err
	}
	if mdStr, ok := r.MD(); ok {
		return string(q), md.GetReference(mdStr, string(q), string(t), rep), nil
	}
	return string(q), string(t), nil
}

// Pairwise returns the three-line raw alignment: the gapped query,
// the midline, and the gapped reference.
func (r *Record) Pairwise(mode Mode, rep diag.Reporter) (string, error) {
	a, err := r.ComputeAlignment(mode, rep)
	if err != nil {
		return "", err
	}
	return a.String(), nil
}

// Frame returns the reading frame of a translated alignment, from the tag ZF
// if present, otherwise +1 or -1 according to the FLAG.
func (r *Record) Frame() int {
	if f, ok := r.TagInt("ZF"); ok && f != 0 {
		return f
	}
	if r.IsReverse() {
		return -1
	}
	return 1
}

// QueryLength returns the length of the query, including hard clips.
// It is in bases for BlastX.
func (r *Record) QueryLength(mode Mode) int {
	n := len(r.Seq)
	if r.Seq == "*" || r.Seq == "" {
		n = r.Cigar.ReadLength()
	}
	for _, e := range r.Cigar {
		if e.Op == cigar.HardClip {
			n += int(e.Len)
		}
	}
	if mode == BlastX {
		return n * 3
	}
	return n
}

// querySegment returns the number of aligned query residues, and the numbers
// of forward and reverse frame shifts.
func (r *Record) querySegment() (n, nF, nR int) {
	s := r.Seq
	if s == "*" {
		s = ""
	}
	var qi, l, k int
	for _, e := range r.Cigar {
		l = int(e.Len)
		switch {
		case e.Op == cigar.SoftClip:
		case e.Op.IsFrameShift():
			n += l
			if e.Op == cigar.FrameShiftForward {
				nF += l
			} else {
				nR += l
			}
		case e.Op.ConsumesQuery():
			n += l
			for k = qi; k < qi+l && k < len(s); k++ {
				switch s[k] {
				case cigar.FrameShiftForwardChar:
					nF++
				case cigar.FrameShiftReverseChar:
					nR++
				}
			}
		}
		if e.Op.ConsumesQuery() {
			qi += l
		}
	}
	return
}

// AlignedQuerySegmentLength returns the length of the aligned part of the
// query. For BlastX, it is in bases and frame shifts are considered.
func (r *Record) AlignedQuerySegmentLength(mode Mode) int {
	n, nF, nR := r.querySegment()
	if mode == BlastX {
		return 3*n - 2*nF - 4*nR
	}
	return n
}

// AlignedQueryStart returns the 1-based start position of the aligned part of
// the query. The tag ZS is used if present.
func (r *Record) AlignedQueryStart(mode Mode) int {
	if v, ok := r.TagInt("ZS"); ok {
		return v
	}

	h, s := r.Cigar.LeadingClip()
	clip := h + s
	switch mode {
	case BlastX:
		f := r.Frame()
		off := f
		if off < 0 {
			off = -off
		}
		off = (off - 1) % 3
		if f < 0 {
			return r.QueryLength(BlastX) - 3*clip - off
		}
		return 3*clip + off + 1
	case BlastN:
		if r.IsReverse() { // the query is shown in its original strand
			h, s = r.Cigar.TrailingClip()
			return h + s + 1
		}
	}
	return clip + 1
}

// AlignedQueryEnd returns the 1-based end position of the aligned part of
// the query. The tag ZQ is used if present.
// For negative frames of BlastX, the end is smaller than the start.
func (r *Record) AlignedQueryEnd(mode Mode) int {
	if v, ok := r.TagInt("ZQ"); ok {
		return v
	}
	start := r.AlignedQueryStart(mode)
	l := r.AlignedQuerySegmentLength(mode)
	if mode == BlastX && r.Frame() < 0 {
		return start - l + 1
	}
	return start + l - 1
}

// RefEnd returns the 1-based end position on the reference.
func (r *Record) RefEnd() int {
	return r.Pos + r.Cigar.ReferenceLength() - 1
}

// ComputeAlignment reconstructs the alignment and computes the midline
// and statistics for the given mode.
func (r *Record) ComputeAlignment(mode Mode, rep diag.Reporter) (*Alignment, error) {
	if !r.IsMatch() {
		return nil, errors.Wrapf(ErrNoAlignment, "read %s: RNAME is *", r.QName)
	}

	q, t, qCons, rCons, err := r.alignmentPair(rep)
	if err != nil {
		return nil, err
	}
	if mdStr, ok := r.MD(); ok {
		t = []byte(md.GetReference(mdStr, string(q), string(t), rep))
	}

	a := &Alignment{
		Mode:      mode,
		Query:     q,
		Reference: t,
		qCons:     qCons,
		rCons:     rCons,
	}

	a.QueryStart = r.AlignedQueryStart(mode)
	a.QueryEnd = r.AlignedQueryEnd(mode)
	a.RefStart, a.RefEnd = r.Pos, r.RefEnd()

	switch mode {
	case BlastN:
		if r.IsReverse() {
			revComp(a.Query)
			revComp(a.Reference)
			util.ReverseBools(a.qCons)
			util.ReverseBools(a.rCons)
			a.RefReverse = true
			a.RefStart, a.RefEnd = a.RefEnd, a.RefStart
		}
	case BlastX:
		a.Frame = r.Frame()
		a.QueryReverse = a.Frame < 0
	}

	a.computeMidline()

	return a, nil
}

// revComp reverse complements a gapped nucleotide sequence in place,
// characters without complement letters are kept.
func revComp(s []byte) {
	var c byte
	var err error
	for i, b := range s {
		if c, err = seq.DNAredundant.PairLetter(b); err == nil {
			s[i] = c
		}
	}
	util.ReverseBytes(s)
}

// computeMidline computes the midline and statistics.
// For nucleotides, '|' marks identical bases. For proteins, identical residues
// are shown, and '+' marks a positive BLOSUM62 score.
func (a *Alignment) computeMidline() {
	n := len(a.Query)
	mid := make([]byte, n)
	a.Identities, a.Positives, a.Gaps, a.Length = 0, 0, 0, 0

	protein := a.Mode.IsProtein()
	var b1, b2 byte
	var score int
	var ok bool
	for i := 0; i < n; i++ {
		mid[i] = ' '
		if !(a.qCons[i] && a.rCons[i]) {
			if a.isGapColumn(i) {
				a.Gaps++
				a.Length++
			}
			continue
		}
		a.Length++

		b1, b2 = a.Query[i], a.Reference[i]
		if !isLetter(b1) || !isLetter(b2) {
			continue
		}
		if b1 == b2 {
			if protein {
				mid[i] = b2
			} else {
				mid[i] = '|'
			}
			a.Identities++
			a.Positives++
			continue
		}
		if protein {
			if score, ok = BLOSUM62(b1, b2); ok && score > 0 {
				mid[i] = '+'
				a.Positives++
			}
		}
	}
	a.Midline = mid
}
