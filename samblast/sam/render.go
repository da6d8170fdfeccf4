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
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shenwei356/samblast/samblast/diag"
	"github.com/shenwei356/samblast/samblast/util"
)

// BlastAlignmentText renders the record in the BLAST pairwise format
// according to opt.Mode.
func (r *Record) BlastAlignmentText(opt *RenderOptions, rep diag.Reporter) (string, error) {
	text, _, err := r.Render(opt, rep)
	return text, err
}

// Render renders the record according to opt.Mode, and also returns
// the alignment for computing statistics.
func (r *Record) Render(opt *RenderOptions, rep diag.Reporter) (string, *Alignment, error) {
	if opt == nil {
		opt = &DefaultRenderOptions
	}
	switch opt.Mode {
	case BlastP:
		return r.render(BlastP, opt, rep)
	case BlastX:
		return r.render(BlastX, opt, rep)
	default:
		return r.render(BlastN, opt, rep)
	}
}

// BlastNAlignment renders a nucleotide vs nucleotide alignment.
func (r *Record) BlastNAlignment(opt *RenderOptions, rep diag.Reporter) (string, error) {
	text, _, err := r.render(BlastN, opt, rep)
	return text, err
}

// BlastPAlignment renders a protein vs protein alignment.
func (r *Record) BlastPAlignment(opt *RenderOptions, rep diag.Reporter) (string, error) {
	text, _, err := r.render(BlastP, opt, rep)
	return text, err
}

// BlastXAlignment renders a translated nucleotide vs protein alignment.
func (r *Record) BlastXAlignment(opt *RenderOptions, rep diag.Reporter) (string, error) {
	text, _, err := r.render(BlastX, opt, rep)
	return text, err
}

func (r *Record) render(mode Mode, opt *RenderOptions, rep diag.Reporter) (string, *Alignment, error) {
	if opt == nil {
		opt = &DefaultRenderOptions
	}
	width := opt.LineWidth
	if width <= 0 {
		width = DefaultLineWidth
	}

	// reconstruction problems are only reported along with the consistency check
	var crep diag.Reporter
	if opt.ShowDiagnostics {
		crep = rep
	}
	a, err := r.ComputeAlignment(mode, crep)
	if err != nil {
		return "", nil, err
	}

	var b strings.Builder
	b.Grow(len(a.Query)*4 + 256)

	// header
	refLen, ok := opt.RefLengths[r.RName]
	if !ok {
		refLen = r.Cigar.ReferenceLength()
	}
	fmt.Fprintf(&b, ">%s\nLength = %d\n\n", r.RName, refLen)

	// score
	r.writeScore(&b, a)

	// identities
	switch mode {
	case BlastN:
		fmt.Fprintf(&b, " Identities = %d/%d (%d%%), Gaps = %d/%d (%d%%)\n",
			a.Identities, a.Length, util.Percent(a.Identities, a.Length),
			a.Gaps, a.Length, util.Percent(a.Gaps, a.Length))
		if a.RefReverse {
			b.WriteString(" Strand = Plus/Minus\n")
		} else {
			b.WriteString(" Strand = Plus/Plus\n")
		}
	default:
		fmt.Fprintf(&b, " Identities = %d/%d (%d%%), Positives = %d/%d (%d%%), Gaps = %d/%d (%d%%)\n",
			a.Identities, a.Length, util.Percent(a.Identities, a.Length),
			a.Positives, a.Length, util.Percent(a.Positives, a.Length),
			a.Gaps, a.Length, util.Percent(a.Gaps, a.Length))
		if mode == BlastX {
			fmt.Fprintf(&b, " Frame = %+d\n", a.Frame)
		}
	}
	b.WriteByte('\n')

	qEnd, sEnd := a.writeBlocks(&b, width)

	if opt.ShowDiagnostics {
		if qEnd != a.QueryEnd {
			diag.Warningf(rep, "read %s: query end of the rendered alignment (%d) does not match the expected one (%d)",
				r.QName, qEnd, a.QueryEnd)
		}
		if sEnd != a.RefEnd {
			diag.Warningf(rep, "read %s: subject end of the rendered alignment (%d) does not match the expected one (%d)",
				r.QName, sEnd, a.RefEnd)
		}
	}

	return b.String(), a, nil
}

func (r *Record) writeScore(b *strings.Builder, a *Alignment) {
	if as, ok := r.TagFloat("AS"); ok {
		b.WriteString(" Score = ")
		b.WriteString(formatScore(as))
		b.WriteString(" bits")
		if raw, ok := r.TagInt("ZR"); ok {
			fmt.Fprintf(b, " (%d)", raw)
		}
		if e, ok := r.TagFloat("ZE"); ok {
			b.WriteString(", Expect = ")
			b.WriteString(formatEvalue(e))
		}
		b.WriteByte('\n')
		return
	}

	nm, ok := r.TagInt("NM")
	if !ok {
		nm = a.EditDistance()
	}
	fmt.Fprintf(b, " Mapping quality = %d, Edit distance = %d\n", r.MapQ, nm)
}

func formatScore(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// formatEvalue formats e-values like BLAST.
func formatEvalue(e float64) string {
	switch {
	case e < 1e-180:
		return "0.0"
	case e < 1e-3:
		return strconv.FormatFloat(e, 'e', 0, 64)
	case e < 0.1:
		return strconv.FormatFloat(e, 'f', 3, 64)
	case e < 10:
		return strconv.FormatFloat(e, 'f', 1, 64)
	}
	return strconv.FormatFloat(e, 'f', 0, 64)
}

// writeBlocks writes the wrapped Query/midline/Sbjct lines, and returns
// the end positions of the last block.
func (a *Alignment) writeBlocks(b *strings.Builder, width int) (qEnd, sEnd int) {
	posW := max(util.NumDigits(a.QueryStart), util.NumDigits(a.QueryEnd),
		util.NumDigits(a.RefStart), util.NumDigits(a.RefEnd))
	fQ := fmt.Sprintf("Query  %%-%dd  %%s  %%d\n", posW)
	fA := fmt.Sprintf("       %%%ds  %%s\n", posW)
	fT := fmt.Sprintf("Sbjct  %%-%dd  %%s  %%d\n", posW)

	qStart, sStart := a.QueryStart, a.RefStart
	if a.QueryReverse {
		qEnd = qStart + 1
	} else {
		qEnd = qStart - 1
	}
	if a.RefReverse {
		sEnd = sStart + 1
	} else {
		sEnd = sStart - 1
	}

	n := len(a.Query)
	rows := (n + width - 1) / width
	var i, j, end int
	for i = 0; i < rows; i++ {
		j = i * width
		end = min(j+width, n)

		if a.QueryReverse {
			qEnd = qStart - a.queryDelta(j, end) + 1
		} else {
			qEnd = qStart + a.queryDelta(j, end) - 1
		}
		if a.RefReverse {
			sEnd = sStart - a.refDelta(j, end) + 1
		} else {
			sEnd = sStart + a.refDelta(j, end) - 1
		}

		fmt.Fprintf(b, fQ, qStart, a.Query[j:end], qEnd)
		fmt.Fprintf(b, fA, " ", a.Midline[j:end])
		fmt.Fprintf(b, fT, sStart, a.Reference[j:end], sEnd)
		b.WriteByte('\n')

		if a.QueryReverse {
			qStart = qEnd - 1
		} else {
			qStart = qEnd + 1
		}
		if a.RefReverse {
			sStart = sEnd - 1
		} else {
			sStart = sEnd + 1
		}
	}

	return qEnd, sEnd
}
