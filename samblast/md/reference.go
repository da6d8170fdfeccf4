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
	"github.com/shenwei356/samblast/samblast/diag"
)

// Placeholder is the character for reference positions to be resolved by the MD tag.
const Placeholder byte = '?'

// IsGap tells whether a character in a reference template is a structural gap
// (insertion '-', skipped region '.', padding '*'), which MD tags do not cover.
func IsGap(b byte) bool {
	return b == '-' || b == '.' || b == '*'
}

func toLower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + 32
	}
	return b
}

// GetReference reconstructs the gapped reference sequence from an MD string,
// the gapped query, and the gapped reference template created from the CIGAR.
// Mismatched and deleted reference bases are written in lower case.
//
// If the MD string is empty, the reference is assumed to be identical to
// the query, and the query is returned.
func GetReference(mdStr string, gappedQuery, template string, r diag.Reporter) string {
	if mdStr == "" {
		return gappedQuery
	}
	return Reconstruct(Decode(mdStr, r), gappedQuery, template, r)
}

// Reconstruct walks the template and the MD operations in lockstep.
// It never fails. If the MD operations cover fewer reference bases than the
// template, the remaining positions are filled with the query bases (gaps
// in the template are kept); if they cover more, the extra ones are ignored.
// Both cases are reported to r.
func Reconstruct(ops []Op, gappedQuery, template string, r diag.Reporter) string {
	n := len(gappedQuery)
	if len(template) != n {
		diag.Warningf(r, "length mismatch between gapped query (%d) and reference template (%d)",
			n, len(template))
	}
	tpl := func(i int) byte {
		if i < len(template) {
			return template[i]
		}
		return Placeholder
	}

	buf := make([]byte, 0, n)
	var i int
	skipGaps := func() {
		for i < n && IsGap(tpl(i)) {
			buf = append(buf, tpl(i))
			i++
		}
	}

	var k int
	var overflow bool
LOOP:
	for _, op := range ops {
		switch op.Type {
		case Match:
			for k = 0; k < op.Count; k++ {
				skipGaps()
				if i >= n {
					overflow = true
					break LOOP
				}
				buf = append(buf, gappedQuery[i])
				i++
			}
		case Replace, Insert:
			for k = 0; k < len(op.Bases); k++ {
				skipGaps()
				if i >= n {
					overflow = true
					break LOOP
				}
				buf = append(buf, toLower(op.Bases[k]))
				i++
			}
		}
	}
	skipGaps()

	if overflow {
		diag.Warningf(r, "MD tag covers more reference bases than the CIGAR: %s", String(ops))
	}

	if i < n {
		diag.Warningf(r, "MD tag covers fewer reference bases than the CIGAR, %d positions filled with query bases: %s",
			n-i, String(ops))
		var b byte
		for ; i < n; i++ {
			b = tpl(i)
			if IsGap(b) {
				buf = append(buf, b)
			} else {
				buf = append(buf, gappedQuery[i])
			}
		}
	}

	return string(buf)
}
