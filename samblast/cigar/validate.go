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
	"github.com/shenwei356/samblast/samblast/diag"
)

// Validate checks the structure of the Cigar and returns all problems found.
// An empty Cigar (unavailable alignment) is not an error and returns nil.
//
// Rules:
//  1. H can only be the first or last element.
//  2. S can only be the first or last element, or the second (second-to-last)
//     one when the first (last) one is H.
//  3. There must be at least one real operator (M, I, D, N, = or X).
//  4. Between two identical I or D operators, there must be a real non-indel
//     operator or a padding.
//  5. P can not be the first or last element, and must be surrounded by real operators.
func (c Cigar) Validate(readName string, recordNumber int) []diag.ValidationError {
	if len(c) == 0 {
		return nil
	}

	var errs []diag.ValidationError
	add := func(t diag.Type, d diag.Defect, msg string) {
		errs = append(errs, diag.NewValidationError(t, d, msg, readName, recordNumber))
	}

	last := len(c) - 1
	var seenRealOperator bool
	var op, next Operator
	for i, e := range c {
		op = e.Op
		switch {
		case op == HardClip:
			if i != 0 && i != last {
				add(diag.InvalidCigar, diag.HardClipNotAtEnd,
					"Hard clip CIGAR operator can only be the first or last operator")
			}
		case op == SoftClip:
			if i == 0 || i == last {
				break
			}
			if i == 1 {
				// 5M10S5H is allowed
				if c[0].Op != HardClip && !(len(c) == 3 && c[2].Op == HardClip) {
					add(diag.InvalidCigar, diag.SoftClipNotInsideHardClip,
						"Soft clip CIGAR operator can only be inside of hard clipping operator")
				}
			} else if i == last-1 {
				if c[last].Op != HardClip {
					add(diag.InvalidCigar, diag.SoftClipNotInsideHardClip,
						"Soft clip CIGAR operator can only be inside of hard clipping operator")
				}
			} else {
				add(diag.InvalidCigar, diag.SoftClipNotAtEnd,
					"Soft clip CIGAR operator can only be the first or last, or second or second-to-last if the neighbor is hard clipping operator")
			}
		case op.IsReal():
			seenRealOperator = true
			if !op.IsIndel() {
				break
			}
			for j := i + 1; j < len(c); j++ {
				next = c[j].Op
				if (next.IsReal() && !next.IsIndel()) || next == Padding {
					break
				}
				if next == op {
					add(diag.AdjacentIndelInCigar, diag.AdjacentIndel,
						"No M, N, = or X operator between pair of "+op.String()+" operators in CIGAR")
					break
				}
			}
		case op == Padding:
			if i == 0 {
				add(diag.InvalidCigar, diag.PaddingAtStart,
					"Padding operator not valid at start of CIGAR")
			} else if i == last {
				add(diag.InvalidCigar, diag.PaddingAtEnd,
					"Padding operator not valid at end of CIGAR")
			} else if !c[i-1].Op.IsReal() || !c[i+1].Op.IsReal() {
				add(diag.InvalidCigar, diag.PaddingNotBetweenRealOperators,
					"Padding operator not between real operators in CIGAR")
			}
		}
	}

	if !seenRealOperator {
		add(diag.InvalidCigar, diag.NoRealOperator,
			"No real operator (M|I|D|N|=|X) in CIGAR")
	}

	return errs
}

// IsValid tells whether the Cigar passes Validate without any error.
func (c Cigar) IsValid() bool {
	return len(c.Validate("", 0)) == 0
}
