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
	"fmt"
)

// ErrInvalidOperator means the byte is not a CIGAR operator.
var ErrInvalidOperator = errors.New("cigar: invalid operator")

// Operator is a CIGAR operation type.
type Operator uint8

const (
	Match             Operator = iota // M, alignment match (can be a sequence match or mismatch)
	Insertion                         // I, insertion to the reference
	Deletion                          // D, deletion from the reference
	Skip                              // N, skipped region from the reference
	SoftClip                          // S, clipped sequence present in SEQ
	HardClip                          // H, clipped sequence NOT present in SEQ
	Padding                           // P, silent deletion from padded reference
	SequenceMatch                     // =
	SequenceMismatch                  // X
	FrameShiftForward                 // \, +1 frame shift in translated alignments
	FrameShiftReverse                 // /, -1 frame shift in translated alignments

	lastOperator
)

// FrameShiftForwardChar and FrameShiftReverseChar are the glyphs of the two
// frame shift operators, they also appear in gapped query sequences.
const (
	FrameShiftForwardChar byte = '\\'
	FrameShiftReverseChar byte = '/'
)

var opChars = [lastOperator]byte{'M', 'I', 'D', 'N', 'S', 'H', 'P', '=', 'X',
	FrameShiftForwardChar, FrameShiftReverseChar}

var opNames = [lastOperator]string{"Match", "Insertion", "Deletion", "Skip",
	"SoftClip", "HardClip", "Padding", "SequenceMatch", "SequenceMismatch",
	"FrameShiftForward", "FrameShiftReverse"}

// consumption of query and reference bases.
//
//	              Query  Reference
//	M               1        1
//	I               1        0
//	D               0        1
//	N               0        1
//	S               1        0
//	H               0        0
//	P               0        0
//	=               1        1
//	X               1        1
//	\               1        0
//	/               1        0
var consumes = [lastOperator][2]bool{
	Match:             {true, true},
	Insertion:         {true, false},
	Deletion:          {false, true},
	Skip:              {false, true},
	SoftClip:          {true, false},
	HardClip:          {false, false},
	Padding:           {false, false},
	SequenceMatch:     {true, true},
	SequenceMismatch:  {true, true},
	FrameShiftForward: {true, false},
	FrameShiftReverse: {true, false},
}

var char2op [256]Operator

func init() {
	for i := range char2op {
		char2op[i] = lastOperator
	}
	for op, c := range opChars {
		char2op[c] = Operator(op)
	}
}

// OperatorFromChar returns the Operator of a CIGAR character.
func OperatorFromChar(c byte) (Operator, error) {
	op := char2op[c]
	if op == lastOperator {
		return op, fmt.Errorf("%w: %q", ErrInvalidOperator, c)
	}
	return op, nil
}

// Char returns the CIGAR character of the operator.
func (op Operator) Char() byte {
	if op >= lastOperator {
		return '?'
	}
	return opChars[op]
}

// String returns the name of the operator.
func (op Operator) String() string {
	if op >= lastOperator {
		return "Unknown"
	}
	return opNames[op]
}

// ConsumesQuery tells whether the operator consumes query (read) bases.
func (op Operator) ConsumesQuery() bool { return op < lastOperator && consumes[op][0] }

// ConsumesReference tells whether the operator consumes reference bases.
func (op Operator) ConsumesReference() bool { return op < lastOperator && consumes[op][1] }

// IsClipping returns true for S and H.
func (op Operator) IsClipping() bool { return op == SoftClip || op == HardClip }

// IsIndel returns true for I and D.
func (op Operator) IsIndel() bool { return op == Insertion || op == Deletion }

// IsIndelOrSkip returns true for I, D and N.
func (op Operator) IsIndelOrSkip() bool { return op == Insertion || op == Deletion || op == Skip }

// IsPadding returns true for P.
func (op Operator) IsPadding() bool { return op == Padding }

// IsFrameShift returns true for the two frame shift operators.
func (op Operator) IsFrameShift() bool {
	return op == FrameShiftForward || op == FrameShiftReverse
}

// IsReal returns true for operators describing the alignment itself:
// M, I, D, N, = and X.
func (op Operator) IsReal() bool {
	switch op {
	case Match, Insertion, Deletion, Skip, SequenceMatch, SequenceMismatch:
		return true
	}
	return false
}
