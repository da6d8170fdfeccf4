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
	"strconv"
	"strings"
)

// ErrMalformedCigar means the CIGAR text can not be tokenized.
var ErrMalformedCigar = errors.New("cigar: malformed CIGAR string")

// ErrZeroLength means the length of a CIGAR element is 0.
var ErrZeroLength = errors.New("cigar: zero-length element")

// Element is a CIGAR element, i.e., an operator and its length.
type Element struct {
	Len uint32
	Op  Operator
}

// NewElement creates an Element. The length should be > 0.
func NewElement(n uint32, op Operator) (Element, error) {
	if n == 0 {
		return Element{}, ErrZeroLength
	}
	if op >= lastOperator {
		return Element{}, ErrInvalidOperator
	}
	return Element{Len: n, Op: op}, nil
}

// String returns the text form of the element, e.g., 10M.
func (e Element) String() string {
	return strconv.FormatUint(uint64(e.Len), 10) + string(e.Op.Char())
}

// Cigar is an ordered list of CIGAR elements.
// An empty Cigar means the alignment is unavailable, i.e., "*".
type Cigar []Element

// Add appends an element. Adjacent elements of the same operator are not merged.
func (c *Cigar) Add(n uint32, op Operator) error {
	e, err := NewElement(n, op)
	if err != nil {
		return err
	}
	*c = append(*c, e)
	return nil
}

// IsEmpty tells whether the Cigar has no elements.
func (c Cigar) IsEmpty() bool { return len(c) == 0 }

// ReferenceLength returns the number of reference bases the alignment covers,
// padding excluded.
func (c Cigar) ReferenceLength() int {
	var n int
	for _, e := range c {
		if e.Op.ConsumesReference() {
			n += int(e.Len)
		}
	}
	return n
}

// PaddedReferenceLength returns the reference length with padding included.
func (c Cigar) PaddedReferenceLength() int {
	var n int
	for _, e := range c {
		if e.Op.ConsumesReference() || e.Op == Padding {
			n += int(e.Len)
		}
	}
	return n
}

// ReadLength returns the number of query bases described by the Cigar,
// which should equal to the length of SEQ.
func (c Cigar) ReadLength() int {
	var n int
	for _, e := range c {
		if e.Op.ConsumesQuery() {
			n += int(e.Len)
		}
	}
	return n
}

// Lengths returns the reference length and the read length.
func (c Cigar) Lengths() (ref, read int) {
	return c.ReferenceLength(), c.ReadLength()
}

// LeadingClip returns the total length of hard and soft clips at the start.
func (c Cigar) LeadingClip() (hard, soft int) {
	for _, e := range c {
		switch e.Op {
		case HardClip:
			hard += int(e.Len)
		case SoftClip:
			soft += int(e.Len)
		default:
			return
		}
	}
	return
}

// TrailingClip returns the total length of hard and soft clips at the end.
func (c Cigar) TrailingClip() (hard, soft int) {
	var e Element
	for i := len(c) - 1; i >= 0; i-- {
		e = c[i]
		switch e.Op {
		case HardClip:
			hard += int(e.Len)
		case SoftClip:
			soft += int(e.Len)
		default:
			return
		}
	}
	return
}

// String returns the text form of the Cigar, "*" for an empty one.
func (c Cigar) String() string {
	if len(c) == 0 {
		return "*"
	}
	var b strings.Builder
	b.Grow(len(c) << 2)
	for _, e := range c {
		b.WriteString(strconv.FormatUint(uint64(e.Len), 10))
		b.WriteByte(e.Op.Char())
	}
	return b.String()
}

// Encode returns the text form of a Cigar, same as c.String().
func Encode(c Cigar) string { return c.String() }

// Parse decodes a CIGAR string. "*" results in an empty Cigar,
// while an empty string is an error.
// Only lexical errors are checked here, see Validate for structural checks.
func Parse(s string) (Cigar, error) {
	return ParseTo(make(Cigar, 0, 8), s)
}

// ParseTo is like Parse, but appends elements to dst[:0] to reuse its memory.
func ParseTo(dst Cigar, s string) (Cigar, error) {
	c := dst[:0]
	if s == "*" {
		return c, nil
	}
	if s == "" {
		return nil, fmt.Errorf("%w: empty string", ErrMalformedCigar)
	}

	var n uint64
	var digits int
	var b byte
	var op Operator
	var err error
	for i := 0; i < len(s); i++ {
		b = s[i]
		if b >= '0' && b <= '9' {
			n = n*10 + uint64(b-'0')
			if n > 0xFFFFFFFF {
				return nil, fmt.Errorf("%w: length overflow in %q", ErrMalformedCigar, s)
			}
			digits++
			continue
		}

		op, err = OperatorFromChar(b)
		if err != nil {
			return nil, fmt.Errorf("%w in %q", err, s)
		}
		if digits == 0 {
			return nil, fmt.Errorf("%w: missing length before %q at position %d in %q",
				ErrMalformedCigar, b, i+1, s)
		}
		if n == 0 {
			return nil, fmt.Errorf("%w: %w at position %d in %q", ErrMalformedCigar, ErrZeroLength, i+1, s)
		}

		c = append(c, Element{Len: uint32(n), Op: op})
		n, digits = 0, 0
	}
	if digits > 0 {
		return nil, fmt.Errorf("%w: unexpected end after a number in %q", ErrMalformedCigar, s)
	}

	return c, nil
}

// Decode is an alias of Parse.
func Decode(s string) (Cigar, error) { return Parse(s) }
