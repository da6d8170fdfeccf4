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
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// TagType is the type of the value of an optional field.
type TagType uint8

const (
	TagChar   TagType = iota // A
	TagInt                   // i, and H (hex string stored as an integer)
	TagFloat                 // f
	TagString                // Z
)

// TagValue is the value of an optional field.
type TagValue struct {
	Type TagType
	Code byte // the type code in the text, one of A, i, f, Z, H

	Char  byte
	Int   int64
	Float float32
	Str   string
}

// String returns the value in text form.
func (v TagValue) String() string {
	switch v.Type {
	case TagChar:
		return string(v.Char)
	case TagInt:
		if v.Code == 'H' {
			return strings.ToUpper(strconv.FormatUint(uint64(v.Int), 16))
		}
		return strconv.FormatInt(v.Int, 10)
	case TagFloat:
		return strconv.FormatFloat(float64(v.Float), 'g', -1, 32)
	default:
		return v.Str
	}
}

// ParseOptionalField parses an optional field in the format of TAG:TYPE:VALUE.
func ParseOptionalField(field string) (string, TagValue, error) {
	var v TagValue

	i := strings.IndexByte(field, ':')
	if i < 0 {
		return "", v, errors.Wrapf(ErrMalformedOptionalField, "%s", field)
	}
	j := strings.IndexByte(field[i+1:], ':')
	if j < 0 {
		return "", v, errors.Wrapf(ErrMalformedOptionalField, "%s", field)
	}
	j += i + 1

	tag := field[:i]
	if len(tag) != 2 || j-i != 2 {
		return "", v, errors.Wrapf(ErrMalformedOptionalField, "%s", field)
	}
	code := field[i+1]
	value := field[j+1:]
	v.Code = code

	switch code {
	case 'A':
		if len(value) != 1 {
			return "", v, errors.Wrapf(ErrMalformedOptionalField, "single character expected: %s", field)
		}
		v.Type = TagChar
		v.Char = value[0]
	case 'i':
		n, err := strconv.ParseInt(value, 10, 32)
		if err != nil {
			return "", v, errors.Wrapf(ErrMalformedOptionalField, "invalid integer: %s", field)
		}
		v.Type = TagInt
		v.Int = n
	case 'H':
		n, err := strconv.ParseUint(value, 16, 64)
		if err != nil {
			return "", v, errors.Wrapf(ErrMalformedOptionalField, "invalid hex value: %s", field)
		}
		v.Type = TagInt
		v.Int = int64(n) // bits kept, use uint64(v.Int) for values >= 1<<63
	case 'f':
		f, err := strconv.ParseFloat(value, 32)
		if err != nil {
			return "", v, errors.Wrapf(ErrMalformedOptionalField, "invalid float: %s", field)
		}
		v.Type = TagFloat
		v.Float = float32(f)
	case 'Z':
		v.Type = TagString
		v.Str = value
	default:
		return "", v, errors.Wrapf(ErrUnknownTagType, "%c in %s", code, field)
	}

	return tag, v, nil
}
