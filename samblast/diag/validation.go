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

package diag

import (
	"fmt"
	"strconv"
	"strings"
)

// Severity is the severity of a validation error.
type Severity uint8

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Warning {
		return "WARNING"
	}
	return "ERROR"
}

// Type is a named structural defect of a CIGAR or a SAM record.
// Each Type has a fixed Severity.
type Type uint8

const (
	InvalidCigar Type = iota
	AdjacentIndelInCigar
	MismatchReadLengthAndCigar
	InvalidMappingQuality
	InvalidAlignmentStart
	MissingReadBases

	lastType
)

var typeNames = [lastType]string{
	"INVALID_CIGAR",
	"ADJACENT_INDEL_IN_CIGAR",
	"MISMATCH_READ_LENGTH_AND_CIGAR",
	"INVALID_MAPPING_QUALITY",
	"INVALID_ALIGNMENT_START",
	"MISSING_READ_BASES",
}

var typeSeverities = [lastType]Severity{
	InvalidCigar:               Error,
	AdjacentIndelInCigar:       Warning,
	MismatchReadLengthAndCigar: Error,
	InvalidMappingQuality:      Error,
	InvalidAlignmentStart:      Error,
	MissingReadBases:           Warning,
}

// Severity returns the severity bound to the type.
func (t Type) Severity() Severity {
	if t >= lastType {
		return Error
	}
	return typeSeverities[t]
}

func (t Type) String() string {
	if t >= lastType {
		return "UNKNOWN"
	}
	return typeNames[t]
}

// Defect is a finer classification of CIGAR problems.
type Defect uint8

const (
	NoDefect Defect = iota
	HardClipNotAtEnd
	SoftClipNotAtEnd
	SoftClipNotInsideHardClip
	NoRealOperator
	AdjacentIndel
	PaddingAtStart
	PaddingAtEnd
	PaddingNotBetweenRealOperators
	ReadLengthMismatch
	MappingQualityOutOfRange
	NegativeAlignmentStart
	NoReadBases
)

var defectNames = [...]string{
	"None",
	"HardClipNotAtEnd",
	"SoftClipNotAtEnd",
	"SoftClipNotInsideHardClip",
	"NoRealOperator",
	"AdjacentIndel",
	"PaddingAtStart",
	"PaddingAtEnd",
	"PaddingNotBetweenRealOperators",
	"ReadLengthMismatch",
	"MappingQualityOutOfRange",
	"NegativeAlignmentStart",
	"NoReadBases",
}

func (d Defect) String() string {
	if int(d) >= len(defectNames) {
		return "Unknown"
	}
	return defectNames[d]
}

// ValidationError describes one problem found in a CIGAR or a SAM record.
// It is a value to be reported, not an error to be returned.
type ValidationError struct {
	Type    Type
	Defect  Defect
	Message string

	ReadName     string // optional
	RecordNumber int    // 1-based, 0 for unknown
}

// NewValidationError creates a ValidationError.
func NewValidationError(t Type, d Defect, msg, readName string, recordNumber int) ValidationError {
	return ValidationError{
		Type:         t,
		Defect:       d,
		Message:      msg,
		ReadName:     readName,
		RecordNumber: recordNumber,
	}
}

// Severity returns the severity of the error type.
func (e ValidationError) Severity() Severity { return e.Type.Severity() }

func (e ValidationError) String() string {
	var b strings.Builder
	b.WriteString(e.Severity().String())
	b.WriteString(": ")
	if e.RecordNumber > 0 {
		b.WriteString("Record ")
		b.WriteString(strconv.Itoa(e.RecordNumber))
		b.WriteString(", ")
	}
	if e.ReadName != "" {
		fmt.Fprintf(&b, "Read name %s, ", e.ReadName)
	}
	b.WriteString(e.Message)
	return b.String()
}

// HasErrors tells whether any of the validation errors has the severity of Error.
func HasErrors(errs []ValidationError) bool {
	for _, e := range errs {
		if e.Severity() == Error {
			return true
		}
	}
	return false
}
