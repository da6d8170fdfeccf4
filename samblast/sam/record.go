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
	"sync"

	"github.com/pkg/errors"
	"github.com/shenwei356/samblast/samblast/cigar"
	"github.com/shenwei356/samblast/samblast/diag"
)

// NumMandatoryFields is the number of mandatory fields of a SAM record.
const NumMandatoryFields = 11

// ErrTooFewFields means a SAM record has fewer than 11 fields.
var ErrTooFewFields = errors.New("sam: too few fields")

// ErrMalformedOptionalField means an optional field is not in the format of TAG:TYPE:VALUE.
var ErrMalformedOptionalField = errors.New("sam: malformed optional field")

// ErrUnknownTagType means the type of an optional field is not one of A, i, f, Z, H.
var ErrUnknownTagType = errors.New("sam: unknown tag type")

// ErrInvalidField means a mandatory field can not be parsed.
var ErrInvalidField = errors.New("sam: invalid field value")

// ErrNoSequence means the record has no sequence (SEQ is "*").
var ErrNoSequence = errors.New("sam: no sequence")

// Flag bits used here.
const (
	FlagPaired        = 0x1
	FlagUnmapped      = 0x4
	FlagReverse       = 0x10
	FlagSecondary     = 0x100
	FlagSupplementary = 0x800
)

// ParseOptions contains options for parsing SAM records.
type ParseOptions struct {
	// suffixes of paired reads to remove from QNAME, e.g., "/1" and "/2".
	PairedSuffixes []string
}

// Record is a SAM alignment record.
type Record struct {
	QName string
	Flag  uint16
	RName string
	Pos   int // 1-based leftmost mapping position
	MapQ  int
	Cigar cigar.Cigar
	RNext string
	PNext int
	TLen  int
	Seq   string // upper case
	Qual  string

	Tags    map[string]TagValue
	tagKeys []string
}

// NewRecord returns a reset Record from the object pool.
func NewRecord() *Record {
	r := poolRecord.Get().(*Record)
	r.Reset()
	return r
}

// RecycleRecord returns a Record to the object pool.
func RecycleRecord(r *Record) {
	if r != nil {
		poolRecord.Put(r)
	}
}

var poolRecord = &sync.Pool{New: func() interface{} {
	return &Record{
		Tags:    make(map[string]TagValue, 8),
		tagKeys: make([]string, 0, 8),
	}
}}

// Reset clears all the data.
func (r *Record) Reset() {
	r.QName = ""
	r.Flag = 0
	r.RName = ""
	r.Pos = 0
	r.MapQ = 0
	r.Cigar = r.Cigar[:0]
	r.RNext = ""
	r.PNext = 0
	r.TLen = 0
	r.Seq = ""
	r.Qual = ""
	if r.Tags == nil {
		r.Tags = make(map[string]TagValue, 8)
	} else {
		clear(r.Tags)
	}
	r.tagKeys = r.tagKeys[:0]
}

// ParseRecord parses a SAM record line.
func ParseRecord(line string, opt *ParseOptions) (*Record, error) {
	r := &Record{}
	r.Reset()
	if err := r.Parse(line, opt); err != nil {
		return nil, err
	}
	return r, nil
}

func atoi(name, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidField, "%s: %s", name, value)
	}
	return n, nil
}

// Parse parses a tab-delimited SAM record line.
// Only lexical errors are returned, use Validate to check the structure.
func (r *Record) Parse(line string, opt *ParseOptions) error {
	line = strings.TrimRight(line, "\r\n")
	items := strings.Split(line, "\t")
	if len(items) < NumMandatoryFields {
		return errors.Wrapf(ErrTooFewFields, "%d (<%d) fields found", len(items), NumMandatoryFields)
	}

	var err error
	var n int

	r.QName = items[0]
	if opt != nil {
		for _, suffix := range opt.PairedSuffixes {
			if suffix != "" && strings.HasSuffix(r.QName, suffix) {
				r.QName = r.QName[:len(r.QName)-len(suffix)]
				break
			}
		}
	}

	if n, err = atoi("FLAG", items[1]); err != nil {
		return err
	}
	if n < 0 || n > 0xFFFF {
		return errors.Wrapf(ErrInvalidField, "FLAG: %s", items[1])
	}
	r.Flag = uint16(n)

	r.RName = items[2]

	if r.Pos, err = atoi("POS", items[3]); err != nil {
		return err
	}
	if r.MapQ, err = atoi("MAPQ", items[4]); err != nil {
		return err
	}

	r.Cigar, err = cigar.ParseTo(r.Cigar, items[5])
	if err != nil {
		return errors.Wrapf(err, "read %s", r.QName)
	}

	r.RNext = items[6]
	if r.PNext, err = atoi("PNEXT", items[7]); err != nil {
		return err
	}
	if r.TLen, err = atoi("TLEN", items[8]); err != nil {
		return err
	}

	r.Seq = strings.ToUpper(items[9])
	r.Qual = items[10]

	var tag string
	var v TagValue
	for _, field := range items[NumMandatoryFields:] {
		if field == "" {
			continue
		}
		tag, v, err = ParseOptionalField(field)
		if err != nil {
			return errors.Wrapf(err, "read %s", r.QName)
		}
		if _, ok := r.Tags[tag]; !ok {
			r.tagKeys = append(r.tagKeys, tag)
		}
		r.Tags[tag] = v
	}

	return nil
}

// TagKeys returns tags of optional fields, in the order of the input.
func (r *Record) TagKeys() []string { return r.tagKeys }

// Tag returns the value of an optional field.
func (r *Record) Tag(tag string) (TagValue, bool) {
	v, ok := r.Tags[tag]
	return v, ok
}

// TagInt returns the value of an integer optional field.
func (r *Record) TagInt(tag string) (int, bool) {
	v, ok := r.Tags[tag]
	if !ok || v.Type != TagInt {
		return 0, false
	}
	return int(v.Int), true
}

// TagFloat returns the value of a numeric optional field.
func (r *Record) TagFloat(tag string) (float64, bool) {
	v, ok := r.Tags[tag]
	if !ok {
		return 0, false
	}
	switch v.Type {
	case TagFloat:
		return float64(v.Float), true
	case TagInt:
		return float64(v.Int), true
	}
	return 0, false
}

// TagString returns the value of a string optional field.
func (r *Record) TagString(tag string) (string, bool) {
	v, ok := r.Tags[tag]
	if !ok || v.Type != TagString {
		return "", false
	}
	return v.Str, true
}

// MD returns the MD tag, the lower case one "md" is also checked.
func (r *Record) MD() (string, bool) {
	if s, ok := r.TagString("MD"); ok {
		return s, true
	}
	return r.TagString("md")
}

// IsMatch tells whether the record is aligned to a reference.
func (r *Record) IsMatch() bool { return r.RName != "" && r.RName != "*" }

// IsReverse tells whether SEQ is reverse complemented.
func (r *Record) IsReverse() bool { return r.Flag&FlagReverse > 0 }

// IsUnmapped tells whether the segment is unmapped.
func (r *Record) IsUnmapped() bool { return r.Flag&FlagUnmapped > 0 }

// IsSecondary tells whether it is a secondary alignment.
func (r *Record) IsSecondary() bool { return r.Flag&FlagSecondary > 0 }

// IsSupplementary tells whether it is a supplementary alignment.
func (r *Record) IsSupplementary() bool { return r.Flag&FlagSupplementary > 0 }

// String returns the record in SAM format.
func (r *Record) String() string {
	var b strings.Builder
	b.WriteString(r.QName)
	b.WriteByte('\t')
	b.WriteString(strconv.Itoa(int(r.Flag)))
	b.WriteByte('\t')
	b.WriteString(r.RName)
	b.WriteByte('\t')
	b.WriteString(strconv.Itoa(r.Pos))
	b.WriteByte('\t')
	b.WriteString(strconv.Itoa(r.MapQ))
	b.WriteByte('\t')
	b.WriteString(r.Cigar.String())
	b.WriteByte('\t')
	b.WriteString(r.RNext)
	b.WriteByte('\t')
	b.WriteString(strconv.Itoa(r.PNext))
	b.WriteByte('\t')
	b.WriteString(strconv.Itoa(r.TLen))
	b.WriteByte('\t')
	b.WriteString(r.Seq)
	b.WriteByte('\t')
	b.WriteString(r.Qual)
	var v TagValue
	for _, tag := range r.tagKeys {
		v = r.Tags[tag]
		b.WriteByte('\t')
		b.WriteString(tag)
		b.WriteByte(':')
		b.WriteByte(v.Code)
		b.WriteByte(':')
		b.WriteString(v.String())
	}
	return b.String()
}

// Validate checks the CIGAR and a few fields of the record.
// recordNumber is 1-based, 0 for unknown.
func (r *Record) Validate(recordNumber int) []diag.ValidationError {
	errs := r.Cigar.Validate(r.QName, recordNumber)

	if r.MapQ < 0 || r.MapQ > 255 {
		errs = append(errs, diag.NewValidationError(diag.InvalidMappingQuality, diag.MappingQualityOutOfRange,
			"MAPQ should be in range of [0, 255]: "+strconv.Itoa(r.MapQ), r.QName, recordNumber))
	}

	if r.Pos < 0 {
		errs = append(errs, diag.NewValidationError(diag.InvalidAlignmentStart, diag.NegativeAlignmentStart,
			"POS should be >= 0: "+strconv.Itoa(r.Pos), r.QName, recordNumber))
	}

	if r.Seq == "*" || r.Seq == "" {
		if r.IsMatch() && !r.IsSecondary() && !r.IsUnmapped() {
			errs = append(errs, diag.NewValidationError(diag.MissingReadBases, diag.NoReadBases,
				"SEQ is missing", r.QName, recordNumber))
		}
	} else if !r.Cigar.IsEmpty() && r.Cigar.ReadLength() != len(r.Seq) {
		errs = append(errs, diag.NewValidationError(diag.MismatchReadLengthAndCigar, diag.ReadLengthMismatch,
			"Read length ("+strconv.Itoa(r.Cigar.ReadLength())+") of CIGAR does not match length of SEQ ("+
				strconv.Itoa(len(r.Seq))+")", r.QName, recordNumber))
	}

	return errs
}
