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
	"strings"

	"github.com/pkg/errors"
)

// Mode is the alignment mode of rendering.
type Mode uint8

const (
	BlastN Mode = iota // nucleotide vs nucleotide
	BlastP             // protein vs protein
	BlastX             // translated nucleotide vs protein
)

// ErrUnknownMode means the mode name is not blastn, blastp, or blastx.
var ErrUnknownMode = errors.New("sam: unknown alignment mode")

func (m Mode) String() string {
	switch m {
	case BlastN:
		return "blastn"
	case BlastP:
		return "blastp"
	case BlastX:
		return "blastx"
	}
	return "unknown"
}

// IsProtein tells whether the reference is protein.
func (m Mode) IsProtein() bool { return m == BlastP || m == BlastX }

// ParseMode parses the mode name, case-insensitive.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "blastn", "n":
		return BlastN, nil
	case "blastp", "p":
		return BlastP, nil
	case "blastx", "x":
		return BlastX, nil
	}
	return BlastN, errors.Wrapf(ErrUnknownMode, "%s", s)
}

// RenderOptions contains options for rendering BLAST-style alignments.
type RenderOptions struct {
	Mode      Mode
	LineWidth int // the number of alignment columns per line

	// lengths of reference sequences, the aligned length is used if absent.
	RefLengths map[string]int

	// report inconsistencies between rendered coordinates and those
	// derived from tags or the CIGAR.
	ShowDiagnostics bool
}

// DefaultLineWidth is the default number of alignment columns per line.
const DefaultLineWidth = 120

// DefaultRenderOptions contains the default options.
var DefaultRenderOptions = RenderOptions{
	Mode:      BlastN,
	LineWidth: DefaultLineWidth,
}
