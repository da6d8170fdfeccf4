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

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shenwei356/samblast/samblast/diag"
	"github.com/spf13/cobra"
	"github.com/twotwotwo/sorts"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check CIGAR strings and fields of SAM records",
	Long: `Check CIGAR strings and fields of SAM records

Problems are output in a tab-delimited format, with columns:

    1.  file,      Input file.
    2.  record,    Record number in the file, header lines are not counted.
    3.  line,      Line number in the file.
    4.  qname,     Read name.
    5.  severity,  ERROR or WARNING.
    6.  type,      Type of the problem.
    7.  defect,    Detailed category of CIGAR problems.
    8.  message,   Description.

Checks:
    INVALID_CIGAR                    (ERROR)   clipping or padding operators in wrong places,
                                               or no M, I, D, N, = or X operators.
    ADJACENT_INDEL_IN_CIGAR          (WARNING) two I or D operators without M, N, =, X,
                                               or P between them.
    MISMATCH_READ_LENGTH_AND_CIGAR   (ERROR)   read length of the CIGAR differs from SEQ.
    INVALID_MAPPING_QUALITY          (ERROR)   MAPQ out of [0, 255].
    INVALID_ALIGNMENT_START          (ERROR)   negative POS.
    MISSING_READ_BASES               (WARNING) no SEQ for a primary mapped record.

A summary of problem counts is written to stderr. The exit status is 1 if
any ERROR is found, or any record fails to be parsed.

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)

		outFile := getFlagString(cmd, "out-file")
		bufferSize, err := ParseByteSize(getFlagString(cmd, "buffer-size"))
		if err != nil {
			checkError(fmt.Errorf("invalid value of buffer size. supported unit: K, M, G"))
		}
		errorsOnly := getFlagBool(cmd, "errors-only")
		noHeader := getFlagBool(cmd, "no-header-row")

		_, popt := getRenderOptions(cmd)

		files := getInputFiles(cmd, args, opt.NumCPUs)

		outfh, gw, w, err := outStream(outFile, strings.HasSuffix(outFile, ".gz"), opt.CompressionLevel)
		checkError(err)

		if !noHeader {
			outfh.WriteString("file\trecord\tline\tqname\tseverity\ttype\tdefect\tmessage\n")
		}

		counts := make(map[[2]uint8]int, 16)
		var nErrors, nWarnings, nBadRecords, nParseErrors uint64

		p := &samProcessor{
			Threads:      opt.NumCPUs,
			BufferSize:   bufferSize,
			ProgressBar:  opt.Verbose,
			ParseOptions: popt,

			Work: func(job *samJob) {
				job.errs = job.record.Validate(job.recordNo)
			},

			Output: func(job *samJob) {
				if job.parseErr != nil {
					nParseErrors++
					log.Errorf("%s: line %d: %s", job.file, job.lineNo, job.parseErr)
					return
				}
				if len(job.errs) == 0 {
					return
				}

				var bad bool
				for _, e := range job.errs {
					if e.Severity() == diag.Error {
						nErrors++
						bad = true
					} else {
						nWarnings++
						if errorsOnly {
							continue
						}
					}
					counts[[2]uint8{uint8(e.Type), uint8(e.Defect)}]++

					fmt.Fprintf(outfh, "%s\t%d\t%d\t%s\t%s\t%s\t%s\t%s\n",
						job.file, e.RecordNumber, job.lineNo, e.ReadName,
						e.Severity(), e.Type, e.Defect, e.Message)
				}
				if bad {
					nBadRecords++
				}
			},
		}

		total, err := p.run(files)
		checkError(err)

		outfh.Flush()
		if gw != nil {
			gw.Close()
		}
		w.Close()

		if opt.Verbose {
			log.Infof("%s records checked: %s with errors, %s errors, %s warnings, %s unparsable",
				humanize.Comma(int64(total)), humanize.Comma(int64(nBadRecords)),
				humanize.Comma(int64(nErrors)), humanize.Comma(int64(nWarnings)),
				humanize.Comma(int64(nParseErrors)))

			for _, c := range summarizeProblems(counts) {
				log.Infof("  %-8s %-32s %-32s %s", c.Type.Severity(), c.Type, c.Defect, humanize.Comma(int64(c.Count)))
			}
		}

		if nErrors > 0 || nParseErrors > 0 {
			os.Exit(1)
		}
	},
}

func init() {
	RootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringSliceP("paired-suffixes", "p", []string{},
		formatFlagUsage(`Suffixes of paired reads to remove from read names, e.g., "/1,/2".`))

	validateCmd.Flags().StringP("config", "C", "",
		formatFlagUsage(`Config file in TOML format, only paired-suffixes is used.`))

	validateCmd.Flags().BoolP("errors-only", "e", false,
		formatFlagUsage(`Only output problems with the severity of ERROR.`))

	validateCmd.Flags().BoolP("no-header-row", "H", false,
		formatFlagUsage(`Do not output the header row.`))

	addIOFlags(validateCmd)

	validateCmd.SetUsageTemplate(usageTemplate("[SAM files...]"))
}

// problemCount is the count of a type of problems.
type problemCount struct {
	Type   diag.Type
	Defect diag.Defect
	Count  int
}

type problemCounts []problemCount

func (s problemCounts) Len() int { return len(s) }
func (s problemCounts) Less(i, j int) bool {
	if s[i].Count != s[j].Count {
		return s[i].Count > s[j].Count
	}
	if s[i].Type != s[j].Type {
		return s[i].Type < s[j].Type
	}
	return s[i].Defect < s[j].Defect
}
func (s problemCounts) Swap(i, j int) { s[i], s[j] = s[j], s[i] }

// summarizeProblems sorts problem counts in descending order.
func summarizeProblems(counts map[[2]uint8]int) []problemCount {
	s := make(problemCounts, 0, len(counts))
	for k, n := range counts {
		s = append(s, problemCount{Type: diag.Type(k[0]), Defect: diag.Defect(k[1]), Count: n})
	}
	sorts.Quicksort(s)
	return s
}
