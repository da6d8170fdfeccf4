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
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shenwei356/samblast/samblast/diag"
	"github.com/spf13/cobra"
)

var toPairwiseCmd = &cobra.Command{
	Use:   "2pairwise",
	Short: "Convert SAM records to raw pairwise alignments",
	Long: `Convert SAM records to raw pairwise alignments

Each alignment is shown in four lines, followed by a blank line:
   1. QNAME, FLAG, RNAME, POS, CIGAR, and MD of the record.
   2. The gapped query.
   3. The midline, '|' for identical bases in blastn mode. In blastp and blastx
      modes, identical residues are shown and '+' marks positive scores.
   4. The gapped reference, mismatched and deleted bases are in lower case.

Unmapped records and records with CIGAR "*" are skipped.

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)

		outFile := getFlagString(cmd, "out-file")
		bufferSize, err := ParseByteSize(getFlagString(cmd, "buffer-size"))
		if err != nil {
			checkError(fmt.Errorf("invalid value of buffer size. supported unit: K, M, G"))
		}
		primaryOnly := getFlagBool(cmd, "primary-only")

		ropt, popt := getRenderOptions(cmd)

		files := getInputFiles(cmd, args, opt.NumCPUs)

		outfh, gw, w, err := outStream(outFile, strings.HasSuffix(outFile, ".gz"), opt.CompressionLevel)
		checkError(err)
		defer func() {
			outfh.Flush()
			if gw != nil {
				gw.Close()
			}
			w.Close()
		}()

		var sink *diag.Sink
		if opt.Verbose {
			sink = diag.NewSink(log)
		} else {
			sink = diag.NewSink(nil)
		}

		var nOutput uint64
		p := &samProcessor{
			Threads:      opt.NumCPUs,
			BufferSize:   bufferSize,
			ProgressBar:  opt.Verbose,
			ParseOptions: popt,

			Work: func(job *samJob) {
				r := job.record
				if !r.IsMatch() || r.IsUnmapped() || r.Cigar.IsEmpty() ||
					(primaryOnly && (r.IsSecondary() || r.IsSupplementary())) {
					job.skip = true
					return
				}
				if ropt.ShowDiagnostics {
					job.text, job.err = r.Pairwise(ropt.Mode, sink)
				} else {
					job.text, job.err = r.Pairwise(ropt.Mode, nil)
				}
			},

			Output: func(job *samJob) {
				if job.parseErr != nil {
					checkError(fmt.Errorf("%s: line %d: %s", job.file, job.lineNo, job.parseErr))
				}
				if job.skip {
					return
				}
				if job.err != nil {
					log.Warningf("%s: line %d: %s", job.file, job.lineNo, job.err)
					return
				}

				r := job.record
				md, ok := r.MD()
				if !ok {
					md = "*"
				}
				fmt.Fprintf(outfh, "%s\t%d\t%s\t%d\t%s\t%s\n", r.QName, r.Flag, r.RName, r.Pos, r.Cigar, md)
				outfh.WriteString(job.text)
				outfh.WriteByte('\n')
				nOutput++
			},
		}

		total, err := p.run(files)
		checkError(err)

		if opt.Verbose {
			log.Infof("%s of %s records converted", humanize.Comma(int64(nOutput)), humanize.Comma(int64(total)))
		}
	},
}

func init() {
	RootCmd.AddCommand(toPairwiseCmd)

	addRenderFlags(toPairwiseCmd)

	toPairwiseCmd.Flags().BoolP("primary-only", "", false,
		formatFlagUsage(`Skip secondary and supplementary alignments.`))

	addIOFlags(toPairwiseCmd)

	toPairwiseCmd.SetUsageTemplate(usageTemplate("[SAM files...]"))
}
