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
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shenwei356/samblast/samblast/diag"
	"github.com/shenwei356/samblast/samblast/sam"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"
)

var toBlastCmd = &cobra.Command{
	Use:   "2blast",
	Short: "Convert SAM records to blast-style format",
	Long: `Convert SAM records to blast-style format

The gapped reference of each alignment is reconstructed from the CIGAR and
the MD tag, where mismatched and deleted reference bases are in lower case.
If the MD tag is missing, reference positions are shown as '?'.

Input:
   - SAM text (plain or compressed) from files or stdin, header lines are optional.
   - Unmapped records and records with CIGAR "*" are skipped.

Tags used in rendering:
   AS  score, shown in bits
   ZR  raw score
   ZE  expect value
   NM  edit distance, only shown when AS is absent
   ZF  reading frame of blastx alignments
   ZS  start position of the query
   ZQ  end position of the query

Lengths of reference sequences:
   The aligned length is used by default, it's overridden by @SQ header lines,
   the [ref-lengths] table of the config file, and -l/--kv-file-ref-len, in
   increasing priority.

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)

		outFile := getFlagString(cmd, "out-file")

		var fhLog *os.File
		if opt.Log2File {
			ro, err := filepath.Abs(outFile)
			if err != nil {
				checkError(fmt.Errorf("failed to check output file: %s", err))
			}
			rl, err := filepath.Abs(opt.LogFile)
			if err != nil {
				checkError(fmt.Errorf("failed to check log file: %s", err))
			}
			if ro == rl {
				checkError(fmt.Errorf("output file and log file should not be the same: %s", outFile))
			}
			fhLog = addLog(opt.LogFile, opt.Verbose)
		}

		outputLog := opt.Verbose || opt.Log2File

		timeStart := time.Now()
		defer func() {
			if outputLog {
				log.Info()
				log.Infof("elapsed time: %s", time.Since(timeStart))
				log.Info()
			}
			if opt.Log2File {
				fhLog.Close()
			}
		}()

		bufferSizeS := getFlagString(cmd, "buffer-size")
		if bufferSizeS == "" {
			checkError(fmt.Errorf("value of buffer size. supported unit: K, M, G"))
		}
		bufferSize, err := ParseByteSize(bufferSizeS)
		if err != nil {
			checkError(fmt.Errorf("invalid value of buffer size. supported unit: K, M, G"))
		}

		primaryOnly := getFlagBool(cmd, "primary-only")
		ignoreSQ := getFlagBool(cmd, "ignore-sq")

		ropt, popt := getRenderOptions(cmd)

		// lengths from @SQ lines do not override those given by users
		userRefLengths := make(map[string]struct{}, len(ropt.RefLengths))
		for k := range ropt.RefLengths {
			userRefLengths[k] = struct{}{}
		}
		if outputLog && len(ropt.RefLengths) > 0 {
			log.Infof("%s reference lengths loaded", humanize.Comma(int64(len(ropt.RefLengths))))
		}

		files := getInputFiles(cmd, args, opt.NumCPUs)
		if outputLog {
			log.Infof("rendering %s alignments from %d file(s) ...", ropt.Mode, len(files))
		}

		// ---------------------------------------------------------------
		// output file handler
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
		if outputLog {
			sink = diag.NewSink(log)
		} else {
			sink = diag.NewSink(nil)
		}

		var nRendered, nSkipped, nFailed uint64
		identities := make([]float64, 0, 1024)
		var preQuery string

		p := &samProcessor{
			Threads:      opt.NumCPUs,
			BufferSize:   bufferSize,
			ProgressBar:  opt.Verbose,
			ParseOptions: popt,

			Header: func(line string) {
				if ignoreSQ {
					return
				}
				if name, length, ok := parseSQLine(line); ok {
					if _, ok = userRefLengths[name]; !ok {
						ropt.RefLengths[name] = length
					}
				}
			},

			Work: func(job *samJob) {
				r := job.record
				if !r.IsMatch() || r.IsUnmapped() || r.Cigar.IsEmpty() ||
					(primaryOnly && (r.IsSecondary() || r.IsSupplementary())) {
					job.skip = true
					return
				}
				job.text, job.align, job.err = r.Render(ropt, sink)
			},

			Output: func(job *samJob) {
				if job.parseErr != nil {
					checkError(fmt.Errorf("%s: line %d: %s", job.file, job.lineNo, job.parseErr))
				}
				if job.skip {
					nSkipped++
					return
				}
				if job.err != nil {
					nFailed++
					log.Warningf("%s: line %d: %s", job.file, job.lineNo, job.err)
					return
				}

				r := job.record
				if r.QName != preQuery {
					fmt.Fprintf(outfh, "Query = %s\nLength = %d\n\n", r.QName, r.QueryLength(ropt.Mode))
					preQuery = r.QName
				}
				outfh.WriteString(job.text)
				outfh.WriteByte('\n')

				nRendered++
				if job.align.Length > 0 {
					identities = append(identities, float64(job.align.Identities)/float64(job.align.Length)*100)
				}
			},
		}

		total, err := p.run(files)
		checkError(err)

		if outputLog {
			log.Infof("%s records processed: %s rendered, %s skipped, %s failed",
				humanize.Comma(int64(total)), humanize.Comma(int64(nRendered)),
				humanize.Comma(int64(nSkipped)), humanize.Comma(int64(nFailed)))

			if len(identities) > 0 {
				mean, stdev := identitySummary(identities)
				log.Infof("percentage of identities: mean %.2f, stdev %.2f", mean, stdev)
			}
			if sink.Len() > 0 {
				log.Warningf("%d distinct diagnostic message(s) reported", sink.Len())
			}
			if outFile != "-" {
				log.Infof("alignments saved to: %s", outFile)
			}
		}
	},
}

func init() {
	RootCmd.AddCommand(toBlastCmd)

	addRenderFlags(toBlastCmd)

	toBlastCmd.Flags().IntP("line-width", "w", sam.DefaultLineWidth,
		formatFlagUsage(`Number of alignment columns per line.`))

	toBlastCmd.Flags().StringP("kv-file-ref-len", "l", "",
		formatFlagUsage(`Two-column tabular file for mapping the reference name to the sequence length.`))

	toBlastCmd.Flags().BoolP("ignore-sq", "", false,
		formatFlagUsage(`Do not use reference lengths in @SQ header lines.`))

	toBlastCmd.Flags().BoolP("primary-only", "", false,
		formatFlagUsage(`Skip secondary and supplementary alignments.`))

	addIOFlags(toBlastCmd)

	toBlastCmd.SetUsageTemplate(usageTemplate("[SAM files...]"))
}

// addIOFlags adds flags of input and output shared by commands reading SAM files.
func addIOFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("out-file", "o", "-",
		formatFlagUsage(`Out file, supports a ".gz" suffix ("-" for stdout).`))

	cmd.Flags().StringP("buffer-size", "b", "20M",
		formatFlagUsage(`Size of buffer, supported unit: K, M, G. You need increase the value when "bufio.Scanner: token too long" error reported`))

	cmd.Flags().StringP("in-dir", "I", "",
		formatFlagUsage(`Directory containing SAM files. Directory symlinks are followed.`))

	cmd.Flags().StringP("file-regexp", "r", defaultSAMFileRegexp,
		formatFlagUsage(`Regular expression for matching SAM files in -I/--in-dir.`))
}

// identitySummary returns the mean and standard deviation of values.
func identitySummary(values []float64) (float64, float64) {
	switch len(values) {
	case 0:
		return 0, 0
	case 1:
		return values[0], 0
	}
	return stat.MeanStdDev(values, nil)
}
