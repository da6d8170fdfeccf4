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

	"github.com/shenwei356/samblast/samblast/cigar"
	"github.com/spf13/cobra"
)

var cigarCmd = &cobra.Command{
	Use:   "cigar",
	Short: "Parse and check CIGAR strings",
	Long: `Parse and check CIGAR strings

Output (tab-delimited):

    1.  cigar,     Input CIGAR string.
    2.  encoded,   CIGAR string re-encoded from the parsed elements.
    3.  qlen,      Read length, i.e., the sum of M, I, S, =, X, '\', '/'.
    4.  rlen,      Reference length, i.e., the sum of M, D, N, =, X.
    5.  lclip,     Leading clipping length (H + S).
    6.  tclip,     Trailing clipping length (H + S).
    7.  valid,     Whether it passes the structural checks.
    8.  problems,  Problems found, separated by "; ".

Note that frame shift operators ('\' and '/') need quoting in the shell.

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)

		if len(args) == 0 {
			checkError(fmt.Errorf("at least one CIGAR string needed"))
		}

		outFile := getFlagString(cmd, "out-file")
		outfh, gw, w, err := outStream(outFile, strings.HasSuffix(outFile, ".gz"), opt.CompressionLevel)
		checkError(err)
		defer func() {
			outfh.Flush()
			if gw != nil {
				gw.Close()
			}
			w.Close()
		}()

		outfh.WriteString("cigar\tencoded\tqlen\trlen\tlclip\ttclip\tvalid\tproblems\n")

		var c cigar.Cigar
		var lh, ls, th, ts int
		problems := make([]string, 0, 4)
		for i, s := range args {
			c, err = cigar.Parse(s)
			if err != nil {
				checkError(fmt.Errorf("failed to parse CIGAR: %s", err))
			}

			problems = problems[:0]
			for _, e := range c.Validate("", i+1) {
				problems = append(problems, fmt.Sprintf("%s(%s): %s", e.Type, e.Defect, e.Message))
			}

			lh, ls = c.LeadingClip()
			th, ts = c.TrailingClip()
			fmt.Fprintf(outfh, "%s\t%s\t%d\t%d\t%d\t%d\t%v\t%s\n",
				s, cigar.Encode(c), c.ReadLength(), c.ReferenceLength(),
				lh+ls, th+ts, len(problems) == 0, strings.Join(problems, "; "))
		}
	},
}

func init() {
	utilsCmd.AddCommand(cigarCmd)

	cigarCmd.Flags().StringP("out-file", "o", "-",
		formatFlagUsage(`Out file, supports the ".gz" suffix ("-" for stdout).`))

	cigarCmd.SetUsageTemplate(usageTemplate("CIGAR [CIGAR...]"))
}
