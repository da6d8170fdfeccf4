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

	"github.com/shenwei356/samblast/samblast/diag"
	"github.com/shenwei356/samblast/samblast/md"
	"github.com/spf13/cobra"
)

var mdCmd = &cobra.Command{
	Use:   "md",
	Short: "Decode MD tags and reconstruct reference sequences",
	Long: `Decode MD tags and reconstruct reference sequences

Output (tab-delimited):

    1.  md,         Input MD string.
    2.  canonical,  MD string re-encoded from the decoded operations.
    3.  rlen,       Number of reference bases covered.
    4.  ops,        Decoded operations, separated by spaces.
    5.  reference,  Reconstructed reference, only with -q/--query.

With -q/--query, the reference is reconstructed from the gapped query, and
the gapped reference template (-t/--template) where '?' marks positions to
be resolved by the MD tag, '-', '.' and '*' are kept as they are.
By default, the template is all '?' with the length of the query.

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)

		if len(args) == 0 {
			checkError(fmt.Errorf("at least one MD string needed"))
		}

		query := getFlagString(cmd, "query")
		template := getFlagString(cmd, "template")
		if template != "" && query == "" {
			checkError(fmt.Errorf("flag -q/--query needed when -t/--template is given"))
		}
		if query != "" && template == "" {
			template = strings.Repeat(string(md.Placeholder), len(query))
		}
		if len(template) != len(query) {
			checkError(fmt.Errorf("the query (%d) and the template (%d) should have the same length",
				len(query), len(template)))
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

		var sink *diag.Sink
		if opt.Verbose {
			sink = diag.NewSink(log)
		} else {
			sink = diag.NewSink(nil)
		}

		outfh.WriteString("md\tcanonical\trlen\tops\treference\n")

		var ops []md.Op
		var rlen int
		items := make([]string, 0, 8)
		var ref string
		for _, s := range args {
			ops = md.Decode(s, sink)

			items = items[:0]
			rlen = 0
			for _, op := range ops {
				items = append(items, op.String())
				rlen += op.RefLen()
			}

			ref = ""
			if query != "" {
				ref = md.Reconstruct(ops, query, template, sink)
			}

			fmt.Fprintf(outfh, "%s\t%s\t%d\t%s\t%s\n", s, md.String(ops), rlen, strings.Join(items, " "), ref)
		}
	},
}

func init() {
	utilsCmd.AddCommand(mdCmd)

	mdCmd.Flags().StringP("query", "q", "",
		formatFlagUsage(`Gapped query sequence, '-' for deletions.`))

	mdCmd.Flags().StringP("template", "t", "",
		formatFlagUsage(`Gapped reference template, '?' for positions to resolve, '-' for insertions.`))

	mdCmd.Flags().StringP("out-file", "o", "-",
		formatFlagUsage(`Out file, supports the ".gz" suffix ("-" for stdout).`))

	mdCmd.SetUsageTemplate(usageTemplate("MD [MD...]"))
}
