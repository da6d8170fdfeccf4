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
	"testing"
)

func TestSamProcessor(t *testing.T) {
	dir := t.TempDir()

	var b strings.Builder
	b.WriteString("@HD\tVN:1.6\n@SQ\tSN:chr1\tLN:5000\n")
	n := 100
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "read%d\t0\tchr1\t%d\t60\t4M\t*\t0\t0\tACGT\t*\tMD:Z:4\n", i, i+1)
	}
	file1 := filepath.Join(dir, "a.sam")
	if err := os.WriteFile(file1, []byte(b.String()), 0644); err != nil {
		t.Error(err)
		return
	}
	file2 := filepath.Join(dir, "b.sam")
	if err := os.WriteFile(file2, []byte("@SQ\tSN:chr2\tLN:300\n\nlast\t4\t*\t0\t0\t*\t*\t0\t0\tACGT\t*\n"), 0644); err != nil {
		t.Error(err)
		return
	}

	headers := make([]string, 0, 4)
	names := make([]string, 0, n+1)
	var lastLineNo, lastRecordNo int
	p := &samProcessor{
		Threads:    4,
		BufferSize: 1 << 20,
		Header: func(line string) {
			headers = append(headers, line)
		},
		Work: func(job *samJob) {
			job.text = job.record.QName
		},
		Output: func(job *samJob) {
			if job.parseErr != nil {
				t.Error(job.parseErr)
				return
			}
			names = append(names, job.text)
			lastLineNo, lastRecordNo = job.lineNo, job.recordNo
		},
	}

	total, err := p.run([]string{file1, file2})
	if err != nil {
		t.Error(err)
		return
	}

	if total != uint64(n+1) || len(names) != n+1 {
		t.Errorf("expected %d records, results: %d, %d", n+1, total, len(names))
		return
	}
	for i := 0; i < n; i++ {
		if names[i] != fmt.Sprintf("read%d", i) {
			t.Errorf("unexpected order at %d: %s", i, names[i])
			return
		}
	}
	if names[n] != "last" || lastLineNo != 3 || lastRecordNo != 1 {
		t.Errorf("unexpected last record: %s, line %d, record %d", names[n], lastLineNo, lastRecordNo)
	}

	if len(headers) != 3 || headers[2] != "@SQ\tSN:chr2\tLN:300" {
		t.Errorf("unexpected headers: %q", headers)
	}

	// missing file
	p.Output = func(job *samJob) {}
	if _, err = p.run([]string{filepath.Join(dir, "missing.sam")}); err == nil {
		t.Errorf("expected an error for a missing file")
	}
}
