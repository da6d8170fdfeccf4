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
	"bufio"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shenwei356/samblast/samblast/diag"
	"github.com/shenwei356/samblast/samblast/sam"
	"github.com/shenwei356/xopen"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// samJob is a SAM record to process.
type samJob struct {
	id       uint64 // global order
	file     string
	lineNo   int // line number in the file
	recordNo int // record number in the file, headers excluded
	line     string

	record   *sam.Record
	parseErr error

	// results
	skip  bool
	text  string
	align *sam.Alignment
	err   error
	errs  []diag.ValidationError
}

func (j *samJob) reset() {
	j.id = 0
	j.file = ""
	j.lineNo = 0
	j.recordNo = 0
	j.line = ""
	j.record = nil
	j.parseErr = nil
	j.skip = false
	j.text = ""
	j.align = nil
	j.err = nil
	j.errs = nil
}

var poolSamJob = &sync.Pool{New: func() interface{} {
	return &samJob{}
}}

// samProcessor reads SAM records from files, processes them concurrently,
// and outputs the results in the input order.
type samProcessor struct {
	Threads      int
	BufferSize   int
	ProgressBar  bool
	ParseOptions *sam.ParseOptions

	// Header is called for each header line, when no records are in processing.
	Header func(line string)

	// Work is called concurrently for records parsed successfully.
	Work func(job *samJob)

	// Output is called in the input order, jobs are recycled after it returns.
	Output func(job *samJob)
}

// run processes all files and returns the number of records.
func (p *samProcessor) run(files []string) (uint64, error) {
	threads := p.Threads
	if threads < 1 {
		threads = 1
	}
	bufferSize := p.BufferSize
	if bufferSize < bufio.MaxScanTokenSize {
		bufferSize = bufio.MaxScanTokenSize
	}

	// process bar
	var pbs *mpb.Progress
	var bar *mpb.Bar
	if p.ProgressBar && len(files) > 1 {
		pbs = mpb.New(mpb.WithWidth(40), mpb.WithOutput(os.Stderr))
		bar = pbs.AddBar(int64(len(files)),
			mpb.PrependDecorators(
				decor.Name("processed files: ", decor.WC{W: len("processed files: "), C: decor.DindentRight}),
				decor.Name("", decor.WCSyncSpaceR),
				decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
			),
			mpb.AppendDecorators(
				decor.Name("ETA: ", decor.WC{W: len("ETA: ")}),
				decor.EwmaETA(decor.ET_STYLE_GO, 3),
				decor.OnComplete(decor.Name(""), ". done"),
			),
		)
	}

	recycle := func(job *samJob) {
		sam.RecycleRecord(job.record)
		job.reset()
		poolSamJob.Put(job)
	}

	// outputter
	ch := make(chan *samJob, threads)
	done := make(chan int)
	go func() {
		buf := make(map[uint64]*samJob, threads)
		var id uint64
		var job *samJob
		var ok bool
		for job = range ch {
			if job.id != id {
				buf[job.id] = job
				continue
			}

			p.Output(job)
			recycle(job)
			id++

			for {
				if job, ok = buf[id]; !ok {
					break
				}
				delete(buf, id)
				p.Output(job)
				recycle(job)
				id++
			}
		}
		done <- 1
	}()

	var wg sync.WaitGroup
	tokens := make(chan int, threads)

	buf := make([]byte, bufferSize)
	var fh *xopen.Reader
	var scanner *bufio.Scanner
	var line string
	var lineNo, recordNo int
	var id uint64
	var job *samJob
	var err error
	var timeFile time.Time

	for _, file := range files {
		timeFile = time.Now()

		fh, err = xopen.Ropen(file)
		if err != nil {
			err = errors.Wrapf(err, "read file: %s", file)
			break
		}

		lineNo, recordNo = 0, 0
		scanner = bufio.NewScanner(fh)
		scanner.Buffer(buf, bufferSize)
		for scanner.Scan() {
			lineNo++
			line = strings.TrimRight(scanner.Text(), "\r\n")
			if line == "" {
				continue
			}
			if line[0] == '@' {
				if p.Header != nil {
					wg.Wait()
					p.Header(line)
				}
				continue
			}
			recordNo++

			job = poolSamJob.Get().(*samJob)
			job.reset()
			job.id = id
			job.file = file
			job.lineNo = lineNo
			job.recordNo = recordNo
			job.line = line
			id++

			tokens <- 1
			wg.Add(1)
			go func(job *samJob) {
				defer func() {
					<-tokens
					wg.Done()
				}()

				job.record = sam.NewRecord()
				job.parseErr = job.record.Parse(job.line, p.ParseOptions)
				if job.parseErr == nil && p.Work != nil {
					p.Work(job)
				}
				ch <- job
			}(job)
		}
		if err = scanner.Err(); err != nil {
			err = errors.Wrapf(err, "read file: %s", file)
			fh.Close()
			break
		}
		if err = fh.Close(); err != nil {
			err = errors.Wrapf(err, "close file: %s", file)
			break
		}

		if bar != nil {
			bar.EwmaIncrBy(1, time.Since(timeFile))
		}
	}

	wg.Wait()
	close(ch)
	<-done

	if pbs != nil {
		if err != nil {
			bar.Abort(false)
		}
		pbs.Wait()
	}

	return id, err
}
