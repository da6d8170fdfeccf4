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
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/iafan/cwalk"
	"github.com/pkg/errors"
	"github.com/shenwei356/util/pathutil"
	"github.com/shenwei356/xopen"
	"github.com/spf13/cobra"
	"github.com/twotwotwo/sorts"
)

// Options contains the global flags
type Options struct {
	NumCPUs int
	Verbose bool

	LogFile  string
	Log2File bool

	CompressionLevel int
}

func getOptions(cmd *cobra.Command) *Options {
	threads := getFlagNonNegativeInt(cmd, "threads")
	if threads == 0 {
		threads = runtime.NumCPU()
	}

	sorts.MaxProcs = threads
	runtime.GOMAXPROCS(threads)

	logfile := getFlagString(cmd, "log")
	return &Options{
		NumCPUs: threads,
		Verbose: !getFlagBool(cmd, "quiet"),

		LogFile:  logfile,
		Log2File: logfile != "",

		CompressionLevel: -1,
	}
}

// the default pattern of SAM files in a directory
var defaultSAMFileRegexp = `(?i)\.sam(\.gz|\.xz|\.zst|\.bz2)?$`

// getInputFiles collects input files from the arguments, the file list,
// and the directory given by -I/--in-dir.
func getInputFiles(cmd *cobra.Command, args []string, threads int) []string {
	inDir := getFlagString(cmd, "in-dir")
	if inDir == "" {
		return getFileListFromArgsAndFile(cmd, args, true, "infile-list", true)
	}

	isDir, err := pathutil.IsDir(inDir)
	if err != nil {
		checkError(errors.Wrapf(err, "checking -I/--in-dir"))
	}
	if !isDir {
		checkError(fmt.Errorf("value of -I/--in-dir should be a directory: %s", inDir))
	}

	reFileStr := getFlagString(cmd, "file-regexp")
	reFile, err := regexp.Compile(reFileStr)
	checkError(errors.Wrapf(err, "failed to parse regular expression for matching file: %s", reFileStr))

	files, err := getFileListFromDir(inDir, reFile, threads)
	checkError(errors.Wrapf(err, "walking dir: %s", inDir))
	if len(files) == 0 {
		checkError(fmt.Errorf("no SAM files found in %s with the pattern: %s", inDir, reFileStr))
	}
	sorts.Quicksort(sort.StringSlice(files))

	if len(args) > 0 || getFlagString(cmd, "infile-list") != "" {
		files = append(getFileListFromArgsAndFile(cmd, args, true, "infile-list", true), files...)
	}
	return files
}

func getFileListFromDir(path string, pattern *regexp.Regexp, threads int) ([]string, error) {
	files := make([]string, 0, 512)
	ch := make(chan string, threads)
	done := make(chan int)
	go func() {
		for file := range ch {
			files = append(files, file)
		}
		done <- 1
	}()

	cwalk.NumWorkers = threads
	err := cwalk.WalkWithSymlinks(path, func(_path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && pattern.MatchString(info.Name()) {
			ch <- filepath.Join(path, _path)
		}
		return nil
	})
	close(ch)
	<-done
	if err != nil {
		return nil, err
	}

	return files, err
}

func stringSplitNByByte(s string, sep byte, n int, a *[]string) {
	if a == nil {
		tmp := make([]string, n)
		a = &tmp
	}

	n--
	i := 0
	for i < n {
		m := strings.IndexByte(s, sep)
		if m < 0 {
			break
		}
		(*a)[i] = s[:m]
		s = s[m+1:]
		i++
	}
	(*a)[i] = s

	(*a) = (*a)[:i+1]
}

func readKVs(file string, ignoreCase bool) (map[string]string, error) {
	fh, err := xopen.Ropen(file)
	if err != nil {
		return nil, err
	}

	m := make(map[string]string, 1024)

	items := make([]string, 2)
	scanner := bufio.NewScanner(fh)
	var line string
	for scanner.Scan() {
		line = strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}

		stringSplitNByByte(line, '\t', 2, &items)
		if len(items) < 2 {
			continue
		}

		if ignoreCase {
			m[strings.ToLower(items[0])] = items[1]
		} else {
			m[items[0]] = items[1]
		}
	}
	if err = scanner.Err(); err != nil {
		return nil, err
	}

	return m, fh.Close()
}

// readRefLengths reads a two-column tabular file of reference names and lengths.
func readRefLengths(file string) (map[string]int, error) {
	kvs, err := readKVs(file, false)
	if err != nil {
		return nil, err
	}

	m := make(map[string]int, len(kvs))
	var n int
	for k, v := range kvs {
		n, err = strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid length of %s: %s", k, v)
		}
		m[k] = n
	}
	return m, nil
}

// parseSQLine parses a @SQ header line and returns the reference name and length.
func parseSQLine(line string) (string, int, bool) {
	if !strings.HasPrefix(line, "@SQ\t") {
		return "", 0, false
	}

	var name string
	length := -1
	var err error
	for _, field := range strings.Split(line[4:], "\t") {
		switch {
		case strings.HasPrefix(field, "SN:"):
			name = field[3:]
		case strings.HasPrefix(field, "LN:"):
			length, err = strconv.Atoi(field[3:])
			if err != nil {
				return "", 0, false
			}
		}
	}
	if name == "" || length < 0 {
		return "", 0, false
	}
	return name, length, true
}
