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
	"io"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/shenwei356/samblast/samblast/sam"
	"github.com/shenwei356/xopen"
	"github.com/spf13/cobra"
)

// renderConfig is the configuration file of rendering, in TOML format.
//
//	mode = "blastx"
//	line-width = 60
//	paired-suffixes = ["/1", "/2"]
//	show-diagnostics = true
//
//	[ref-lengths]
//	prot1 = 350
type renderConfig struct {
	Mode            string         `toml:"mode"`
	LineWidth       int            `toml:"line-width"`
	PairedSuffixes  []string       `toml:"paired-suffixes"`
	ShowDiagnostics bool           `toml:"show-diagnostics"`
	RefLengths      map[string]int `toml:"ref-lengths"`
}

func defaultRenderConfig() *renderConfig {
	return &renderConfig{
		Mode:      sam.DefaultRenderOptions.Mode.String(),
		LineWidth: sam.DefaultLineWidth,
	}
}

// loadConfig reads a TOML config file, missing values are set to defaults.
func loadConfig(file string) (*renderConfig, error) {
	fh, err := xopen.Ropen(file)
	if err != nil {
		return nil, errors.Wrapf(err, "read config file: %s", file)
	}
	defer fh.Close()

	data, err := io.ReadAll(fh)
	if err != nil {
		return nil, errors.Wrapf(err, "read config file: %s", file)
	}

	cfg := defaultRenderConfig()
	if err = toml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config file: %s", file)
	}
	if cfg.LineWidth <= 0 {
		return nil, errors.Errorf("line-width should be positive: %d", cfg.LineWidth)
	}
	return cfg, nil
}

func (cfg *renderConfig) options() (*sam.RenderOptions, *sam.ParseOptions, error) {
	mode, err := sam.ParseMode(cfg.Mode)
	if err != nil {
		return nil, nil, err
	}

	refLengths := make(map[string]int, len(cfg.RefLengths))
	for k, v := range cfg.RefLengths {
		refLengths[k] = v
	}

	return &sam.RenderOptions{
			Mode:            mode,
			LineWidth:       cfg.LineWidth,
			RefLengths:      refLengths,
			ShowDiagnostics: cfg.ShowDiagnostics,
		},
		&sam.ParseOptions{PairedSuffixes: cfg.PairedSuffixes},
		nil
}

// getRenderOptions reads the config file given by -C/--config and
// overrides values with flags explicitly set.
func getRenderOptions(cmd *cobra.Command) (*sam.RenderOptions, *sam.ParseOptions) {
	cfg := defaultRenderConfig()
	var err error
	if file := getFlagString(cmd, "config"); file != "" {
		cfg, err = loadConfig(file)
		checkError(err)
	}

	flags := cmd.Flags()
	set := func(flag string) bool {
		return flags.Lookup(flag) != nil && flags.Changed(flag)
	}
	if set("mode") {
		cfg.Mode = getFlagString(cmd, "mode")
	}
	if set("line-width") {
		cfg.LineWidth = getFlagPositiveInt(cmd, "line-width")
	}
	if set("paired-suffixes") {
		cfg.PairedSuffixes = getFlagStringSlice(cmd, "paired-suffixes")
	}
	if set("show-diagnostics") {
		cfg.ShowDiagnostics = getFlagBool(cmd, "show-diagnostics")
	}

	ropt, popt, err := cfg.options()
	checkError(err)

	if flags.Lookup("kv-file-ref-len") != nil {
		if file := getFlagString(cmd, "kv-file-ref-len"); file != "" {
			m, err := readRefLengths(file)
			checkError(errors.Wrapf(err, "read reference lengths"))
			for k, v := range m {
				ropt.RefLengths[k] = v
			}
		}
	}

	return ropt, popt
}

// addRenderFlags adds flags shared by commands rendering alignments.
func addRenderFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("mode", "m", sam.DefaultRenderOptions.Mode.String(),
		formatFlagUsage(`Alignment mode: blastn, blastp, or blastx.`))

	cmd.Flags().StringSliceP("paired-suffixes", "p", []string{},
		formatFlagUsage(`Suffixes of paired reads to remove from read names, e.g., "/1,/2".`))

	cmd.Flags().StringP("config", "C", "",
		formatFlagUsage(`Config file in TOML format, values are overridden by flags explicitly given.`))

	cmd.Flags().BoolP("show-diagnostics", "D", false,
		formatFlagUsage(`Report inconsistencies found in reconstructing alignments, e.g., MD tags not matching the CIGAR, `+
			`and rendered coordinates not matching those from tags or the CIGAR.`))
}
