// SPDX-License-Identifier: EPL-2.0

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/spf13/cobra"

	"github.com/ik5/audloop"
)

type ExportParams struct {
	File     string `pos:"true" required:"true" help:"Audio file to split."`
	Marker   []int  `short:"m" optional:"true" help:"Marker position in milliseconds (can be repeated)."`
	Out      string `short:"o" optional:"true" help:"Directory for the section files." default:"."`
	Mono     bool   `optional:"true" help:"Downmix to mono before exporting."`
	LogLevel string `optional:"true" help:"Log level (debug, info, warn, error)." default:"info"`
}

func exportCmd() *cobra.Command {
	return boa.CmdT[ExportParams]{
		Use:         "export",
		Short:       "Write every marked section to its own WAV file",
		Long:        "Split FILE at the given markers and write section-01.wav, section-02.wav, ... into the output directory.",
		ParamEnrich: paramEnricher(),
		RunFunc: func(params *ExportParams, cmd *cobra.Command, args []string) {
			os.Exit(runExport(params, os.Stdout, os.Stderr))
		},
	}.ToCobra()
}

func runExport(params *ExportParams, stdout, stderr io.Writer) int {
	logger, err := newLogger(params.LogLevel, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "audloop: %v\n", err)
		return 2
	}

	buf, set, err := loadClip(params.File, params.Mono, params.Marker)
	if err != nil {
		logger.Error("loading clip failed", "file", params.File, "error", err)
		return 1
	}

	paths, err := audloop.ExportSections(buf, set, params.Out)
	if err != nil {
		logger.Error("export failed", "dir", params.Out, "error", err)
		return 1
	}

	for _, p := range paths {
		fmt.Fprintln(stdout, p)
	}

	return 0
}
