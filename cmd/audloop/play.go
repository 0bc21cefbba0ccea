// SPDX-License-Identifier: EPL-2.0

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/spf13/cobra"

	"github.com/ik5/audloop"
	"github.com/ik5/audloop/device"
)

type PlayParams struct {
	File     string `pos:"true" required:"true" help:"Audio file to play (wav, mp3, ogg, aiff)."`
	Start    int    `short:"s" optional:"true" help:"Start position in milliseconds." default:"0"`
	Loop     bool   `short:"l" optional:"true" help:"Loop the section containing the start position."`
	Marker   []int  `short:"m" optional:"true" help:"Marker position in milliseconds (can be repeated)."`
	Mono     bool   `optional:"true" help:"Downmix to mono before playing."`
	Backend  string `short:"b" optional:"true" help:"Output backend (oto or beep)." default:"oto"`
	Latency  int    `optional:"true" help:"Output latency in milliseconds." default:"50"`
	LogLevel string `optional:"true" help:"Log level (debug, info, warn, error)." default:"info"`
}

func playCmd() *cobra.Command {
	return boa.CmdT[PlayParams]{
		Use:   "play",
		Short: "Play a clip and control it from the prompt",
		Long: "Play FILE and read commands from standard input: time, start, stop, " +
			"loop on|off, mark, unmark, markers, sections, export, quit. Type help for details.",
		ParamEnrich: paramEnricher(),
		RunFunc: func(params *PlayParams, cmd *cobra.Command, args []string) {
			opener, err := newOpener(params.Backend, params.Latency)
			if err != nil {
				fmt.Fprintf(os.Stderr, "audloop: %v\n", err)
				os.Exit(2)
			}
			os.Exit(runPlay(params, opener, os.Stdin, os.Stdout, os.Stderr))
		},
	}.ToCobra()
}

func runPlay(params *PlayParams, opener device.Opener, stdin io.Reader, stdout, stderr io.Writer) int {
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
	logger.Info("clip loaded", "file", params.File, "length_ms", buf.Length(),
		"channels", buf.Channels(), "rate", buf.SampleRate())

	p := audloop.NewPlayer(buf, opener, audloop.WithLogger(logger), audloop.WithMarkers(set))
	defer p.Close()

	if err := p.Start(params.Start, params.Loop); err != nil {
		logger.Error("starting playback failed", "error", err)
		return 1
	}

	s := &session{p: p, out: stdout}
	scanner := bufio.NewScanner(stdin)
	for {
		fmt.Fprint(stdout, "command > ")
		if !scanner.Scan() {
			break
		}

		cmd, err := parseCommand(scanner.Text())
		if err != nil {
			fmt.Fprintln(stdout, err)
			continue
		}

		quit, err := s.exec(cmd)
		if err != nil {
			fmt.Fprintln(stdout, "error:", err)
		}
		if quit {
			return 0
		}
	}

	if err := scanner.Err(); err != nil {
		logger.Error("reading commands failed", "error", err)
		return 1
	}
	fmt.Fprintln(stdout)

	return 0
}
