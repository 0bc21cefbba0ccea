// SPDX-License-Identifier: EPL-2.0

package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ik5/audloop"
)

var errUsage = errors.New("usage")

const helpText = `commands:
  time            print the position being heard
  start [MS]      start playing, from MS or where the last stop left off
  stop            stop playing and remember the position
  loop on|off     loop inside the current section, or play through
  mark MS         add a marker
  unmark MS       remove a marker
  markers         list markers
  sections        list sections as frame ranges
  export DIR      write each section to DIR as WAV
  quit            stop and exit`

type command struct {
	name string
	ms   int
	// ok is false when an optional position was left out
	ok  bool
	arg string
}

func parseCommand(line string) (command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return command{}, nil
	}

	cmd := command{name: strings.ToLower(fields[0])}
	args := fields[1:]

	switch cmd.name {
	case "time", "stop", "markers", "sections", "help", "quit", "exit":
		if len(args) != 0 {
			return command{}, fmt.Errorf("%s takes no arguments: %w", cmd.name, errUsage)
		}
	case "start":
		if len(args) > 1 {
			return command{}, fmt.Errorf("start [MS]: %w", errUsage)
		}
		if len(args) == 1 {
			ms, err := strconv.Atoi(args[0])
			if err != nil {
				return command{}, fmt.Errorf("start position %q: %w", args[0], errUsage)
			}
			cmd.ms, cmd.ok = ms, true
		}
	case "mark", "unmark":
		if len(args) != 1 {
			return command{}, fmt.Errorf("%s MS: %w", cmd.name, errUsage)
		}
		ms, err := strconv.Atoi(args[0])
		if err != nil {
			return command{}, fmt.Errorf("marker position %q: %w", args[0], errUsage)
		}
		cmd.ms, cmd.ok = ms, true
	case "loop":
		if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
			return command{}, fmt.Errorf("loop on|off: %w", errUsage)
		}
		cmd.arg = args[0]
	case "export":
		if len(args) != 1 {
			return command{}, fmt.Errorf("export DIR: %w", errUsage)
		}
		cmd.arg = args[0]
	default:
		return command{}, fmt.Errorf("unknown command %q (try help): %w", cmd.name, errUsage)
	}

	return cmd, nil
}

// session executes commands against a player and reports to out.
type session struct {
	p   *audloop.Player
	out io.Writer
}

// exec runs cmd and reports whether the session should end.
func (s *session) exec(cmd command) (bool, error) {
	switch cmd.name {
	case "":
	case "help":
		fmt.Fprintln(s.out, helpText)
	case "time":
		if pos, ok := s.p.CurrentPosition(); ok {
			fmt.Fprintf(s.out, "time: %.3f s\n", float64(pos)/1000)
		} else {
			fmt.Fprintln(s.out, "time: unknown")
		}
	case "start":
		var err error
		if cmd.ok {
			err = s.p.Start(cmd.ms, s.p.Looping())
		} else {
			err = s.p.Resume()
		}
		if err != nil {
			return false, err
		}
	case "stop":
		pos, err := s.p.Stop()
		if err != nil {
			return false, err
		}
		fmt.Fprintf(s.out, "stopped at %.3f s\n", float64(pos)/1000)
	case "loop":
		if cmd.arg == "on" {
			s.p.LoopOn()
		} else {
			s.p.LoopOff()
		}
	case "mark":
		return false, s.p.SetMarker(cmd.ms)
	case "unmark":
		return false, s.p.UnsetMarker(cmd.ms)
	case "markers":
		fmt.Fprintln(s.out, "markers:", s.p.Markers().Positions())
	case "sections":
		for i, sec := range s.p.Sections() {
			fmt.Fprintf(s.out, "%2d: %d-%d\n", i+1, sec.Left, sec.Right)
		}
	case "export":
		paths, err := s.p.ExportSections(cmd.arg)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(s.out, "wrote %d files\n", len(paths))
	case "quit", "exit":
		return true, s.p.Close()
	}

	return false, nil
}
