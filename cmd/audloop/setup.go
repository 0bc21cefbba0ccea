// SPDX-License-Identifier: EPL-2.0

package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/ik5/audloop"
	"github.com/ik5/audloop/audio"
	"github.com/ik5/audloop/device"
	"github.com/ik5/audloop/marker"
)

func newLogger(level string, w io.Writer) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

func newOpener(backend string, latencyMs int) (device.Opener, error) {
	latency := time.Duration(latencyMs) * time.Millisecond

	var opener device.Opener
	switch strings.ToLower(backend) {
	case "oto":
		opener = device.Oto{Latency: latency}
	case "beep":
		opener = device.Beep{Latency: latency}
	default:
		return nil, fmt.Errorf("unknown backend %q (want oto or beep)", backend)
	}
	// fail before the clip is decoded
	if !device.Available {
		return nil, fmt.Errorf("%s backend: %w", backend, device.ErrUnavailable)
	}

	return opener, nil
}

// loadClip decodes path and applies the initial markers.
func loadClip(path string, mono bool, markers []int) (*audio.Buffer, *marker.Set, error) {
	buf, err := audloop.LoadFile(path, audio.LoadOptions{Mono: mono})
	if err != nil {
		return nil, nil, err
	}

	set := marker.NewSet(buf)
	for _, ms := range markers {
		if err := set.Set(ms); err != nil {
			return nil, nil, fmt.Errorf("marker %d: %w", ms, err)
		}
	}

	return buf, set, nil
}
