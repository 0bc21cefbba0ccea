// SPDX-License-Identifier: EPL-2.0

package audloop

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ik5/audloop/audio"
	"github.com/ik5/audloop/formats/wav"
	"github.com/ik5/audloop/marker"
)

// SectionFileName is the name ExportSections gives the n-th section,
// counting from 1.
func SectionFileName(n int) string {
	return fmt.Sprintf("section-%02d.wav", n)
}

// ExportSections writes each section of buf, as delimited by markers, to its
// own 16-bit WAV file in dir and returns the paths written. dir is created
// when missing.
func ExportSections(buf *audio.Buffer, markers *marker.Set, dir string) ([]string, error) {
	if markers == nil {
		markers = marker.NewSet(buf)
	}

	sections := markers.Sections()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating export directory: %w", err)
	}

	paths := make([]string, 0, len(sections))
	for i, sec := range sections {
		path := filepath.Join(dir, SectionFileName(i+1))
		if err := writeSection(path, buf, sec); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}

	return paths, nil
}

func writeSection(path string, buf *audio.Buffer, sec marker.Section) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	rate := int(buf.SampleRate() + 0.5)
	if err := wav.Encode(f, rate, buf.Channels(), buf.Slice(sec.Left, sec.Right)); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}

	return nil
}
