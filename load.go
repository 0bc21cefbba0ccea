// SPDX-License-Identifier: EPL-2.0

package audloop

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ik5/audloop/audio"
	"github.com/ik5/audloop/formats/aiff"
	"github.com/ik5/audloop/formats/mp3"
	"github.com/ik5/audloop/formats/vorbis"
	"github.com/ik5/audloop/formats/wav"
)

// NewRegistry returns a registry with every bundled decoder, keyed by file
// extension.
func NewRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{})
	reg.Register("mp3", mp3.Decoder{})
	reg.Register("ogg", vorbis.Decoder{})
	reg.Register("aiff", aiff.Decoder{})
	reg.Register("aif", aiff.Decoder{})

	return reg
}

// LoadFile decodes path into memory, picking the decoder by extension.
func LoadFile(path string, opts audio.LoadOptions) (*audio.Buffer, error) {
	return LoadFileWith(NewRegistry(), path, opts)
}

// LoadFileWith is LoadFile with a caller supplied registry.
func LoadFileWith(reg *audio.Registry, path string, opts audio.LoadOptions) (*audio.Buffer, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	dec, ok := reg.Get(ext)
	if !ok {
		return nil, fmt.Errorf("%q (known: %s): %w", ext, strings.Join(reg.Formats(), ", "), ErrUnsupportedFormat)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening audio file: %w", err)
	}
	defer f.Close()

	src, err := dec.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}

	buf, err := audio.Load(src, opts)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", filepath.Base(path), err)
	}

	return buf, nil
}
