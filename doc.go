// SPDX-License-Identifier: EPL-2.0

// Package audloop plays a decoded clip through a live output stream, loops
// inside marker-delimited sections and reports the position being heard.
//
// The building blocks live in sub-packages:
//
//   - audio: Source/Decoder/Registry, the in-memory Buffer and Load
//   - marker: the marker set and the sections it delimits
//   - playback: the engine that fills device buffers and estimates position
//   - device: output stream backends (oto, beep)
//   - formats/...: wav, mp3, ogg vorbis and aiff decoders
//
// This package wires them into a Player, the session a host drives:
//
//	buf, err := audloop.LoadFile("song.ogg", audio.LoadOptions{})
//	p := audloop.NewPlayer(buf, device.Oto{})
//	_ = p.SetMarker(30000)
//	_ = p.Start(31000, true) // loop the section starting at 30 s
//	...
//	pos, err := p.Stop()     // a later Resume continues from pos
//
// Player is safe for concurrent use. Each Start opens a fresh playback
// engine; the player remembers where the previous one stopped.
package audloop
