// Package sample reads and writes the individual AIFF sample files that go
// in and out of an archive. The archive only ever stores mono 8-bit PCM, so
// frame data travels as raw signed bytes.
package sample

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/aiff"
	"github.com/go-audio/audio"
)

const (
	// DefaultFrameRate is the rate the hardware plays samples back at.
	DefaultFrameRate = 22050

	Extension = ".aiff"
)

// ErrNotAIFF reports a file the AIFF decoder does not recognize.
var ErrNotAIFF = errors.New("not an AIFF file")

// Sample is one decoded sample file.
type Sample struct {
	SampleWidth int // bytes per frame per channel
	Channels    int
	FrameRate   int
	FrameCount  int
	Frames      []byte // raw signed PCM, populated only for 8-bit mono
}

// Decode reads an AIFF file. Files the decoder does not recognize return an
// error wrapping ErrNotAIFF. Files with an unexpected width or channel count
// decode successfully but carry no frame data, so callers can report why
// they were rejected.
func Decode(path string) (*Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d := aiff.NewDecoder(f)
	d.ReadInfo()
	if err := d.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotAIFF, err)
	}

	s := &Sample{
		SampleWidth: int(d.BitDepth) / 8,
		Channels:    int(d.NumChans),
		FrameRate:   d.SampleRate,
		FrameCount:  int(d.NumSampleFrames),
	}
	if s.SampleWidth != 1 || s.Channels != 1 {
		return s, nil
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotAIFF, err)
	}

	s.Frames = make([]byte, len(buf.Data))
	for i, v := range buf.Data {
		s.Frames[i] = byte(v)
	}
	s.FrameCount = len(s.Frames)
	return s, nil
}

// Encode writes frames out as a mono 8-bit AIFF file at the given rate.
func Encode(path string, frameRate int, frames []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	e := aiff.NewEncoder(f, frameRate, 8, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: frameRate},
		SourceBitDepth: 8,
		Data:           make([]int, len(frames)),
	}
	for i, b := range frames {
		buf.Data[i] = int(int8(b))
	}

	if err := e.Write(buf); err != nil {
		f.Close()
		return err
	}
	if err := e.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
