// Package audio provides decoding, concatenation and encoding of PCM clips.
package audio

import (
	"context"
	"errors"
	"fmt"
	"time"

	goaudio "github.com/go-audio/audio"
)

// Static errors for audio operations.
var (
	// ErrInvalidWAV is returned when a file is not a readable PCM WAV file.
	ErrInvalidWAV = errors.New("not a valid PCM WAV file")
	// ErrFormatMismatch is returned when a clip does not share the track's format.
	ErrFormatMismatch = errors.New("clip format does not match track format")
	// ErrEmptyClip is returned when a clip carries no sample frames.
	ErrEmptyClip = errors.New("clip has no audio frames")
	// ErrEmptyTrack is returned when encoding a track with nothing appended.
	ErrEmptyTrack = errors.New("track has no audio frames")
)

// Format describes the PCM layout shared by all clips of a track.
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// String renders the format as "rate Hz/channels ch/bits bit".
func (f Format) String() string {
	return fmt.Sprintf("%d Hz/%d ch/%d bit", f.SampleRate, f.Channels, f.BitDepth)
}

// FramesFor returns the number of sample frames needed to cover d,
// rounded up so that the frames never fall short of d.
func (f Format) FramesFor(d time.Duration) int {
	if d <= 0 || f.SampleRate <= 0 {
		return 0
	}
	num := int64(d) * int64(f.SampleRate)
	frames := num / int64(time.Second)
	if num%int64(time.Second) != 0 {
		frames++
	}
	return int(frames)
}

// DurationOf returns the playback length of n frames.
func (f Format) DurationOf(frames int) time.Duration {
	if f.SampleRate <= 0 {
		return 0
	}
	return time.Duration(int64(frames) * int64(time.Second) / int64(f.SampleRate))
}

// Clip is a decoded source file.
type Clip struct {
	// Path is the file the clip was decoded from.
	Path string
	// Format is the PCM layout of the clip.
	Format Format
	// Samples holds interleaved samples at Format.BitDepth.
	Samples []int
}

// Frames returns the number of sample frames in the clip.
func (c *Clip) Frames() int {
	if c.Format.Channels <= 0 {
		return 0
	}
	return len(c.Samples) / c.Format.Channels
}

// Duration returns the playback length of the clip.
func (c *Clip) Duration() time.Duration {
	return c.Format.DurationOf(c.Frames())
}

func (c *Clip) intBuffer() *goaudio.IntBuffer {
	return &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: c.Format.Channels,
			SampleRate:  c.Format.SampleRate,
		},
		Data:           c.Samples,
		SourceBitDepth: c.Format.BitDepth,
	}
}

// Decoder defines the interface for loading source clips.
type Decoder interface {
	// Decode reads the file at path into memory.
	// The file is re-read on every call; nothing is cached.
	Decode(ctx context.Context, path string) (*Clip, error)
}
