package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-audio/riff"
	"github.com/go-audio/wav"
)

const (
	// wavFormatPCM is the WAVE format tag for integer PCM.
	wavFormatPCM = 1
	// wavFormatExtensible defers the sample encoding to a sub-format GUID.
	wavFormatExtensible = 0xFFFE
	// subFormatOffset locates the first two GUID bytes inside an
	// extensible fmt chunk; they carry the plain format tag.
	subFormatOffset = 24
)

// Compile-time check that WAVDecoder implements Decoder.
var _ Decoder = (*WAVDecoder)(nil)

// WAVDecoder implements Decoder for PCM WAV files using go-audio/wav.
type WAVDecoder struct{}

// NewWAVDecoder creates a new WAVDecoder.
func NewWAVDecoder() *WAVDecoder {
	return &WAVDecoder{}
}

// Decode implements Decoder.Decode.
func (d *WAVDecoder) Decode(ctx context.Context, path string) (*Clip, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
	default:
	}

	f, err := os.Open(path) // #nosec G304 - path comes from the clip library listing
	if err != nil {
		return nil, fmt.Errorf("open clip: %w", err)
	}
	defer func() { _ = f.Close() }()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidWAV, path)
	}
	tag := dec.WavAudioFormat
	if tag != wavFormatPCM && tag != wavFormatExtensible {
		return nil, fmt.Errorf("%w: %s uses format tag %d", ErrInvalidWAV, path, tag)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("read PCM data of %s: %w", path, err)
	}

	if tag == wavFormatExtensible {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("rewind clip: %w", err)
		}
		sub, err := extensibleSubFormat(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidWAV, path, err)
		}
		if sub != wavFormatPCM {
			return nil, fmt.Errorf("%w: %s uses extensible sub-format %d", ErrInvalidWAV, path, sub)
		}
	}

	return &Clip{
		Path: path,
		Format: Format{
			SampleRate: int(dec.SampleRate),
			Channels:   int(dec.NumChans),
			BitDepth:   int(dec.BitDepth),
		},
		Samples: buf.Data,
	}, nil
}

// extensibleSubFormat returns the format tag embedded in the sub-format
// GUID of a WAVE_FORMAT_EXTENSIBLE fmt chunk.
func extensibleSubFormat(r io.Reader) (uint16, error) {
	p := riff.New(r)
	if err := p.ParseHeaders(); err != nil {
		return 0, err
	}
	for {
		ch, err := p.NextChunk()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return 0, errors.New("missing fmt chunk")
			}
			return 0, err
		}
		if ch.ID != riff.FmtID {
			ch.Drain()
			continue
		}
		if ch.Size < subFormatOffset+2 {
			return 0, fmt.Errorf("fmt chunk too short for extensible format: %d bytes", ch.Size)
		}
		hdr := make([]byte, subFormatOffset+2)
		if _, err := io.ReadFull(ch, hdr); err != nil {
			return 0, fmt.Errorf("read fmt chunk: %w", err)
		}
		return binary.LittleEndian.Uint16(hdr[subFormatOffset:]), nil
	}
}

// Probe decodes the WAV file at path and reports its format and duration.
func Probe(ctx context.Context, path string) (Format, time.Duration, error) {
	clip, err := NewWAVDecoder().Decode(ctx, path)
	if err != nil {
		return Format{}, 0, err
	}
	return clip.Format, clip.Duration(), nil
}

// Track accumulates clips of a single format into one sample stream.
// A Track is not safe for concurrent use.
type Track struct {
	format  Format
	samples []int
	clips   int
}

// NewTrack creates an empty Track. Its format is fixed by the first clip.
func NewTrack() *Track {
	return &Track{}
}

// Append adds up to maxFrames frames of c to the end of the track.
// A non-positive maxFrames appends the whole clip.
// It returns the number of frames appended.
func (t *Track) Append(c *Clip, maxFrames int) (int, error) {
	frames := c.Frames()
	if frames == 0 {
		return 0, fmt.Errorf("%w: %s", ErrEmptyClip, c.Path)
	}

	if t.clips == 0 {
		t.format = c.Format
	} else if c.Format != t.format {
		return 0, fmt.Errorf("%w: %s is %s, track is %s", ErrFormatMismatch, c.Path, c.Format, t.format)
	}

	if maxFrames > 0 && maxFrames < frames {
		frames = maxFrames
	}

	t.samples = append(t.samples, c.Samples[:frames*c.Format.Channels]...)
	t.clips++
	return frames, nil
}

// Format returns the track's PCM layout. It is zero until a clip is appended.
func (t *Track) Format() Format {
	return t.format
}

// Frames returns the number of sample frames in the track.
func (t *Track) Frames() int {
	if t.format.Channels <= 0 {
		return 0
	}
	return len(t.samples) / t.format.Channels
}

// Duration returns the playback length of the track.
func (t *Track) Duration() time.Duration {
	return t.format.DurationOf(t.Frames())
}

// Clips returns how many clips were appended.
func (t *Track) Clips() int {
	return t.clips
}

// Encode writes the track as a PCM WAV file.
// The writer must be seekable so the RIFF header sizes can be patched.
// The writer is not closed.
func (t *Track) Encode(w io.WriteSeeker) error {
	if t.clips == 0 {
		return ErrEmptyTrack
	}

	enc := wav.NewEncoder(w, t.format.SampleRate, t.format.BitDepth, t.format.Channels, wavFormatPCM)
	clip := &Clip{Format: t.format, Samples: t.samples}
	if err := enc.Write(clip.intBuffer()); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize wav: %w", err)
	}
	return nil
}
