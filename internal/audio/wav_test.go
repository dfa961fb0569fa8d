package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFormat = Format{SampleRate: 8000, Channels: 1, BitDepth: 16}

// toneClip builds an in-memory clip of d with a repeating ramp pattern.
func toneClip(f Format, d time.Duration) *Clip {
	frames := f.FramesFor(d)
	samples := make([]int, frames*f.Channels)
	for i := range samples {
		samples[i] = (i%200 - 100) * 50
	}
	return &Clip{Path: "tone", Format: f, Samples: samples}
}

// writeWAV encodes clip to a WAV file under dir and returns its path.
func writeWAV(t *testing.T, dir, name string, clip *Clip) string {
	t.Helper()
	track := NewTrack()
	_, err := track.Append(clip, 0)
	require.NoError(t, err)

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	require.NoError(t, track.Encode(f))
	return path
}

func TestFormat_FramesFor(t *testing.T) {
	tests := []struct {
		name     string
		format   Format
		duration time.Duration
		expected int
	}{
		{"exact second", testFormat, time.Second, 8000},
		{"half second", testFormat, 500 * time.Millisecond, 4000},
		{"rounds up partial frame", Format{SampleRate: 3}, 500 * time.Millisecond, 2},
		{"zero duration", testFormat, 0, 0},
		{"negative duration", testFormat, -time.Second, 0},
		{"zero sample rate", Format{}, time.Second, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.format.FramesFor(tt.duration))
		})
	}
}

func TestFormat_DurationOf(t *testing.T) {
	assert.Equal(t, 500*time.Millisecond, testFormat.DurationOf(4000))
	assert.Equal(t, time.Duration(0), Format{}.DurationOf(4000))
}

func TestWAVDecoder_Decode(t *testing.T) {
	dir := t.TempDir()
	stereo := Format{SampleRate: 16000, Channels: 2, BitDepth: 16}
	path := writeWAV(t, dir, "clip_min.WAV", toneClip(stereo, 250*time.Millisecond))

	clip, err := NewWAVDecoder().Decode(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, path, clip.Path)
	assert.Equal(t, stereo, clip.Format)
	assert.Equal(t, 4000, clip.Frames())
	assert.Equal(t, 250*time.Millisecond, clip.Duration())
}

func TestWAVDecoder_Decode_Errors(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	t.Run("missing file", func(t *testing.T) {
		_, err := NewWAVDecoder().Decode(ctx, filepath.Join(dir, "missing.WAV"))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("not a wav file", func(t *testing.T) {
		path := filepath.Join(dir, "garbage.WAV")
		require.NoError(t, os.WriteFile(path, []byte("definitely not RIFF data"), 0o600))

		_, err := NewWAVDecoder().Decode(ctx, path)
		assert.ErrorIs(t, err, ErrInvalidWAV)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := NewWAVDecoder().Decode(cctx, filepath.Join(dir, "any.WAV"))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

// writeExtensibleWAV writes a mono 16-bit WAVE_FORMAT_EXTENSIBLE file whose
// sub-format GUID starts with subFormat.
func writeExtensibleWAV(t *testing.T, dir, name string, subFormat uint16, samples []int16) string {
	t.Helper()
	guidTail := []byte{0x00, 0x00, 0x00, 0x00, 0x10, 0x00, 0x80, 0x00, 0x00, 0xAA, 0x00, 0x38, 0x9B, 0x71}

	var body bytes.Buffer
	le := func(v any) { require.NoError(t, binary.Write(&body, binary.LittleEndian, v)) }
	body.WriteString("WAVE")
	body.WriteString("fmt ")
	le(uint32(40))
	le(uint16(wavFormatExtensible))
	le(uint16(1))    // channels
	le(uint32(8000)) // sample rate
	le(uint32(16000))
	le(uint16(2))  // block align
	le(uint16(16)) // bits per sample
	le(uint16(22)) // extension size
	le(uint16(16)) // valid bits
	le(uint32(4))  // channel mask
	le(subFormat)
	body.Write(guidTail)
	body.WriteString("data")
	le(uint32(len(samples) * 2))
	le(samples)

	var file bytes.Buffer
	file.WriteString("RIFF")
	require.NoError(t, binary.Write(&file, binary.LittleEndian, uint32(body.Len())))
	file.Write(body.Bytes())

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, file.Bytes(), 0o600))
	return path
}

func TestWAVDecoder_Decode_Extensible(t *testing.T) {
	dir := t.TempDir()
	samples := make([]int16, 800)
	for i := range samples {
		samples[i] = int16(i - 400)
	}

	t.Run("accepts PCM sub-format", func(t *testing.T) {
		path := writeExtensibleWAV(t, dir, "daw_pcm.WAV", wavFormatPCM, samples)

		clip, err := NewWAVDecoder().Decode(context.Background(), path)
		require.NoError(t, err)

		assert.Equal(t, testFormat, clip.Format)
		assert.Equal(t, 800, clip.Frames())
		assert.Equal(t, 100*time.Millisecond, clip.Duration())
		assert.Equal(t, -400, clip.Samples[0])
	})

	t.Run("rejects float sub-format", func(t *testing.T) {
		path := writeExtensibleWAV(t, dir, "daw_float.WAV", 3, samples)

		_, err := NewWAVDecoder().Decode(context.Background(), path)
		assert.ErrorIs(t, err, ErrInvalidWAV)
	})
}

func TestTrack_Append(t *testing.T) {
	t.Run("first clip fixes the format", func(t *testing.T) {
		track := NewTrack()
		n, err := track.Append(toneClip(testFormat, 500*time.Millisecond), 0)
		require.NoError(t, err)

		assert.Equal(t, 4000, n)
		assert.Equal(t, testFormat, track.Format())
		assert.Equal(t, 1, track.Clips())
		assert.Equal(t, 500*time.Millisecond, track.Duration())
	})

	t.Run("truncates to max frames", func(t *testing.T) {
		track := NewTrack()
		_, err := track.Append(toneClip(testFormat, 500*time.Millisecond), 0)
		require.NoError(t, err)

		n, err := track.Append(toneClip(testFormat, 500*time.Millisecond), 800)
		require.NoError(t, err)

		assert.Equal(t, 800, n)
		assert.Equal(t, 4800, track.Frames())
		assert.Equal(t, 600*time.Millisecond, track.Duration())
	})

	t.Run("rejects mismatched format", func(t *testing.T) {
		track := NewTrack()
		_, err := track.Append(toneClip(testFormat, 100*time.Millisecond), 0)
		require.NoError(t, err)

		other := Format{SampleRate: 44100, Channels: 1, BitDepth: 16}
		_, err = track.Append(toneClip(other, 100*time.Millisecond), 0)
		assert.ErrorIs(t, err, ErrFormatMismatch)
		assert.Equal(t, 1, track.Clips())
	})

	t.Run("rejects empty clip", func(t *testing.T) {
		_, err := NewTrack().Append(&Clip{Format: testFormat}, 0)
		assert.ErrorIs(t, err, ErrEmptyClip)
	})
}

func TestTrack_Encode_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	track := NewTrack()
	for i := 0; i < 3; i++ {
		_, err := track.Append(toneClip(testFormat, 300*time.Millisecond), 0)
		require.NoError(t, err)
	}
	_, err := track.Append(toneClip(testFormat, 300*time.Millisecond), 800)
	require.NoError(t, err)

	path := filepath.Join(dir, "out.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, track.Encode(f))
	require.NoError(t, f.Close())

	format, duration, err := Probe(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, testFormat, format)
	assert.Equal(t, track.Duration(), duration)
	assert.Equal(t, time.Second, duration)
}

func TestTrack_Encode_Empty(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "empty.wav"))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.ErrorIs(t, NewTrack().Encode(f), ErrEmptyTrack)
}
