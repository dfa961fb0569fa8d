// Package synth provides the Synthesizer use case: it draws random clips from
// a library bucket, concatenates them up to a target duration and stores the
// result as a new WAV file.
//
// The final clip is truncated so that the output length equals the target,
// rounded up to a whole sample frame.
package synth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/maauso/clipsynth-api/internal/audio"
	"github.com/maauso/clipsynth-api/internal/library"
	"github.com/maauso/clipsynth-api/internal/storage"
	"github.com/maauso/clipsynth-api/internal/synth/name"
)

// Static errors for synthesis.
var (
	// ErrEmptyBucket is returned when the resolved bucket has no clips.
	ErrEmptyBucket = errors.New("no audio files available for the requested bucket")
	// ErrDecodeClip is returned when a drawn clip cannot be decoded or appended.
	ErrDecodeClip = errors.New("decode clip")
	// ErrWriteOutput is returned when the output file cannot be written.
	ErrWriteOutput = errors.New("write output")
)

// Default bounds for a target drawn when the request leaves it unset.
const (
	DefaultMinTarget = 3 * time.Second
	DefaultMaxTarget = 8 * time.Second
)

// Request describes one synthesis call.
type Request struct {
	// Duration is the target length. Zero or negative draws one uniformly
	// from the synthesizer's default range.
	Duration time.Duration
	// Bucket selects the clip bucket. Unknown or empty names use the default.
	Bucket string
}

// Result describes a written output file.
type Result struct {
	// Name is the output file name inside the output directory.
	Name string
	// Path is the local path of the output file.
	Path string
	// Bucket is the bucket the clips were drawn from ("" when unbucketed).
	Bucket string
	// Target is the duration that was aimed for.
	Target time.Duration
	// Duration is the length of the written audio.
	Duration time.Duration
	// Clips lists the source clip paths in playback order.
	Clips []string
	// MirrorURL is the S3 URL of the output when mirroring is configured.
	MirrorURL string
}

// Synthesizer concatenates random clips into new output files.
// It is safe for concurrent use when its Rand is.
type Synthesizer struct {
	lib       *library.Library
	decoder   audio.Decoder
	store     storage.Storage
	logger    *slog.Logger
	rng       Rand
	minTarget time.Duration
	maxTarget time.Duration
	newName   func() string
}

// Option is a function that configures a Synthesizer.
type Option func(*Synthesizer)

// WithRand sets the random source. Tests use it for deterministic draws.
func WithRand(r Rand) Option {
	return func(s *Synthesizer) {
		if r != nil {
			s.rng = r
		}
	}
}

// WithDefaultRange sets the interval a missing target is drawn from.
// Ranges with min <= 0 or max < min are ignored.
func WithDefaultRange(min, max time.Duration) Option {
	return func(s *Synthesizer) {
		if min > 0 && max >= min {
			s.minTarget = min
			s.maxTarget = max
		}
	}
}

// WithNameFunc overrides output file naming.
func WithNameFunc(fn func() string) Option {
	return func(s *Synthesizer) {
		if fn != nil {
			s.newName = fn
		}
	}
}

// New creates a Synthesizer over an already loaded library.
func New(lib *library.Library, decoder audio.Decoder, store storage.Storage, logger *slog.Logger, opts ...Option) *Synthesizer {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Synthesizer{
		lib:       lib,
		decoder:   decoder,
		store:     store,
		logger:    logger,
		rng:       globalRand{},
		minTarget: DefaultMinTarget,
		maxTarget: DefaultMaxTarget,
		newName:   name.Generate,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize builds one output file for req.
func (s *Synthesizer) Synthesize(ctx context.Context, req Request) (*Result, error) {
	bucket, candidates := s.lib.Clips(req.Bucket)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrEmptyBucket, bucket)
	}

	target := req.Duration
	if target <= 0 {
		target = s.drawTarget()
	}

	// Shuffled for variety only; every draw below picks from the full set.
	s.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	s.logger.Debug("synthesis started",
		slog.String("bucket", bucket),
		slog.Duration("target", target),
		slog.Int("candidates", len(candidates)),
	)

	track, used, err := s.accumulate(ctx, candidates, target)
	if err != nil {
		return nil, err
	}

	outName := s.newName()
	path, err := s.store.Save(ctx, outName, track.Encode)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}

	res := &Result{
		Name:     outName,
		Path:     path,
		Bucket:   bucket,
		Target:   target,
		Duration: track.Duration(),
		Clips:    used,
	}
	res.MirrorURL = s.mirror(ctx, outName)

	s.logger.Info("synthesis completed",
		slog.String("file", outName),
		slog.String("bucket", bucket),
		slog.Duration("target", target),
		slog.Duration("duration", res.Duration),
		slog.Int("clips", len(used)),
		slog.String("format", track.Format().String()),
	)

	return res, nil
}

// accumulate draws clips with replacement until the track reaches target.
func (s *Synthesizer) accumulate(ctx context.Context, candidates []string, target time.Duration) (*audio.Track, []string, error) {
	track := audio.NewTrack()
	var (
		used         []string
		targetFrames int
	)

	for track.Clips() == 0 || track.Frames() < targetFrames {
		select {
		case <-ctx.Done():
			return nil, nil, fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		path := candidates[s.rng.IntN(len(candidates))]
		clip, err := s.decoder.Decode(ctx, path)
		if err != nil {
			return nil, nil, fmt.Errorf("%w %s: %w", ErrDecodeClip, path, err)
		}

		if track.Clips() == 0 {
			targetFrames = clip.Format.FramesFor(target)
		}
		if _, err := track.Append(clip, targetFrames-track.Frames()); err != nil {
			return nil, nil, fmt.Errorf("%w %s: %w", ErrDecodeClip, path, err)
		}
		used = append(used, path)

		s.logger.Debug("clip appended",
			slog.String("clip", path),
			slog.Duration("accumulated", track.Duration()),
		)
	}

	return track, used, nil
}

// drawTarget picks a duration uniformly from [minTarget, maxTarget).
func (s *Synthesizer) drawTarget() time.Duration {
	span := float64(s.maxTarget - s.minTarget)
	return s.minTarget + time.Duration(s.rng.Float64()*span)
}

// mirror uploads the named output to S3 when the store supports it.
// Failures are logged; the local file stays authoritative.
func (s *Synthesizer) mirror(ctx context.Context, outName string) string {
	obj, err := s.store.Open(ctx, outName)
	if err != nil {
		s.logger.Warn("failed to reopen output for mirroring",
			slog.String("file", outName),
			slog.String("error", err.Error()),
		)
		return ""
	}
	defer func() { _ = obj.Close() }()

	url, err := s.store.UploadToS3(ctx, outName, obj)
	if err != nil {
		if !errors.Is(err, storage.ErrS3NotConfigured) {
			s.logger.Warn("failed to mirror output to S3",
				slog.String("file", outName),
				slog.String("error", err.Error()),
			)
		}
		return ""
	}
	return url
}
