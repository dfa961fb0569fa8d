// Package retention deletes synthesized outputs once they age out.
package retention

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrInvalidSettings is returned when the max age or interval is not positive.
var ErrInvalidSettings = errors.New("retention: max age and interval must be positive")

// Pruner removes stored outputs last modified before a cutoff.
type Pruner interface {
	Prune(ctx context.Context, before time.Time) ([]string, error)
}

// Janitor periodically prunes outputs older than MaxAge.
type Janitor struct {
	pruner   Pruner
	maxAge   time.Duration
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Janitor.
type Option func(*Janitor)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(j *Janitor) {
		j.now = now
	}
}

// NewJanitor creates a Janitor.
func NewJanitor(p Pruner, maxAge, interval time.Duration, logger *slog.Logger, opts ...Option) (*Janitor, error) {
	if maxAge <= 0 || interval <= 0 {
		return nil, ErrInvalidSettings
	}
	j := &Janitor{
		pruner:   p,
		maxAge:   maxAge,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

// Sweep runs a single prune pass and returns the removed file names.
func (j *Janitor) Sweep(ctx context.Context) ([]string, error) {
	cutoff := j.now().Add(-j.maxAge)
	removed, err := j.pruner.Prune(ctx, cutoff)
	if len(removed) > 0 {
		j.logger.Info("pruned expired outputs",
			slog.Int("count", len(removed)),
			slog.Time("cutoff", cutoff),
		)
	}
	return removed, err
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		if _, err := j.Sweep(ctx); err != nil && ctx.Err() == nil {
			j.logger.Warn("output pruning failed",
				slog.String("error", err.Error()),
			)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
