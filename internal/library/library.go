// Package library builds the read-only clip library from a source directory.
// Clips are classified into buckets by filename fragment at load time; the
// resulting Library is never mutated and may be shared across goroutines.
package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Static errors for library loading.
var (
	// ErrSourceDir is returned when the source directory cannot be listed.
	ErrSourceDir = errors.New("library: source directory is not readable")
	// ErrNoExtension is returned when no clip extension is configured.
	ErrNoExtension = errors.New("library: clip extension is required")
	// ErrUnknownDefaultBucket is returned when the default bucket is not one of the buckets.
	ErrUnknownDefaultBucket = errors.New("library: default bucket is not a configured bucket")
)

// Options configures how a source directory is scanned.
type Options struct {
	// Extension is the clip file suffix, including the dot (e.g. ".WAV").
	Extension string
	// FoldCase matches Extension case-insensitively when true.
	FoldCase bool
	// Buckets lists filename fragments in priority order.
	// An empty list disables bucketing.
	Buckets []string
	// DefaultBucket is used when a request names no bucket or an unknown one.
	DefaultBucket string
}

// DefaultOptions returns the options matching the stock clip layout.
func DefaultOptions() Options {
	return Options{
		Extension:     ".WAV",
		Buckets:       []string{"long", "medium", "min"},
		DefaultBucket: "long",
	}
}

// Library maps bucket names to clip paths.
type Library struct {
	dir           string
	order         []string
	buckets       map[string][]string
	defaultBucket string
}

// Load scans dir non-recursively and classifies matching files.
// Files that match no bucket fragment are left out of the library.
// An empty directory yields an empty library, not an error.
func Load(dir string, opts Options) (*Library, error) {
	if opts.Extension == "" {
		return nil, ErrNoExtension
	}
	if len(opts.Buckets) > 0 && !slices.Contains(opts.Buckets, opts.DefaultBucket) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDefaultBucket, opts.DefaultBucket)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceDir, err)
	}

	lib := &Library{
		dir:           dir,
		order:         slices.Clone(opts.Buckets),
		buckets:       make(map[string][]string, len(opts.Buckets)),
		defaultBucket: opts.DefaultBucket,
	}
	if len(lib.order) == 0 {
		lib.defaultBucket = ""
	}
	for _, b := range lib.order {
		lib.buckets[b] = nil
	}

	for _, e := range entries {
		if !isClipFile(dir, e) {
			continue
		}
		name := e.Name()
		if !hasExtension(name, opts.Extension, opts.FoldCase) {
			continue
		}

		bucket, ok := classify(name, lib.order)
		if !ok {
			continue
		}
		lib.buckets[bucket] = append(lib.buckets[bucket], filepath.Join(dir, name))
	}

	return lib, nil
}

// isClipFile reports whether e is a regular file or a symlink to one.
func isClipFile(dir string, e os.DirEntry) bool {
	if e.Type().IsRegular() {
		return true
	}
	if e.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(dir, e.Name()))
	return err == nil && info.Mode().IsRegular()
}

// hasExtension reports whether name ends with ext.
func hasExtension(name, ext string, foldCase bool) bool {
	if len(name) < len(ext) {
		return false
	}
	suffix := name[len(name)-len(ext):]
	if foldCase {
		return strings.EqualFold(suffix, ext)
	}
	return suffix == ext
}

// classify returns the first bucket whose fragment appears in name.
// With no buckets every file lands in the unnamed bucket.
func classify(name string, order []string) (string, bool) {
	if len(order) == 0 {
		return "", true
	}
	for _, b := range order {
		if strings.Contains(name, b) {
			return b, true
		}
	}
	return "", false
}

// Dir returns the scanned source directory.
func (l *Library) Dir() string {
	return l.dir
}

// Bucketed reports whether clips are classified into named buckets.
func (l *Library) Bucketed() bool {
	return len(l.order) > 0
}

// Buckets returns the bucket names in priority order.
func (l *Library) Buckets() []string {
	return slices.Clone(l.order)
}

// DefaultBucket returns the fallback bucket name ("" when unbucketed).
func (l *Library) DefaultBucket() string {
	return l.defaultBucket
}

// Resolve maps a requested bucket to the bucket actually used.
// Unknown or empty names fall back to the default bucket.
func (l *Library) Resolve(bucket string) string {
	if !l.Bucketed() {
		return ""
	}
	if _, ok := l.buckets[bucket]; ok {
		return bucket
	}
	return l.defaultBucket
}

// Clips returns a copy of the clip paths in the resolved bucket
// together with the bucket name that was used.
func (l *Library) Clips(bucket string) (string, []string) {
	resolved := l.Resolve(bucket)
	return resolved, slices.Clone(l.buckets[resolved])
}

// Names returns the base file names per bucket.
func (l *Library) Names() map[string][]string {
	out := make(map[string][]string, len(l.buckets))
	for b, paths := range l.buckets {
		names := make([]string, 0, len(paths))
		for _, p := range paths {
			names = append(names, filepath.Base(p))
		}
		out[b] = names
	}
	return out
}

// Len returns the total number of clips across all buckets.
func (l *Library) Len() int {
	n := 0
	for _, paths := range l.buckets {
		n += len(paths)
	}
	return n
}
