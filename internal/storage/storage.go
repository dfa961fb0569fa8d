// Package storage provides the output file store for synthesized audio.
// It defines the Storage interface (port) and implementations for local disk
// and local disk mirrored to S3.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// Static errors for storage operations.
var (
	// ErrNotFound is returned when a requested output file does not exist.
	ErrNotFound = errors.New("output file not found")
	// ErrInvalidName is returned for names that are not plain file names
	// inside the output directory.
	ErrInvalidName = errors.New("invalid output file name")
	// ErrAlreadyExists is returned when saving under a name that is taken.
	ErrAlreadyExists = errors.New("output file already exists")
)

// WriteFunc writes file content. The writer supports seeking so encoders
// can patch headers after the payload is written.
type WriteFunc func(w io.WriteSeeker) error

// Object is an opened output file.
// The caller is responsible for closing it.
type Object struct {
	io.ReadSeekCloser
	Name    string
	Size    int64
	ModTime time.Time
}

// Storage defines the interface for output file storage.
type Storage interface {
	// Save creates the file name by running write against a temporary file
	// and renaming it into place on success. No partial file is left behind
	// on failure and existing files are never overwritten.
	Save(ctx context.Context, name string, write WriteFunc) (path string, err error)

	// Open returns the named output file.
	// Returns ErrNotFound if it does not exist.
	Open(ctx context.Context, name string) (*Object, error)

	// Prune removes output files last modified before the cutoff and
	// returns the names removed. It continues past individual failures.
	Prune(ctx context.Context, before time.Time) ([]string, error)

	// UploadToS3 uploads data to S3 and returns the public URL.
	// Returns ErrS3NotConfigured if S3 is not configured.
	UploadToS3(ctx context.Context, key string, data io.Reader) (url string, err error)
}
