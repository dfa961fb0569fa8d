package library

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// touch creates empty files named names under dir.
func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), nil, 0o600))
	}
}

func TestLoad_ClassifiesByPriority(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir,
		"rain_long_01.WAV",
		"rain_medium_01.WAV",
		"rain_min_01.WAV",
		"long_but_also_min.WAV",
		"unclassified.WAV",
		"rain_min_02.wav",
		"notes_min.txt",
	)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested_min.WAV"), 0o750))

	lib, err := Load(dir, DefaultOptions())
	require.NoError(t, err)

	names := lib.Names()
	assert.ElementsMatch(t, []string{"rain_long_01.WAV", "long_but_also_min.WAV"}, names["long"])
	assert.Equal(t, []string{"rain_medium_01.WAV"}, names["medium"])
	assert.Equal(t, []string{"rain_min_01.WAV"}, names["min"])
	assert.Equal(t, 4, lib.Len())
	assert.Equal(t, dir, lib.Dir())
}

func TestLoad_FollowsSymlinks(t *testing.T) {
	shared := t.TempDir()
	touch(t, shared, "shared_min.WAV")
	require.NoError(t, os.Mkdir(filepath.Join(shared, "folder_min.WAV"), 0o750))

	dir := t.TempDir()
	touch(t, dir, "local_min.WAV")
	require.NoError(t, os.Symlink(filepath.Join(shared, "shared_min.WAV"), filepath.Join(dir, "linked_min.WAV")))
	require.NoError(t, os.Symlink(filepath.Join(shared, "folder_min.WAV"), filepath.Join(dir, "dirlink_min.WAV")))
	require.NoError(t, os.Symlink(filepath.Join(shared, "gone_min.WAV"), filepath.Join(dir, "dangling_min.WAV")))

	lib, err := Load(dir, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"linked_min.WAV", "local_min.WAV"}, lib.Names()["min"])
}

func TestLoad_FoldCase(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a_min.WAV", "b_min.wav", "c_min.Wav")

	opts := DefaultOptions()
	opts.FoldCase = true
	lib, err := Load(dir, opts)
	require.NoError(t, err)

	_, clips := lib.Clips("min")
	assert.Len(t, clips, 3)
}

func TestLoad_Unbucketed(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "one.WAV", "two.WAV", "three.mp3")

	lib, err := Load(dir, Options{Extension: ".WAV"})
	require.NoError(t, err)

	assert.False(t, lib.Bucketed())
	assert.Empty(t, lib.DefaultBucket())

	bucket, clips := lib.Clips("long")
	assert.Empty(t, bucket)
	assert.Equal(t, []string{filepath.Join(dir, "one.WAV"), filepath.Join(dir, "two.WAV")}, clips)
}

func TestLoad_EmptyDirectory(t *testing.T) {
	lib, err := Load(t.TempDir(), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 0, lib.Len())
	bucket, clips := lib.Clips("min")
	assert.Equal(t, "min", bucket)
	assert.Empty(t, clips)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent"), DefaultOptions())
		assert.ErrorIs(t, err, ErrSourceDir)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("no extension", func(t *testing.T) {
		_, err := Load(t.TempDir(), Options{})
		assert.ErrorIs(t, err, ErrNoExtension)
	})

	t.Run("unknown default bucket", func(t *testing.T) {
		opts := DefaultOptions()
		opts.DefaultBucket = "tiny"
		_, err := Load(t.TempDir(), opts)
		assert.ErrorIs(t, err, ErrUnknownDefaultBucket)
	})
}

func TestLibrary_Resolve(t *testing.T) {
	lib, err := Load(t.TempDir(), DefaultOptions())
	require.NoError(t, err)

	tests := []struct {
		requested string
		expected  string
	}{
		{"long", "long"},
		{"medium", "medium"},
		{"min", "min"},
		{"", "long"},
		{"huge", "long"},
		{"MIN", "long"},
	}

	for _, tt := range tests {
		t.Run(tt.requested, func(t *testing.T) {
			assert.Equal(t, tt.expected, lib.Resolve(tt.requested))
		})
	}
}

func TestLibrary_ClipsReturnsCopy(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "x_min.WAV")

	lib, err := Load(dir, DefaultOptions())
	require.NoError(t, err)

	_, clips := lib.Clips("min")
	clips[0] = "mutated"

	_, again := lib.Clips("min")
	assert.Equal(t, filepath.Join(dir, "x_min.WAV"), again[0])

	buckets := lib.Buckets()
	buckets[0] = "mutated"
	assert.Equal(t, []string{"long", "medium", "min"}, lib.Buckets())
}
