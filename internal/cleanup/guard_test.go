package cleanup

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGuardReleaseRemovesTrackedFiles deletes files created after tracking.
func TestGuardReleaseRemovesTrackedFiles(t *testing.T) {
	dir := t.TempDir()
	audio := filepath.Join(dir, "audio.mp3")
	transcript := filepath.Join(dir, "out.txt")

	guard := NewGuard(hclog.NewNullLogger())
	guard.Track(audio, transcript, "")
	require.NoError(t, os.WriteFile(audio, []byte("a"), 0o644))

	guard.Release()

	_, err := os.Stat(audio)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	_, err = os.Stat(transcript)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

// TestGuardReleaseRunsOnEarlyReturn cleans up when the caller fails midway.
func TestGuardReleaseRunsOnEarlyReturn(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "partial.wav")

	failing := func() error {
		guard := NewGuard(nil)
		defer guard.Release()
		guard.Track(path)
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			return err
		}
		return errors.New("recognizer failed")
	}

	require.Error(t, failing())
	_, err := os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

// TestGuardSwallowsRemoveErrors keeps going after a failed removal.
func TestGuardSwallowsRemoveErrors(t *testing.T) {
	var removed []string
	guard := NewGuardForTests(nil, func(path string) error {
		removed = append(removed, path)
		if path == "b" {
			return errors.New("permission denied")
		}
		return nil
	})
	guard.Track("a", "b", "c")

	guard.Release()
	guard.Release()

	assert.Equal(t, []string{"c", "b", "a"}, removed)
}
