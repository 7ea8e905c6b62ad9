package domain

import "errors"

var (
	// ErrToolNotFound means no usable copy of a required tool was located.
	ErrToolNotFound = errors.New("tool not found")
	// ErrToolLaunchFailed means the tool process could not be started.
	ErrToolLaunchFailed = errors.New("tool launch failed")
	// ErrToolExitedNonZero means the tool ran but reported failure.
	ErrToolExitedNonZero = errors.New("tool exited with non-zero status")
	// ErrMalformedMetadata means extractor JSON could not be decoded.
	ErrMalformedMetadata = errors.New("malformed metadata")
	// ErrNoCaptionsAvailable means the source offers no usable caption track.
	ErrNoCaptionsAvailable = errors.New("no captions available")
	// ErrTranscriptFileMissing means the recognizer left no transcript behind.
	ErrTranscriptFileMissing = errors.New("transcript file missing")
)
