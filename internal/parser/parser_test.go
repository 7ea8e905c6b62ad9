package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"media-grabber/internal/domain"
)

// TestParseProgressFields extracts every anchored field.
func TestParseProgressFields(t *testing.T) {
	event, ok := ParseProgress("[download]  45.2% of 10.00MiB at 1.20MiB/s ETA 00:05")
	assert.True(t, ok)
	assert.Equal(t, domain.ProgressEvent{
		Percent:    45.2,
		BytesDone:  "45.2%",
		BytesTotal: "10.00MiB",
		Rate:       "1.20MiB/s",
		ETA:        "00:05",
	}, event)
}

// TestParseProgressAnchorsInAnyOrder finds fields regardless of position.
func TestParseProgressAnchorsInAnyOrder(t *testing.T) {
	event, ok := ParseProgress("[download] ETA 00:09 at 2MiB/s 12.5% of ~ 40MiB")
	assert.True(t, ok)
	assert.Equal(t, 12.5, event.Percent)
	assert.Equal(t, "00:09", event.ETA)
	assert.Equal(t, "2MiB/s", event.Rate)
	assert.Equal(t, "40MiB", event.BytesTotal)
}

// TestParseProgressFirstAnchorWins ignores repeated anchor words later in the line.
func TestParseProgressFirstAnchorWins(t *testing.T) {
	event, ok := ParseProgress("[download]  30.0% of 9MiB at 1MiB/s ETA 00:06 of 99MiB at 5MiB/s ETA 01:00")
	assert.True(t, ok)
	assert.Equal(t, "9MiB", event.BytesTotal)
	assert.Equal(t, "1MiB/s", event.Rate)
	assert.Equal(t, "00:06", event.ETA)
}

// TestParseProgressMissingOptionalFields leaves absent fields empty.
func TestParseProgressMissingOptionalFields(t *testing.T) {
	event, ok := ParseProgress("[download] 100% of 3.10MiB")
	assert.True(t, ok)
	assert.Equal(t, 100.0, event.Percent)
	assert.Empty(t, event.Rate)
	assert.Empty(t, event.ETA)
}

// TestParseProgressRejectsMalformedPercent drops lines whose percent does not parse.
func TestParseProgressRejectsMalformedPercent(t *testing.T) {
	_, ok := ParseProgress("[download] abc% of 10MiB")
	assert.False(t, ok)

	_, ok = ParseProgress("[download] Destination: video.mp4")
	assert.False(t, ok)
}

// TestParseProgressClampsPercent keeps the value inside [0, 100].
func TestParseProgressClampsPercent(t *testing.T) {
	event, ok := ParseProgress("[download] 100.4% of 1MiB")
	assert.True(t, ok)
	assert.Equal(t, 100.0, event.Percent)
}

// TestClassifyStatusRules maps each known marker to its phase.
func TestClassifyStatusRules(t *testing.T) {
	c := NewClassifier(nil)
	cases := []struct {
		line  string
		kind  LineKind
		phase domain.Phase
	}{
		{"[generic] Extracting URL: https://example.com", LineStatus, domain.PhaseResolving},
		{"[youtube] abc: Downloading webpage", LineStatus, domain.PhaseConnecting},
		{"[youtube] abc: Downloading API JSON", LineStatus, domain.PhaseFetchingMetadata},
		{"[TikTok] 1: Downloading video information", LineStatus, domain.PhaseFetchingMetadata},
		{"[youtube] abc: Downloading m3u8 information", LineStatus, domain.PhaseProcessingStreams},
		{"[dash] Downloading manifest", LineStatus, domain.PhaseProcessingStreams},
		{`[Merger] Merging formats into "a.mp4"`, LineSuppressed, domain.PhaseMerging},
		{"[download] Destination: /d/a.mp4", LineStatus, domain.PhaseStarting},
		{"[download] /d/a.mp4 has already been downloaded", LineCompleted, domain.PhaseComplete},
		{"[info] Writing video subtitles", LineIgnored, ""},
		{"Deleting original file a.webm", LineIgnored, ""},
	}
	for _, tc := range cases {
		got := c.Classify(tc.line)
		assert.Equal(t, tc.kind, got.Kind, tc.line)
		assert.Equal(t, tc.phase, got.Phase, tc.line)
	}
}

// TestClassifyProgressLine returns the parsed progress payload.
func TestClassifyProgressLine(t *testing.T) {
	got := NewClassifier(nil).Classify("[download]  50.0% of 2MiB at 1MiB/s ETA 00:01")
	assert.Equal(t, LineProgress, got.Kind)
	assert.Equal(t, 50.0, got.Progress.Percent)

	got = NewClassifier(nil).Classify("[download] n/a% of 2MiB")
	assert.Equal(t, LineIgnored, got.Kind)
}

// TestClassifyAlreadyDownloadedBeatsProgress checks rule ordering.
func TestClassifyAlreadyDownloadedBeatsProgress(t *testing.T) {
	got := NewClassifier(nil).Classify("[download] 100% a.mp4 has already been downloaded")
	assert.Equal(t, LineCompleted, got.Kind)
}

// TestClassifierCustomRules evaluates a caller-supplied table.
func TestClassifierCustomRules(t *testing.T) {
	c := NewClassifier([]StatusRule{
		{Kind: LineStatus, Phase: domain.PhaseConnecting, Patterns: []string{"hello"}},
	})
	assert.Equal(t, domain.PhaseConnecting, c.Classify("[x] hello").Phase)
	assert.Equal(t, LineIgnored, c.Classify("[x] Downloading webpage").Kind)
}

// TestParseErrorLine filters benign error markers.
func TestParseErrorLine(t *testing.T) {
	msg, ok := ParseErrorLine("ERROR: [youtube] x: Video unavailable ")
	assert.True(t, ok)
	assert.Equal(t, "ERROR: [youtube] x: Video unavailable", msg)

	_, ok = ParseErrorLine("ERROR: a.mp4 has already been downloaded")
	assert.False(t, ok)
	_, ok = ParseErrorLine("ERROR: The downloaded file is empty")
	assert.False(t, ok)
	_, ok = ParseErrorLine("WARNING: something odd")
	assert.False(t, ok)
}

// TestParseDestination recovers output paths from announcement lines.
func TestParseDestination(t *testing.T) {
	cases := map[string]string{
		"[download] Destination: /d/My Video.webm":           "/d/My Video.webm",
		"[ExtractAudio] Destination: /d/song.mp3":            "/d/song.mp3",
		`[Merger] Merging formats into "/d/My Video.mp4"`:    "/d/My Video.mp4",
		"[download] /d/clip.mp4 has already been downloaded": "/d/clip.mp4",
	}
	for line, want := range cases {
		got, ok := ParseDestination(line)
		assert.True(t, ok, line)
		assert.Equal(t, want, got, line)
	}

	_, ok := ParseDestination("[download]  10% of 1MiB")
	assert.False(t, ok)
}

// TestFormatParts recognises per-format intermediate names.
func TestFormatParts(t *testing.T) {
	parts := map[string]string{
		"/d/Clip.f137.mp4":          "/d/Clip.mp4",
		"/d/Clip.f140.m4a":          "/d/Clip.m4a",
		"/d/My.Clip.fhls-1080p.mp4": "/d/My.Clip.mp4",
	}
	for path, merged := range parts {
		assert.True(t, IsFormatPart(path), path)
		assert.Equal(t, merged, MergedPath(path), path)
	}

	for _, path := range []string{"/d/Clip.mp4", "/d/My.final.mp4", "/d/f137/Clip.mp4", ""} {
		assert.False(t, IsFormatPart(path), path)
		assert.Equal(t, path, MergedPath(path), path)
	}
}
