package subtitles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const autoCaptions = `WEBVTT
Kind: captions
Language: en

00:00:00.000 --> 00:00:02.000 align:start position:0%
hello<00:00:00.500><c> world</c>

00:00:02.000 --> 00:00:04.000 align:start position:0%
hello world
this is a test

1
00:00:04.000 --> 00:00:06.000
this is a test
`

// TestParseDropsTimingHeadersAndAdjacentDuplicates checks the rolling-caption case.
func TestParseDropsTimingHeadersAndAdjacentDuplicates(t *testing.T) {
	assert.Equal(t, "hello world this is a test", Parse(autoCaptions))
}

// TestParseStripsInlineTags removes markup but keeps the text between tags.
func TestParseStripsInlineTags(t *testing.T) {
	got := Parse("WEBVTT\n\n00:00.000 --> 00:01.000\n<v Speaker>Good <b>morning</b></v>\n")
	assert.Equal(t, "Good morning", got)
}

// TestParseKeepsNonAdjacentRepeats only collapses consecutive duplicates.
func TestParseKeepsNonAdjacentRepeats(t *testing.T) {
	got := Parse("a\nb\na\n")
	assert.Equal(t, "a b a", got)
}

// TestParseSkipsNotesAndCueNumbers drops metadata lines.
func TestParseSkipsNotesAndCueNumbers(t *testing.T) {
	got := Parse("WEBVTT\n\nNOTE generated\n\n12\n00:01.000 --> 00:02.000\nline\n")
	assert.Equal(t, "line", got)
}

// TestParseIdempotentOnCleanText leaves plain text unchanged.
func TestParseIdempotentOnCleanText(t *testing.T) {
	clean := Parse(autoCaptions)
	assert.Equal(t, clean, Parse(clean))
}

// TestParseHandlesCRLF accepts Windows line endings.
func TestParseHandlesCRLF(t *testing.T) {
	got := Parse("WEBVTT\r\n\r\n00:00.000 --> 00:01.000\r\nfirst\r\nfirst\r\nsecond\r\n")
	assert.Equal(t, "first second", got)
}

// TestParseEmpty returns an empty transcript for an empty track.
func TestParseEmpty(t *testing.T) {
	assert.Equal(t, "", Parse(""))
	assert.Equal(t, "", Parse("WEBVTT\n\n"))
}
