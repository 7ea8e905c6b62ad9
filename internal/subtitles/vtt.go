// Package subtitles turns caption tracks into plain transcript text.
package subtitles

import (
	"regexp"
	"strings"
)

var (
	inlineTag    = regexp.MustCompile(`<[^>]*>`)
	timestampish = regexp.MustCompile(`^[0-9:.]+$`)
)

var headerPrefixes = []string{"WEBVTT", "NOTE", "Kind:", "Language:"}

// Parse converts a WebVTT document into a single space-joined transcript.
// Cue timings, headers, numeric cue ids and inline markup are dropped, and
// a line identical to the previously kept line is skipped. Auto-generated
// captions repeat each line across rolling cues; repeats that are not
// adjacent are kept.
func Parse(vtt string) string {
	var (
		kept []string
		last string
	)

	for _, raw := range strings.Split(vtt, "\n") {
		line := strings.TrimSpace(raw)
		if skipLine(line) {
			continue
		}

		text := strings.TrimSpace(inlineTag.ReplaceAllString(line, ""))
		if text == "" || text == last {
			continue
		}
		kept = append(kept, text)
		last = text
	}

	return strings.TrimSpace(strings.Join(kept, " "))
}

func skipLine(line string) bool {
	if line == "" || strings.Contains(line, "-->") || timestampish.MatchString(line) {
		return true
	}
	for _, prefix := range headerPrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}
