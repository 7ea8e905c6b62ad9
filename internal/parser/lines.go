package parser

import (
	"regexp"
	"strings"
)

const errorMarker = "ERROR"

var benignErrorMarkers = []string{
	alreadyDownloaded,
	"The downloaded file is empty",
}

// ParseErrorLine reports whether a stderr line is a fatal extractor error.
// The returned message is the trimmed line.
func ParseErrorLine(line string) (string, bool) {
	if !strings.Contains(line, errorMarker) {
		return "", false
	}
	for _, marker := range benignErrorMarkers {
		if strings.Contains(line, marker) {
			return "", false
		}
	}
	return strings.TrimSpace(line), true
}

var destinationPrefixes = []string{
	"[download] Destination:",
	"[ExtractAudio] Destination:",
	"[VideoConvertor] Destination:",
}

// ParseDestination recovers the output file path announced on a line.
func ParseDestination(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)

	for _, prefix := range destinationPrefixes {
		if rest, ok := strings.CutPrefix(trimmed, prefix); ok {
			return nonEmpty(strings.TrimSpace(rest))
		}
	}

	if rest, ok := strings.CutPrefix(trimmed, `[Merger] Merging formats into "`); ok {
		return nonEmpty(strings.TrimSuffix(rest, `"`))
	}

	if rest, ok := strings.CutPrefix(trimmed, "[download] "); ok {
		if path, found := strings.CutSuffix(rest, " "+alreadyDownloaded); found {
			return nonEmpty(strings.TrimSpace(path))
		}
	}

	return "", false
}

func nonEmpty(s string) (string, bool) {
	return s, s != ""
}

// formatPart matches the per-format segment yt-dlp puts in intermediate
// file names before merging, as in "Clip.f137.mp4".
var formatPart = regexp.MustCompile(`\.f[0-9A-Za-z-]*[0-9][0-9A-Za-z-]*(\.[^./\\]+)$`)

// IsFormatPart reports whether path is an intermediate per-format download.
func IsFormatPart(path string) bool {
	return formatPart.MatchString(path)
}

// MergedPath strips the per-format segment from an intermediate file name,
// keeping its extension. Other paths are returned unchanged.
func MergedPath(path string) string {
	return formatPart.ReplaceAllString(path, "$1")
}
