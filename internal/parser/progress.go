// Package parser classifies extractor output lines.
package parser

import (
	"strconv"
	"strings"

	"media-grabber/internal/domain"
)

// ParseProgress extracts a progress event from a download progress line such as
//
//	[download]  45.2% of 10.00MiB at 1.20MiB/s ETA 00:05
//
// Fields are found by their anchor words, so their order does not matter;
// the first occurrence of an anchor wins.
// It returns false when the line has no parseable percentage.
func ParseProgress(line string) (domain.ProgressEvent, bool) {
	fields := strings.Fields(line)

	var (
		event domain.ProgressEvent
		found bool
	)
	for i, field := range fields {
		next := ""
		if i+1 < len(fields) {
			next = fields[i+1]
		}

		switch {
		case strings.HasSuffix(field, "%") && !found:
			percent, err := strconv.ParseFloat(strings.TrimSuffix(field, "%"), 64)
			if err != nil {
				return domain.ProgressEvent{}, false
			}
			event.Percent = clamp(percent)
			event.BytesDone = field
			found = true
		case field == "of" && event.BytesTotal == "":
			if next == "~" && i+2 < len(fields) {
				next = fields[i+2]
			}
			event.BytesTotal = strings.TrimPrefix(next, "~")
		case field == "at" && event.Rate == "":
			event.Rate = next
		case field == "ETA" && event.ETA == "":
			event.ETA = next
		}
	}

	return event, found
}

func clamp(percent float64) float64 {
	switch {
	case percent < 0:
		return 0
	case percent > 100:
		return 100
	default:
		return percent
	}
}
