package args

import (
	"fmt"
	"strconv"
	"strings"
)

const defaultVideoSelector = "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best"

// FormatArgs translates the UI format choice into extractor selection flags.
//
//	"mp3"      best audio, converted to mp3 at top quality
//	"wav"      best audio, converted to wav
//	"1080"     that format id merged with the best audio into mp4
//	"<other>"  passed through as a raw selector
//	""         best mp4 video and m4a audio
func FormatArgs(selector string) []string {
	sel := strings.TrimSpace(selector)
	switch {
	case sel == "":
		return []string{"-f", defaultVideoSelector}
	case sel == "mp3":
		return []string{"-f", "bestaudio", "-x", "--audio-format", "mp3", "--audio-quality", "0"}
	case sel == "wav":
		return []string{"-f", "bestaudio", "-x", "--audio-format", "wav"}
	case isNumeric(sel):
		return []string{
			"-f", fmt.Sprintf("%s+bestaudio[ext=m4a]/%s+bestaudio/best", sel, sel),
			"--merge-output-format", "mp4",
			"--recode-video", "mp4",
		}
	default:
		return []string{"-f", sel}
	}
}

func isNumeric(s string) bool {
	_, err := strconv.ParseUint(s, 10, 64)
	return err == nil
}
