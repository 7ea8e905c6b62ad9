package args

import "strings"

// TranscoderWAVArgs converts any input to 16 kHz mono PCM WAV, the recognizer's input format.
func TranscoderWAVArgs(inputPath, outPath string) []string {
	return []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", inputPath,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		outPath,
	}
}

// RecognizerArgs builds whisper.cpp args for a plain-text transcript at textBase.txt.
func RecognizerArgs(modelPath, audioPath, textBase, language string) []string {
	args := []string{
		"-m", modelPath,
		"-f", audioPath,
		"-otxt",
		"-of", textBase,
		"--no-timestamps",
	}

	if lang := normalizeLanguage(language); lang != "" {
		args = append(args, "-l", lang)
	}

	return args
}

// normalizeLanguage maps "auto" and empty language to no CLI override.
func normalizeLanguage(raw string) string {
	lang := strings.TrimSpace(raw)
	if lang == "" || strings.EqualFold(lang, "auto") {
		return ""
	}
	return lang
}

const defaultSubtitleLanguage = "en"

// subtitleLanguage picks a concrete caption track; the extractor has no auto track.
func subtitleLanguage(raw string) string {
	if lang := normalizeLanguage(raw); lang != "" {
		return lang
	}
	return defaultSubtitleLanguage
}
