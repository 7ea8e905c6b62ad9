// Package args builds command lines for the extractor, transcoder and recognizer.
package args

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"media-grabber/internal/domain"
)

// Invocation is a built extractor command line and what it will produce.
type Invocation struct {
	Args []string
	// OutputPath is the output template or file the extractor writes to.
	OutputPath string
	// WorkDir is the directory the process runs in; empty means inherit.
	WorkDir string
}

// Config holds the values the Builder needs besides the request itself.
type Config struct {
	// Transcoder is passed to the extractor when it is not a bare PATH name.
	Transcoder  domain.ToolBinary
	DownloadDir string
	TempDir     string
	CookiesPath string
	Language    string
}

// Builder translates MediaRequests into extractor arguments. It is pure apart
// from the clock and a cookie-file existence check, both injectable.
type Builder struct {
	cfg    Config
	now    func() time.Time
	exists func(string) bool
}

// NewBuilder creates a Builder using the wall clock and the real filesystem.
func NewBuilder(cfg Config) *Builder {
	return NewBuilderForTests(cfg, time.Now, fileExists)
}

// NewBuilderForTests creates a Builder with injectable clock and file check.
func NewBuilderForTests(cfg Config, now func() time.Time, exists func(string) bool) *Builder {
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	return &Builder{cfg: cfg, now: now, exists: exists}
}

// Config returns the builder configuration.
func (b *Builder) Config() Config {
	return b.cfg
}

// Build returns the extractor invocation for req.
func (b *Builder) Build(req domain.MediaRequest) (Invocation, error) {
	url := strings.TrimSpace(req.SourceURL)
	if url == "" {
		return Invocation{}, fmt.Errorf("source url is required")
	}

	switch req.Operation {
	case domain.OperationInfo:
		if req.AllowPlaylist && IsPlaylistURL(url) {
			return Invocation{Args: []string{"--flat-playlist", "-J", url}}, nil
		}
		return Invocation{Args: []string{"-j", "--no-playlist", url}}, nil
	case domain.OperationFormats:
		return Invocation{Args: []string{"-F", "--no-playlist", url}}, nil
	case domain.OperationPlaylist:
		return Invocation{Args: []string{"--flat-playlist", "-J", url}}, nil
	case domain.OperationTitle:
		return Invocation{Args: []string{"--get-title", "--no-playlist", url}}, nil
	case domain.OperationVideoID:
		return Invocation{Args: []string{"--print", "id", "--no-playlist", url}}, nil
	case domain.OperationSubtitles:
		return b.subtitles(url, req.OutputPath)
	case domain.OperationDownload:
		return b.download(url, req), nil
	case domain.OperationUniversalDownload:
		return b.universal(url, req.SiteHint), nil
	case domain.OperationTranscribe:
		return b.audio(url, req.OutputPath)
	default:
		return Invocation{}, fmt.Errorf("unsupported operation %q", req.Operation)
	}
}

// IsPlaylistURL reports whether url names a playlist.
func IsPlaylistURL(url string) bool {
	return strings.Contains(url, "playlist?list=") || strings.Contains(url, "&list=")
}

func (b *Builder) subtitles(url, outputBase string) (Invocation, error) {
	if outputBase == "" {
		return Invocation{}, fmt.Errorf("subtitle output path is required")
	}
	lang := subtitleLanguage(b.cfg.Language)
	return Invocation{
		Args: []string{
			"--skip-download",
			"--write-auto-subs",
			"--sub-lang", lang,
			"--convert-subs", "vtt",
			"--output", outputBase,
			url,
		},
		OutputPath: SubtitleFile(outputBase, lang),
	}, nil
}

// SubtitleFile is where the extractor writes the converted caption track.
func SubtitleFile(outputBase, language string) string {
	return outputBase + "." + language + ".vtt"
}

func (b *Builder) download(url string, req domain.MediaRequest) Invocation {
	output := req.OutputPath
	if output == "" {
		output = filepath.Join(b.cfg.DownloadDir, "%(title)s.%(ext)s")
	}

	args := b.transcoderLocation()
	if !req.AllowPlaylist {
		args = append(args, "--no-playlist")
	}
	args = append(args, "--progress", "--newline", "--force-overwrites", "-o", output)
	args = append(args, FormatArgs(req.FormatSelector)...)
	args = append(args, url)

	return Invocation{Args: args, OutputPath: output}
}

func (b *Builder) universal(url string, hint domain.SiteHint) Invocation {
	profile := profileFor(hint)
	suffix := b.now().UnixMilli() % 10000

	var template string
	if profile.filePrefix != "" {
		template = fmt.Sprintf("%s_%%(id)s_%d.%%(ext)s", profile.filePrefix, suffix)
	} else {
		template = fmt.Sprintf("%%(title)s_%d.%%(ext)s", suffix)
	}

	args := b.transcoderLocation()
	args = append(args,
		"--no-playlist",
		"--progress",
		"--newline",
		"--force-overwrites",
		"--user-agent", browserUserAgent,
	)
	for _, header := range browserHeaders {
		args = append(args, "--add-header", header)
	}
	args = append(args, "--no-check-certificate", "--no-warnings")
	args = append(args, b.cookies()...)
	for _, header := range profile.headers {
		args = append(args, "--add-header", header)
	}
	if profile.extractorArgs != "" {
		args = append(args, "--extractor-args", profile.extractorArgs)
	}
	args = append(args, "-o", template, url)

	return Invocation{
		Args:       args,
		OutputPath: filepath.Join(b.cfg.DownloadDir, template),
		WorkDir:    b.cfg.DownloadDir,
	}
}

func (b *Builder) audio(url, outputPath string) (Invocation, error) {
	if outputPath == "" {
		return Invocation{}, fmt.Errorf("audio output path is required")
	}

	args := b.transcoderLocation()
	args = append(args, "-x", "--audio-format", "mp3", "--audio-quality", "5", "-o", outputPath)
	args = append(args, b.cookies()...)
	args = append(args, MobileURL(url))

	return Invocation{Args: args, OutputPath: outputPath}, nil
}

func (b *Builder) transcoderLocation() []string {
	if b.cfg.Transcoder.Path == "" || !b.cfg.Transcoder.IsBundled() {
		return []string{}
	}
	return []string{"--ffmpeg-location", b.cfg.Transcoder.Path}
}

func (b *Builder) cookies() []string {
	if b.cfg.CookiesPath == "" || !b.exists(b.cfg.CookiesPath) {
		return nil
	}
	return []string{"--cookies", b.cfg.CookiesPath}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
