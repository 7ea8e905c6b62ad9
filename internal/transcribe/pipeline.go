// Package transcribe produces transcripts from captions or speech recognition.
package transcribe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"media-grabber/internal/args"
	"media-grabber/internal/cleanup"
	"media-grabber/internal/domain"
	"media-grabber/internal/runner"
	"media-grabber/internal/subtitles"
	"media-grabber/internal/tools"
)

// Pipeline stages reported in PipelineError.
const (
	StageCaptions      = "captions"
	StageExtracting    = "extracting"
	StagePreprocessing = "preprocessing"
	StageTranscribing  = "transcribing"
	StageExporting     = "exporting"
)

// CommandLog captures one external command invocation result.
type CommandLog struct {
	Command  string   `json:"command"`
	Args     []string `json:"args"`
	ExitCode int      `json:"exitCode"`
	Stdout   string   `json:"stdout"`
	Stderr   string   `json:"stderr"`
}

func logOf(result runner.Result) CommandLog {
	return CommandLog{
		Command:  result.Command,
		Args:     result.Args,
		ExitCode: result.ExitCode,
		Stdout:   result.Stdout,
		Stderr:   result.Stderr,
	}
}

// PipelineError is a stage-aware error with optional command context.
type PipelineError struct {
	Stage      string     `json:"stage"`
	Message    string     `json:"message"`
	CommandLog CommandLog `json:"commandLog"`
	Err        error      `json:"-"`
}

// Error formats pipeline failures for logs and UI.
func (e *PipelineError) Error() string {
	if e == nil {
		return ""
	}
	if e.CommandLog.Command == "" {
		return fmt.Sprintf("%s: %s", e.Stage, e.Message)
	}

	return fmt.Sprintf(
		"%s: %s (cmd=%s exit=%d)",
		e.Stage,
		e.Message,
		e.CommandLog.Command,
		e.CommandLog.ExitCode,
	)
}

// Unwrap exposes underlying error for errors.Is / errors.As.
func (e *PipelineError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IDFetcher resolves the extractor's id for a URL.
type IDFetcher interface {
	FetchVideoID(ctx context.Context, url string) (string, error)
}

// Deps are the collaborators of a Pipeline.
type Deps struct {
	Runner  runner.Runner
	Tools   tools.Resolver
	Builder *args.Builder
	IDs     IDFetcher
	// Prober is optional; without it local files are not inspected first.
	Prober Prober
	Logger hclog.Logger
}

// Pipeline orchestrates caption download, audio extraction, ffmpeg
// preprocessing and whisper transcription. Every temporary file it creates
// is removed before a method returns.
type Pipeline struct {
	deps     Deps
	logger   hclog.Logger
	stat     func(name string) (os.FileInfo, error)
	readFile func(name string) ([]byte, error)
	remove   func(path string) error
	now      func() time.Time
}

// NewPipeline constructs the production pipeline with OS dependencies.
func NewPipeline(deps Deps) *Pipeline {
	return NewPipelineForTests(deps, os.Stat, os.ReadFile, os.RemoveAll)
}

// NewPipelineForTests constructs a pipeline with injectable filesystem functions.
func NewPipelineForTests(
	deps Deps,
	stat func(name string) (os.FileInfo, error),
	readFile func(name string) ([]byte, error),
	remove func(path string) error,
) *Pipeline {
	if deps.Logger == nil {
		deps.Logger = hclog.NewNullLogger()
	}
	return &Pipeline{
		deps:     deps,
		logger:   deps.Logger,
		stat:     stat,
		readFile: readFile,
		remove:   remove,
		now:      time.Now,
	}
}

// Captions downloads the source's automatic captions and returns them as
// plain text. Any failure is reported as domain.ErrNoCaptionsAvailable; the
// recognizer is never tried automatically.
func (p *Pipeline) Captions(ctx context.Context, url string) (string, error) {
	guard := p.guard()
	defer guard.Release()

	id, err := p.deps.IDs.FetchVideoID(ctx, url)
	if err != nil {
		return "", noCaptions("could not resolve video id", CommandLog{}, err)
	}

	inv, err := p.deps.Builder.Build(domain.MediaRequest{
		SourceURL:  url,
		Operation:  domain.OperationSubtitles,
		OutputPath: p.tempPath("subs_"+safeName(id), ""),
	})
	if err != nil {
		return "", noCaptions("could not build caption request", CommandLog{}, err)
	}
	guard.Track(inv.OutputPath)

	extractor, err := p.deps.Tools.Resolve(domain.ToolExtractor)
	if err != nil {
		return "", noCaptions("extractor unavailable", CommandLog{}, err)
	}

	result, err := p.deps.Runner.Capture(ctx, runner.Command{Tool: extractor, Args: inv.Args})
	log := logOf(result)
	if err != nil {
		return "", noCaptions("caption download failed", log, err)
	}

	data, err := p.readFile(inv.OutputPath)
	if err != nil {
		return "", noCaptions("no caption track was downloaded", log, err)
	}

	text := subtitles.Parse(string(data))
	if text == "" {
		return "", noCaptions("caption track is empty", log, nil)
	}
	return text, nil
}

// FromURL extracts the audio of url and transcribes it with the recognizer.
func (p *Pipeline) FromURL(ctx context.Context, url string) (string, error) {
	recognizer, err := p.deps.Tools.Resolve(domain.ToolRecognizer)
	if err != nil {
		return "", &PipelineError{Stage: StageTranscribing, Message: err.Error(), Err: err}
	}

	guard := p.guard()
	defer guard.Release()

	audioPath := p.tempPath("audio", ".mp3")
	textBase := p.tempPath("transcript", "")
	guard.Track(audioPath, audioPath+".part", textBase+".txt", textBase)

	inv, err := p.deps.Builder.Build(domain.MediaRequest{
		SourceURL:  url,
		Operation:  domain.OperationTranscribe,
		OutputPath: audioPath,
	})
	if err != nil {
		return "", &PipelineError{Stage: StageExtracting, Message: err.Error(), Err: err}
	}

	extractor, err := p.deps.Tools.Resolve(domain.ToolExtractor)
	if err != nil {
		return "", &PipelineError{Stage: StageExtracting, Message: err.Error(), Err: err}
	}

	result, err := p.deps.Runner.Capture(ctx, runner.Command{Tool: extractor, Args: inv.Args})
	log := logOf(result)
	if err != nil {
		return "", &PipelineError{
			Stage:      StageExtracting,
			Message:    "audio extraction failed: " + err.Error(),
			CommandLog: log,
			Err:        err,
		}
	}

	if _, err := p.stat(audioPath); err != nil {
		return "", &PipelineError{
			Stage:      StageExtracting,
			Message:    "extractor completed but audio file is missing",
			CommandLog: log,
			Err:        err,
		}
	}

	return p.recognize(ctx, recognizer, audioPath, textBase)
}

// FromFile converts a local media file to 16 kHz mono WAV and transcribes it.
func (p *Pipeline) FromFile(ctx context.Context, inputPath string) (string, error) {
	inputPath = strings.TrimSpace(inputPath)
	if inputPath == "" {
		return "", &PipelineError{
			Stage:   StagePreprocessing,
			Message: "input media path is required",
		}
	}

	if _, err := p.stat(inputPath); err != nil {
		return "", &PipelineError{
			Stage:   StagePreprocessing,
			Message: fmt.Sprintf("File not found: %s", inputPath),
			Err:     err,
		}
	}

	recognizer, err := p.deps.Tools.Resolve(domain.ToolRecognizer)
	if err != nil {
		return "", &PipelineError{Stage: StageTranscribing, Message: err.Error(), Err: err}
	}

	if err := p.checkAudio(ctx, inputPath); err != nil {
		return "", err
	}

	guard := p.guard()
	defer guard.Release()

	wavPath := p.tempPath("audio", ".wav")
	textBase := p.tempPath("transcript", "")
	guard.Track(wavPath, textBase+".txt", textBase)

	transcoder, err := p.deps.Tools.Resolve(domain.ToolTranscoder)
	if err != nil {
		return "", &PipelineError{Stage: StagePreprocessing, Message: err.Error(), Err: err}
	}

	result, err := p.deps.Runner.Capture(ctx, runner.Command{
		Tool: transcoder,
		Args: args.TranscoderWAVArgs(inputPath, wavPath),
	})
	log := logOf(result)
	if err != nil {
		return "", &PipelineError{
			Stage:      StagePreprocessing,
			Message:    "ffmpeg audio conversion failed",
			CommandLog: log,
			Err:        err,
		}
	}

	if _, err := p.stat(wavPath); err != nil {
		return "", &PipelineError{
			Stage:      StagePreprocessing,
			Message:    "ffmpeg completed but output file is missing",
			CommandLog: log,
			Err:        err,
		}
	}

	return p.recognize(ctx, recognizer, wavPath, textBase)
}

// Warmup runs the transcoder once so later conversions start faster.
func (p *Pipeline) Warmup(ctx context.Context) error {
	transcoder, err := p.deps.Tools.Resolve(domain.ToolTranscoder)
	if err != nil {
		return err
	}
	_, err = p.deps.Runner.Capture(ctx, runner.Command{Tool: transcoder, Args: []string{"-version"}})
	return err
}

// checkAudio rejects inputs that ffprobe reports without an audio stream.
// Probe failures are logged and ignored.
func (p *Pipeline) checkAudio(ctx context.Context, inputPath string) error {
	if p.deps.Prober == nil {
		return nil
	}

	probe, err := p.deps.Prober.Probe(ctx, inputPath)
	if err != nil {
		p.logger.Debug("media probe failed", "path", inputPath, "error", err)
		return nil
	}
	if !probe.HasAudio {
		return &PipelineError{
			Stage:   StagePreprocessing,
			Message: fmt.Sprintf("input media has no audio stream: %s", inputPath),
		}
	}
	return nil
}

// recognize runs whisper.cpp and reads the transcript from textBase.txt,
// falling back to textBase itself.
func (p *Pipeline) recognize(ctx context.Context, recognizer domain.ToolBinary, audioPath, textBase string) (string, error) {
	recognizerArgs := args.RecognizerArgs(
		recognizer.ModelPath,
		audioPath,
		textBase,
		p.deps.Builder.Config().Language,
	)

	result, err := p.deps.Runner.Capture(ctx, runner.Command{Tool: recognizer, Args: recognizerArgs})
	log := logOf(result)
	if err != nil {
		return "", &PipelineError{
			Stage:      StageTranscribing,
			Message:    "whisper.cpp transcription failed",
			CommandLog: log,
			Err:        err,
		}
	}

	for _, candidate := range []string{textBase + ".txt", textBase} {
		content, err := p.readFile(candidate)
		if err == nil {
			return strings.TrimSpace(string(content)), nil
		}
	}

	return "", &PipelineError{
		Stage:      StageExporting,
		Message:    "whisper.cpp completed but transcript file is missing",
		CommandLog: log,
		Err:        domain.ErrTranscriptFileMissing,
	}
}

func (p *Pipeline) guard() *cleanup.Guard {
	return cleanup.NewGuardForTests(p.logger, p.remove)
}

// tempPath returns a unique path in the temp dir.
func (p *Pipeline) tempPath(prefix, ext string) string {
	name := fmt.Sprintf("%s_%d_%s%s", prefix, p.now().UnixMilli(), uuid.NewString()[:8], ext)
	return filepath.Join(p.deps.Builder.Config().TempDir, name)
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

func safeName(s string) string {
	return unsafeChars.ReplaceAllString(s, "_")
}

func noCaptions(message string, log CommandLog, cause error) error {
	err := domain.ErrNoCaptionsAvailable
	if cause != nil {
		err = fmt.Errorf("%w: %w", domain.ErrNoCaptionsAvailable, cause)
	}
	return &PipelineError{
		Stage:      StageCaptions,
		Message:    message,
		CommandLog: log,
		Err:        err,
	}
}

// IsNoCaptions reports whether err means no caption track could be used.
func IsNoCaptions(err error) bool {
	return errors.Is(err, domain.ErrNoCaptionsAvailable)
}
