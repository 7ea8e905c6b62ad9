package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	goruntime "runtime"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"media-grabber/internal/args"
	"media-grabber/internal/config"
	"media-grabber/internal/diagnostics"
	"media-grabber/internal/domain"
	"media-grabber/internal/download"
	"media-grabber/internal/jobs"
	"media-grabber/internal/media"
	"media-grabber/internal/parser"
	"media-grabber/internal/runner"
	"media-grabber/internal/tools"
	"media-grabber/internal/transcribe"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

const recognizerSuggestion = "No captions are available for this video. Try the speech recognizer option instead."

var mediaDialogFilter = []wailsruntime.FileFilter{
	{
		DisplayName: "Media files",
		Pattern:     "*.mp4;*.mov;*.mkv;*.avi;*.mp3;*.wav;*.m4a;*.flac;*.aac;*.ogg;*.webm",
	},
	{
		DisplayName: "All files",
		Pattern:     "*",
	},
}

// metadataService answers synchronous extractor queries.
type metadataService interface {
	FetchInfo(ctx context.Context, url string) (domain.VideoInfo, error)
	FetchFormats(ctx context.Context, url string) ([]string, error)
	IsPlaylist(url string) bool
	FetchPlaylist(ctx context.Context, url string) (domain.PlaylistInfo, error)
	Warmup(ctx context.Context) error
}

// downloadStarter starts streaming download jobs.
type downloadStarter interface {
	Download(ctx context.Context, req download.Request) (*jobs.Job, error)
	DownloadUniversal(ctx context.Context, url, site string) (*jobs.Job, error)
}

// transcriber produces transcript text.
type transcriber interface {
	Captions(ctx context.Context, url string) (string, error)
	FromURL(ctx context.Context, url string) (string, error)
	FromFile(ctx context.Context, path string) (string, error)
	Warmup(ctx context.Context) error
}

// App wires configuration, tools, jobs and UI runtime callbacks.
type App struct {
	Settings    domain.Settings
	Store       config.Store
	Jobs        *jobs.Manager
	Media       metadataService
	Downloads   downloadStarter
	Transcriber transcriber
	Diagnostics domain.DiagnosticReport
	assets      fs.FS
	checker     *diagnostics.Checker
	locator     *tools.Locator
	runner      runner.Runner
	logger      hclog.Logger

	mu         sync.Mutex
	events     *jobs.EventBus
	runtimeCtx context.Context
}

// New builds the application with persisted settings and startup diagnostics.
func New() (*App, error) {
	return NewWithAssets(nil)
}

// NewWithAssets builds the application and optionally configures embedded frontend assets.
func NewWithAssets(assets fs.FS) (*App, error) {
	path, err := config.DefaultPath()
	if err != nil {
		return nil, fmt.Errorf("resolve settings path: %w", err)
	}

	store := config.NewJSONStore(path)
	settings, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "media-grabber",
		Level:  hclog.LevelFromString(settings.LogLevel),
		Output: os.Stderr,
	})
	logger.Info("settings loaded", "path", store.Path())

	locator := tools.NewLocator(locatorOptions(settings), logger.Named("tools"))
	app := &App{
		Store:   store,
		Jobs:    jobs.NewManager(),
		assets:  assets,
		checker: diagnostics.NewChecker(locator),
		locator: locator,
		runner:  runner.NewExecRunner(logger.Named("runner")),
		logger:  logger,
		events:  jobs.NewEventBus(1000),
	}
	app.apply(settings)
	return app, nil
}

// Run starts the Wails desktop application and binds backend methods.
func (a *App) Run() error {
	assetOptions := &assetserver.Options{}
	if a.assets != nil {
		assetOptions.Assets = a.assets
	} else {
		assetOptions.Handler = http.FileServer(http.Dir("./frontend"))
	}

	return wails.Run(&options.App{
		Title:       "Media Grabber",
		Width:       1180,
		Height:      780,
		AssetServer: assetOptions,
		OnStartup:   a.Startup,
		OnShutdown: func(ctx context.Context) {
			a.Jobs.CancelAll()
			a.mu.Lock()
			defer a.mu.Unlock()
			a.runtimeCtx = nil
		},
		Bind: []interface{}{a},
	})
}

// Startup stores Wails runtime context and pre-warms the extractor and
// transcoder so the first user action does not pay their cold start.
func (a *App) Startup(ctx context.Context) {
	a.mu.Lock()
	a.runtimeCtx = ctx
	queries, pipeline := a.Media, a.Transcriber
	a.mu.Unlock()

	go func() {
		if err := queries.Warmup(ctx); err != nil {
			a.logger.Warn("extractor warmup failed", "error", err)
		}
		if err := pipeline.Warmup(ctx); err != nil {
			a.logger.Warn("transcoder warmup failed", "error", err)
		}
	}()
}

// apply stores settings and rebuilds every service that depends on them.
func (a *App) apply(settings domain.Settings) domain.DiagnosticReport {
	a.locator.Reset(locatorOptions(settings))

	var transcoder domain.ToolBinary
	if bin, err := a.locator.Resolve(domain.ToolTranscoder); err == nil {
		transcoder = bin
	}

	builder := args.NewBuilder(args.Config{
		Transcoder:  transcoder,
		DownloadDir: settings.DownloadDir,
		TempDir:     settings.TempDir,
		CookiesPath: settings.CookiesPath,
		Language:    settings.Language,
	})

	metadata := media.NewService(a.runner, a.locator, builder, a.logger.Named("media"))
	downloads := download.NewService(download.Deps{
		Runner:     a.runner,
		Tools:      a.locator,
		Builder:    builder,
		Titles:     metadata,
		Emitter:    a,
		Jobs:       a.Jobs,
		Classifier: parser.NewClassifier(nil),
		Logger:     a.logger.Named("download"),
	})
	pipeline := transcribe.NewPipeline(transcribe.Deps{
		Runner:  a.runner,
		Tools:   a.locator,
		Builder: builder,
		IDs:     metadata,
		Prober:  transcribe.NewFFProbe(transcoder),
		Logger:  a.logger.Named("transcribe"),
	})
	report := a.checker.Run(settings)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.Settings = settings
	a.Media = metadata
	a.Downloads = downloads
	a.Transcriber = pipeline
	a.Diagnostics = report
	return report
}

// Emit records one UI event and pushes it to the frontend when the runtime is up.
func (a *App) Emit(jobID, name string, payload any) {
	a.events.Emit(jobID, name, payload)

	a.mu.Lock()
	ctx := a.runtimeCtx
	a.mu.Unlock()
	if ctx != nil {
		wailsruntime.EventsEmit(ctx, name, payload)
	}
}

// GetVideoInfo returns metadata for a single video.
func (a *App) GetVideoInfo(url string) (domain.VideoInfo, error) {
	return a.metadata().FetchInfo(context.Background(), url)
}

// GetFormats returns the extractor's format table rows.
func (a *App) GetFormats(url string) ([]string, error) {
	return a.metadata().FetchFormats(context.Background(), url)
}

// IsPlaylist reports whether url names a playlist.
func (a *App) IsPlaylist(url string) bool {
	return a.metadata().IsPlaylist(url)
}

// GetPlaylistInfo returns playlist title and entries.
func (a *App) GetPlaylistInfo(url string) (domain.PlaylistInfo, error) {
	return a.metadata().FetchPlaylist(context.Background(), url)
}

// Download starts a background download and returns its job id.
func (a *App) Download(url, format, outputPath string, playlist bool) (string, error) {
	a.mu.Lock()
	downloads := a.Downloads
	a.mu.Unlock()

	job, err := downloads.Download(context.Background(), download.Request{
		URL:        url,
		Format:     format,
		OutputPath: outputPath,
		Playlist:   playlist,
	})
	if err != nil {
		return "", err
	}
	return job.ID(), nil
}

// DownloadUniversal starts a background download from any supported site.
func (a *App) DownloadUniversal(url, site string) (string, error) {
	a.mu.Lock()
	downloads := a.Downloads
	a.mu.Unlock()

	job, err := downloads.DownloadUniversal(context.Background(), url, site)
	if err != nil {
		return "", err
	}
	return job.ID(), nil
}

// TranscribeYouTube returns the video's automatic captions as text. It never
// falls back to the speech recognizer.
func (a *App) TranscribeYouTube(url string) (string, error) {
	text, err := a.transcriber().Captions(context.Background(), url)
	if err != nil {
		a.logger.Info("caption transcript unavailable", "url", url, "error", err)
		if transcribe.IsNoCaptions(err) {
			return "", errors.New(recognizerSuggestion)
		}
		return "", err
	}
	return text, nil
}

// TranscribeTikTok transcribes a short-video URL with the speech recognizer.
func (a *App) TranscribeTikTok(url string) (string, error) {
	return a.transcribeURL(url)
}

// TranscribeUniversal transcribes any supported URL with the speech recognizer.
func (a *App) TranscribeUniversal(url string) (string, error) {
	return a.transcribeURL(url)
}

// TranscribeFile transcribes a local media file.
func (a *App) TranscribeFile(path string) (string, error) {
	text, err := a.transcriber().FromFile(context.Background(), path)
	if err != nil {
		a.logger.Error("file transcription failed", "path", path, "error", err)
		return "", userError(err)
	}
	return text, nil
}

func (a *App) transcribeURL(url string) (string, error) {
	text, err := a.transcriber().FromURL(context.Background(), url)
	if err != nil {
		a.logger.Error("url transcription failed", "url", url, "error", err)
		return "", userError(err)
	}
	return text, nil
}

// PickMediaFile opens a native file dialog for media selection.
func (a *App) PickMediaFile() (string, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return "", err
	}

	path, err := wailsruntime.OpenFileDialog(ctx, wailsruntime.OpenDialogOptions{
		Title:   "Select media file",
		Filters: mediaDialogFilter,
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(path), nil
}

// GetDiagnostics returns the latest cached diagnostics report.
func (a *App) GetDiagnostics() domain.DiagnosticReport {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Diagnostics
}

// GetSettings loads and returns the latest persisted settings.
func (a *App) GetSettings() (domain.Settings, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	a.mu.Lock()
	a.Settings = settings
	a.mu.Unlock()

	return settings, nil
}

// SaveSettings normalizes and persists settings, then rewires tools and
// refreshes diagnostics.
func (a *App) SaveSettings(settings domain.Settings) (domain.Settings, error) {
	normalized := config.Normalize(settings)
	if err := a.Store.Save(normalized); err != nil {
		return domain.Settings{}, fmt.Errorf("save settings: %w", err)
	}

	a.logger.SetLevel(hclog.LevelFromString(normalized.LogLevel))
	a.apply(normalized)
	return normalized, nil
}

// RefreshDiagnostics reloads settings and reruns dependency checks.
func (a *App) RefreshDiagnostics() (domain.DiagnosticReport, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.DiagnosticReport{}, fmt.Errorf("load settings: %w", err)
	}
	return a.apply(settings), nil
}

// JobEvents returns all events with sequence greater than sinceSeq.
func (a *App) JobEvents(sinceSeq int64) []jobs.Event {
	return a.events.Since(sinceSeq)
}

// ActiveJobs lists running downloads, oldest first.
func (a *App) ActiveJobs() []jobs.HandleInfo {
	return a.Jobs.Active()
}

// CancelDownload stops a running download.
func (a *App) CancelDownload(jobID string) error {
	return a.Jobs.Cancel(strings.TrimSpace(jobID))
}

// OpenDownloadsFolder opens the given path (or configured download dir) in the file manager.
func (a *App) OpenDownloadsFolder(path string) error {
	target := strings.TrimSpace(path)
	if target == "" {
		a.mu.Lock()
		target = a.Settings.DownloadDir
		a.mu.Unlock()
	}
	if target == "" {
		return fmt.Errorf("download path is empty")
	}

	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("resolve download path: %w", err)
	}

	openPath := target
	if !info.IsDir() {
		openPath = filepath.Dir(target)
	}

	return openInFileManager(openPath)
}

// ShowMainWindow brings the window back, e.g. from a tray menu.
func (a *App) ShowMainWindow() {
	if ctx, err := a.runtimeContext(); err == nil {
		wailsruntime.WindowShow(ctx)
	}
}

// Quit cancels running jobs and exits the application.
func (a *App) Quit() {
	a.Jobs.CancelAll()
	if ctx, err := a.runtimeContext(); err == nil {
		wailsruntime.Quit(ctx)
	}
}

func (a *App) metadata() metadataService {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Media
}

func (a *App) transcriber() transcriber {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Transcriber
}

// runtimeContext returns current Wails runtime context for dialog APIs.
func (a *App) runtimeContext() (context.Context, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.runtimeCtx == nil {
		return nil, fmt.Errorf("runtime context is not initialized")
	}
	return a.runtimeCtx, nil
}

func locatorOptions(settings domain.Settings) tools.Options {
	return tools.Options{
		ResourcesDir:   settings.ResourcesDir,
		RecognizerPath: settings.RecognizerPath,
		ModelPath:      settings.ModelPath,
		ModelFileName:  config.DefaultModelFileName,
	}
}

// userError reduces pipeline failures to the message shown in the UI.
func userError(err error) error {
	var pipelineErr *transcribe.PipelineError
	if errors.As(err, &pipelineErr) {
		return errors.New(pipelineErr.Message)
	}
	return err
}

// openInFileManager launches the platform file explorer for the provided path.
func openInFileManager(path string) error {
	var cmd *exec.Cmd
	switch goruntime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("explorer", filepath.Clean(path))
	default:
		cmd = exec.Command("xdg-open", path)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch file manager: %w", err)
	}
	return nil
}
