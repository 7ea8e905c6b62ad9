// Package download starts streaming extractor downloads as background jobs.
package download

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"

	"media-grabber/internal/args"
	"media-grabber/internal/domain"
	"media-grabber/internal/jobs"
	"media-grabber/internal/parser"
	"media-grabber/internal/runner"
	"media-grabber/internal/tools"
)

const youtubePlaceholder = "YouTube Video"

// Request describes a site download started from the UI.
type Request struct {
	URL        string
	Format     string
	OutputPath string
	Playlist   bool
}

// TitleFetcher resolves a human-readable title for a URL.
type TitleFetcher interface {
	FetchTitle(ctx context.Context, url string) (string, error)
}

// Deps are the collaborators of a Service.
type Deps struct {
	Runner     runner.Runner
	Tools      tools.Resolver
	Builder    *args.Builder
	Titles     TitleFetcher
	Emitter    jobs.Emitter
	Jobs       *jobs.Manager
	Classifier *parser.Classifier
	Logger     hclog.Logger
}

// Service starts download jobs.
type Service struct {
	deps     Deps
	logger   hclog.Logger
	mkdirAll func(string, os.FileMode) error
	baseCtx  context.Context
}

// NewService creates a download service. Jobs outlive the calls that start
// them, so they run under a background context rather than the caller's.
func NewService(deps Deps) *Service {
	if deps.Logger == nil {
		deps.Logger = hclog.NewNullLogger()
	}
	if deps.Jobs == nil {
		deps.Jobs = jobs.NewManager()
	}
	if deps.Classifier == nil {
		deps.Classifier = parser.NewClassifier(nil)
	}
	return &Service{
		deps:     deps,
		logger:   deps.Logger,
		mkdirAll: os.MkdirAll,
		baseCtx:  context.Background(),
	}
}

// Download starts a download of req.URL and returns once the extractor is running.
// Only a failure to start is returned; everything after that is reported as events.
func (s *Service) Download(ctx context.Context, req Request) (*jobs.Job, error) {
	return s.start(ctx, domain.MediaRequest{
		SourceURL:      req.URL,
		Operation:      domain.OperationDownload,
		FormatSelector: req.Format,
		AllowPlaylist:  req.Playlist,
		OutputPath:     strings.TrimSpace(req.OutputPath),
	}, youtubePlaceholder)
}

// DownloadUniversal starts a download from an arbitrary site using that
// site's header profile.
func (s *Service) DownloadUniversal(ctx context.Context, url, site string) (*jobs.Job, error) {
	hint := domain.ParseSiteHint(site)
	return s.start(ctx, domain.MediaRequest{
		SourceURL: url,
		Operation: domain.OperationUniversalDownload,
		SiteHint:  hint,
	}, hint.DisplayName()+" Download")
}

func (s *Service) start(ctx context.Context, req domain.MediaRequest, placeholder string) (*jobs.Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if dir := s.deps.Builder.Config().DownloadDir; dir != "" {
		if err := s.mkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create download directory %s: %w", dir, err)
		}
	}

	inv, err := s.deps.Builder.Build(req)
	if err != nil {
		return nil, err
	}
	bin, err := s.deps.Tools.Resolve(domain.ToolExtractor)
	if err != nil {
		return nil, err
	}

	jobCtx, cancel := context.WithCancel(s.baseCtx)
	proc, err := s.deps.Runner.Stream(jobCtx, runner.Command{Tool: bin, Args: inv.Args, Dir: inv.WorkDir})
	if err != nil {
		cancel()
		return nil, err
	}

	handle := jobs.NewHandle(placeholder, inv.OutputPath)
	dispatcher := jobs.NewDispatcher(handle, s.deps.Emitter, s.deps.Classifier, s.logger)
	dispatcher.Start()
	s.logger.Info("download started", "job", handle.ID, "url", req.SourceURL, "operation", req.Operation)

	if s.deps.Titles != nil {
		go s.resolveTitle(jobCtx, dispatcher, req.SourceURL)
	}

	job := jobs.Start(jobCtx, cancel, proc, dispatcher)
	s.deps.Jobs.Track(job)
	return job, nil
}

// resolveTitle upgrades the placeholder name; failures are not reported.
func (s *Service) resolveTitle(ctx context.Context, d *jobs.Dispatcher, url string) {
	title, err := s.deps.Titles.FetchTitle(ctx, url)
	if err != nil {
		s.logger.Debug("title lookup failed", "job", d.Handle().ID, "error", err)
		return
	}
	d.UpgradeTitle(title)
}
