// Package media runs one-shot extractor queries and projects their output.
package media

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"

	"media-grabber/internal/args"
	"media-grabber/internal/domain"
	"media-grabber/internal/runner"
	"media-grabber/internal/tools"
)

// maxPlaylistEntries caps the entries returned for one playlist.
const maxPlaylistEntries = 100

// Service answers metadata queries with the extractor.
type Service struct {
	runner  runner.Runner
	tools   tools.Resolver
	builder *args.Builder
	logger  hclog.Logger
}

// NewService creates a metadata service.
func NewService(r runner.Runner, resolver tools.Resolver, builder *args.Builder, logger hclog.Logger) *Service {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Service{runner: r, tools: resolver, builder: builder, logger: logger}
}

// FetchInfo returns metadata for a single item; playlists are not expanded.
func (s *Service) FetchInfo(ctx context.Context, url string) (domain.VideoInfo, error) {
	out, err := s.capture(ctx, domain.MediaRequest{SourceURL: url, Operation: domain.OperationInfo})
	if err != nil {
		return domain.VideoInfo{}, err
	}

	var raw rawVideo
	if err := decodeFirst(out, &raw); err != nil {
		return domain.VideoInfo{}, err
	}
	return raw.project(), nil
}

// FetchFormats returns the extractor's human-readable format table rows.
func (s *Service) FetchFormats(ctx context.Context, url string) ([]string, error) {
	out, err := s.capture(ctx, domain.MediaRequest{SourceURL: url, Operation: domain.OperationFormats})
	if err != nil {
		return nil, err
	}
	return formatRows(out), nil
}

// IsPlaylist reports whether url names a playlist.
func (s *Service) IsPlaylist(url string) bool {
	return args.IsPlaylistURL(url)
}

// FetchPlaylist returns playlist metadata with at most 100 entries.
func (s *Service) FetchPlaylist(ctx context.Context, url string) (domain.PlaylistInfo, error) {
	out, err := s.capture(ctx, domain.MediaRequest{SourceURL: url, Operation: domain.OperationPlaylist})
	if err != nil {
		return domain.PlaylistInfo{}, err
	}

	var raw rawPlaylist
	if err := decodeFirst(out, &raw); err != nil {
		return domain.PlaylistInfo{}, err
	}
	return raw.project(), nil
}

// FetchTitle returns the title of a single item.
func (s *Service) FetchTitle(ctx context.Context, url string) (string, error) {
	out, err := s.capture(ctx, domain.MediaRequest{SourceURL: url, Operation: domain.OperationTitle})
	if err != nil {
		return "", err
	}
	return firstLine(out, "title")
}

// FetchVideoID returns the extractor's id for a single item.
func (s *Service) FetchVideoID(ctx context.Context, url string) (string, error) {
	out, err := s.capture(ctx, domain.MediaRequest{SourceURL: url, Operation: domain.OperationVideoID})
	if err != nil {
		return "", err
	}
	return firstLine(out, "video id")
}

// Warmup runs the extractor once so later calls start faster.
func (s *Service) Warmup(ctx context.Context) error {
	bin, err := s.tools.Resolve(domain.ToolExtractor)
	if err != nil {
		return err
	}
	result, err := s.runner.Capture(ctx, runner.Command{Tool: bin, Args: []string{"--version"}})
	if err != nil {
		return err
	}
	s.logger.Debug("extractor ready", "version", strings.TrimSpace(result.Stdout))
	return nil
}

func (s *Service) capture(ctx context.Context, req domain.MediaRequest) (string, error) {
	inv, err := s.builder.Build(req)
	if err != nil {
		return "", err
	}
	bin, err := s.tools.Resolve(domain.ToolExtractor)
	if err != nil {
		return "", err
	}

	result, err := s.runner.Capture(ctx, runner.Command{Tool: bin, Args: inv.Args, Dir: inv.WorkDir})
	if err != nil {
		s.logger.Debug("extractor query failed", "operation", req.Operation, "url", req.SourceURL, "error", err)
		return "", err
	}
	return result.Stdout, nil
}

func decodeFirst(out string, v any) error {
	if err := json.NewDecoder(strings.NewReader(out)).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedMetadata, err)
	}
	return nil
}

func firstLine(out, what string) (string, error) {
	for _, line := range strings.Split(out, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed, nil
		}
	}
	return "", fmt.Errorf("%w: extractor returned no %s", domain.ErrMalformedMetadata, what)
}

// formatRows returns the table rows that follow the "ID" header line.
func formatRows(out string) []string {
	rows := []string{}
	inTable := false
	for _, line := range strings.Split(out, "\n") {
		trimmed := strings.TrimRight(line, "\r ")
		if !inTable {
			inTable = strings.HasPrefix(strings.TrimSpace(trimmed), "ID ")
			continue
		}
		if strings.Trim(trimmed, "-─ ") == "" {
			continue
		}
		rows = append(rows, trimmed)
	}
	return rows
}
