package transcribe

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/floostack/transcoder"
	"github.com/floostack/transcoder/ffmpeg"
	"github.com/samber/lo"

	"media-grabber/internal/domain"
)

// ProbeResult summarises the streams of a media file.
type ProbeResult struct {
	Duration string
	Streams  int
	HasAudio bool
}

// Prober inspects a media file before conversion.
type Prober interface {
	Probe(ctx context.Context, path string) (ProbeResult, error)
}

// FFProbe reads stream metadata with ffprobe.
type FFProbe struct {
	binPath string
}

// NewFFProbe uses the ffprobe that sits next to the resolved transcoder,
// or ffprobe from PATH when the transcoder is not bundled.
func NewFFProbe(transcoderBin domain.ToolBinary) *FFProbe {
	binPath := "ffprobe"
	if transcoderBin.IsBundled() {
		name := "ffprobe"
		if strings.HasSuffix(transcoderBin.Path, ".exe") {
			name += ".exe"
		}
		binPath = filepath.Join(filepath.Dir(transcoderBin.Path), name)
	}
	return &FFProbe{binPath: binPath}
}

// Probe returns the duration and stream layout of path.
func (f *FFProbe) Probe(ctx context.Context, path string) (ProbeResult, error) {
	if err := ctx.Err(); err != nil {
		return ProbeResult{}, err
	}

	cfg := ffmpeg.Config{FfprobeBinPath: f.binPath}
	metadata, err := ffmpeg.New(&cfg).Input(path).GetMetadata()
	if err != nil {
		return ProbeResult{}, fmt.Errorf("probe %s with ffprobe: %w", path, err)
	}

	streams := metadata.GetStreams()
	return ProbeResult{
		Duration: metadata.GetFormat().GetDuration(),
		Streams:  len(streams),
		HasAudio: lo.SomeBy(streams, func(s transcoder.Streams) bool {
			return s.GetCodecType() == "audio"
		}),
	}, nil
}
