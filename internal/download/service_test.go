package download

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-grabber/internal/args"
	"media-grabber/internal/domain"
	"media-grabber/internal/jobs"
	"media-grabber/internal/runner"
)

// fakeRunner hands out a prepared process for Stream.
type fakeRunner struct {
	proc   func() *runner.Process
	err    error
	stream []runner.Command
}

// Capture is not used by downloads.
func (f *fakeRunner) Capture(context.Context, runner.Command) (runner.Result, error) {
	return runner.Result{}, errors.New("not implemented")
}

// Stream records the command and returns the prepared process.
func (f *fakeRunner) Stream(_ context.Context, cmd runner.Command) (*runner.Process, error) {
	f.stream = append(f.stream, cmd)
	if f.err != nil {
		return nil, f.err
	}
	return f.proc(), nil
}

// staticResolver resolves every kind to a bare name.
type staticResolver struct{}

// Resolve returns a PATH-style binary.
func (staticResolver) Resolve(kind domain.ToolKind) (domain.ToolBinary, error) {
	return domain.ToolBinary{Kind: kind, Path: "yt-dlp", Mode: domain.InvocationNative}, nil
}

// titleFunc adapts a function to TitleFetcher.
type titleFunc func(ctx context.Context, url string) (string, error)

// FetchTitle calls f.
func (f titleFunc) FetchTitle(ctx context.Context, url string) (string, error) {
	return f(ctx, url)
}

func linesProcess(stdout, stderr string, exitErr error) func() *runner.Process {
	return func() *runner.Process {
		return runner.NewProcess(strings.NewReader(stdout), strings.NewReader(stderr), func() error { return exitErr })
	}
}

func newTestService(t *testing.T, r *fakeRunner, titles TitleFetcher) (*Service, *jobs.EventBus, *jobs.Manager) {
	t.Helper()
	bus := jobs.NewEventBus(0)
	manager := jobs.NewManager()
	builder := args.NewBuilderForTests(args.Config{
		DownloadDir: filepath.Join(t.TempDir(), "MediaGrabber"),
		TempDir:     t.TempDir(),
	}, time.Now, func(string) bool { return false })

	svc := NewService(Deps{
		Runner:  r,
		Tools:   staticResolver{},
		Builder: builder,
		Titles:  titles,
		Emitter: bus,
		Jobs:    manager,
		Logger:  hclog.NewNullLogger(),
	})
	return svc, bus, manager
}

func failingTitles() TitleFetcher {
	return titleFunc(func(context.Context, string) (string, error) {
		return "", errors.New("no title")
	})
}

func waitResult(t *testing.T, job *jobs.Job) jobs.Result {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	result, err := job.Wait(ctx)
	require.NoError(t, err)
	return result
}

// TestDownloadEmitsSingleCompletion runs a synthetic successful download.
func TestDownloadEmitsSingleCompletion(t *testing.T) {
	stdout := strings.Join([]string{
		"[youtube] Extracting URL: https://youtu.be/abc",
		"[download] Destination: x.mp4",
		"[download]  50.0% of 10MiB at 1MiB/s ETA 00:05",
		"[download] 100% of 10MiB",
	}, "\n")
	r := &fakeRunner{proc: linesProcess(stdout, "", nil)}
	svc, bus, _ := newTestService(t, r, failingTitles())

	job, err := svc.Download(context.Background(), Request{URL: "https://youtu.be/abc", Format: "1080"})
	require.NoError(t, err)
	result := waitResult(t, job)

	assert.Equal(t, domain.PhaseComplete, result.Phase)
	assert.Equal(t, "x.mp4", result.Path)

	events := bus.ForJob(job.ID())
	require.NotEmpty(t, events)
	first := events[0].Payload.(jobs.StatusPayload)
	assert.Equal(t, string(domain.PhaseInitializing), first.Phase)
	assert.Equal(t, "YouTube Video", first.Filename)

	completions := 0
	for _, e := range events {
		if e.Name == jobs.EventComplete {
			completions++
		}
	}
	assert.Equal(t, 1, completions)
	assert.Equal(t, jobs.EventComplete, events[len(events)-1].Name)

	require.Len(t, r.stream, 1)
	cmdArgs := r.stream[0].Args
	assert.Contains(t, cmdArgs, "1080+bestaudio[ext=m4a]/1080+bestaudio/best")
	assert.Equal(t, "https://youtu.be/abc", cmdArgs[len(cmdArgs)-1])
}

// TestDownloadCreatesDownloadDirectory makes the target folder on demand.
func TestDownloadCreatesDownloadDirectory(t *testing.T) {
	r := &fakeRunner{proc: linesProcess("", "", nil)}
	svc, _, _ := newTestService(t, r, nil)

	job, err := svc.Download(context.Background(), Request{URL: "https://youtu.be/abc"})
	require.NoError(t, err)
	waitResult(t, job)

	info, err := os.Stat(svc.deps.Builder.Config().DownloadDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

// TestDownloadLaunchFailureIsSynchronous returns the spawn error and emits nothing.
func TestDownloadLaunchFailureIsSynchronous(t *testing.T) {
	launchErr := &runner.CommandError{Kind: domain.ErrToolLaunchFailed, Command: "yt-dlp", Err: os.ErrNotExist}
	r := &fakeRunner{err: launchErr}
	svc, bus, manager := newTestService(t, r, nil)

	job, err := svc.Download(context.Background(), Request{URL: "https://youtu.be/abc"})
	require.Error(t, err)
	assert.Nil(t, job)
	assert.True(t, errors.Is(err, domain.ErrToolLaunchFailed))
	assert.Empty(t, bus.Since(0))
	assert.False(t, manager.IsRunning())
}

// TestDownloadErrorLineProducesErrorEvent ends the job on a fatal stderr line.
func TestDownloadErrorLineProducesErrorEvent(t *testing.T) {
	exitErr := &runner.CommandError{Kind: domain.ErrToolExitedNonZero, Command: "yt-dlp", ExitCode: 1}
	r := &fakeRunner{proc: linesProcess("", "ERROR: [youtube] abc: Private video\n", exitErr)}
	svc, bus, _ := newTestService(t, r, nil)

	job, err := svc.Download(context.Background(), Request{URL: "https://youtu.be/abc"})
	require.NoError(t, err)
	result := waitResult(t, job)

	assert.Equal(t, domain.PhaseError, result.Phase)
	events := bus.ForJob(job.ID())
	last := events[len(events)-1].Payload.(jobs.StatusPayload)
	assert.Equal(t, "Error: ERROR: [youtube] abc: Private video", last.Status)
}

// TestDownloadTitleUpgrade renames the job once the title resolves.
func TestDownloadTitleUpgrade(t *testing.T) {
	stdoutR, stdoutW := io.Pipe()
	titled := make(chan struct{})
	r := &fakeRunner{proc: func() *runner.Process {
		return runner.NewProcess(stdoutR, strings.NewReader(""), nil)
	}}
	titles := titleFunc(func(context.Context, string) (string, error) {
		defer close(titled)
		return "Real Title", nil
	})
	svc, bus, _ := newTestService(t, r, titles)

	job, err := svc.Download(context.Background(), Request{URL: "https://youtu.be/abc"})
	require.NoError(t, err)

	<-titled
	require.Eventually(t, func() bool {
		return job.Handle().DisplayName() == "Real Title"
	}, 2*time.Second, 5*time.Millisecond)
	_, err = io.WriteString(stdoutW, "[download]  5.0% of 1MiB\n")
	require.NoError(t, err)
	require.NoError(t, stdoutW.Close())
	waitResult(t, job)

	var progress []jobs.ProgressPayload
	for _, e := range bus.ForJob(job.ID()) {
		if p, ok := e.Payload.(jobs.ProgressPayload); ok {
			progress = append(progress, p)
		}
	}
	require.Len(t, progress, 1)
	assert.Equal(t, "Real Title", progress[0].Filename)
}

// TestDownloadUniversalPlaceholderAndWorkDir uses the site profile.
func TestDownloadUniversalPlaceholderAndWorkDir(t *testing.T) {
	r := &fakeRunner{proc: linesProcess("", "", nil)}
	svc, bus, _ := newTestService(t, r, nil)

	job, err := svc.DownloadUniversal(context.Background(), "https://www.tiktok.com/@u/video/1", "tiktok")
	require.NoError(t, err)
	waitResult(t, job)

	first := bus.ForJob(job.ID())[0].Payload.(jobs.StatusPayload)
	assert.Equal(t, "TikTok Download", first.Filename)

	require.Len(t, r.stream, 1)
	assert.Equal(t, svc.deps.Builder.Config().DownloadDir, r.stream[0].Dir)
	assert.Contains(t, r.stream[0].Args, "tiktok:app_version=33.6.3")
}

// TestDownloadRejectsCancelledContext does not start anything.
func TestDownloadRejectsCancelledContext(t *testing.T) {
	r := &fakeRunner{proc: linesProcess("", "", nil)}
	svc, _, _ := newTestService(t, r, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Download(ctx, Request{URL: "https://youtu.be/abc"})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, r.stream)
}
