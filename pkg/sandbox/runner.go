package sandbox

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/google/uuid"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/scenesmith/scenesmith/pkg/api"
	"github.com/scenesmith/scenesmith/pkg/debug"
	"github.com/scenesmith/scenesmith/pkg/observability"
)

const (
	sourceFileName   = "scene.py"
	containerWorkDir = "/manim"
	artifactExt      = ".mp4"
	maxLogBytes      = 1 << 20
	teardownTimeout  = 30 * time.Second
)

// Notifier receives best-effort lifecycle notifications during an
// execution. Notification delivery never affects the execution result.
type Notifier interface {
	Notify(ctx context.Context, content, id string, status api.NotificationStatus)
}

// Result is the outcome of one render execution. FailureReason is empty
// on success; a zero exit code with no artifact is still a failure.
type Result struct {
	RequestID     string
	ExitCode      int64
	Log           string
	ArtifactPath  string
	FailureReason string
}

// Success reports whether the execution produced an artifact.
func (r *Result) Success() bool {
	return r.FailureReason == ""
}

// dockerAPI is the subset of the Docker client the runner uses. Tests
// substitute a fake.
type dockerAPI interface {
	ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, containerName string) (container.CreateResponse, error)
	ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error
	ContainerWait(ctx context.Context, containerID string, condition container.WaitCondition) (<-chan container.WaitResponse, <-chan error)
	ContainerLogs(ctx context.Context, containerID string, options container.LogsOptions) (io.ReadCloser, error)
	ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error
	ImagePull(ctx context.Context, refStr string, options image.PullOptions) (io.ReadCloser, error)
	Close() error
}

// Config holds the runner settings.
type Config struct {
	// Image is the pinned container image used for every render.
	Image string
	// MediaRoot is the host directory under which each request gets its
	// own working area.
	MediaRoot string
	// Timeout bounds a single render from container create to exit.
	Timeout time.Duration
}

// Runner executes generated source in one-shot Docker containers.
type Runner struct {
	cfg       Config
	logger    *slog.Logger
	newClient func() (dockerAPI, error)
}

// NewRunner creates a runner that connects to the Docker daemon from
// the environment (DOCKER_HOST etc.) on each execution.
func NewRunner(cfg Config, logger *slog.Logger) *Runner {
	return &Runner{
		cfg:    cfg,
		logger: logger,
		newClient: func() (dockerAPI, error) {
			return client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
		},
	}
}

// Execute renders source in a fresh container and returns the outcome.
// It never returns an error: provisioning failures, non-zero exits,
// missing artifacts, and panics all become a Result with a failure
// reason. The container and client connection are released exactly once
// on every path.
func (r *Runner) Execute(ctx context.Context, source string, notify Notifier) *Result {
	requestID := uuid.New().String()
	res := &Result{RequestID: requestID}
	start := time.Now()

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("render panicked", "request_id", requestID, "panic", rec)
			res.FailureReason = fmt.Sprintf("internal error: %v", rec)
		}
		status := "success"
		if !res.Success() {
			status = "failure"
		}
		observability.RenderExecutionsTotal.WithLabelValues(status).Inc()
		observability.RenderDuration.Observe(time.Since(start).Seconds())
		r.logger.Info("render finished",
			"request_id", requestID,
			"status", status,
			"exit_code", res.ExitCode,
			"duration", time.Since(start))
		if res.Success() {
			r.sendNotification(ctx, notify, "Render completed", requestID, api.StatusCompleted)
		} else {
			r.sendNotification(ctx, notify, "Render failed: "+res.FailureReason, requestID, api.StatusFailed)
		}
	}()

	r.sendNotification(ctx, notify, "Preparing render environment", requestID, api.StatusStarted)
	r.render(ctx, source, notify, res)
	return res
}

func (r *Runner) render(ctx context.Context, source string, notify Notifier, res *Result) {
	workdir, err := r.createWorkingArea(res.RequestID, source)
	if err != nil {
		res.FailureReason = fmt.Sprintf("preparing working area: %s", err)
		return
	}

	cli, err := r.newClient()
	if err != nil {
		res.FailureReason = fmt.Sprintf("connecting to docker: %s", err)
		return
	}
	defer cli.Close()

	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	created, err := r.createContainer(ctx, cli, workdir, source, res.RequestID)
	if err != nil {
		res.FailureReason = fmt.Sprintf("creating container: %s", err)
		return
	}
	debug.Log("sandbox", "container created",
		"container_id", created.ID, "request_id", res.RequestID, "workdir", workdir)

	// Removal must happen on every path below, panics included. The
	// fresh context keeps teardown working after a render timeout.
	defer func() {
		rmCtx, cancel := context.WithTimeout(context.Background(), teardownTimeout)
		defer cancel()
		if err := cli.ContainerRemove(rmCtx, created.ID, container.RemoveOptions{Force: true}); err != nil {
			r.logger.Warn("removing container", "container_id", created.ID, "error", err)
		}
	}()

	if err := cli.ContainerStart(ctx, created.ID, container.StartOptions{}); err != nil {
		res.FailureReason = fmt.Sprintf("starting container: %s", err)
		return
	}

	r.sendNotification(ctx, notify, "Rendering animation", res.RequestID, api.StatusRunning)

	waitCh, errCh := cli.ContainerWait(ctx, created.ID, container.WaitConditionNotRunning)
	select {
	case err := <-errCh:
		res.FailureReason = fmt.Sprintf("waiting for container: %s", err)
		return
	case status := <-waitCh:
		res.ExitCode = status.StatusCode
	}

	res.Log = r.collectLogs(cli, created.ID)
	debug.Raw("sandbox", res.Log)

	if res.ExitCode != 0 {
		res.FailureReason = fmt.Sprintf("render exited with status %d", res.ExitCode)
		return
	}

	artifact := FindArtifact(filepath.Join(workdir, "media"), artifactExt)
	if artifact == "" {
		res.FailureReason = "render succeeded but produced no " + artifactExt + " artifact"
		return
	}
	res.ArtifactPath = artifact
}

func (r *Runner) createContainer(ctx context.Context, cli dockerAPI, workdir, source, requestID string) (container.CreateResponse, error) {
	scene := DetectSceneName(source)
	cfg := &container.Config{
		Image:      r.cfg.Image,
		Cmd:        []string{"manim", "-ql", "--disable_caching", sourceFileName, scene},
		WorkingDir: containerWorkDir,
	}
	hostCfg := &container.HostConfig{
		Binds: []string{workdir + ":" + containerWorkDir + ":rw"},
	}
	name := "scenesmith-" + requestID

	created, err := cli.ContainerCreate(ctx, cfg, hostCfg, nil, nil, name)
	if cerrdefs.IsNotFound(err) {
		r.logger.Info("pulling image", "image", r.cfg.Image)
		rc, perr := cli.ImagePull(ctx, r.cfg.Image, image.PullOptions{})
		if perr != nil {
			return container.CreateResponse{}, fmt.Errorf("pulling image %s: %w", r.cfg.Image, perr)
		}
		_, _ = io.Copy(io.Discard, rc)
		rc.Close()
		created, err = cli.ContainerCreate(ctx, cfg, hostCfg, nil, nil, name)
	}
	return created, err
}

// createWorkingArea makes the per-request host directory and writes the
// source file verbatim. The path is absolute because Docker binds
// require it.
func (r *Runner) createWorkingArea(requestID, source string) (string, error) {
	workdir, err := filepath.Abs(filepath.Join(r.cfg.MediaRoot, requestID))
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(workdir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(workdir, sourceFileName), []byte(source), 0o644); err != nil {
		return "", err
	}
	return workdir, nil
}

// collectLogs fetches the container's combined stdout and stderr. The
// daemon multiplexes both into one stream; ordering holds within each
// stream but not across them. Uses a fresh context so logs remain
// retrievable after a render timeout.
func (r *Runner) collectLogs(cli dockerAPI, containerID string) string {
	logCtx, cancel := context.WithTimeout(context.Background(), teardownTimeout)
	defer cancel()

	rc, err := cli.ContainerLogs(logCtx, containerID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
	})
	if err != nil {
		r.logger.Warn("collecting container logs", "container_id", containerID, "error", err)
		return ""
	}
	defer rc.Close()

	var buf strings.Builder
	if _, err := stdcopy.StdCopy(&buf, &buf, io.LimitReader(rc, maxLogBytes)); err != nil {
		r.logger.Warn("demuxing container logs", "container_id", containerID, "error", err)
	}
	return buf.String()
}

func (r *Runner) sendNotification(ctx context.Context, notify Notifier, content, id string, status api.NotificationStatus) {
	if notify == nil {
		return
	}
	notify.Notify(ctx, content, id, status)
}

