package downloader

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"uranus/pkg/logger"
)

// maxOutput bounds how much subprocess output is kept on a result
const maxOutput = 4096

// Job is one artifact retrieval: shell commands run in order inside Dir
type Job struct {
	Dir      string
	Commands []string
	PostID   string
	Kind     string
	Artifact string
}

// Result is the outcome of a Job
type Result struct {
	Job      Job
	Success  bool
	ExitCode int
	Output   string
	Error    error
	Duration time.Duration
}

// Runner executes download jobs through a shell, one process at a time
type Runner struct {
	shell  string
	logger logger.Logger
}

// NewRunner creates a Runner that invokes commands as `<shell> -c <command>`
func NewRunner(shell string, log logger.Logger) *Runner {
	if log == nil {
		log = logger.GetLogger()
	}
	if shell == "" {
		shell = "bash"
	}
	return &Runner{shell: shell, logger: log}
}

// Run executes the commands of job in order and stops at the first failure.
// It blocks until the last process exits; it never retries.
func (r *Runner) Run(ctx context.Context, job Job) Result {
	start := time.Now()
	result := Result{Job: job}

	for i, command := range job.Commands {
		out, code, err := r.exec(ctx, job.Dir, command)
		result.Output = out
		result.ExitCode = code
		if err != nil {
			result.Error = fmt.Errorf("step %d of %d failed: %w", i+1, len(job.Commands), err)
			result.Duration = time.Since(start)
			r.logger.WithError(err).ErrorWithFields("Download command failed", map[string]interface{}{
				"post_id":   job.PostID,
				"kind":      job.Kind,
				"artifact":  job.Artifact,
				"step":      i + 1,
				"exit_code": code,
				"output":    out,
			})
			return result
		}
	}

	result.Success = true
	result.Duration = time.Since(start)
	r.logger.DebugWithFields("Download command completed", map[string]interface{}{
		"post_id":  job.PostID,
		"kind":     job.Kind,
		"artifact": job.Artifact,
		"duration": result.Duration,
	})
	return result
}

func (r *Runner) exec(ctx context.Context, dir, command string) (string, int, error) {
	cmd := exec.CommandContext(ctx, r.shell, "-c", command)
	cmd.Dir = dir

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	out := strings.TrimSpace(buf.String())
	if len(out) > maxOutput {
		out = out[len(out)-maxOutput:]
	}

	if err != nil {
		var exitErr *exec.ExitError
		if stderrors.As(err, &exitErr) {
			return out, exitErr.ExitCode(), err
		}
		return out, -1, err
	}
	return out, 0, nil
}
