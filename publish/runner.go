package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/pevans/newsfetch/logger"
	"github.com/pevans/newsfetch/news"
)

// StepResult records the outcome of one command. ExitCode is -1 when the
// process could not be started.
type StepResult struct {
	Command  string        `json:"command"`
	ExitCode int           `json:"exit_code"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Failed reports whether the command did not exit cleanly.
func (r StepResult) Failed() bool {
	return r.ExitCode != 0 || r.Error != ""
}

// Executor starts a command in dir and waits for it.
type Executor interface {
	Execute(ctx context.Context, dir string, cmd Command, stdout, stderr io.Writer) (exitCode int, err error)
}

// ExecExecutor runs commands as child processes.
type ExecExecutor struct{}

// Execute implements Executor. A non-zero exit is reported through exitCode
// with a nil error; err is set only when the process could not run.
func (ExecExecutor) Execute(ctx context.Context, dir string, cmd Command, stdout, stderr io.Writer) (int, error) {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = dir
	c.Stdout = stdout
	c.Stderr = stderr

	err := c.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}

// Runner executes command sequences without stopping on failure.
type Runner struct {
	exec   Executor
	dir    string
	stdout io.Writer
	stderr io.Writer
	log    logger.Logger
}

// NewRunner creates a runner that executes commands in dir, streaming their
// output to the process's stdout and stderr.
func NewRunner(executor Executor, dir string, log logger.Logger) *Runner {
	if executor == nil {
		executor = ExecExecutor{}
	}
	return &Runner{
		exec:   executor,
		dir:    dir,
		stdout: os.Stdout,
		stderr: os.Stderr,
		log:    log,
	}
}

// SetOutput redirects command output.
func (r *Runner) SetOutput(stdout, stderr io.Writer) {
	r.stdout = stdout
	r.stderr = stderr
}

// Run executes every command in order and returns one result per command.
// A failing command is logged and the sequence continues; nothing is
// returned as an error.
func (r *Runner) Run(ctx context.Context, cmds []Command) []StepResult {
	results := make([]StepResult, 0, len(cmds))

	for _, cmd := range cmds {
		line := cmd.String()
		r.log.Info("Running "+line, logger.String("command", line))

		start := time.Now()
		code, err := r.exec.Execute(ctx, r.dir, cmd, r.stdout, r.stderr)
		result := StepResult{
			Command:  line,
			ExitCode: code,
			Duration: time.Since(start),
		}
		if err != nil {
			result.Error = err.Error()
		}

		if result.Failed() {
			failure := &news.Error{Kind: news.KindPublish, Op: line, Err: stepError(result)}
			r.log.Warn("Publish step failed, continuing",
				logger.String("command", line),
				logger.Int("exit_code", code),
				logger.Error(failure))
		}

		results = append(results, result)
	}

	return results
}

// Failures returns the results that did not exit cleanly.
func Failures(results []StepResult) []StepResult {
	var failed []StepResult
	for _, r := range results {
		if r.Failed() {
			failed = append(failed, r)
		}
	}
	return failed
}

func stepError(r StepResult) error {
	if r.Error != "" {
		return errors.New(r.Error)
	}
	return fmt.Errorf("exit status %d", r.ExitCode)
}
