// Package pipeline runs named tasks in a fixed order, handing each task the
// JSON-encoded output of the one before it.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pevans/newsfetch/logger"
)

// TaskFunc runs one task. input is the previous task's JSON output, or nil
// for the first task.
type TaskFunc func(ctx context.Context, input json.RawMessage) (any, error)

// Task is a named, independently runnable unit of work.
type Task struct {
	Name string
	Run  TaskFunc
}

// DAG is a linear sequence of tasks.
type DAG struct {
	Name  string
	Tasks []Task
}

// Task looks up a task by name.
func (d DAG) Task(name string) (Task, bool) {
	for _, t := range d.Tasks {
		if t.Name == name {
			return t, true
		}
	}
	return Task{}, false
}

// Names returns the task names in execution order.
func (d DAG) Names() []string {
	names := make([]string, len(d.Tasks))
	for i, t := range d.Tasks {
		names[i] = t.Name
	}
	return names
}

// TaskError reports which task failed.
type TaskError struct {
	Task string
	Err  error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %s failed: %v", e.Task, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}

// TaskResult is the JSON output of a completed task.
type TaskResult struct {
	Task     string          `json:"task"`
	Output   json.RawMessage `json:"output"`
	Duration time.Duration   `json:"duration"`
}

// RunTask runs a single task and encodes its output.
func RunTask(ctx context.Context, task Task, input json.RawMessage) (json.RawMessage, error) {
	out, err := task.Run(ctx, input)
	if err != nil {
		return nil, &TaskError{Task: task.Name, Err: err}
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, &TaskError{Task: task.Name, Err: fmt.Errorf("failed to encode output: %w", err)}
	}

	return data, nil
}

// Runner executes DAGs.
type Runner struct {
	log logger.Logger
}

// NewRunner creates a runner that logs task progress to log.
func NewRunner(log logger.Logger) *Runner {
	return &Runner{log: log}
}

// Run executes the tasks of dag in order. It stops at the first failing task
// and returns the results of the tasks that completed along with a
// *TaskError.
func (r *Runner) Run(ctx context.Context, dag DAG) ([]TaskResult, error) {
	runID := uuid.New().String()
	log := r.log.With(logger.String("dag", dag.Name), logger.String("run_id", runID))
	log.Info("Starting run", logger.Strings("tasks", dag.Names()))

	results := make([]TaskResult, 0, len(dag.Tasks))
	var input json.RawMessage

	for _, task := range dag.Tasks {
		if err := ctx.Err(); err != nil {
			return results, &TaskError{Task: task.Name, Err: err}
		}

		log.Info("Running task "+task.Name, logger.String("task", task.Name))
		start := time.Now()

		output, err := RunTask(ctx, task, input)
		elapsed := time.Since(start)
		if err != nil {
			log.Error("Task failed", logger.String("task", task.Name), logger.Duration("elapsed", elapsed), logger.Error(err))
			return results, err
		}

		log.Info("Task finished", logger.String("task", task.Name), logger.Duration("elapsed", elapsed))
		results = append(results, TaskResult{Task: task.Name, Output: output, Duration: elapsed})
		input = output
	}

	log.Info("Run finished")
	return results, nil
}

// Decode unmarshals a task input into v. An empty input is an error so a
// task run out of order fails loudly.
func Decode(input json.RawMessage, v any) error {
	if len(input) == 0 {
		return errors.New("missing task input")
	}
	if err := json.Unmarshal(input, v); err != nil {
		return fmt.Errorf("failed to decode task input: %w", err)
	}
	return nil
}
