package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pevans/newsfetch"
	"github.com/pevans/newsfetch/pipeline"
	"github.com/pevans/newsfetch/publish"
	"github.com/spf13/cobra"
)

func newTaskCommand(a *app) *cobra.Command {
	var inputPath, outputPath string

	cmd := &cobra.Command{
		Use:   "task <name>",
		Short: "Run a single pipeline task",
		Long: fmt.Sprintf(`Run one named task of the scheduled pipeline. The task reads the previous
task's JSON output from --input ("-" for stdin) and writes its own output as
JSON to --output (stdout by default).

Tasks, in order: %s`, strings.Join([]string{
			newsfetch.TaskExtract, newsfetch.TaskClean, newsfetch.TaskSave,
			newsfetch.TaskDVCPush, newsfetch.TaskGitPush,
		}, ", ")),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, ok := a.pipeline.DAG().Task(args[0])
			if !ok {
				return fmt.Errorf("unknown task: %s", args[0])
			}

			input, err := readInput(cmd.InOrStdin(), inputPath)
			if err != nil {
				return err
			}

			output, err := pipeline.RunTask(cmd.Context(), task, input)
			if err != nil {
				return err
			}

			return writeOutput(cmd.OutOrStdout(), outputPath, output)
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", `file holding the previous task's output ("-" for stdin)`)
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "file to write the task output to (default stdout)")

	return cmd
}

func readInput(stdin io.Reader, path string) (json.RawMessage, error) {
	var (
		data []byte
		err  error
	)
	switch path {
	case "":
		return nil, nil
	case "-":
		data, err = io.ReadAll(stdin)
	default:
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read task input: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("task input is not valid JSON")
	}
	return data, nil
}

func writeOutput(stdout io.Writer, path string, output json.RawMessage) error {
	data := append(output, '\n')
	if path == "" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write task output: %w", err)
	}
	return nil
}

// decodeSteps returns the publish step results carried by a publish task's
// output.
func decodeSteps(r pipeline.TaskResult) ([]publish.StepResult, bool) {
	if r.Task != newsfetch.TaskDVCPush && r.Task != newsfetch.TaskGitPush {
		return nil, false
	}
	var steps []publish.StepResult
	if err := json.Unmarshal(r.Output, &steps); err != nil {
		return nil, false
	}
	return steps, true
}
