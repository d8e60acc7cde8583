package main

import (
	"fmt"

	"github.com/pevans/newsfetch/pipeline"
	"github.com/pevans/newsfetch/publish"
	"github.com/spf13/cobra"
)

func newRunCommand(a *app) *cobra.Command {
	var doPublish bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Extract, clean and save every configured source once",
		Long: `Run extracts each configured source in order, cleans the articles and
saves them to the output file. With --publish the dvc and git steps run
afterwards, exactly as in the scheduled pipeline.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dag := a.pipeline.ManualDAG()
			if doPublish {
				dag = a.pipeline.DAG()
			}

			results, err := pipeline.NewRunner(a.log).Run(cmd.Context(), dag)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Data saved to %s\n", a.cfg.OutputPath)
			if doPublish {
				printPublishSummary(cmd, results)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&doPublish, "publish", false, "run the dvc and git publish steps after saving")

	return cmd
}

// printPublishSummary reports how many publish steps exited non-zero.
func printPublishSummary(cmd *cobra.Command, results []pipeline.TaskResult) {
	out := cmd.OutOrStdout()
	for _, r := range results {
		steps, ok := decodeSteps(r)
		if !ok {
			continue
		}
		failed := publish.Failures(steps)
		fmt.Fprintf(out, "%s: %d steps, %d failed\n", r.Task, len(steps), len(failed))
		for _, f := range failed {
			fmt.Fprintf(out, "  - %s (exit %d)\n", f.Command, f.ExitCode)
		}
	}
}
