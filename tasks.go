package newsfetch

import (
	"context"
	"encoding/json"

	"github.com/pevans/newsfetch/news"
	"github.com/pevans/newsfetch/pipeline"
)

// DAGName identifies the scheduled pipeline.
const DAGName = "news_extraction"

// Task names, in execution order.
const (
	TaskExtract = "extract_task"
	TaskClean   = "clean_task"
	TaskSave    = "save_task"
	TaskDVCPush = "dvc_push_task"
	TaskGitPush = "git_push_task"
)

// DAG returns the scheduled pipeline: extract, clean, save, then the two
// publish steps. Every task decodes its input from the previous task's JSON
// output rather than sharing memory with it.
func (p *Pipeline) DAG() pipeline.DAG {
	return pipeline.DAG{
		Name: DAGName,
		Tasks: []pipeline.Task{
			{Name: TaskExtract, Run: p.extractTask},
			{Name: TaskClean, Run: p.cleanTask},
			{Name: TaskSave, Run: p.saveTask},
			{Name: TaskDVCPush, Run: p.dvcPushTask},
			{Name: TaskGitPush, Run: p.gitPushTask},
		},
	}
}

// ManualDAG is the extract, clean and save portion of DAG.
func (p *Pipeline) ManualDAG() pipeline.DAG {
	dag := p.DAG()
	dag.Name = DAGName + "_manual"
	dag.Tasks = dag.Tasks[:3]
	return dag
}

func (p *Pipeline) extractTask(ctx context.Context, _ json.RawMessage) (any, error) {
	return p.Extract(ctx)
}

func (p *Pipeline) cleanTask(_ context.Context, input json.RawMessage) (any, error) {
	var extracted ExtractOutput
	if err := pipeline.Decode(input, &extracted); err != nil {
		return nil, err
	}
	return p.Clean(extracted.Articles), nil
}

func (p *Pipeline) saveTask(_ context.Context, input json.RawMessage) (any, error) {
	var articles []news.Article
	if err := pipeline.Decode(input, &articles); err != nil {
		return nil, err
	}
	return p.Save(articles)
}

func (p *Pipeline) dvcPushTask(ctx context.Context, _ json.RawMessage) (any, error) {
	return p.Snapshot(ctx), nil
}

func (p *Pipeline) gitPushTask(ctx context.Context, _ json.RawMessage) (any, error) {
	return p.SourceControl(ctx), nil
}
