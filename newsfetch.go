// Package newsfetch wires the extract, clean, save and publish stages into a
// pipeline. Each stage takes the previous stage's output as its argument, so
// the stages can run in one process or as separate scheduled tasks.
package newsfetch

import (
	"context"
	"fmt"

	"github.com/pevans/newsfetch/clean"
	"github.com/pevans/newsfetch/config"
	"github.com/pevans/newsfetch/extract"
	"github.com/pevans/newsfetch/logger"
	"github.com/pevans/newsfetch/news"
	"github.com/pevans/newsfetch/publish"
	"github.com/pevans/newsfetch/store"
)

// ExtractOutput is what the extract stage hands to the clean stage. Links are
// only carried for visibility; no later stage reads them.
type ExtractOutput = extract.Result

// SaveOutput describes the file written by the save stage.
type SaveOutput struct {
	Path string `json:"path"`
	Rows int    `json:"rows"`
}

// Pipeline holds the configured stages.
type Pipeline struct {
	cfg       *config.Config
	extractor *extract.Extractor
	publisher *publish.Runner
	log       logger.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithExtractor replaces the extractor built from the config.
func WithExtractor(e *extract.Extractor) Option {
	return func(p *Pipeline) { p.extractor = e }
}

// WithPublisher replaces the command runner built from the config.
func WithPublisher(r *publish.Runner) Option {
	return func(p *Pipeline) { p.publisher = r }
}

// New builds a pipeline from cfg.
func New(cfg *config.Config, log logger.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg: cfg,
		extractor: extract.New(log,
			extract.WithSelectors(cfg.Selectors),
			extract.WithUserAgent(cfg.UserAgent)),
		publisher: publish.NewRunner(publish.ExecExecutor{}, cfg.Publish.RepoDir, log),
		log:       log,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Extract fetches every configured source in order and concatenates the
// results. Ids restart at 1 for each source. The first failing source aborts
// the stage.
func (p *Pipeline) Extract(ctx context.Context) (*ExtractOutput, error) {
	out := &ExtractOutput{Links: news.LinkList{}, Articles: []news.Article{}}

	for _, url := range p.cfg.Sources {
		result, err := p.extractor.Extract(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("failed to extract %s: %w", url, err)
		}
		out.Links = append(out.Links, result.Links...)
		out.Articles = append(out.Articles, result.Articles...)
	}

	return out, nil
}

// Clean normalizes the title and description of every article in place.
func (p *Pipeline) Clean(articles []news.Article) []news.Article {
	cleaned := clean.Articles(articles)
	p.log.Info(fmt.Sprintf("Cleaned %d articles", len(cleaned)), logger.Int("articles", len(cleaned)))
	return cleaned
}

// Save writes articles to the configured output path.
func (p *Pipeline) Save(articles []news.Article) (*SaveOutput, error) {
	path := p.cfg.OutputPath
	if err := store.WriteCSV(path, articles); err != nil {
		return nil, err
	}

	p.log.Info("Data saved to "+path, logger.String("path", path), logger.Int("rows", len(articles)))
	return &SaveOutput{Path: path, Rows: len(articles)}, nil
}

// Snapshot registers the output file with dvc and pushes it. Command
// failures are recorded in the results, never returned.
func (p *Pipeline) Snapshot(ctx context.Context) []publish.StepResult {
	pc := p.cfg.Publish
	return p.publisher.Run(ctx, publish.SnapshotCommands(pc.DVCBin, pc.DVCTarget))
}

// SourceControl commits everything in the repository and pushes it.
// Command failures are recorded in the results, never returned.
func (p *Pipeline) SourceControl(ctx context.Context) []publish.StepResult {
	pc := p.cfg.Publish
	return p.publisher.Run(ctx, publish.SourceControlCommands(pc.GitBin, pc.CommitMessage, pc.Remote, pc.Branch))
}

// RunManual extracts, cleans and saves without publishing.
func (p *Pipeline) RunManual(ctx context.Context) (*SaveOutput, error) {
	extracted, err := p.Extract(ctx)
	if err != nil {
		return nil, err
	}

	return p.Save(p.Clean(extracted.Articles))
}
