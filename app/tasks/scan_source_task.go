package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/crobledo/vulnwatch/app/pipeline"
	"github.com/crobledo/vulnwatch/app/source"
)

// ScanSourceTask fetches one watched source and runs every extracted text
// unit through the detection pipeline. One task per source per run.
type ScanSourceTask struct {
	Task
	src     source.Source
	fetcher *source.Fetcher
	pipe    *pipeline.Pipeline
	stats   pipeline.Stats
}

func NewScanSourceTask(src source.Source, fetcher *source.Fetcher, pipe *pipeline.Pipeline) *ScanSourceTask {
	return &ScanSourceTask{
		Task:    NewTask(TaskTypeScanSource, src.Name),
		src:     src,
		fetcher: fetcher,
		pipe:    pipe,
	}
}

// Stats reports the pipeline outcomes of the scan. Valid after Execute
// has returned.
func (t *ScanSourceTask) Stats() pipeline.Stats {
	return t.stats
}

func (t *ScanSourceTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	resolved, units, err := t.fetcher.Fetch(ctx, t.src)
	if err != nil {
		return fmt.Errorf("failed to fetch source: %w", err)
	}

	stats, err := t.pipe.ScanUnits(units)
	t.stats = stats
	if err != nil {
		return fmt.Errorf("failed to scan source: %w", err)
	}

	slog.Info("Task completed",
		"type", "ScanSource",
		"source", t.SourceName,
		"kind", string(resolved.Kind),
		"duration", t.GetDuration(),
		"units", stats.Units,
		"novel", stats.Novel,
		"duplicates", stats.Duplicate,
		"rejected", stats.Rejected)

	return nil
}
