package tasks

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

const taskTimeout = 5 * time.Minute

// Runner drains a fixed batch of tasks through a bounded worker pool and
// returns when every task has finished or the context is cancelled. A
// failed task is logged and skipped; it never aborts the rest of the run.
type Runner struct {
	workerCount int
}

func NewRunner(workerCount int) *Runner {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Runner{workerCount: workerCount}
}

// Run executes all tasks and reports how many failed.
func (r *Runner) Run(ctx context.Context, tasks []TaskInterface) int {
	queue := make(chan TaskInterface)
	var failed atomic.Int64

	var wg sync.WaitGroup
	for i := 0; i < r.workerCount; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for task := range queue {
				if err := r.executeTask(ctx, id, task); err != nil {
					failed.Add(1)
				}
			}
		}(i)
	}

enqueue:
	for _, task := range tasks {
		select {
		case queue <- task:
		case <-ctx.Done():
			slog.Warn("Run cancelled, skipping remaining tasks", "error", ctx.Err())
			break enqueue
		}
	}
	close(queue)
	wg.Wait()

	return int(failed.Load())
}

func (r *Runner) executeTask(ctx context.Context, workerID int, task TaskInterface) error {
	task.Start()

	taskCtx, cancel := context.WithTimeout(ctx, taskTimeout)
	defer cancel()

	err := task.Execute(taskCtx)
	if err != nil {
		slog.Error("Worker task execution failed",
			"worker_id", workerID,
			"type", string(task.GetType()),
			"source", task.GetSourceName(),
			"id", task.GetID(),
			"error", err)
	}
	return err
}
