package worker

import (
	"context"
	"log/slog"
	"time"

	"post-orchestrator/internal/domain"
	"post-orchestrator/internal/usecase"
)

const (
	defaultPollInterval = 500 * time.Millisecond
	jobTimeout          = 120 * time.Second
	initialBackoff      = 1 * time.Second
	maxBackoff          = 5 * time.Minute
)

// JobWorker drains the post-job queue. Each job runs the post pipeline with
// the article set captured at enqueue time.
type JobWorker struct {
	jobRepo      domain.PostJobRepository
	postPipeline usecase.PostPipelineUsecase
	logger       *slog.Logger
	stopChan     chan struct{}
	backoff      time.Duration
}

// NewJobWorker creates the queue worker.
func NewJobWorker(
	jobRepo domain.PostJobRepository,
	postPipeline usecase.PostPipelineUsecase,
	logger *slog.Logger,
) *JobWorker {
	return &JobWorker{
		jobRepo:      jobRepo,
		postPipeline: postPipeline,
		logger:       logger,
		stopChan:     make(chan struct{}),
	}
}

func (w *JobWorker) Start() {
	w.logger.Info("starting post job worker")
	go w.run()
}

func (w *JobWorker) Stop() {
	w.logger.Info("stopping post job worker")
	close(w.stopChan)
}

func (w *JobWorker) run() {
	ticker := time.NewTicker(defaultPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			w.processNextJob()
			if w.backoff > 0 {
				ticker.Reset(w.backoff)
			} else {
				ticker.Reset(defaultPollInterval)
			}
		}
	}
}

func (w *JobWorker) processNextJob() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	job, err := w.jobRepo.AcquireNextJob(ctx)
	if err != nil {
		w.logger.Error("failed to acquire next job", "error", err)
		w.backoff = w.nextBackoff(w.backoff)
		return
	}
	if job == nil {
		w.backoff = 0
		return
	}

	w.logger.Info("processing post job",
		"job_id", job.ID,
		"workflow_id", job.WorkflowID,
		"topic", job.Topic,
		"articles", len(job.Articles))

	_, processErr := w.postPipeline.Execute(ctx, usecase.PostPipelineInput{
		Topic:      job.Topic,
		Model:      job.Model,
		SessionID:  job.SessionID.String(),
		WorkflowID: job.WorkflowID,
		Articles:   job.Articles,
	})

	status := domain.JobStatusCompleted
	var errMsg *string
	if processErr != nil {
		status = domain.JobStatusFailed
		msg := processErr.Error()
		errMsg = &msg
		w.backoff = w.nextBackoff(w.backoff)
		w.logger.Warn("worker backing off", "job_id", job.ID, "backoff", w.backoff, "error", processErr)
	} else {
		w.backoff = 0
		w.logger.Info("post job completed", "job_id", job.ID, "workflow_id", job.WorkflowID)
	}

	if err := w.jobRepo.UpdateStatus(ctx, job.ID, status, errMsg); err != nil {
		w.logger.Error("failed to update job status", "job_id", job.ID, "error", err)
	}
}

func (w *JobWorker) nextBackoff(current time.Duration) time.Duration {
	if current == 0 {
		return initialBackoff
	}
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}
