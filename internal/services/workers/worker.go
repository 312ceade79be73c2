package workers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"

	"github.com/LeiShi1313/readrepeat/internal/models"
)

// JobProcessor handles one or more job types. ProcessJob returns a report
// carrying the result fields; the worker fills in id, status and type.
type JobProcessor interface {
	ProcessJob(ctx context.Context, job *models.ClaimedJob) (*models.JobReport, error)
	CanProcess(jobType models.JobType) bool
}

const (
	defaultReportRetries = 4
	defaultReportBackoff = time.Second
	maxReportBackoff     = 30 * time.Second
)

// Worker polls a JobSource and runs claimed jobs one at a time
type Worker struct {
	id            string
	source        JobSource
	processors    []JobProcessor
	stopChan      chan struct{}
	stopOnce      sync.Once
	wg            sync.WaitGroup
	pollInterval  time.Duration
	reportRetries int
	reportBackoff time.Duration
}

// NewWorker creates a new worker instance
func NewWorker(id string, source JobSource, pollInterval time.Duration) *Worker {
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	return &Worker{
		id:            id,
		source:        source,
		processors:    make([]JobProcessor, 0),
		stopChan:      make(chan struct{}),
		pollInterval:  pollInterval,
		reportRetries: defaultReportRetries,
		reportBackoff: defaultReportBackoff,
	}
}

// SetReportRetry sets how many times a report that failed on the network or
// a server error is resent, and the first wait between attempts
func (w *Worker) SetReportRetry(retries int, initial time.Duration) {
	w.reportRetries = max(retries, 0)
	if initial > 0 {
		w.reportBackoff = initial
	}
}

// RegisterProcessor registers a job processor
func (w *Worker) RegisterProcessor(processor JobProcessor) {
	w.processors = append(w.processors, processor)
}

// Start starts the worker in a goroutine
func (w *Worker) Start(ctx context.Context) {
	w.wg.Add(1)
	go w.run(ctx)
}

// Stop stops the worker and waits for the job in flight
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stopChan) })
	w.wg.Wait()
}

// run polls immediately after a job and waits pollInterval when idle
func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	log.Infof("Worker %s starting", w.id)
	defer log.Infof("Worker %s stopped", w.id)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case <-timer.C:
			worked, err := w.processNextJob(ctx)
			if err != nil {
				log.Warnf("Worker %s: %v", w.id, err)
			}
			if worked {
				timer.Reset(0)
			} else {
				timer.Reset(w.pollInterval)
			}
		}
	}
}

// processNextJob claims, runs and reports one job. It reports whether a job was claimed.
func (w *Worker) processNextJob(ctx context.Context) (bool, error) {
	job, err := w.source.Poll(ctx)
	if err != nil {
		return false, err
	}
	if job == nil {
		return false, nil
	}

	log.Infof("Worker %s claimed job %d (type: %s)", w.id, job.ID, job.Type)

	report := w.runJob(ctx, job)
	resp, err := w.report(ctx, report)
	if err != nil {
		return true, fmt.Errorf("reporting job %d: %w", job.ID, err)
	}

	switch {
	case resp.Superseded:
		log.Infof("Worker %s: job %d was cancelled while running, result discarded", w.id, job.ID)
	case report.Status == models.JobStatusCompleted:
		log.Infof("Worker %s completed job %d", w.id, job.ID)
	default:
		log.Warnf("Worker %s: job %d failed: %s", w.id, job.ID, report.ErrorMessage)
	}
	return true, nil
}

// report sends the result, retrying transient failures with exponential backoff
func (w *Worker) report(ctx context.Context, report *models.JobReport) (*models.ReportResponse, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = w.reportBackoff
	b.MaxInterval = maxReportBackoff
	b.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(w.reportRetries)), ctx)

	var resp *models.ReportResponse
	op := func() error {
		var err error
		resp, err = w.source.Report(ctx, report)
		if err != nil && !retryableReportError(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		log.Warnf("Worker %s: reporting job %d failed, retrying in %v: %v", w.id, report.JobID, wait.Round(time.Millisecond), err)
	}

	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return nil, err
	}
	return resp, nil
}

// retryableReportError is true for network errors, 5xx and 429
func retryableReportError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= http.StatusInternalServerError || statusErr.StatusCode == http.StatusTooManyRequests
	}
	return true
}

func (w *Worker) runJob(ctx context.Context, job *models.ClaimedJob) *models.JobReport {
	processor := w.processorFor(job.Type)
	if processor == nil {
		return failedReport(job, fmt.Sprintf("Unknown job type: %s", job.Type))
	}

	report, err := processor.ProcessJob(ctx, job)
	if err != nil {
		return failedReport(job, err.Error())
	}
	if report == nil {
		report = &models.JobReport{}
	}
	report.JobID = job.ID
	report.JobType = job.Type
	report.Status = models.JobStatusCompleted
	report.ErrorMessage = ""
	return report
}

func (w *Worker) processorFor(jobType models.JobType) JobProcessor {
	for _, p := range w.processors {
		if p.CanProcess(jobType) {
			return p
		}
	}
	return nil
}

func failedReport(job *models.ClaimedJob, message string) *models.JobReport {
	return &models.JobReport{
		JobID:        job.ID,
		JobType:      job.Type,
		Status:       models.JobStatusFailed,
		ErrorMessage: message,
	}
}

// WorkerPool manages multiple workers
type WorkerPool struct {
	workers []*Worker
	mu      sync.RWMutex
	started bool
}

// NewWorkerPool creates workerCount workers named <name>-<n>
func NewWorkerPool(name string, source JobSource, workerCount int, pollInterval time.Duration) *WorkerPool {
	if workerCount <= 0 {
		workerCount = 1
	}
	pool := &WorkerPool{
		workers: make([]*Worker, workerCount),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewWorker(fmt.Sprintf("%s-%d", name, i+1), source, pollInterval)
	}

	return pool
}

// RegisterProcessor registers a processor with all workers
func (p *WorkerPool) RegisterProcessor(processor JobProcessor) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, worker := range p.workers {
		worker.RegisterProcessor(processor)
	}
}

// Start starts all workers
func (p *WorkerPool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return fmt.Errorf("worker pool already started")
	}

	log.Infof("Starting worker pool with %d workers", len(p.workers))

	for _, worker := range p.workers {
		worker.Start(ctx)
	}

	p.started = true
	return nil
}

// Stop stops all workers gracefully
func (p *WorkerPool) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	log.Info("Stopping worker pool")

	for _, worker := range p.workers {
		worker.Stop()
	}

	p.started = false
}

// Size returns the number of workers
func (p *WorkerPool) Size() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.workers)
}
