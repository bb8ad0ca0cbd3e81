package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
	idgen "github.com/riskibarqy/scout-pro/internal/platform/id"
	"github.com/riskibarqy/scout-pro/internal/platform/logging"
)

type JobState string

const (
	JobStatePending   JobState = "pending"
	JobStateRunning   JobState = "running"
	JobStateCompleted JobState = "completed"
	JobStateFailed    JobState = "failed"
	JobStateCancelled JobState = "cancelled"
)

const maxRetainedJobs = 32

func (s JobState) Terminal() bool {
	return s == JobStateCompleted || s == JobStateFailed || s == JobStateCancelled
}

// SyncJobStatus is a polled snapshot of a background sync.
type SyncJobStatus struct {
	ID         string      `json:"id"`
	State      JobState    `json:"state"`
	Percent    int         `json:"percent"`
	Step       string      `json:"step"`
	Report     *SyncReport `json:"report,omitempty"`
	Error      string      `json:"error,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	FinishedAt *time.Time  `json:"finished_at,omitempty"`
}

type syncRunner interface {
	Run(ctx context.Context, opts SyncOptions) (SyncReport, error)
}

type syncJob struct {
	status SyncJobStatus
	cancel context.CancelFunc
	done   chan struct{}
}

// SyncJobService runs roster syncs in the background on a single-worker pool.
// A start request while a sync is pending or running is rejected with ErrSyncInProgress.
type SyncJobService struct {
	runner syncRunner
	pool   *ants.Pool
	ids    idgen.Generator
	logger *logging.Logger
	now    func() time.Time
	active atomic.Bool

	mu    sync.RWMutex
	jobs  map[string]*syncJob
	order []string
}

func NewSyncJobService(runner syncRunner, ids idgen.Generator, logger *logging.Logger) (*SyncJobService, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if ids == nil {
		ids = idgen.NewUUIDGenerator()
	}

	p, err := ants.NewPool(1,
		ants.WithPanicHandler(func(v any) {
			logger.Error("sync job panicked", "panic", fmt.Sprint(v))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("create sync job pool: %w", err)
	}

	return &SyncJobService{
		runner: runner,
		pool:   p,
		ids:    ids,
		logger: logger,
		now:    time.Now,
		jobs:   make(map[string]*syncJob),
	}, nil
}

// Start queues a sync detached from ctx's cancellation; use Cancel to stop it.
func (s *SyncJobService) Start(ctx context.Context, opts SyncOptions) (SyncJobStatus, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncJobService.Start")
	defer span.End()

	if !s.active.CompareAndSwap(false, true) {
		return SyncJobStatus{}, ErrSyncInProgress
	}

	id, err := s.ids.NewID()
	if err != nil {
		s.active.Store(false)
		return SyncJobStatus{}, fmt.Errorf("generate job id: %w", err)
	}

	jobCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	job := &syncJob{
		status: SyncJobStatus{
			ID:        id,
			State:     JobStatePending,
			Step:      "queued",
			CreatedAt: s.now().UTC(),
		},
		cancel: cancel,
		done:   make(chan struct{}),
	}

	s.mu.Lock()
	s.jobs[id] = job
	s.order = append(s.order, id)
	s.mu.Unlock()

	err = s.pool.Submit(func() {
		s.execute(jobCtx, job, opts)
	})
	if err != nil {
		cancel()
		s.forget(id)
		s.active.Store(false)
		if crerr.Is(err, ants.ErrPoolClosed) {
			return SyncJobStatus{}, fmt.Errorf("%w: sync job pool is closed", ErrDependencyUnavailable)
		}
		return SyncJobStatus{}, fmt.Errorf("%w: submit sync job: %v", ErrDependencyUnavailable, err)
	}

	s.logger.InfoContext(ctx, "sync job queued", "job_id", id, "dry_run", opts.DryRun)
	return s.snapshot(job), nil
}

func (s *SyncJobService) execute(ctx context.Context, job *syncJob, opts SyncOptions) {
	defer close(job.done)
	defer job.cancel()
	defer s.active.Store(false)
	defer func() {
		if r := recover(); r != nil {
			finished := s.now().UTC()
			s.update(job, func(st *SyncJobStatus) {
				st.State = JobStateFailed
				st.Error = fmt.Sprintf("sync panicked: %v", r)
				st.FinishedAt = &finished
			})
			s.logger.Error("sync job panicked", "job_id", job.status.ID, "panic", fmt.Sprint(r))
		}
	}()

	s.update(job, func(st *SyncJobStatus) {
		st.State = JobStateRunning
		st.Step = "starting"
	})

	userProgress := opts.Progress
	opts.Progress = func(p SyncProgress) {
		s.update(job, func(st *SyncJobStatus) {
			st.Step = p.Step
			st.Percent = progressPercent(p)
		})
		if userProgress != nil {
			userProgress(p)
		}
	}

	report, err := s.runner.Run(ctx, opts)

	finished := s.now().UTC()
	s.update(job, func(st *SyncJobStatus) {
		st.Report = &report
		st.FinishedAt = &finished
		switch {
		case err == nil:
			st.State = JobStateCompleted
			st.Percent = 100
		case ctx.Err() != nil:
			st.State = JobStateCancelled
			st.Error = err.Error()
		default:
			st.State = JobStateFailed
			st.Error = err.Error()
		}
	})

	final := s.snapshot(job)
	s.logger.Info("sync job finished",
		"job_id", final.ID,
		"state", final.State,
		"created", report.Created,
		"updated", report.Updated,
		"skipped_invalid", report.SkippedInvalid,
		"errors", len(report.Errors),
	)
}

func progressPercent(p SyncProgress) int {
	switch p.State {
	case SyncStateCompleted:
		return 100
	case SyncStateProcessing, SyncStateFinalizing, SyncStateCancelled:
		if p.Total <= 0 {
			return 0
		}
		pct := p.Current * 100 / p.Total
		if pct > 99 {
			pct = 99
		}
		return pct
	default:
		return 0
	}
}

// Status returns the latest snapshot of a job.
func (s *SyncJobService) Status(id string) (SyncJobStatus, bool) {
	s.mu.RLock()
	job, ok := s.jobs[id]
	s.mu.RUnlock()
	if !ok {
		return SyncJobStatus{}, false
	}
	return s.snapshot(job), true
}

// Cancel asks a job to stop between rows. It is a no-op on finished jobs.
func (s *SyncJobService) Cancel(id string) (SyncJobStatus, error) {
	s.mu.RLock()
	job, ok := s.jobs[id]
	s.mu.RUnlock()
	if !ok {
		return SyncJobStatus{}, fmt.Errorf("%w: sync job %s", ErrNotFound, id)
	}

	job.cancel()
	return s.snapshot(job), nil
}

// Wait blocks until the job ends or ctx is done.
func (s *SyncJobService) Wait(ctx context.Context, id string) (SyncJobStatus, error) {
	s.mu.RLock()
	job, ok := s.jobs[id]
	s.mu.RUnlock()
	if !ok {
		return SyncJobStatus{}, fmt.Errorf("%w: sync job %s", ErrNotFound, id)
	}

	select {
	case <-job.done:
		return s.snapshot(job), nil
	case <-ctx.Done():
		return s.snapshot(job), ctx.Err()
	}
}

// Close stops accepting jobs and cancels the running one.
func (s *SyncJobService) Close() {
	s.mu.RLock()
	for _, job := range s.jobs {
		job.cancel()
	}
	s.mu.RUnlock()
	s.pool.Release()
}

func (s *SyncJobService) snapshot(job *syncJob) SyncJobStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := job.status
	if job.status.Report != nil {
		report := *job.status.Report
		report.Errors = append([]string(nil), report.Errors...)
		out.Report = &report
	}
	return out
}

func (s *SyncJobService) update(job *syncJob, fn func(*SyncJobStatus)) {
	s.mu.Lock()
	fn(&job.status)
	s.trimLocked()
	s.mu.Unlock()
}

func (s *SyncJobService) forget(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// trimLocked drops the oldest finished jobs beyond maxRetainedJobs.
func (s *SyncJobService) trimLocked() {
	for len(s.order) > maxRetainedJobs {
		oldest := s.jobs[s.order[0]]
		if oldest != nil && !oldest.status.State.Terminal() {
			return
		}
		delete(s.jobs, s.order[0])
		s.order = s.order[1:]
	}
}
