package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Project-mardianto/algoplus-app/internal/logger"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

var (
	ErrJobQueueIsFull = errors.New("job queue is full")
	ErrJobQueueClosed = errors.New("job queue is closed")
)

// Job is a unit of background work. ctx is the queue's lifetime context.
type Job func(ctx context.Context)

// JobQueueService runs jobs on a fixed pool of workers. Notification writes
// and outgoing emails go through it so request handlers never wait on them.
type JobQueueService struct {
	jobs    chan Job
	resume  chan struct{}
	paused  atomic.Bool
	closing atomic.Bool
	wg      sync.WaitGroup
	mu      sync.Mutex
}

func NewJobQueueService(ctx context.Context, capacity, workers int) *JobQueueService {
	service := &JobQueueService{
		jobs:   make(chan Job, capacity),
		resume: make(chan struct{}),
	}
	service.start(ctx, workers)

	return service
}

func (jqs *JobQueueService) start(ctx context.Context, workers int) {
	for i := 0; i < workers; i++ {
		jqs.wg.Add(1)

		go func() {
			defer jqs.wg.Done()

			for {
				select {
				case job, ok := <-jqs.jobs:
					if !ok {
						return
					}

					if !jqs.waitResume(ctx) {
						return
					}

					job(ctx)
				case <-ctx.Done():
					return
				}
			}
		}()
	}
}

// waitResume blocks while the queue is paused and reports false if ctx ends
// first.
func (jqs *JobQueueService) waitResume(ctx context.Context) bool {
	for jqs.paused.Load() {
		jqs.mu.Lock()
		resume := jqs.resume
		jqs.mu.Unlock()

		if !jqs.paused.Load() {
			break
		}

		select {
		case <-resume:
		case <-ctx.Done():
			return false
		}
	}
	return true
}

// Enqueue never blocks. It fails when the queue is full or shut down.
func (jqs *JobQueueService) Enqueue(job Job) error {
	jqs.mu.Lock()
	defer jqs.mu.Unlock()

	if jqs.closing.Load() {
		return ErrJobQueueClosed
	}

	select {
	case jqs.jobs <- job:
		return nil
	default:
		return ErrJobQueueIsFull
	}
}

func (jqs *JobQueueService) ScheduleJob(job Job, delay time.Duration) {
	time.AfterFunc(delay, func() {
		if err := jqs.Enqueue(job); err != nil {
			logger.Log.Error("failed to schedule job", zap.Error(err))
		}
	})
}

func (jqs *JobQueueService) Pause() {
	jqs.paused.Store(true)
}

func (jqs *JobQueueService) Resume() {
	if jqs.paused.CompareAndSwap(true, false) {
		jqs.mu.Lock()
		defer jqs.mu.Unlock()
		close(jqs.resume)
		jqs.resume = make(chan struct{})
	}
}

// PauseAndResume holds every worker for delay, e.g. while an upstream asks
// to back off.
func (jqs *JobQueueService) PauseAndResume(delay time.Duration) {
	jqs.Pause()
	time.AfterFunc(delay, jqs.Resume)
}

// Shutdown stops accepting jobs, lets workers drain the queue and waits for
// them to exit.
func (jqs *JobQueueService) Shutdown() {
	jqs.mu.Lock()
	if !jqs.closing.CompareAndSwap(false, true) {
		jqs.mu.Unlock()
		return
	}
	close(jqs.jobs)
	jqs.mu.Unlock()

	jqs.Resume()
	jqs.wg.Wait()
}
