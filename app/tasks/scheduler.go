package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lysyi3m/alert-comb/app/alert"
	"github.com/lysyi3m/alert-comb/app/cfg"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// Scheduler drives the single ingestion flow: a fixed-interval ticker
// enqueues one poll task at a time onto a bounded worker pool. Blocking work
// happens on the workers, never on the ticker goroutine.
type Scheduler struct {
	alertRepo   AlertRepository
	httpClient  *http.Client
	enricher    *alert.Enricher
	normalizer  *alert.Normalizer
	feedURL     string
	userAgent   string
	interval    time.Duration
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface
	polling     atomic.Bool
}

func NewScheduler(alertRepo AlertRepository, httpClient *http.Client,
	enricher *alert.Enricher, normalizer *alert.Normalizer) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		alertRepo:   alertRepo,
		httpClient:  httpClient,
		enricher:    enricher,
		normalizer:  normalizer,
		feedURL:     FeedURL,
		userAgent:   cfg.UserAgent,
		interval:    time.Duration(cfg.PollInterval) * time.Second,
		workerCount: cfg.WorkerCount,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 10),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueuePollTask()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueuePollTask()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

// enqueuePollTask schedules one poll cycle unless the previous one is still
// in flight. One cycle is active at a time regardless of the worker count.
func (s *Scheduler) enqueuePollTask() {
	if !s.polling.CompareAndSwap(false, true) {
		slog.Debug("Poll cycle still in flight, skipping tick")
		return
	}

	task := NewPollFeedTask(s.feedURL, s.httpClient, s.enricher, s.normalizer, s.alertRepo, s.userAgent)
	if err := s.EnqueueTask(task); err != nil {
		s.polling.Store(false)
		slog.Warn("Failed to enqueue PollFeedTask", "error", err)
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if task.GetType() == TaskTypePollFeed {
		s.polling.Store(false)
	}

	if err != nil {
		// No retries: a failed cycle waits for the next scheduled tick.
		slog.Error("Worker task execution failed", "worker_id", workerID,
			"type", string(task.GetType()), "id", task.GetID(), "error", err)
	}
}
