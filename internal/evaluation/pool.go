package evaluation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Pool runs submitted evaluation tasks on a fixed set of worker goroutines
// fed by a buffered channel. Task lifetime is explicit: Submit hands a task
// over, Stop closes intake and drains everything already accepted. Workers
// run on a background context so an in-flight evaluation outlives the HTTP
// request that submitted it; once started, a task is never cancelled.
type Pool struct {
	processor   *Processor
	logger      *slog.Logger
	concurrency int
	tasks       chan Task
	wg          sync.WaitGroup
	stopOnce    sync.Once
}

func NewPool(processor *Processor, concurrency, queueSize int, logger *slog.Logger) *Pool {
	if concurrency <= 0 {
		concurrency = 1
	}
	if queueSize <= 0 {
		queueSize = concurrency
	}

	return &Pool{
		processor:   processor,
		logger:      logger,
		concurrency: concurrency,
		tasks:       make(chan Task, queueSize),
	}
}

// Start spawns the worker goroutines.
func (p *Pool) Start() {
	p.logger.Info("Starting evaluation pool",
		slog.Int("concurrency", p.concurrency),
		slog.Int("queue_size", cap(p.tasks)),
	)

	for i := 0; i < p.concurrency; i++ {
		p.wg.Add(1)
		go p.workerLoop(i)
	}
}

// Submit enqueues a task for background processing. It returns an error only
// when the pool has been stopped.
func (p *Pool) Submit(task Task) (err error) {
	defer func() {
		if recover() != nil {
			err = fmt.Errorf("evaluation pool is stopped")
		}
	}()

	p.tasks <- task

	p.logger.Debug("Task submitted to evaluation pool",
		slog.String("round_id", task.RoundID),
		slog.String("card_id", task.CardID),
	)
	return nil
}

// Stop closes intake and blocks until every accepted task has finished.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		p.logger.Info("Stopping evaluation pool, draining queue")
		close(p.tasks)
	})
	p.wg.Wait()
	p.logger.Info("Evaluation pool stopped")
}

func (p *Pool) workerLoop(workerNum int) {
	defer p.wg.Done()

	log := p.logger.With(slog.Int("worker_num", workerNum))
	log.Debug("Evaluation worker started")

	for task := range p.tasks {
		log.Info("Worker picked up evaluation task",
			slog.String("round_id", task.RoundID),
			slog.String("card_id", task.CardID),
		)
		p.processor.Process(context.Background(), task)
	}

	log.Debug("Evaluation worker stopped")
}
