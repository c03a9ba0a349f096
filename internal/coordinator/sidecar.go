package coordinator

import "log/slog"

// sideQueueDepth bounds the async side-effect queue. When full, tasks are
// dropped with a warning rather than stalling a decision path.
const sideQueueDepth = 256

// sidecar runs audit writes, alert dispatch and quota consumption on a
// single worker goroutine. One worker keeps side effects in submission
// order, which the hash-chained audit log relies on. A sidecar failure is
// logged and never reaches a decision.
type sidecar struct {
	queue  chan func()
	done   chan struct{}
	logger *slog.Logger
}

func newSidecar(logger *slog.Logger) *sidecar {
	sc := &sidecar{
		queue:  make(chan func(), sideQueueDepth),
		done:   make(chan struct{}),
		logger: logger,
	}
	go sc.run()
	return sc
}

func (sc *sidecar) run() {
	defer close(sc.done)
	for task := range sc.queue {
		sc.runOne(task)
	}
}

func (sc *sidecar) runOne(task func()) {
	defer func() {
		if r := recover(); r != nil {
			sc.logger.Error("side-effect task panicked", "panic", r)
		}
	}()
	task()
}

// submit enqueues a task without blocking.
func (sc *sidecar) submit(task func()) {
	select {
	case sc.queue <- task:
	default:
		sc.logger.Warn("side-effect queue full, dropping task")
	}
}

// close drains the queue and stops the worker.
func (sc *sidecar) close() {
	close(sc.queue)
	<-sc.done
}
