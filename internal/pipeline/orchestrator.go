package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rcalder/inkbind/internal/config"
)

// Orchestrator manages background ingestion of uploaded documents.
type Orchestrator struct {
	sessions *SessionStore
	queue    chan *Session
	log      *slog.Logger
	cfg      config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the ingestion pipeline.
func NewOrchestrator(cfg config.Config, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		sessions: NewSessionStore(cfg.SessionTTL),
		queue:    make(chan *Session, cfg.MaxQueueSize),
		log:      log,
		cfg:      cfg,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.log, o.cfg.MaxHeadingLen)
			for {
				select {
				case <-workerCtx.Done():
					return
				case sess, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, sess)
				}
			}
		}()
	}

	// Session store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.sessions.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new session for loading.
func (o *Orchestrator) Submit(sess *Session) error {
	o.sessions.Put(sess)
	select {
	case o.queue <- sess:
		return nil
	default:
		sess.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("ingestion queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetSession returns a session by ID.
func (o *Orchestrator) GetSession(id string) *Session {
	return o.sessions.Get(id)
}

// QueueDepth returns the current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}
