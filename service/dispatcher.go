package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/kevinaaaquil/library/backend/models"
)

const (
	defaultQueueSize = 100
	sendTimeout      = 30 * time.Second
)

type EmailLogStore interface {
	InsertEmailLog(ctx context.Context, log *models.EmailLog) error
}

// Dispatcher delivers email on a fixed pool of workers fed by a bounded queue.
// Send never blocks on a full queue: it delivers inline instead.
type Dispatcher struct {
	mailer Mailer
	logs   EmailLogStore
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan Email
	wg     sync.WaitGroup
}

// NewDispatcher starts workers goroutines. logs may be nil.
func NewDispatcher(mailer Mailer, logs EmailLogStore, logger *slog.Logger, workers, queueSize int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = defaultQueueSize
	}
	d := &Dispatcher{
		mailer: mailer,
		logs:   logs,
		logger: logger,
		queue:  make(chan Email, queueSize),
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
	return d
}

// Send queues e. The returned error is only non-nil for an inline delivery that failed.
func (d *Dispatcher) Send(ctx context.Context, e Email) error {
	d.mu.RLock()
	closed := d.closed
	if !closed {
		select {
		case d.queue <- e:
			d.mu.RUnlock()
			return nil
		default:
		}
	}
	d.mu.RUnlock()
	if closed {
		d.logger.Warn("dispatcher stopped, sending inline", "to", e.To, "kind", e.Kind)
	} else {
		d.logger.Warn("notification queue full, sending inline", "to", e.To, "kind", e.Kind)
	}
	return d.deliver(ctx, e)
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()
	for e := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		if err := d.deliver(ctx, e); err == nil {
			d.logger.Debug("email sent", "worker", id, "to", e.To, "kind", e.Kind)
		}
		cancel()
	}
}

func (d *Dispatcher) deliver(ctx context.Context, e Email) error {
	err := d.mailer.Send(ctx, e)
	entry := &models.EmailLog{
		Kind:          e.Kind,
		ToEmail:       e.To,
		Subject:       e.Subject,
		UserID:        e.UserID,
		ReservationID: e.ReservationID,
		Status:        models.EmailStatusSent,
		SentAt:        time.Now().UTC(),
	}
	if err != nil {
		entry.Status = models.EmailStatusFailed
		entry.Error = err.Error()
		d.logger.Warn("email failed", "to", e.To, "kind", e.Kind, "error", err)
	}
	if d.logs != nil {
		if logErr := d.logs.InsertEmailLog(context.WithoutCancel(ctx), entry); logErr != nil {
			d.logger.Warn("failed to insert email log", "error", logErr)
		}
	}
	return err
}

// Shutdown stops accepting queued work and waits for the workers to drain the queue.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		d.logger.Info("mail workers stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
