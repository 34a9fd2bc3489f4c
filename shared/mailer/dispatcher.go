package mailer

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

var (
	ErrQueueFull        = errors.New("mail queue is full")
	ErrDispatcherClosed = errors.New("mail dispatcher is closed")
)

// Dispatcher delivers emails on background workers so callers never wait on SMTP.
// A failed delivery is logged and dropped.
type Dispatcher struct {
	sender  Sender
	logger  *zerolog.Logger
	queue   chan Email
	workers int

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with a queue of the given size.
func NewDispatcher(sender Sender, logger *zerolog.Logger, workers, queueSize int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}

	return &Dispatcher{
		sender:  sender,
		logger:  logger,
		queue:   make(chan Email, queueSize),
		workers: workers,
	}
}

// Start launches the worker goroutines.
func (d *Dispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.work(i)
	}
}

// Enqueue hands email to the workers without blocking.
func (d *Dispatcher) Enqueue(email Email) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrDispatcherClosed
	}

	select {
	case d.queue <- email:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting mail and waits for queued messages to be attempted.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) work(id int) {
	defer d.wg.Done()

	for email := range d.queue {
		if err := d.sender.Send(email); err != nil {
			d.logger.Error().
				Err(err).
				Int("worker", id).
				Strs("to", email.To).
				Str("subject", email.Subject).
				Msg("failed to send email")
			continue
		}

		d.logger.Debug().Int("worker", id).Strs("to", email.To).Msg("email sent")
	}
}
