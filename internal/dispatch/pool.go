package dispatch

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/BatmanBruc/feedback-bot/types"
)

type Deliverer interface {
	Deliver(ctx context.Context, rec types.Record) error
}

type PoolConfig struct {
	Workers int
}

// Pool delivers records in the background so the user reply is never held
// up by a slow sink.
type Pool struct {
	deliverer Deliverer
	workers   int
	log       zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	extra  sync.WaitGroup

	// late tracks records dispatched after Stop.
	late sync.WaitGroup

	mu      sync.RWMutex
	started bool
	stopped bool
	queue   chan types.Record
}

func NewPool(deliverer Deliverer, cfg PoolConfig, log zerolog.Logger) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}

	ctx, cancel := context.WithCancel(context.Background())

	queueSize := cfg.Workers * 2
	if queueSize < 10 {
		queueSize = 10
	}

	return &Pool{
		deliverer: deliverer,
		workers:   cfg.Workers,
		log:       log.With().Str("component", "dispatch_pool").Logger(),
		ctx:       ctx,
		cancel:    cancel,
		queue:     make(chan types.Record, queueSize),
	}
}

func (p *Pool) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.stopped {
		return
	}
	p.started = true

	p.log.Info().Int("workers", p.workers).Msg("dispatch pool started")
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Dispatch queues a record. When the queue is full, or the pool is already
// stopped, the record is delivered by an extra goroutine that Stop waits for.
func (p *Pool) Dispatch(rec types.Record) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		p.log.Warn().Str("record_id", rec.ID()).Msg("pool stopped, delivering in background")
		p.late.Add(1)
		go func() {
			defer p.late.Done()
			p.deliver(context.Background(), -1, rec)
		}()
		return
	}

	select {
	case p.queue <- rec:
	default:
		p.log.Warn().Str("record_id", rec.ID()).Msg("dispatch queue full")
		p.extra.Add(1)
		go func() {
			defer p.extra.Done()
			p.deliver(p.ctx, -1, rec)
		}()
	}
}

// Stop drains the queue and waits for in-flight deliveries. If ctx expires
// first, running deliveries are cancelled. Calling Stop again waits for
// records dispatched since.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return p.waitLate(ctx)
	}
	if !p.started {
		p.started = true
		for i := 0; i < p.workers; i++ {
			p.wg.Add(1)
			go p.worker(i)
		}
	}
	p.stopped = true
	close(p.queue)
	p.mu.Unlock()

	p.log.Info().Msg("stopping dispatch pool")

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		p.extra.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		p.log.Info().Msg("dispatch pool stopped")
		return nil
	case <-ctx.Done():
		p.cancel()
		<-done
		return ctx.Err()
	}
}

func (p *Pool) waitLate(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.late.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for rec := range p.queue {
		p.deliver(p.ctx, id, rec)
	}
}

func (p *Pool) deliver(ctx context.Context, worker int, rec types.Record) {
	if err := p.deliverer.Deliver(ctx, rec); err != nil {
		p.log.Warn().Err(err).Int("worker", worker).Str("record_id", rec.ID()).Msg("record delivered with errors")
	}
}
