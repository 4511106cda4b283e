package metrics

import (
	"context"
	"sync"

	"github.com/curvelaunch/launchpad/internal/app/events"
	"github.com/curvelaunch/launchpad/internal/app/system"
	"github.com/curvelaunch/launchpad/pkg/logger"
)

// Observer is the lifecycle-managed bridge between the event hub and the
// collectors. Missing an event only skews gauges until the next transition,
// so drop-on-full delivery from the hub is acceptable here.
type Observer struct {
	metrics *Metrics
	hub     *events.Hub
	log     *logger.Logger

	mu          sync.Mutex
	unsubscribe func()
	wg          sync.WaitGroup
	running     bool
}

var _ system.Service = (*Observer)(nil)

// NewObserver creates an observer feeding metrics from hub.
func NewObserver(metrics *Metrics, hub *events.Hub, log *logger.Logger) *Observer {
	if log == nil {
		log = logger.NewDefault("metrics")
	}
	return &Observer{metrics: metrics, hub: hub, log: log}
}

func (o *Observer) Name() string { return "metrics-observer" }

func (o *Observer) Start(_ context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.running {
		return nil
	}

	ch, unsubscribe := o.hub.Subscribe(256)
	o.unsubscribe = unsubscribe
	o.running = true

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		for event := range ch {
			o.metrics.Record(event)
		}
	}()

	o.log.Info("metrics observer started")
	return nil
}

func (o *Observer) Stop(ctx context.Context) error {
	o.mu.Lock()
	if !o.running {
		o.mu.Unlock()
		return nil
	}
	unsubscribe := o.unsubscribe
	o.running = false
	o.unsubscribe = nil
	o.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		o.wg.Wait()
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}
