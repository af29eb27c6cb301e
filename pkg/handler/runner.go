package handler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/savaki/christine-bot/pkg/models"
)

// Ledger claims an event before it is answered so redeliveries are dropped
type Ledger interface {
	Claim(ctx context.Context, dispatchID string, event models.InboundEvent) (bool, error)
}

// Sink receives the outcome of every dispatch
type Sink interface {
	Record(ctx context.Context, outcome models.Outcome) error
}

// Runner runs each dispatch on its own goroutine. Nothing is shared between
// dispatches; a failure or panic in one never reaches another.
type Runner struct {
	dispatcher *Dispatcher
	ledger     Ledger
	sinks      []Sink
	logger     zerolog.Logger
	wg         sync.WaitGroup
}

// NewRunner creates a new runner. ledger may be nil.
func NewRunner(dispatcher *Dispatcher, ledger Ledger, logger zerolog.Logger, sinks ...Sink) *Runner {
	return &Runner{
		dispatcher: dispatcher,
		ledger:     ledger,
		sinks:      sinks,
		logger:     logger,
	}
}

// Submit starts dispatching ev and returns a channel that receives its
// outcome once every sink has seen it. The dispatch keeps ctx values but
// not its cancellation, so it outlives the webhook request that started it.
func (r *Runner) Submit(ctx context.Context, ev models.InboundEvent) <-chan models.Outcome {
	ctx = context.WithoutCancel(ctx)
	result := make(chan models.Outcome, 1)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer close(result)

		outcome := r.run(ctx, ev)
		r.record(ctx, outcome)
		result <- outcome
	}()

	return result
}

// Wait blocks until in-flight dispatches finish or ctx is done
func (r *Runner) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for dispatches: %w", ctx.Err())
	}
}

func (r *Runner) run(ctx context.Context, ev models.InboundEvent) (outcome models.Outcome) {
	dispatchID := models.NewDispatchID()
	started := time.Now()

	defer func() {
		if v := recover(); v != nil {
			outcome = models.Outcome{
				Event:  ev,
				Status: models.StatusFailed,
				Err:    fmt.Errorf("dispatch panic: %v", v),
			}
		}
		outcome.DispatchID = dispatchID
		outcome.Duration = time.Since(started)
	}()

	// ineligible events never reach the ledger
	if ok, reason := Eligible(ev); !ok {
		return models.Outcome{Event: ev, Status: models.StatusSkipped, Reason: reason}
	}

	if r.ledger != nil && ev.EventID != "" {
		claimed, err := r.ledger.Claim(ctx, dispatchID, ev)
		switch {
		case err != nil:
			// fail open: answer without a claim
			r.logger.Warn().Err(err).Str("event_id", ev.EventID).Msg("unable to claim event")
		case !claimed:
			return models.Outcome{Event: ev, Status: models.StatusDuplicate}
		}
	}

	return r.dispatcher.Dispatch(ctx, ev)
}

func (r *Runner) record(ctx context.Context, outcome models.Outcome) {
	for _, sink := range r.sinks {
		if err := sink.Record(ctx, outcome); err != nil {
			r.logger.Warn().
				Err(err).
				Str("dispatch_id", outcome.DispatchID).
				Msg("unable to record dispatch outcome")
		}
	}
}
