package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"adoscan/internal/inventory"
)

// ErrTaskTimeout marks a TaskResult whose work had not completed when the
// dispatch deadline fired. The worker goroutine is abandoned, not killed:
// it observes context cancellation on its next blocking call and its late
// result is discarded.
var ErrTaskTimeout = errors.New("task timed out")

// WorkFunc executes the scan for one target and returns its flat records.
type WorkFunc func(ctx context.Context, target Target) ([]inventory.Record, error)

// Scheduler fans work out over targets with a fixed-size worker pool.
type Scheduler struct {
	throttle int
	timeout  time.Duration
}

func NewScheduler(throttle int, timeout time.Duration) (*Scheduler, error) {
	if throttle <= 0 {
		return nil, fmt.Errorf("throttle must be >= 1, got %d", throttle)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("timeout must be > 0, got %s", timeout)
	}
	return &Scheduler{throttle: throttle, timeout: timeout}, nil
}

// Execute streams exactly one TaskResult per target.
//
// Channel semantics:
//   - One TaskResult is sent per target, always: an error inside work for
//     one target never aborts its siblings, and targets still pending when
//     the wall-clock budget expires are sent with ErrTaskTimeout.
//   - No ordering guarantee: results arrive in completion order.
//   - The results channel and error channel are both closed reliably.
//   - The error channel carries fatal errors / parent cancellation only;
//     per-target failures live on TaskResult.Err.
func (s *Scheduler) Execute(ctx context.Context, targets []Target, work WorkFunc) (<-chan TaskResult, <-chan error) {
	resultsCh := make(chan TaskResult)
	errCh := make(chan error, 1)

	go func() {
		defer close(resultsCh)
		defer close(errCh)

		trySendErr := func(err error) {
			if err == nil {
				return
			}
			select {
			case errCh <- err:
			default:
			}
		}

		if ctx == nil {
			trySendErr(errors.New("context is nil"))
			return
		}
		if work == nil {
			trySendErr(errors.New("work function is nil"))
			return
		}
		if len(targets) == 0 {
			return
		}

		runCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		workers := s.throttle
		if workers > len(targets) {
			workers = len(targets)
		}

		// Both channels are buffered to len(targets) so an abandoned
		// worker can always finish its send and exit after the deadline.
		jobs := make(chan Target, len(targets))
		inner := make(chan TaskResult, len(targets))

		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for target := range jobs {
					if runCtx.Err() != nil {
						inner <- TaskResult{Target: target, Err: runCtx.Err()}
						continue
					}
					records, err := work(runCtx, target)
					if err != nil {
						inner <- TaskResult{Target: target, Err: err}
						continue
					}
					inner <- TaskResult{Target: target, Records: records}
				}
			}()
		}

		pending := make(map[string]Target, len(targets))
		for _, t := range targets {
			pending[t.Key()] = t
			jobs <- t
		}
		close(jobs)

		received := 0
		for received < len(targets) {
			select {
			case res := <-inner:
				delete(pending, res.Target.Key())
				received++
				select {
				case resultsCh <- res:
				case <-ctx.Done():
					trySendErr(ctx.Err())
					return
				}
			case <-runCtx.Done():
				// Deadline (or parent cancellation): synthesize one result
				// per straggler and stop waiting. In-flight workers drain
				// into the buffered channels and exit on their own.
				stragglers := make([]Target, 0, len(pending))
				for _, t := range pending {
					stragglers = append(stragglers, t)
				}
				sort.Slice(stragglers, func(i, j int) bool { return stragglers[i].Key() < stragglers[j].Key() })
				for _, t := range stragglers {
					res := TaskResult{Target: t, Err: fmt.Errorf("%w after %s", ErrTaskTimeout, s.timeout)}
					select {
					case resultsCh <- res:
					case <-ctx.Done():
						trySendErr(ctx.Err())
						return
					}
				}
				trySendErr(ctx.Err())
				return
			}
		}

		wg.Wait()
		trySendErr(ctx.Err())
	}()

	return resultsCh, errCh
}
