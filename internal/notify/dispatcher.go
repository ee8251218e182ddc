package notify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"

	"github.com/rayedriasat/taskplanner/internal/config"
)

// RetryConfig configures exponential backoff retry behavior.
type RetryConfig struct {
	InitialInterval     time.Duration // Initial retry interval (default 100ms)
	MaxInterval         time.Duration // Maximum retry interval (default 10s)
	MaxElapsedTime      time.Duration // Maximum total retry time (default 2min)
	Multiplier          float64       // Backoff multiplier (default 2.0)
	RandomizationFactor float64       // Jitter factor (default 0.5)
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		InitialInterval:     100 * time.Millisecond,
		MaxInterval:         10 * time.Second,
		MaxElapsedTime:      2 * time.Minute,
		Multiplier:          2.0,
		RandomizationFactor: 0.5,
	}
}

// breakerRegistry manages per-channel circuit breakers.
type breakerRegistry struct {
	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
}

func newBreakerRegistry() *breakerRegistry {
	return &breakerRegistry{
		breakers: make(map[string]*gobreaker.CircuitBreaker),
	}
}

// get returns the circuit breaker for the given channel name.
// Creates a new one if it doesn't exist.
func (r *breakerRegistry) get(channel string) *gobreaker.CircuitBreaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cb, ok := r.breakers[channel]; ok {
		return cb
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        channel,
		MaxRequests: 3,                // Allow 3 test requests in half-open state
		Interval:    0,                // Don't clear counts automatically
		Timeout:     30 * time.Second, // Stay open for 30s before testing recovery
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// Trip circuit after 5 consecutive failures
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Printf("Circuit breaker %q: %s -> %s", name, from, to)
		},
		IsSuccessful: func(err error) bool {
			// Don't count user cancellation as channel failure
			if err == nil {
				return true
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return true
			}
			return false
		},
	})

	r.breakers[channel] = cb
	return cb
}

// Dispatcher fans a message out to every registered channel, with retry and
// circuit breaker protection per channel. A persistently failing webhook
// cannot delay or break the scheduling run that triggered it.
type Dispatcher struct {
	notifiers   []Notifier
	breakers    *breakerRegistry
	retryCfg    RetryConfig
	concurrency int
}

// NewDispatcher creates a dispatcher over the given channels.
func NewDispatcher(notifiers []Notifier, retryCfg RetryConfig, concurrency int) *Dispatcher {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Dispatcher{
		notifiers:   notifiers,
		breakers:    newBreakerRegistry(),
		retryCfg:    retryCfg,
		concurrency: concurrency,
	}
}

// NewFromConfig builds a dispatcher from the notification configuration.
// Disabled channels and unknown channel types are skipped.
func NewFromConfig(cfg config.NotifyConfig) *Dispatcher {
	var notifiers []Notifier
	for name, channel := range cfg.Channels {
		if !channel.Enabled {
			continue
		}
		switch channel.Type {
		case "log":
			notifiers = append(notifiers, NewLogNotifier(name))
		case "webhook":
			notifiers = append(notifiers, NewWebhookNotifier(name, channel.Endpoint))
		default:
			log.Printf("WARNING: unknown notification channel type %q for %q, skipping", channel.Type, name)
		}
	}
	return NewDispatcher(notifiers, DefaultRetryConfig(), cfg.Concurrency)
}

// Dispatch sends the message to all channels with bounded concurrency.
// Per-channel failures are collected; one bad channel does not stop the rest.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)

	errsCh := make(chan error, len(d.notifiers))

	for _, n := range d.notifiers {
		notifier := n
		g.Go(func() error {
			if err := d.sendWithRetry(gctx, notifier, msg); err != nil {
				errsCh <- fmt.Errorf("channel %s: %w", notifier.Name(), err)
			}
			return nil // Delivery failures must not abort sibling channels
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	close(errsCh)

	var errs []error
	for err := range errsCh {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// sendWithRetry delivers through the channel's circuit breaker with
// exponential backoff retry.
func (d *Dispatcher) sendWithRetry(ctx context.Context, n Notifier, msg Message) error {
	cb := d.breakers.get(n.Name())

	operation := func() error {
		// Check context first - fail fast if cancelled
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}

		_, err := cb.Execute(func() (interface{}, error) {
			return nil, n.Send(ctx, msg)
		})

		if err != nil {
			// Circuit is open - don't retry
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(err)
			}

			// Context cancelled - stop retrying
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}

			return err
		}
		return nil
	}

	backoffPolicy := backoff.NewExponentialBackOff()
	backoffPolicy.InitialInterval = d.retryCfg.InitialInterval
	backoffPolicy.MaxInterval = d.retryCfg.MaxInterval
	backoffPolicy.MaxElapsedTime = d.retryCfg.MaxElapsedTime
	backoffPolicy.Multiplier = d.retryCfg.Multiplier
	backoffPolicy.RandomizationFactor = d.retryCfg.RandomizationFactor

	return backoff.Retry(operation, backoff.WithContext(backoffPolicy, ctx))
}
