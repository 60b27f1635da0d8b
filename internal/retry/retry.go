// Package retry runs an operation until it succeeds, a permanent error is
// returned, the attempt budget is spent or the context ends.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/GOLDENPLIX/pes-2013-updater/internal/logging"
)

const (
	defaultAttempts = 3
	defaultDelay    = 5 * time.Second
	maxDelay        = 10 * time.Minute
)

// ErrExhausted matches any error returned after the attempt budget ran out.
var ErrExhausted = errors.New("retry attempts exhausted")

// Policy describes how often and how far apart attempts are made.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	// Multiplier scales the delay after each failure; 1 keeps it fixed.
	Multiplier float64

	Name   string
	Logger *slog.Logger
	// OnRetry, when set, is called after each failed attempt that will be retried.
	OnRetry func(attempt int, err error, next time.Duration)
}

// Exponential doubles the delay after every failed attempt.
func Exponential(attempts int, base time.Duration) Policy {
	return Policy{MaxAttempts: attempts, BaseDelay: base, Multiplier: 2}
}

// Constant waits the same delay between attempts.
func Constant(attempts int, delay time.Duration) Policy {
	return Policy{MaxAttempts: attempts, BaseDelay: delay, Multiplier: 1}
}

// Named returns a copy of the policy that logs retries under name.
func (p Policy) Named(name string, logger *slog.Logger) Policy {
	p.Name = name
	p.Logger = logger
	return p
}

// Error reports the last failure once all attempts were used.
type Error struct {
	Attempts int
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrExhausted) match.
func (e *Error) Is(target error) bool { return target == ErrExhausted }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do runs op until it returns nil. The attempt number passed to op starts at 1.
func Do(ctx context.Context, p Policy, op func(ctx context.Context, attempt int) error) error {
	p = p.withDefaults()

	attempt := 0
	permanent := false
	operation := func() error {
		attempt++
		err := op(ctx, attempt)
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			permanent = true
		}
		return err
	}
	notify := func(err error, next time.Duration) {
		logging.Warn(p.Logger, "operation failed, retrying",
			logging.FieldStep, p.Name,
			logging.FieldAttempt, attempt,
			logging.FieldMaxAttempts, p.MaxAttempts,
			"retry_in_ms", next.Milliseconds(),
			"error", err,
		)
		if p.OnRetry != nil {
			p.OnRetry(attempt, err, next)
		}
	}

	err := backoff.RetryNotify(operation, p.backOff(ctx), notify)
	if err == nil {
		return nil
	}
	if permanent || ctx.Err() != nil {
		return err
	}
	logging.Error(p.Logger, "operation failed, attempts exhausted", err,
		logging.FieldStep, p.Name,
		logging.FieldAttempt, attempt,
	)
	return &Error{Attempts: attempt, Err: err}
}

func (p Policy) withDefaults() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = defaultAttempts
	}
	if p.BaseDelay < 0 {
		p.BaseDelay = defaultDelay
	}
	if p.Multiplier < 1 {
		p.Multiplier = 1
	}
	return p
}

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	var b backoff.BackOff
	if p.Multiplier == 1 {
		b = backoff.NewConstantBackOff(p.BaseDelay)
	} else {
		exp := backoff.NewExponentialBackOff()
		exp.InitialInterval = p.BaseDelay
		exp.Multiplier = p.Multiplier
		exp.RandomizationFactor = 0
		exp.MaxInterval = maxDelay
		exp.MaxElapsedTime = 0
		exp.Reset()
		b = exp
	}
	b = backoff.WithMaxRetries(b, uint64(p.MaxAttempts-1))
	return backoff.WithContext(b, ctx)
}

// Delays lists the waits a policy would make between its attempts.
func (p Policy) Delays() []time.Duration {
	p = p.withDefaults()
	b := p.backOff(context.Background())
	var out []time.Duration
	for {
		next := b.NextBackOff()
		if next == backoff.Stop {
			return out
		}
		out = append(out, next)
	}
}
