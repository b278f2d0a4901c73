package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

var (
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
	ErrContextCanceled    = errors.New("context canceled during retry")
)

// Config contains retry configuration
type Config struct {
	// MaxRetries is the number of retries after the first attempt (0 = single attempt)
	MaxRetries int
	// InitialInterval is the wait before the first retry
	InitialInterval time.Duration
	// MaxInterval caps the backoff interval
	MaxInterval time.Duration
	// Multiplier grows the interval after each retry
	Multiplier float64
	// JitterFactor adds +/- jitter as a fraction of the interval (0-1)
	JitterFactor float64
}

// DefaultConfig returns the backoff used for startup connections:
// 1s, 2s, 4s, 8s, 16s
func DefaultConfig() *Config {
	return &Config{
		MaxRetries:      5,
		InitialInterval: time.Second,
		MaxInterval:     30 * time.Second,
		Multiplier:      2.0,
		JitterFactor:    0.1,
	}
}

// FixedConfig retries at a constant interval without jitter
func FixedConfig(maxRetries int, interval time.Duration) *Config {
	return &Config{
		MaxRetries:      maxRetries,
		InitialInterval: interval,
		MaxInterval:     interval,
		Multiplier:      1.0,
	}
}

func (c *Config) normalize() *Config {
	if c == nil {
		return DefaultConfig()
	}
	out := *c
	if out.MaxRetries < 0 {
		out.MaxRetries = 0
	}
	if out.InitialInterval <= 0 {
		out.InitialInterval = time.Second
	}
	if out.MaxInterval <= 0 {
		out.MaxInterval = 30 * time.Second
	}
	if out.Multiplier <= 0 {
		out.Multiplier = 2.0
	}
	if out.JitterFactor < 0 {
		out.JitterFactor = 0
	}
	if out.JitterFactor > 1 {
		out.JitterFactor = 1
	}
	return &out
}

// Operation is the function to be retried
type Operation func(ctx context.Context) error

// PermanentError stops the retry loop immediately
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return e.Err.Error()
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// Permanent marks an error as not retryable
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// Callback is invoked before each wait with the attempt number that just failed
type Callback func(attempt int, err error, next time.Duration)

// Result describes a finished retry loop
type Result struct {
	Attempts  int
	Duration  time.Duration
	LastError error
}

// Do runs op until it succeeds, returns a permanent error, exhausts retries
// or the context is done. The returned error wraps the last operation error.
func Do(ctx context.Context, cfg *Config, op Operation, cb Callback) (*Result, error) {
	cfg = cfg.normalize()
	start := time.Now()
	res := &Result{}

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		res.Attempts = attempt + 1

		if ctx.Err() != nil {
			res.Duration = time.Since(start)
			return res, errors.Join(ErrContextCanceled, res.LastError)
		}

		err := op(ctx)
		if err == nil {
			res.Duration = time.Since(start)
			return res, nil
		}
		res.LastError = err

		var perm *PermanentError
		if errors.As(err, &perm) {
			res.Duration = time.Since(start)
			return res, perm.Err
		}

		if attempt == cfg.MaxRetries {
			break
		}

		wait := cfg.interval(attempt)
		if cb != nil {
			cb(attempt+1, err, wait)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			res.Duration = time.Since(start)
			return res, errors.Join(ErrContextCanceled, res.LastError)
		case <-timer.C:
		}
	}

	res.Duration = time.Since(start)
	return res, errors.Join(ErrMaxRetriesExceeded, res.LastError)
}

func (c *Config) interval(attempt int) time.Duration {
	d := float64(c.InitialInterval) * math.Pow(c.Multiplier, float64(attempt))
	if c.JitterFactor > 0 {
		j := d * c.JitterFactor
		d += (rand.Float64()*2 - 1) * j
	}
	if d > float64(c.MaxInterval) {
		d = float64(c.MaxInterval)
	}
	if d <= 0 {
		d = float64(c.InitialInterval)
	}
	return time.Duration(d)
}
