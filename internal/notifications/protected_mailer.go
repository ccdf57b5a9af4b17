package notifications

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker open")

type ProtectedMailerConfig struct {
	Timeout          time.Duration // hard timeout per attempt
	MaxAttempts      int           // attempts per Send, including the first
	BaseDelay        time.Duration // backoff before the second attempt
	MaxDelay         time.Duration // backoff cap
	FailureThreshold int           // consecutive failed sends to open circuit
	Cooldown         time.Duration // how long to stay open before half-open
	HalfOpenMaxCalls int           // allow N trial calls in half-open

	// Observe, when set, receives the outcome of every Send: sent, failed or circuit_open.
	Observe func(result string, elapsed time.Duration)
}

type ProtectedMailer struct {
	inner Mailer
	cfg   ProtectedMailerConfig
	mu    sync.Mutex

	state string // "closed" | "open" | "half_open"

	consecutiveFailures int
	openedAt            time.Time
	halfOpenInFlight    int
}

func NewProtectedMailer(inner Mailer, cfg ProtectedMailerConfig) *ProtectedMailer {
	//defaults
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 500 * time.Millisecond
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 5 * time.Second
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 15 * time.Second
	}
	if cfg.HalfOpenMaxCalls <= 0 {
		cfg.HalfOpenMaxCalls = 1
	}

	return &ProtectedMailer{
		inner: inner,
		cfg:   cfg,
		state: "closed",
	}
}

func (m *ProtectedMailer) Send(ctx context.Context, email Email) (err error) {
	start := time.Now()

	// fail-fast gate
	if !m.allowRequest() {
		m.observe("circuit_open", start)
		return ErrCircuitOpen
	}

	defer func() {
		if err != nil {
			m.observe("failed", start)
			return
		}
		m.observe("sent", start)
	}()

	for attempt := 0; attempt < m.cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(m.backoff(attempt - 1)):
			case <-ctx.Done():
				err = ctx.Err()
				m.finish(ctx, err)
				return err
			}
		}

		err = m.attempt(ctx, email)
		if err == nil || ctx.Err() != nil {
			break
		}
	}

	m.finish(ctx, err)
	return err
}

// finish records the outcome with the breaker. A caller that went away says nothing about
// the provider, so it only frees its half-open slot.
func (m *ProtectedMailer) finish(ctx context.Context, err error) {
	if err != nil && (errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled)) {
		m.release()
		return
	}
	m.afterRequest(err)
}

func (m *ProtectedMailer) release() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == "half_open" && m.halfOpenInFlight > 0 {
		m.halfOpenInFlight--
	}
}

func (m *ProtectedMailer) observe(result string, start time.Time) {
	if m.cfg.Observe != nil {
		m.cfg.Observe(result, time.Since(start))
	}
}

func (m *ProtectedMailer) attempt(ctx context.Context, email Email) error {
	sendCtx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	return m.inner.Send(sendCtx, email)
}

// attempt=0 => base, attempt=1 => 2*base, ... capped at MaxDelay, plus up to 10% jitter.
func (m *ProtectedMailer) backoff(attempt int) time.Duration {
	delay := time.Duration(float64(m.cfg.BaseDelay) * math.Pow(2, float64(attempt)))

	if delay > m.cfg.MaxDelay {
		delay = m.cfg.MaxDelay
	}

	if jitter := int64(delay / 10); jitter > 0 {
		delay += time.Duration(rand.Int63n(jitter))
	}
	return delay
}

func (m *ProtectedMailer) allowRequest() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case "closed":
		return true
	case "open":
		// cooldown has passed? move to half open
		if time.Since(m.openedAt) >= m.cfg.Cooldown {
			m.state = "half_open"
			m.halfOpenInFlight = 1
			return true
		}
		return false
	case "half_open":
		if m.halfOpenInFlight >= m.cfg.HalfOpenMaxCalls {
			return false
		}
		m.halfOpenInFlight++
		return true
	default:
		return true
	}
}

func (m *ProtectedMailer) afterRequest(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// half-open call just finished
	if m.state == "half_open" && m.halfOpenInFlight > 0 {
		m.halfOpenInFlight--
	}

	if err == nil {
		m.consecutiveFailures = 0
		m.state = "closed"
		return
	}

	m.consecutiveFailures++

	// if half-open failed, reopen immediately
	if m.state == "half_open" {
		m.state = "open"
		m.openedAt = time.Now()
		return
	}

	if m.consecutiveFailures >= m.cfg.FailureThreshold {
		m.state = "open"
		m.openedAt = time.Now()
	}
}
