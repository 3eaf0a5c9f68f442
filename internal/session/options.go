package session

import (
	"fmt"
	"log/slog"
	"time"
)

// ChangePolicy decides what the gate does when a session-change
// notification carries a session whose profile cannot be loaded.
type ChangePolicy int

const (
	// ChangePolicyClear keeps the session and clears the profile.
	ChangePolicyClear ChangePolicy = iota
	// ChangePolicySignOut signs the session out, the same way the startup
	// bootstrap does.
	ChangePolicySignOut
)

func (p ChangePolicy) String() string {
	switch p {
	case ChangePolicyClear:
		return "clear"
	case ChangePolicySignOut:
		return "signout"
	}
	return fmt.Sprintf("ChangePolicy(%d)", int(p))
}

// ParseChangePolicy maps a configuration value to a ChangePolicy.
func ParseChangePolicy(s string) (ChangePolicy, error) {
	switch s {
	case "", "clear":
		return ChangePolicyClear, nil
	case "signout":
		return ChangePolicySignOut, nil
	}
	return ChangePolicyClear, fmt.Errorf("unknown change policy %q (must be clear or signout)", s)
}

// Option configures a Gate.
type Option func(*Gate)

// WithLogger sets the logger used for passive-path failures.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gate) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithChangePolicy sets how change notifications without a profile are
// resolved. The default is ChangePolicyClear.
func WithChangePolicy(p ChangePolicy) Option {
	return func(g *Gate) {
		g.changePolicy = p
	}
}

// WithProfileRetries retries failed profile lookups up to n extra times,
// waiting backoff*attempt between tries. ErrProfileNotFound is never
// retried.
func WithProfileRetries(n int, backoff time.Duration) Option {
	return func(g *Gate) {
		if n < 0 {
			n = 0
		}
		g.retries = n
		g.backoff = backoff
	}
}
