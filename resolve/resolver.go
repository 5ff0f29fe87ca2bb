// CLAUDE:SUMMARY Ranked fallback resolution — try primary then fallbacks, unique match wins, ambiguity skips, bounded per-strategy wait.
// Package resolve locates document elements through a selector entry's
// ranked fallback chain.
//
// The target storefront ships markup changes without notice, so a single
// selector string is a liability. Each registry entry carries a primary
// strategy plus fallbacks ordered by stability; the resolver walks the chain
// and returns the first strategy yielding exactly one match. A strategy
// matching more than one element is ambiguous and skipped rather than
// guessed at. Every success reports which strategy won so telemetry can
// catch creeping degradation (primary dead, fallback carrying the load)
// before the whole chain rots.
//
// Usage:
//
//	res := resolve.New(resolve.Config{StrategyTimeout: 2 * time.Second}, logger, metrics)
//	r, err := res.Resolve(ctx, entry, doc)         // absence is a hard error
//	r, ok := res.TryResolve(ctx, entry, doc)       // absence is expected
package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hazyhaar/cartwatch/fault"
	"github.com/hazyhaar/cartwatch/selreg"
)

// Config configures a Resolver.
type Config struct {
	// StrategyTimeout bounds each single strategy evaluation. Worst-case
	// resolution latency is (1 + len(fallbacks)) × StrategyTimeout.
	// Default: 2s.
	StrategyTimeout time.Duration
}

func (c *Config) defaults() {
	if c.StrategyTimeout <= 0 {
		c.StrategyTimeout = 2 * time.Second
	}
}

// Resolver walks entry fallback chains against a DocumentContext. Stateless
// apart from configuration; safe for concurrent use across page sessions.
type Resolver struct {
	cfg     Config
	logger  *slog.Logger
	metrics *Metrics
}

// New creates a Resolver. A nil metrics disables telemetry.
func New(cfg Config, logger *slog.Logger, metrics *Metrics) *Resolver {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{cfg: cfg, logger: logger, metrics: metrics}
}

// Resolution is a successful lookup: the element plus which strategy found
// it. FallbackRank 0 means the primary; anything higher means the entry is
// degraded and its selector set deserves a correction pass.
type Resolution struct {
	Element      Element
	StrategyUsed selreg.Strategy
	FallbackRank int
	Degraded     bool
	// Ambiguous lists strategies that were skipped because they matched
	// more than one element.
	Ambiguous []selreg.Strategy
}

// Attempt records one strategy evaluation inside a failed resolution.
type Attempt struct {
	Strategy selreg.Strategy
	Matches  int
	TimedOut bool
	Err      string
}

// ResolutionError reports an exhausted fallback chain. It unwraps to a
// fault.Fault with CodeSelector so the code survives the trip across the
// service boundary.
type ResolutionError struct {
	Entry     string
	Attempted []Attempt
}

func (e *ResolutionError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "resolve: entry %q exhausted %d strategies", e.Entry, len(e.Attempted))
	for _, a := range e.Attempted {
		switch {
		case a.TimedOut:
			fmt.Fprintf(&sb, "; %s timed out", a.Strategy)
		case a.Err != "":
			fmt.Fprintf(&sb, "; %s failed: %s", a.Strategy, a.Err)
		default:
			fmt.Fprintf(&sb, "; %s matched %d", a.Strategy, a.Matches)
		}
	}
	return sb.String()
}

func (e *ResolutionError) Unwrap() error {
	return fault.New(fault.CodeSelector, false, "no unique match for entry %q", e.Entry)
}

// Resolve walks the entry's strategies in ranked order and returns the first
// single-match result. All failure modes (no match anywhere, only ambiguous
// matches, per-strategy timeouts) surface as a ResolutionError; context
// cancellation aborts immediately with the context's error.
func (r *Resolver) Resolve(ctx context.Context, entry *selreg.Entry, doc DocumentContext) (*Resolution, error) {
	start := time.Now()
	res, attempts, err := r.walk(ctx, entry, doc)
	r.metrics.observeResolution(entry, res, attempts, err, time.Since(start))
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, &ResolutionError{Entry: entry.Name, Attempted: attempts}
	}
	if res.Degraded {
		r.logger.Warn("resolve: degraded entry",
			"entry", entry.Name, "strategy", res.StrategyUsed.String(), "rank", res.FallbackRank)
	}
	return res, nil
}

// TryResolve is Resolve for elements whose absence is an expected, handled
// condition (optional banners, empty-state panels). It reports ok=false on
// exhaustion or cancellation instead of an error.
func (r *Resolver) TryResolve(ctx context.Context, entry *selreg.Entry, doc DocumentContext) (*Resolution, bool) {
	start := time.Now()
	res, attempts, err := r.walk(ctx, entry, doc)
	r.metrics.observeResolution(entry, res, attempts, err, time.Since(start))
	if err != nil || res == nil {
		return nil, false
	}
	return res, true
}

// walk runs the chain. It returns (nil, attempts, nil) on exhaustion and a
// non-nil error only for context cancellation.
func (r *Resolver) walk(ctx context.Context, entry *selreg.Entry, doc DocumentContext) (*Resolution, []Attempt, error) {
	strategies := entry.Strategies()
	attempts := make([]Attempt, 0, len(strategies))
	var ambiguous []selreg.Strategy

	for rank, s := range strategies {
		if err := ctx.Err(); err != nil {
			return nil, attempts, fault.Wrap(fault.CodeTimeout, true, err, "resolution cancelled")
		}

		els, attempt := r.evaluate(ctx, s, doc)
		attempts = append(attempts, attempt)

		switch len(els) {
		case 1:
			return &Resolution{
				Element:      els[0],
				StrategyUsed: s,
				FallbackRank: rank,
				Degraded:     rank > 0,
				Ambiguous:    ambiguous,
			}, attempts, nil
		case 0:
			// Fall through to the next strategy.
		default:
			// Ambiguous: never return an arbitrary match.
			ambiguous = append(ambiguous, s)
			r.logger.Debug("resolve: ambiguous strategy skipped",
				"entry", entry.Name, "strategy", s.String(), "matches", len(els))
		}
	}
	return nil, attempts, nil
}

// evaluate runs one strategy under the per-strategy timeout. Errors and
// timeouts count as zero matches: the chain exists precisely to absorb them.
func (r *Resolver) evaluate(ctx context.Context, s selreg.Strategy, doc DocumentContext) ([]Element, Attempt) {
	sctx, cancel := context.WithTimeout(ctx, r.cfg.StrategyTimeout)
	defer cancel()

	els, err := doc.Find(sctx, s)
	attempt := Attempt{Strategy: s, Matches: len(els)}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			attempt.TimedOut = true
		} else {
			attempt.Err = err.Error()
		}
		return nil, attempt
	}
	return els, attempt
}
