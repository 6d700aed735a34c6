// Package harness times every Fibonacci strategy over repeated passes.
package harness

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"lukechampine.com/uint128"

	"github.com/jculverhouse/fibonacci-race/internal/fib"
	"github.com/jculverhouse/fibonacci-race/internal/report"
)

// DefaultPasses is how many times Run solves with every strategy.
const DefaultPasses = 3

const (
	firstBanner  = "\nThe first time solving will be the slowest\n"
	repeatBanner = "What about solving it a second or third time, anyone faster this time?\n"
)

// Timing is one timed call of one strategy.
type Timing struct {
	Index    uint64
	Strategy string
	Value    uint128.Uint128
	Elapsed  time.Duration
}

// Pass holds the timings of every strategy, in order, for one pass.
type Pass []Timing

// Harness runs and prints timing passes.
type Harness struct {
	strategies []fib.Strategy
	out        *report.Printer
	passes     int
	log        logrus.FieldLogger
	now        func() time.Time
}

// Option configures a Harness.
type Option func(*Harness)

// WithPasses sets the number of passes. Values below one are ignored.
func WithPasses(n int) Option {
	return func(h *Harness) {
		if n > 0 {
			h.passes = n
		}
	}
}

// WithLogger sets the logger that receives a debug entry per timed call.
func WithLogger(l logrus.FieldLogger) Option {
	return func(h *Harness) {
		h.log = l
	}
}

// WithClock replaces time.Now. The default clock reads the monotonic time.
func WithClock(now func() time.Time) Option {
	return func(h *Harness) {
		h.now = now
	}
}

// New returns a Harness timing strategies in order and printing to out.
func New(strategies []fib.Strategy, out *report.Printer, opts ...Option) *Harness {
	l := logrus.New()
	l.SetOutput(io.Discard)

	h := &Harness{
		strategies: strategies,
		out:        out,
		passes:     DefaultPasses,
		log:        l,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Run solves F(n) with every strategy once per pass and prints each
// elapsed time. The caller is expected to have checked n with
// fib.CheckIndex. ctx is checked between calls, never during one.
func (h *Harness) Run(ctx context.Context, n uint64) ([]Pass, error) {
	passes := make([]Pass, 0, h.passes)

	for i := 0; i < h.passes; i++ {
		switch i {
		case 0:
			h.out.Banner(firstBanner)
		case 1:
			h.out.Banner(repeatBanner)
		}

		pass, err := h.solveEach(ctx, n)
		h.out.Blank()
		if ferr := h.out.Flush(); ferr != nil && err == nil {
			err = fmt.Errorf("write results: %w", ferr)
		}
		if err != nil {
			return passes, err
		}

		passes = append(passes, pass)
	}

	return passes, nil
}

func (h *Harness) solveEach(ctx context.Context, n uint64) (Pass, error) {
	pass := make(Pass, 0, len(h.strategies))

	for _, s := range h.strategies {
		if err := ctx.Err(); err != nil {
			return pass, err
		}

		start := h.now()
		v := s.Solve(n)
		elapsed := h.since(start)

		h.out.Result(n, s.Description, elapsed)
		h.log.WithFields(logrus.Fields{
			"index":    n,
			"strategy": s.Description,
			"elapsed":  elapsed,
		}).Debug("solved")

		pass = append(pass, Timing{
			Index:    n,
			Strategy: s.Description,
			Value:    v,
			Elapsed:  elapsed,
		})
	}

	return pass, nil
}

func (h *Harness) since(start time.Time) time.Duration {
	return h.now().Sub(start)
}
