// Package cli implements the fibrace command line.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"lukechampine.com/uint128"

	"github.com/jculverhouse/fibonacci-race/internal/fib"
	"github.com/jculverhouse/fibonacci-race/internal/harness"
	"github.com/jculverhouse/fibonacci-race/internal/report"
)

const defaultName = "fibrace"

var (
	// ErrFlags is returned when the flags cannot be parsed. The flag
	// package has already printed the defaults by then.
	ErrFlags = errors.New("bad flags")

	// ErrIndex is returned when the index is not an unsigned 128-bit integer.
	ErrIndex = errors.New("index is not an unsigned 128-bit integer")
)

// Run parses args (program name first), then times every strategy for the
// requested index and prints the results to stdout. Logs go to stderr.
//
// A wrong number of positional arguments prints the usage line and returns
// nil without computing anything.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	name := defaultName
	if len(args) > 0 {
		name = args[0]
		args = args[1:]
	}

	cfg := DefaultConfig()
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfg.RegisterFlags(fs)
	if err := fs.Parse(endFlagsAtNegative(args)); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrFlags, err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if fs.NArg() != 1 {
		fmt.Fprintf(stdout, "Usage: %s n (positive integer to solve slow way)\n", name)
		return nil
	}

	n, err := ParseIndex(fs.Arg(0))
	if err != nil {
		return err
	}

	log := newLogger(stderr, cfg.LogLevel)
	log.WithFields(cfg.Fields()).WithField("index", n).Info("starting")

	cached, err := fib.NewCached(cfg.Capacity, log)
	if err != nil {
		return err
	}

	h := harness.New(fib.Strategies(cached), report.NewPrinter(stdout),
		harness.WithPasses(cfg.Passes),
		harness.WithLogger(log),
	)
	if _, err := h.Run(ctx, n); err != nil {
		return err
	}

	fibStats, dynStats := cached.Stats()
	log.WithFields(logrus.Fields{
		"fib_hits":      fibStats.Hits,
		"fib_misses":    fibStats.Misses,
		"fib_evictions": fibStats.Evictions,
		"dyn_hits":      dynStats.Hits,
		"dyn_misses":    dynStats.Misses,
	}).Info("done")

	return nil
}

// ExitCode maps an error returned by Run to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrFlags):
		return 2
	default:
		return 1
	}
}

// endFlagsAtNegative inserts "--" before the first negative number that is
// not a flag value, so "-5" reaches ParseIndex instead of the flag parser.
func endFlagsAtNegative(args []string) []string {
	for i, a := range args {
		if a == "--" {
			break
		}
		if len(a) < 2 || a[0] != '-' || a[1] < '0' || a[1] > '9' {
			continue
		}
		if i > 0 && isFlagExpectingValue(args[i-1]) {
			continue
		}

		out := make([]string, 0, len(args)+1)
		out = append(out, args[:i]...)
		out = append(out, "--")
		return append(out, args[i:]...)
	}
	return args
}

// isFlagExpectingValue reports whether a is a flag name whose value is the
// next argument. Every flag takes a value.
func isFlagExpectingValue(a string) bool {
	return strings.HasPrefix(a, "-") && !strings.Contains(a, "=") && a != "-" && a != "--"
}

// ParseIndex parses a decimal Fibonacci index. Anything that is not an
// unsigned 128-bit integer wraps ErrIndex; an index whose Fibonacci number
// does not fit in 128 bits wraps fib.ErrOverflow.
func ParseIndex(s string) (uint64, error) {
	digits := strings.TrimPrefix(s, "+")
	if digits == "" || strings.Trim(digits, "0123456789") != "" {
		return 0, fmt.Errorf("%w: %q", ErrIndex, s)
	}

	idx, err := uint128.FromString(digits)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrIndex, s, err)
	}
	if idx.Hi != 0 {
		return 0, fmt.Errorf("%w: index %s exceeds %d", fib.ErrOverflow, idx, fib.MaxIndex)
	}
	if err := fib.CheckIndex(idx.Lo); err != nil {
		return 0, err
	}

	return idx.Lo, nil
}

func newLogger(w io.Writer, level string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if lvl, err := logrus.ParseLevel(level); err == nil {
		l.SetLevel(lvl)
	}
	return l
}
