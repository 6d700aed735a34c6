// fibrace times five ways of computing a Fibonacci number, three times over,
// to show what memoization and a long-lived cache buy.
//
// Usage:
//
//	fibrace [-capacity 100] [-passes 3] [-log-level warn] n
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"

	"github.com/jculverhouse/fibonacci-race/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := cli.Run(ctx, os.Args, os.Stdout, os.Stderr)
	switch cli.ExitCode(err) {
	case 0:
	case 1:
		logrus.WithError(err).Fatal("fibrace")
	default:
		stop()
		os.Exit(cli.ExitCode(err))
	}
}
