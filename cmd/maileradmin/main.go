// Package main is the maileradmin console: a command-line and interactive
// shell front end for the email campaign platform's admin API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/atinyakov/MailerAdmin/cmd/maileradmin/cli"
)

// Set via -ldflags at build time.
var (
	version   string
	buildDate string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx, version, buildDate)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
