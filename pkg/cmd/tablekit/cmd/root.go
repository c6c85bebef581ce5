package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/segmentio/cli"
)

func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	cli.ExecContext(ctx, cli.CommandSet{
		"info":    cliInfo,
		"dedupe":  cliDedupe,
		"merge":   cliMerge,
		"convert": cliConvert,
		"version": cliVersion,
	})
}
