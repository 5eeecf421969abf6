// Package main implements the ipmictl CLI tool
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/davidroman0O/smcipmi/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
