package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"paycore/internal/app/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "payroll:", err)
		stop()
		os.Exit(1)
	}
}
