package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

var version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		exitCode := 1
		if withCode, ok := err.(interface{ ExitCode() int }); ok {
			exitCode = withCode.ExitCode()
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode)
	}
}
