package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"hfquant/internal/cli"
	"hfquant/internal/execx"
)

func main() {
	// Ctrl+C / SIGTERM cancel the run; a second signal kills the process.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		stop()
	}()

	code := cli.Execute(ctx)
	stop()
	execx.KillAll()
	os.Exit(code)
}
