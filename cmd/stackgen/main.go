// stackgen - Feature-driven project scaffolding

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/stackgen/stackgen/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
