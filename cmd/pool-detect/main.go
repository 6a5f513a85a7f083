package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/pool-detect/internal/app"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := app.New(app.BuildInfo{
		Version:   Version,
		BuildTime: BuildTime,
		GitCommit: GitCommit,
	}).Run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
