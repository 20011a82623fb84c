package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yungbote/ndtmaster-backend/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	a.Start()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Run(ctx, ":"+a.Cfg.Port); err != nil {
		a.Log.Error("HTTP server stopped", "error", err)
		a.Close()
		os.Exit(1)
	}
	a.Log.Info("Shutdown complete")
}
