package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/suvranil-debnath/fullstack-task-manager-assignment/services/todolist/internal/theme"
	"github.com/suvranil-debnath/fullstack-task-manager-assignment/services/todolist/internal/ui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		ui.NewRenderer(os.Stderr, theme.Current()).Error(err)
		stop()
		os.Exit(1)
	}
}
