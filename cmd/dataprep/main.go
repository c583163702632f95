package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	apperrors "github.com/xXAI-botXx/3xM/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		verbose, _ := cmd.PersistentFlags().GetBool("verbose")
		if msg := formatError(err, verbose); msg != "" {
			fmt.Fprintln(os.Stderr, msg)
		}
		stop()
		os.Exit(1)
	}
}

// formatError renders err for the terminal. Cancellation and item failures
// were already reported and render empty; verbose adds the captured stack.
func formatError(err error, verbose bool) string {
	var appErr *apperrors.AppError
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, errItemsFailed):
		return ""
	case errors.As(err, &appErr):
		return apperrors.NewErrorFormatter(verbose, true).Format(appErr)
	default:
		return err.Error()
	}
}
