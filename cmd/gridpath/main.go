package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/matzehuels/gridpath/internal/cli"
	gerrors "github.com/matzehuels/gridpath/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130) // Standard shell convention for SIGINT
		}
		fmt.Fprintln(os.Stderr, formatError(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	c := cli.New(os.Stderr, cli.LogInfo)
	return c.RootCommand().ExecuteContext(ctx)
}

// formatError prints coded errors as "error: message (CODE)".
func formatError(err error) string {
	if code := gerrors.GetCode(err); code != "" {
		return fmt.Sprintf("error: %s (%s)", gerrors.UserMessage(err), code)
	}
	return "error: " + err.Error()
}
