package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/roach88/gqlcheck/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := cli.NewRootCommand()

	err := cli.Execute(ctx, rootCmd, os.Args[1:])
	if err != nil && err.Error() != "" {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	code := cli.GetExitCode(err)
	stop()
	os.Exit(code)
}
