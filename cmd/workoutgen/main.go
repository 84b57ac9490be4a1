// Package main provides the entry point for the workoutgen CLI.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/waynenilsen/workoutgen/internal/cliapp"
	domerrors "github.com/waynenilsen/workoutgen/internal/errors"
)

func main() {
	edit := flag.String("edit", "", "comma-separated exercise ids to replace in the last plan")
	include := flag.String("include", "", "comma-separated exercise ids to bias station construction toward")
	add := flag.Bool("add", false, "hand off to the add-exercise collaborator")
	flag.Parse()

	opts, err := cliapp.ParseArgs(&cliapp.FlagSet{Edit: *edit, Include: *include, Add: *add})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", domerrors.GetMessage(err))
		os.Exit(domerrors.ExitCode(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Println("interrupt received, cancelling current attempt...")
		cancel()
	}()
	defer cancel()

	runErr := cliapp.Run(ctx, cliapp.DefaultPaths(), opts, time.Now(), os.Stdout, os.Stderr)
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", domerrors.GetMessage(runErr))
	}
	os.Exit(domerrors.ExitCode(runErr))
}
