package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jgivc/nupkgreports/internal/app"
	"github.com/jgivc/nupkgreports/internal/config"
)

const (
	exitError = 1
	exitUsage = 2
)

func main() {
	cfgFileName := flag.String("c", config.DefaultConfigFileName, "Path to config file")
	flag.Usage = printUsage
	flag.Parse()

	if flag.NArg() != 2 {
		printUsage()
		os.Exit(exitUsage)
	}

	cfg, err := config.Load(*cfgFileName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot load config: %s\n", err)
		os.Exit(exitError)
	}

	a, err := app.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot start: %s\n", err)
		os.Exit(exitError)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Run(ctx, flag.Arg(0), flag.Arg(1)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		stop()
		os.Exit(exitError)
	}
}

func printUsage() {
	fmt.Println("Missing arguments...")
	fmt.Println("nupkgreports [-c config.yml] <input:directory-with-nupkgs> <output:reports-output-directory>")
}
