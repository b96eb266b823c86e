package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/astropret/rentcal/internal/config"
)

func main() {
	var verbose bool
	flag.BoolVar(&verbose, "v", false, "verbose output")
	flag.Usage = usage
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Unable to load configuration:", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt)
		<-ch
		cancel()
	}()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	switch args[0] {
	case ServeCommand.Name:
		err = ServeCommand.Run(ctx, cfg, verbose, args[1:])
	case ConfigureCommand.Name:
		err = ConfigureCommand.Run(ctx, cfg, verbose, args[1:])
	case ImportCommand.Name:
		err = ImportCommand.Run(ctx, cfg, verbose, args[1:])
	case SweepCommand.Name:
		err = SweepCommand.Run(ctx, cfg, verbose, args[1:])
	default:
		fmt.Fprintf(flag.CommandLine.Output(), "unknown command %q\n\n", args[0])
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
