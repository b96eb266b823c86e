package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/astropret/rentcal/internal/config"
	"github.com/astropret/rentcal/internal/rental"
)

var SweepCommand = _sweepCommand{
	Name:        "sweep",
	Description: "Release rented equipment whose last reservation is over",
}

type _sweepCommand struct {
	Name        string
	Description string
}

func (s _sweepCommand) Run(ctx context.Context, cfg *config.Config, verbose bool, args []string) error {
	storage, err := openStorage(cfg)
	if err != nil {
		return err
	}

	w := flag.CommandLine.Output()
	released, err := rental.New(w, storage).Sweep(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%d equipment released\n", released)
	return nil
}
