package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/astropret/rentcal/internal/config"
	"github.com/astropret/rentcal/internal/feed"
	"github.com/astropret/rentcal/internal/reconcile"
)

var ImportCommand = _importCommand{
	Name:        "import",
	Description: "Import a calendar feed (ICS URL) into the local store",
}

type _importCommand struct {
	Name        string
	Description string
}

func (s _importCommand) Run(ctx context.Context, cfg *config.Config, verbose bool, args []string) error {
	fs := flag.NewFlagSet(s.Name, flag.ExitOnError)
	fs.Usage = func() {
		w := flag.CommandLine.Output()
		fmt.Fprintf(w, "Usage: rentcal %s <feed-url>\n", s.Name)
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	url := fs.Arg(0)
	if url == "" {
		fs.Usage()
		return errors.New("missing feed url")
	}

	storage, err := openStorage(cfg)
	if err != nil {
		return err
	}
	loc, err := time.LoadLocation(cfg.FeedTimezone)
	if err != nil {
		return err
	}

	w := flag.CommandLine.Output()
	importer := reconcile.NewImporter(w, feed.NewParser(loc), storage)

	res := importer.ImportURL(ctx, url)
	if res.Error != "" {
		return errors.New(res.Error)
	}
	fmt.Fprintf(w, "%d event(s) imported, %d skipped\n", res.Added, res.Skipped)
	return nil
}
