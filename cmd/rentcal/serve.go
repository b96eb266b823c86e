package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"time"

	"github.com/astropret/rentcal/calendar"
	"github.com/astropret/rentcal/calendar/google"
	"github.com/astropret/rentcal/internal"
	"github.com/astropret/rentcal/internal/config"
	"github.com/astropret/rentcal/internal/feed"
	"github.com/astropret/rentcal/internal/httpapi"
	"github.com/astropret/rentcal/internal/reconcile"
)

var ServeCommand = _serveCommand{
	Name:        "serve",
	Description: "Run the calendar API server",
}

type _serveCommand struct {
	Name        string
	Description string
}

func (s _serveCommand) Run(ctx context.Context, cfg *config.Config, verbose bool, args []string) error {
	fs := flag.NewFlagSet(s.Name, flag.ExitOnError)
	addr := fs.String("addr", cfg.Addr, "address to listen on")
	if err := fs.Parse(args); err != nil {
		return err
	}

	storage, err := openStorage(cfg)
	if err != nil {
		return err
	}
	googleCal, err := newGoogleClient(cfg, storage, verbose)
	if err != nil {
		return err
	}

	mux := calendar.NewMux()
	mux.Register(google.Platform, googleCal)
	remote, err := mux.Get(google.Platform)
	if err != nil {
		return err
	}

	loc, err := time.LoadLocation(cfg.FeedTimezone)
	if err != nil {
		return err
	}

	output := flag.CommandLine.Output()
	engine := reconcile.New(output, remote, storage)
	importer := reconcile.NewImporter(output, feed.NewParser(loc), storage)
	server := httpapi.NewServer(*addr, httpapi.NewHandler(engine, importer, cfg.AdminToken))

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	internal.Logf(output, "", "Listening on %s", *addr)
	err = server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
