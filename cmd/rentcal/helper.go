package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"github.com/astropret/rentcal/calendar/google"
	"github.com/astropret/rentcal/internal/config"
	"github.com/astropret/rentcal/internal/sqlite"
)

func usage() {
	w := flag.CommandLine.Output()
	fmt.Fprintf(w, "Usage of %s:\n", os.Args[0])
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, c := range [][2]string{
		{ServeCommand.Name, ServeCommand.Description},
		{ConfigureCommand.Name, ConfigureCommand.Description},
		{ImportCommand.Name, ImportCommand.Description},
		{SweepCommand.Name, SweepCommand.Description},
	} {
		fmt.Fprintf(w, "  %-12s %s\n", c[0], c[1])
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	flag.PrintDefaults()
}

func openStorage(cfg *config.Config) (*sqlite.Storage, error) {
	db, err := sql.Open(sqlite.DriverName, cfg.DBFilename)
	if err != nil {
		return nil, err
	}
	return sqlite.NewStorage(db), nil
}

func newGoogleClient(cfg *config.Config, storage *sqlite.Storage, verbose bool) (*google.Client, error) {
	credJSON, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %v", err)
	}
	googleCal, err := google.NewClient(credJSON, storage, cfg.CalendarID)
	if err != nil {
		return nil, err
	}
	googleCal.Verbose = verbose
	return googleCal, nil
}
