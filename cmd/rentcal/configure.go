package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"

	"github.com/astropret/rentcal/calendar/google"
	"github.com/astropret/rentcal/internal/config"
)

var ConfigureCommand = _configureCommand{
	Name:        "configure",
	Description: "Give the application access to the remote calendar",
}

type _configureCommand struct {
	Name        string
	Description string
}

func (s _configureCommand) Run(ctx context.Context, cfg *config.Config, verbose bool, args []string) error {
	storage, err := openStorage(cfg)
	if err != nil {
		return err
	}
	googleCal, err := newGoogleClient(cfg, storage, verbose)
	if err != nil {
		return fmt.Errorf("creating client: %v", err)
	}

	w := flag.CommandLine.Output()

	token, err := googleCal.Login(ctx, func(authURL string) {
		fmt.Fprintf(w, "Go to the following link in your browser\n%s\n", authURL)
	})
	if err != nil {
		return fmt.Errorf("google: logging in: %v", err)
	}

	auth, err := json.Marshal(token)
	if err != nil {
		return err
	}
	err = storage.SetToken(ctx, google.Platform, string(auth))
	if err != nil {
		return fmt.Errorf("saving token: %v", err)
	}

	fmt.Fprintln(w, "Token saved, the server can now sync with the remote calendar.")
	return nil
}
