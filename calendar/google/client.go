package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/astropret/rentcal/internal"
)

const Platform = "google"

type Client struct {
	oauthCfg   *oauth2.Config
	tokens     internal.TokenStore
	calendarID string

	// CallTimeout bounds each outbound call so a stale connection cannot
	// hang the reconciliation engine.
	CallTimeout time.Duration
	Verbose     bool
}

func NewClient(credJSON []byte, tokens internal.TokenStore, calendarID string) (*Client, error) {
	oauthCfg, err := google.ConfigFromJSON(credJSON, calendar.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("google: parsing credentials file: %v", err)
	}

	return &Client{
		oauthCfg:    oauthCfg,
		tokens:      tokens,
		calendarID:  calendarID,
		CallTimeout: 5 * time.Second,
	}, nil
}

const defaultSleep = 5 * time.Second

func (c *Client) Events(ctx context.Context) ([]*internal.RemoteEvent, error) {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	svc, err := c.calendarSvc(ctx)
	if err != nil {
		return nil, err
	}

	var (
		events        []*internal.RemoteEvent
		nextPageToken string
	)
	for {
		res, err := svc.Events.
			List(c.calendarID).
			Context(ctx).
			ShowDeleted(false).
			SingleEvents(true).
			PageToken(nextPageToken).
			Do()
		if err != nil {
			if shouldRetry(err) {
				time.Sleep(defaultSleep)
				continue
			}
			c.logf("unable to get list of events: %v", err)
			return nil, err
		}

		for _, item := range res.Items {
			events = append(events, newRemoteEvent(item))
		}
		nextPageToken = res.NextPageToken
		if nextPageToken == "" {
			break
		}
	}
	return events, nil
}

func (c *Client) CreateEvent(ctx context.Context, req *internal.Event) (string, error) {
	msg := fmt.Sprintf("creating event: %q on %s... ", req.Title, req.StartsAt)
	defer func() {
		c.logf(msg)
	}()

	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	svc, err := c.calendarSvc(ctx)
	if err != nil {
		msg += "❌"
		return "", err
	}

	for {
		gevent, err := svc.Events.Insert(c.calendarID, newGoogleEvent(req)).Context(ctx).Do()
		if err == nil {
			msg += "✅"
			return gevent.Id, nil
		}
		if shouldRetry(err) {
			time.Sleep(defaultSleep)
			continue
		}
		msg += "❌"
		return "", err
	}
}

func (c *Client) UpdateEvent(ctx context.Context, externalID string, req *internal.Event) error {
	msg := fmt.Sprintf("updating event %s: %q on %s... ", externalID, req.Title, req.StartsAt)
	defer func() {
		c.logf(msg)
	}()

	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	svc, err := c.calendarSvc(ctx)
	if err != nil {
		msg += "❌"
		return err
	}

	for {
		_, err := svc.Events.Update(c.calendarID, externalID, newGoogleEvent(req)).Context(ctx).Do()
		if err == nil {
			msg += "✅"
			return nil
		}
		if shouldRetry(err) {
			time.Sleep(defaultSleep)
			continue
		}
		msg += "❌"
		return err
	}
}

func (c *Client) DeleteEvent(ctx context.Context, externalID string) error {
	msg := fmt.Sprintf("deleting event %s... ", externalID)
	defer func() {
		c.logf(msg)
	}()

	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	svc, err := c.calendarSvc(ctx)
	if err != nil {
		msg += "❌"
		return err
	}
	for {
		err = svc.Events.Delete(c.calendarID, externalID).Context(ctx).Do()
		if err == nil || alreadyDeleted(err) {
			msg += "✅"
			return nil
		}
		if shouldRetry(err) {
			time.Sleep(defaultSleep)
			continue
		}
		msg += "❌"
		return err
	}
}

// Login runs the one-time OAuth consent flow on a loopback listener and
// returns the token to persist.
func (c *Client) Login(ctx context.Context, showURL func(authURL string)) (*oauth2.Token, error) {
	state := fmt.Sprintf("rentcal-%d", time.Now().UTC().Nanosecond())
	authURL := c.oauthCfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	showURL(authURL)

	mux := http.NewServeMux()
	server := &http.Server{
		Addr:    ":8085",
		Handler: mux,
	}

	var (
		token   *oauth2.Token
		authErr error
	)

	mux.HandleFunc("/rentcal", func(w http.ResponseWriter, req *http.Request) {
		defer func() {
			go server.Shutdown(ctx)
		}()

		query := req.URL.Query()
		if query.Get("state") != state {
			authErr = errors.New("oauth link is not valid")
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		token, authErr = c.oauthCfg.Exchange(ctx, query.Get("code"))
		if authErr != nil {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintln(w, "Unable to retrieve token:", authErr)
			return
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "All good, you can close this window!")
	})

	serverCh := make(chan struct{})
	var svrErr error
	go func() {
		svrErr = server.ListenAndServe()
		close(serverCh)
	}()

	<-serverCh

	if svrErr != nil && svrErr != http.ErrServerClosed {
		return nil, svrErr
	}
	if authErr != nil {
		return nil, authErr
	}
	return token, nil
}

// calendarSvc builds the API client from the stored token, refreshing it
// lazily and writing the refreshed token back to the store.
func (c *Client) calendarSvc(ctx context.Context) (*calendar.Service, error) {
	auth, err := c.tokens.Token(ctx, Platform)
	if err != nil {
		return nil, err
	}
	if auth == "" {
		return nil, errors.New("google: no token stored, run the configure command first")
	}

	var tok oauth2.Token
	err = json.Unmarshal([]byte(auth), &tok)
	if err != nil {
		return nil, fmt.Errorf("google: decoding stored token: %v", err)
	}

	src := c.oauthCfg.TokenSource(ctx, &tok)
	fresh, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("google: refreshing token: %w", err)
	}
	if fresh.AccessToken != tok.AccessToken {
		v, _ := json.Marshal(fresh)
		if err := c.tokens.SetToken(ctx, Platform, string(v)); err != nil {
			c.logf("unable to persist refreshed token: %v", err)
		}
	}
	return calendar.NewService(ctx, option.WithTokenSource(src))
}

func (c *Client) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.CallTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.CallTimeout)
}

func (c *Client) logf(format string, a ...any) {
	if c.Verbose {
		internal.Logf(os.Stdout, "google:", format, a...)
	}
}

func shouldRetry(err error) bool {
	return errIsReason(err, "rateLimitExceeded")
}

func alreadyDeleted(err error) bool {
	return errIsReason(err, "deleted")
}

func errIsReason(err error, reason string) bool {
	var gErr *googleapi.Error
	if !errors.As(err, &gErr) {
		return false
	}

	for _, err := range gErr.Errors {
		switch err.Reason {
		case reason:
			return true
		}
	}
	return false
}
