package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"catalog-cli/internal/api"
	"catalog-cli/internal/collection"
	"catalog-cli/internal/model"
	"catalog-cli/internal/session"
)

// BannerText turns an error from op into the single line shown in the page's
// error banner. Discarded results produce no banner.
func BannerText(op string, err error) string {
	if err == nil || errors.Is(err, collection.ErrDiscarded) {
		return ""
	}

	var rerr *collection.RefreshError
	if errors.As(err, &rerr) {
		return fmt.Sprintf("Saved, but failed to reload %s: %s", rerr.View, describe(rerr.Err))
	}
	return fmt.Sprintf("Failed to %s: %s", op, describe(err))
}

func describe(err error) string {
	var (
		verr *model.ValidationError
		terr *api.TimeoutError
		nerr *api.NetworkError
		ferr *api.FetchError
		merr *api.MutationError
	)
	switch {
	case errors.As(err, &verr):
		return verr.Error()
	case errors.Is(err, session.ErrNotLoggedIn):
		return err.Error()
	case errors.As(err, &terr):
		return fmt.Sprintf("the server did not respond within %s", terr.After)
	case errors.As(err, &nerr):
		return fmt.Sprintf("could not reach the server at %s", hostOf(nerr.URL))
	case errors.As(err, &ferr):
		return serverSaid(ferr.Status, ferr.Message)
	case errors.As(err, &merr):
		return serverSaid(merr.Status, merr.Message)
	case errors.Is(err, context.Canceled):
		return "cancelled"
	default:
		return err.Error()
	}
}

func serverSaid(status int, msg string) string {
	msg = strings.TrimSpace(msg)
	head := fmt.Sprintf("server returned %d", status)
	if t := http.StatusText(status); t != "" {
		head += " " + t
	}
	if msg == "" || strings.EqualFold(msg, http.StatusText(status)) {
		return head
	}
	return head + " (" + msg + ")"
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}
