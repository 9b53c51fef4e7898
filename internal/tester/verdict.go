package tester

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/selimozcann/StoreHunter/internal/browser"
	"github.com/selimozcann/StoreHunter/internal/detect"
	"github.com/selimozcann/StoreHunter/internal/model"
)

// NoRedirectMessage is reported when the chain never left the input URL.
const NoRedirectMessage = "No redirect detected - URL may not be configured for mobile redirects"

var embeddedURL = regexp.MustCompile(`https?://[^\s]+`)

// Verdict is the decision for one profile.
type Verdict struct {
	Status      model.Status
	Success     bool
	ActualStore model.Store
	FinalURL    string
	Chain       []string
	Error       string
}

// Decide turns the recorded chain into a verdict. aborted is set when the
// navigation ended in an app hand-off; runErr is any other failure.
func Decide(profile model.DeviceProfile, input string, chain *model.Chain, aborted error, runErr error) Verdict {
	expected := profile.ExpectedStore()

	if runErr != nil {
		urls := chain.URLs()
		return Verdict{Status: model.StatusError, FinalURL: last(urls, input), Chain: urls, Error: runErr.Error()}
	}

	if aborted != nil {
		attempted := AttemptedURL(aborted, input)
		chain.Add(attempted)
		store := detect.Store(attempted)
		v := Verdict{ActualStore: store, FinalURL: attempted, Chain: chain.URLs(), Success: store == expected}
		if v.Success {
			v.Status = model.StatusPass
		} else {
			v.Status = model.StatusFail
			v.Error = fmt.Sprintf("Navigation aborted at wrong store: %s", store)
		}
		return v
	}

	urls := chain.URLs()
	v := Verdict{FinalURL: last(urls, input), Chain: urls}
	if u, store, ok := detect.First(urls); ok {
		v.FinalURL = u
		v.ActualStore = store
	}
	v.Success = v.ActualStore == expected
	if v.Success {
		v.Status = model.StatusPass
	} else {
		v.Status = model.StatusFail
		v.Error = fmt.Sprintf("Expected %s redirect for %s device, got: %s", expected, profile.Platform, v.ActualStore)
	}
	if len(urls) <= 1 {
		v.Status = model.StatusWarning
		v.Error = NoRedirectMessage
	}
	return v
}

// AttemptedURL returns the URL an aborted navigation was loading: the URL on a
// NavigationAbortedError, else the first URL in the message, else fallback.
func AttemptedURL(err error, fallback string) string {
	var abort *browser.NavigationAbortedError
	if errors.As(err, &abort) && abort.URL != "" {
		return abort.URL
	}
	if m := embeddedURL.FindString(err.Error()); m != "" {
		return m
	}
	return fallback
}

func last(urls []string, fallback string) string {
	if len(urls) == 0 {
		return fallback
	}
	return urls[len(urls)-1]
}
