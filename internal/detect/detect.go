// Package detect maps URLs to known app distribution stores.
package detect

import (
	"strings"

	"github.com/selimozcann/StoreHunter/internal/model"
)

// Rule matches a store when any of Any and all of All occur in the URL.
type Rule struct {
	Store model.Store
	Any   []string
	All   []string
}

// Rules is the classification table, evaluated top to bottom.
var Rules = []Rule{
	{Store: model.StoreApple, Any: []string{"apps.apple.com", "itunes.apple.com", "appstore.com"}},
	{Store: model.StoreGoogle, Any: []string{"play.google.com", "play.app.goo.gl", "market.android.com"}},
	{Store: model.StoreAmazon, All: []string{"amazon.com", "app"}},
	{Store: model.StoreAPK, Any: []string{"apk"}},
}

func (r Rule) match(u string) bool {
	for _, tok := range r.All {
		if !strings.Contains(u, tok) {
			return false
		}
	}
	if len(r.Any) == 0 {
		return len(r.All) > 0
	}
	for _, tok := range r.Any {
		if strings.Contains(u, tok) {
			return true
		}
	}
	return false
}

// Store classifies rawURL, returning model.StoreNone when nothing matches.
func Store(rawURL string) model.Store {
	u := strings.ToLower(rawURL)
	if u == "" {
		return model.StoreNone
	}
	for _, r := range Rules {
		if r.match(u) {
			return r.Store
		}
	}
	return model.StoreNone
}

// First returns the first entry of chain that classifies to a store.
func First(chain []string) (string, model.Store, bool) {
	for _, u := range chain {
		if s := Store(u); s != model.StoreNone {
			return u, s, true
		}
	}
	return "", model.StoreNone, false
}
