package util_test

import (
	"testing"

	"github.com/selimozcann/StoreHunter/internal/util"
)

func TestHostInFamily(t *testing.T) {
	family := []string{"lnkd.in", "linkedin.com"}
	tests := []struct {
		url  string
		want bool
	}{
		{"https://lnkd.in/abc", true},
		{"https://www.linkedin.com/safety/go?url=x", true},
		{"https://LINKEDIN.COM/x", true},
		{"https://notlinkedin.com/x", false},
		{"https://play.google.com/store/apps/details?id=com.linkedin.android", false},
		{"::not a url", false},
	}
	for _, tt := range tests {
		if got := util.HostInFamily(tt.url, family); got != tt.want {
			t.Fatalf("%s: expected %v, got %v", tt.url, tt.want, got)
		}
	}
}

func TestIsWebURL(t *testing.T) {
	if !util.IsWebURL("https://example.com/x") {
		t.Fatalf("expected https URL to be accepted")
	}
	for _, bad := range []string{"ftp://example.com", "example.com", "itms-apps://apps.apple.com", "https://"} {
		if util.IsWebURL(bad) {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

func TestIsInternalURL(t *testing.T) {
	for _, u := range []string{"http://127.0.0.1:8080/", "http://localhost/", "http://10.1.2.3/", "http://[::1]/", "http://[::ffff:127.0.0.1]/", "http://169.254.169.254/latest", "http://metadata.internal/"} {
		if !util.IsInternalURL(u) {
			t.Fatalf("expected %s to be internal", u)
		}
	}
	if util.IsInternalURL("https://lnkd.in/abc") {
		t.Fatalf("public host flagged as internal")
	}
}
