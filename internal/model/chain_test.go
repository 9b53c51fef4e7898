package model_test

import (
	"testing"

	"github.com/selimozcann/StoreHunter/internal/model"
)

func TestChainDedup(t *testing.T) {
	c := model.NewChain("https://lnkd.in/abc")
	c.Add("https://www.linkedin.com/redir")
	c.Add("https://lnkd.in/abc")
	c.Add("https://www.linkedin.com/redir")
	c.Add("")
	c.Add("https://apps.apple.com/us/app/x/id1")

	got := c.URLs()
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d: %v", len(got), got)
	}
	if got[0] != "https://lnkd.in/abc" {
		t.Fatalf("first entry must be the input URL, got %s", got[0])
	}
	for i := 1; i < len(got); i++ {
		if got[i] == got[i-1] {
			t.Fatalf("consecutive duplicate at %d: %s", i, got[i])
		}
	}
	if !c.Contains("https://apps.apple.com/us/app/x/id1") {
		t.Fatalf("expected store URL to be recorded")
	}
}

func TestChainURLsIsCopy(t *testing.T) {
	c := model.NewChain("https://a.example")
	urls := c.URLs()
	urls[0] = "mutated"
	if c.URLs()[0] != "https://a.example" {
		t.Fatalf("URLs must return a copy")
	}
}

func TestSettleOnce(t *testing.T) {
	res := model.NewResult(model.DeviceProfile{Name: "Pixel", Platform: model.PlatformAndroid})
	if res.Status != model.StatusUnknown {
		t.Fatalf("expected unknown initial status, got %s", res.Status)
	}
	if !res.Settle(model.StatusFail, false, "boom") {
		t.Fatalf("first settle should succeed")
	}
	if res.Settle(model.StatusPass, true, "") {
		t.Fatalf("second settle must be ignored")
	}
	if res.Status != model.StatusFail || res.Success || res.ErrorText() != "boom" {
		t.Fatalf("unexpected settled result: %+v", res)
	}
}

func TestExpectedStoreFollowsPlatform(t *testing.T) {
	tests := []struct {
		platform model.Platform
		want     model.Store
	}{
		{model.PlatformIOS, model.StoreApple},
		{model.PlatformAndroid, model.StoreGoogle},
	}
	for _, tt := range tests {
		if got := (model.DeviceProfile{Platform: tt.platform}).ExpectedStore(); got != tt.want {
			t.Fatalf("%s: expected %s, got %s", tt.platform, tt.want, got)
		}
	}
}

func TestParsePlatform(t *testing.T) {
	if p, err := model.ParsePlatform("IOS"); err != nil || p != model.PlatformIOS {
		t.Fatalf("expected iOS, got %q (%v)", p, err)
	}
	if p, err := model.ParsePlatform(" android "); err != nil || p != model.PlatformAndroid {
		t.Fatalf("expected Android, got %q (%v)", p, err)
	}
	if _, err := model.ParsePlatform("windows"); err == nil {
		t.Fatalf("expected error for unknown platform")
	}
}

func TestProfileID(t *testing.T) {
	if got := model.ProfileID(`iPad Pro 12.9" (iPadOS 18.1)`); got != `ipad-pro-12.9"-(ipados-18.1)` {
		t.Fatalf("unexpected id %q", got)
	}
}
