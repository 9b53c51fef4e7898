package model

import (
	"fmt"
	"strings"
)

// Platform is the operating system family a device profile simulates.
type Platform string

const (
	PlatformIOS     Platform = "iOS"
	PlatformAndroid Platform = "Android"
)

// ParsePlatform accepts "ios" or "android" in any case.
func ParsePlatform(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ios":
		return PlatformIOS, nil
	case "android":
		return PlatformAndroid, nil
	default:
		return "", fmt.Errorf("unknown platform %q (want ios or android)", s)
	}
}

// Store identifies an app distribution destination. The zero value means no
// known store matched.
type Store string

const (
	StoreNone   Store = ""
	StoreApple  Store = "App Store"
	StoreGoogle Store = "Google Play"
	StoreAmazon Store = "Amazon Appstore"
	StoreAPK    Store = "Direct APK"
)

// String returns the display name, or "Unknown" for StoreNone.
func (s Store) String() string {
	if s == StoreNone {
		return "Unknown"
	}
	return string(s)
}

// ExpectedStore is the store a correctly configured link must reach on p.
func (p Platform) ExpectedStore() Store {
	if p == PlatformIOS {
		return StoreApple
	}
	return StoreGoogle
}

// Viewport is a logical pixel size.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DeviceProfile is a simulated device identity.
type DeviceProfile struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Platform          Platform `json:"platform"`
	UserAgent         string   `json:"userAgent"`
	Viewport          Viewport `json:"viewport"`
	DeviceScaleFactor float64  `json:"deviceScaleFactor"`
	IsMobile          bool     `json:"isMobile"`
	HasTouch          bool     `json:"hasTouch"`
	Custom            bool     `json:"isCustom,omitempty"`
}

// ExpectedStore derives the expected store from the platform.
func (d DeviceProfile) ExpectedStore() Store { return d.Platform.ExpectedStore() }

// ProfileID builds the stable identifier used for built-in profiles.
func ProfileID(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}
