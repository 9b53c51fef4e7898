package devices

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mssola/user_agent"

	"github.com/selimozcann/StoreHunter/internal/model"
)

// Defaults applied to custom profiles that omit them.
var (
	DefaultViewport          = model.Viewport{Width: 390, Height: 844}
	DefaultDeviceScaleFactor = 3.0
)

// CustomRequest is the user supplied shape of a custom profile.
type CustomRequest struct {
	Name              string          `json:"name"`
	Platform          string          `json:"platform"`
	UserAgent         string          `json:"userAgent"`
	Viewport          *model.Viewport `json:"viewport,omitempty"`
	DeviceScaleFactor float64         `json:"deviceScaleFactor,omitempty"`
}

// ErrMissingFields is returned when name, platform or userAgent is empty.
var ErrMissingFields = errors.New("missing required fields: name, platform, userAgent")

// ValidationError describes why a profile was rejected.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid device %s: %s", e.Field, e.Reason)
}

// NewCustom validates req and builds a profile with a generated id.
func NewCustom(req CustomRequest) (model.DeviceProfile, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Platform) == "" || strings.TrimSpace(req.UserAgent) == "" {
		return model.DeviceProfile{}, ErrMissingFields
	}
	platform, err := model.ParsePlatform(req.Platform)
	if err != nil {
		return model.DeviceProfile{}, &ValidationError{Field: "platform", Reason: err.Error()}
	}
	p := model.DeviceProfile{
		ID:                "custom-" + uuid.New().String(),
		Name:              strings.TrimSpace(req.Name),
		Platform:          platform,
		UserAgent:         strings.TrimSpace(req.UserAgent),
		Viewport:          DefaultViewport,
		DeviceScaleFactor: DefaultDeviceScaleFactor,
		IsMobile:          true,
		HasTouch:          true,
		Custom:            true,
	}
	if req.Viewport != nil {
		p.Viewport = *req.Viewport
	}
	if req.DeviceScaleFactor != 0 {
		p.DeviceScaleFactor = req.DeviceScaleFactor
	}
	if err := Validate(p); err != nil {
		return model.DeviceProfile{}, err
	}
	return p, nil
}

// Validate rejects malformed profiles before they reach the engine.
func Validate(p model.DeviceProfile) error {
	if strings.TrimSpace(p.Name) == "" {
		return &ValidationError{Field: "name", Reason: "required"}
	}
	if p.Platform != model.PlatformIOS && p.Platform != model.PlatformAndroid {
		return &ValidationError{Field: "platform", Reason: fmt.Sprintf("unsupported %q", p.Platform)}
	}
	if p.Viewport.Width <= 0 || p.Viewport.Height <= 0 {
		return &ValidationError{Field: "viewport", Reason: fmt.Sprintf("must be positive (got %dx%d)", p.Viewport.Width, p.Viewport.Height)}
	}
	if p.DeviceScaleFactor < 1 {
		return &ValidationError{Field: "deviceScaleFactor", Reason: fmt.Sprintf("must be >= 1 (got %g)", p.DeviceScaleFactor)}
	}
	if strings.TrimSpace(p.UserAgent) == "" {
		return &ValidationError{Field: "userAgent", Reason: "required"}
	}
	family, ok := uaPlatform(p.UserAgent)
	if !ok {
		return &ValidationError{Field: "userAgent", Reason: "not a mobile iOS or Android user agent"}
	}
	if family != p.Platform {
		return &ValidationError{Field: "userAgent", Reason: fmt.Sprintf("describes %s but platform is %s", family, p.Platform)}
	}
	return nil
}

// uaPlatform reads the OS family of a mobile user agent. Desktop agents,
// bots and unknown mobile systems are rejected.
func uaPlatform(raw string) (model.Platform, bool) {
	ua := user_agent.New(raw)
	if !ua.Mobile() || ua.Bot() {
		return "", false
	}
	os := ua.OS()
	switch {
	case strings.HasPrefix(os, "Android"):
		return model.PlatformAndroid, true
	case strings.Contains(os, "iPhone OS"), strings.Contains(os, "CPU OS"):
		return model.PlatformIOS, true
	}
	return "", false
}
