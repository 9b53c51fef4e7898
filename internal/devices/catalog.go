// Package devices holds the built-in LinkedIn in-app browser profiles and the
// validation applied to user supplied ones.
package devices

import "github.com/selimozcann/StoreHunter/internal/model"

func ios(name, ua string, w, h int, scale float64) model.DeviceProfile {
	return model.DeviceProfile{
		ID:                model.ProfileID(name),
		Name:              name,
		Platform:          model.PlatformIOS,
		UserAgent:         ua,
		Viewport:          model.Viewport{Width: w, Height: h},
		DeviceScaleFactor: scale,
		IsMobile:          true,
		HasTouch:          true,
	}
}

func android(name, ua string, w, h int, scale float64) model.DeviceProfile {
	p := ios(name, ua, w, h, scale)
	p.Platform = model.PlatformAndroid
	return p
}

var catalog = []model.DeviceProfile{
	ios("iPhone 15 Pro Max (iOS 18.2)",
		"Mozilla/5.0 (iPhone; CPU iPhone OS 18_2 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Mobile/15E148 [LinkedInApp]/9.35.2145",
		430, 932, 3),
	ios("iPhone 15 (iOS 18.1)",
		"Mozilla/5.0 (iPhone; CPU iPhone OS 18_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Mobile/15E148 [LinkedInApp]/9.34.2089",
		393, 852, 3),
	ios("iPhone 14 Pro (iOS 17.5)",
		"Mozilla/5.0 (iPhone; CPU iPhone OS 17_5 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Mobile/15E148 [LinkedInApp]/9.32.1876",
		393, 852, 3),
	ios("iPhone 13 (iOS 17.0)",
		"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Mobile/15E148 [LinkedInApp]/9.30.1654",
		390, 844, 3),
	ios("iPhone 12 (iOS 16.7)",
		"Mozilla/5.0 (iPhone; CPU iPhone OS 16_7 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Mobile/15E148 [LinkedInApp]/9.28.1432",
		390, 844, 3),
	ios("iPhone SE (iOS 16.5)",
		"Mozilla/5.0 (iPhone; CPU iPhone OS 16_5 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Mobile/15E148 [LinkedInApp]/9.27.1298",
		375, 667, 2),
	ios(`iPad Pro 12.9" (iPadOS 18.1)`,
		"Mozilla/5.0 (iPad; CPU OS 18_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Mobile/15E148 [LinkedInApp]/9.34.2089",
		1024, 1366, 2),
	ios("iPad Air (iPadOS 17.5)",
		"Mozilla/5.0 (iPad; CPU OS 17_5 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Mobile/15E148 [LinkedInApp]/9.32.1876",
		820, 1180, 2),

	android("Samsung Galaxy S24 Ultra (Android 14)",
		"Mozilla/5.0 (Linux; Android 14; SM-S928B) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Mobile Safari/537.36 LinkedInApp",
		412, 915, 3.5),
	android("Samsung Galaxy S23 (Android 14)",
		"Mozilla/5.0 (Linux; Android 14; SM-S911B) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Mobile Safari/537.36 LinkedInApp",
		360, 780, 3),
	android("Google Pixel 8 Pro (Android 15)",
		"Mozilla/5.0 (Linux; Android 15; Pixel 8 Pro) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Mobile Safari/537.36 LinkedInApp",
		412, 915, 2.625),
	android("Google Pixel 7 (Android 14)",
		"Mozilla/5.0 (Linux; Android 14; Pixel 7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Mobile Safari/537.36 LinkedInApp",
		412, 915, 2.625),
	android("OnePlus 12 (Android 14)",
		"Mozilla/5.0 (Linux; Android 14; CPH2583) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Mobile Safari/537.36 LinkedInApp",
		412, 915, 3),
	android("Xiaomi 13 Pro (Android 13)",
		"Mozilla/5.0 (Linux; Android 13; 2210132C) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/129.0.0.0 Mobile Safari/537.36 LinkedInApp",
		412, 915, 3),
	android("Samsung Galaxy Tab S9 (Android 14)",
		"Mozilla/5.0 (Linux; Android 14; SM-X710) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36 LinkedInApp",
		712, 1138, 2),
}

// All returns every built-in profile in declaration order.
func All() []model.DeviceProfile {
	return append([]model.DeviceProfile(nil), catalog...)
}

// ByPlatform returns the built-in profiles for p, in declaration order.
func ByPlatform(p model.Platform) []model.DeviceProfile {
	var out []model.DeviceProfile
	for _, d := range catalog {
		if d.Platform == p {
			out = append(out, d)
		}
	}
	return out
}

// Lookup finds a built-in profile by id.
func Lookup(id string) (model.DeviceProfile, bool) {
	for _, d := range catalog {
		if d.ID == id {
			return d, true
		}
	}
	return model.DeviceProfile{}, false
}
