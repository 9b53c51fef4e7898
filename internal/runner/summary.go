package runner

import (
	"math"

	"github.com/selimozcann/StoreHunter/internal/model"
)

// Summarize folds results into counters and rates. It is pure; an empty
// slice yields a zero Summary.
func Summarize(results []model.TestResult) model.Summary {
	s := model.Summary{Total: len(results)}
	var totalTime int64
	for _, r := range results {
		switch r.Status {
		case model.StatusPass:
			s.Passed++
		case model.StatusFail:
			s.Failed++
		case model.StatusError:
			s.Errors++
		case model.StatusWarning:
			s.Warnings++
		}
		switch r.Platform {
		case model.PlatformIOS:
			s.IOSDevices++
			if r.Success {
				s.IOSSuccess++
			}
		case model.PlatformAndroid:
			s.AndroidDevices++
			if r.Success {
				s.AndroidSuccess++
			}
		}
		totalTime += r.ResponseTime
	}
	if s.Total == 0 {
		return s
	}
	s.AverageResponseTime = int(math.Round(float64(totalTime) / float64(s.Total)))
	s.SuccessRate = percent(s.Passed, s.Total)
	s.IOSSuccessRate = percent(s.IOSSuccess, s.IOSDevices)
	s.AndroidSuccessRate = percent(s.AndroidSuccess, s.AndroidDevices)
	return s
}

func percent(n, d int) int {
	if d == 0 {
		return 0
	}
	return int(math.Round(float64(n) * 100 / float64(d)))
}
