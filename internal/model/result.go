package model

// Status is the verdict assigned to one profile's test of one URL.
type Status string

const (
	StatusUnknown Status = "unknown"
	StatusPass    Status = "PASS"
	StatusFail    Status = "FAIL"
	StatusWarning Status = "WARNING"
	StatusError   Status = "ERROR"
)

// Terminal reports whether s is one of the four verdicts.
func (s Status) Terminal() bool {
	switch s {
	case StatusPass, StatusFail, StatusWarning, StatusError:
		return true
	}
	return false
}

// Screenshot is a best-effort capture taken during a test.
type Screenshot struct {
	Step        int    `json:"step"`
	URL         string `json:"url"`
	Image       string `json:"image"`
	TimestampMs int64  `json:"timestamp"`
}

// TestResult is the outcome of one profile against one URL.
type TestResult struct {
	Device        string       `json:"device"`
	Platform      Platform     `json:"platform"`
	ExpectedStore Store        `json:"expectedStore"`
	Status        Status       `json:"status"`
	FinalURL      string       `json:"finalUrl"`
	RedirectChain []string     `json:"redirectChain"`
	ActualStore   *Store       `json:"actualStore"`
	Success       bool         `json:"success"`
	Error         *string      `json:"error"`
	ResponseTime  int64        `json:"responseTime"`
	HTTPStatus    *int         `json:"httpStatus"`
	Screenshots   []Screenshot `json:"screenshots,omitempty"`
}

// NewResult creates a result for profile in the unknown state.
func NewResult(profile DeviceProfile) TestResult {
	return TestResult{
		Device:        profile.Name,
		Platform:      profile.Platform,
		ExpectedStore: profile.ExpectedStore(),
		Status:        StatusUnknown,
		RedirectChain: []string{},
	}
}

// Settle assigns the terminal status. Only the first call has an effect.
func (r *TestResult) Settle(status Status, success bool, errMsg string) bool {
	if r.Status.Terminal() || !status.Terminal() {
		return false
	}
	r.Status = status
	r.Success = success
	if errMsg != "" {
		r.Error = &errMsg
	}
	return true
}

// Store returns the actual store or StoreNone.
func (r TestResult) Store() Store {
	if r.ActualStore == nil {
		return StoreNone
	}
	return *r.ActualStore
}

// ErrorText returns the diagnostic or "".
func (r TestResult) ErrorText() string {
	if r.Error == nil {
		return ""
	}
	return *r.Error
}

// Summary aggregates a result set.
type Summary struct {
	Total               int `json:"total"`
	Passed              int `json:"passed"`
	Failed              int `json:"failed"`
	Errors              int `json:"errors"`
	Warnings            int `json:"warnings"`
	IOSDevices          int `json:"iosDevices"`
	IOSSuccess          int `json:"iosSuccess"`
	AndroidDevices      int `json:"androidDevices"`
	AndroidSuccess      int `json:"androidSuccess"`
	AverageResponseTime int `json:"averageResponseTime"`
	SuccessRate         int `json:"successRate"`
	IOSSuccessRate      int `json:"iosSuccessRate"`
	AndroidSuccessRate  int `json:"androidSuccessRate"`
}
