package output

import (
	"sort"
	"time"

	"github.com/selimozcann/StoreHunter/internal/model"
)

// ResultView is used by the HTML template with pre-computed fields.
type ResultView struct {
	Index        int
	Device       string
	Platform     model.Platform
	Status       model.Status
	Expected     model.Store
	Actual       string
	FinalURL     string
	Chain        []string
	ResponseTime int64
	HTTPStatus   int
	Error        string
	Screenshots  []model.Screenshot
}

// PageData provides the full context for the HTML report.
type PageData struct {
	Title         string
	TestedURL     string
	GeneratedAt   time.Time
	Params        map[string]string
	OrderedParams []Param
	Summary       model.Summary
	Results       []ResultView
}

// Param represents a rendered CLI argument/value pair.
type Param struct {
	Key   string
	Value string
}

// BuildResultView converts a TestResult for HTML rendering.
func BuildResultView(idx int, r model.TestResult) ResultView {
	v := ResultView{
		Index:        idx,
		Device:       r.Device,
		Platform:     r.Platform,
		Status:       r.Status,
		Expected:     r.ExpectedStore,
		Actual:       "N/A",
		FinalURL:     r.FinalURL,
		Chain:        append([]string(nil), r.RedirectChain...),
		ResponseTime: r.ResponseTime,
		Error:        r.ErrorText(),
		Screenshots:  r.Screenshots,
	}
	if st := r.Store(); st != model.StoreNone {
		v.Actual = st.String()
	}
	if r.HTTPStatus != nil {
		v.HTTPStatus = *r.HTTPStatus
	}
	return v
}

// BuildPage assembles the report for one batch.
func BuildPage(url string, results []model.TestResult, summary model.Summary, params map[string]string, at time.Time) PageData {
	views := make([]ResultView, len(results))
	for i, r := range results {
		views[i] = BuildResultView(i+1, r)
	}
	return PageData{
		Title:       "StoreHunter Report",
		TestedURL:   url,
		GeneratedAt: at,
		Params:      params,
		Summary:     summary,
		Results:     views,
	}
}

func orderParams(params map[string]string) []Param {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	ordered := make([]Param, 0, len(keys))
	for _, k := range keys {
		ordered = append(ordered, Param{Key: k, Value: params[k]})
	}
	return ordered
}
