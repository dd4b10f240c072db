package models

import "time"

// FulfillsPurpose is the respondent's verdict on a page. Only FulfillsYes and
// FulfillsNo are ever stored; FulfillsNotUsed exists on reconciled rows.
type FulfillsPurpose string

const (
	FulfillsYes     FulfillsPurpose = "si"
	FulfillsNo      FulfillsPurpose = "no"
	FulfillsNotUsed FulfillsPurpose = "NOT_USED"
)

// Storable reports whether f may be persisted on a Response.
func (f FulfillsPurpose) Storable() bool {
	return f == FulfillsYes || f == FulfillsNo
}

// PageStatus tells whether the respondent picked a catalog page.
type PageStatus string

const (
	PageSelected    PageStatus = "selected"
	PageNotSelected PageStatus = "not_selected"
)

// Response is one answered page within a submission. Pages the respondent
// never selected are absent, never stored as explicit rows.
type Response struct {
	ID              int64           `json:"id,omitempty"`
	SurveyID        string          `json:"survey_id,omitempty"`
	ReportName      string          `json:"report_name"`
	PageName        string          `json:"page_name"`
	FulfillsPurpose FulfillsPurpose `json:"fulfills_purpose"`
	Purpose         string          `json:"purpose"`
}

// Submission is one respondent's completed survey.
type Submission struct {
	ID        int64      `json:"id,omitempty"`
	SurveyID  string     `json:"survey_id"`
	Name      string     `json:"name"`
	Team      string     `json:"team"`
	Timestamp time.Time  `json:"timestamp"`
	ExtraNeed string     `json:"extra_need"`
	Responses []Response `json:"responses"`
}

// FlatResponse is a stored response joined with its submission context.
type FlatResponse struct {
	SurveyID        string          `json:"survey_id"`
	Name            string          `json:"name"`
	Team            string          `json:"team"`
	Timestamp       time.Time       `json:"timestamp"`
	ReportName      string          `json:"report_name"`
	PageName        string          `json:"page_name"`
	FulfillsPurpose FulfillsPurpose `json:"fulfills_purpose"`
	Purpose         string          `json:"purpose"`
}

// ReconciledRow is the status of one catalog page for one submission after
// gap-filling. It is recomputed on every request and never persisted.
type ReconciledRow struct {
	FlatResponse
	PageStatus PageStatus `json:"page_status"`
}

// PurposeCounts tallies stored verdicts.
type PurposeCounts struct {
	Si int `json:"si"`
	No int `json:"no"`
}

// Stats summarises the whole store.
type Stats struct {
	TotalSurveys         int           `json:"total_surveys"`
	TotalResponses       int           `json:"total_responses"`
	Teams                []string      `json:"teams"`
	FulfillsPurposeStats PurposeCounts `json:"fulfills_purpose_stats"`
}
