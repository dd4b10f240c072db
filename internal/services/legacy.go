package services

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/soaringjerry/Informa/internal/models"
)

// LegacyEntry is one element of the submission log the browser client used to
// keep before submissions went to the server.
type LegacyEntry struct {
	ID            string         `json:"id"`
	Timestamp     string         `json:"timestamp"`
	Name          string         `json:"name"`
	Team          string         `json:"team"`
	ExtraNeed     string         `json:"extraNeed,omitempty"`
	Reports       []legacyReport `json:"reports,omitempty"`
	FlattenedData []legacyFlat   `json:"flattenedData,omitempty"`
}

type legacyReport struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Selected bool         `json:"selected"`
	Pages    []legacyPage `json:"pages"`
}

type legacyPage struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Purpose         string `json:"purpose"`
	Selected        bool   `json:"selected"`
	FulfillsPurpose string `json:"fulfillsPurpose"`
}

type legacyFlat struct {
	ReportName      string `json:"reportName"`
	PageName        string `json:"pageName"`
	Purpose         string `json:"purpose"`
	FulfillsPurpose string `json:"fulfillsPurpose"`
}

// ParseLegacyLog decodes a JSON array of legacy entries.
func ParseLegacyLog(r io.Reader) ([]LegacyEntry, error) {
	var entries []LegacyEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, NewInvalidError(fmt.Sprintf("invalid legacy log: %v", err))
	}
	return entries, nil
}

// ToSubmission converts an entry to the server model. The flattened answers
// are preferred; older entries only carry the nested report tree.
func (e LegacyEntry) ToSubmission() (models.Submission, error) {
	ts, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(e.Timestamp))
	if err != nil {
		return models.Submission{}, NewInvalidError(fmt.Sprintf("entry %q: invalid timestamp %q", e.ID, e.Timestamp))
	}
	sub := models.Submission{
		SurveyID:  e.ID,
		Name:      e.Name,
		Team:      e.Team,
		Timestamp: ts.UTC(),
		ExtraNeed: strings.TrimSpace(e.ExtraNeed),
	}
	if len(e.FlattenedData) > 0 {
		for _, f := range e.FlattenedData {
			sub.Responses = append(sub.Responses, legacyResponse(f.ReportName, f.PageName, f.FulfillsPurpose, f.Purpose))
		}
		return sub, nil
	}
	for _, rep := range e.Reports {
		if !rep.Selected {
			continue
		}
		for _, p := range rep.Pages {
			if p.Selected {
				sub.Responses = append(sub.Responses, legacyResponse(rep.Name, p.Name, p.FulfillsPurpose, p.Purpose))
			}
		}
	}
	return sub, nil
}

// Early clients did not always record a verdict. A purpose was only asked for
// when the page fell short, so its presence implies "no".
func legacyResponse(report, page, fulfills, purpose string) models.Response {
	f := models.FulfillsPurpose(strings.ToLower(strings.TrimSpace(fulfills)))
	if !f.Storable() {
		if strings.TrimSpace(purpose) != "" {
			f = models.FulfillsNo
		} else {
			f = models.FulfillsYes
		}
	}
	return models.Response{ReportName: report, PageName: page, FulfillsPurpose: f, Purpose: purpose}
}
