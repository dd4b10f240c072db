package services

import (
	"github.com/soaringjerry/Informa/internal/catalog"
	"github.com/soaringjerry/Informa/internal/models"
)

// Reconcile expands a submission's sparse responses into one row per catalog
// page, in catalog order. Pages without a response are marked NOT_USED with an
// empty purpose. Responses naming a pair the catalog no longer has produce no
// row.
func Reconcile(cat *catalog.Catalog, sub models.Submission) []models.ReconciledRow {
	if cat == nil {
		return nil
	}
	selected := indexResponses(sub.Responses)
	out := make([]models.ReconciledRow, 0, cat.PageCount())
	for _, report := range cat.Reports {
		for _, page := range report.Pages {
			row := models.ReconciledRow{
				FlatResponse: models.FlatResponse{
					SurveyID:   sub.SurveyID,
					Name:       sub.Name,
					Team:       sub.Team,
					Timestamp:  sub.Timestamp,
					ReportName: report.Name,
					PageName:   page.Name,
				},
			}
			if r, ok := selected[catalog.Key(report.Name, page.Name)]; ok {
				row.FulfillsPurpose = r.FulfillsPurpose
				row.Purpose = r.Purpose
				row.PageStatus = models.PageSelected
			} else {
				row.FulfillsPurpose = models.FulfillsNotUsed
				row.Purpose = ""
				row.PageStatus = models.PageNotSelected
			}
			out = append(out, row)
		}
	}
	return out
}

// ReconcileAll reconciles every submission and concatenates the result in
// submission order.
func ReconcileAll(cat *catalog.Catalog, subs []models.Submission) []models.ReconciledRow {
	out := make([]models.ReconciledRow, 0, len(subs)*cat.PageCount())
	for _, sub := range subs {
		out = append(out, Reconcile(cat, sub)...)
	}
	return out
}

// OrphanedResponses returns the responses Reconcile drops because their
// (report, page) pair is missing from cat.
func OrphanedResponses(cat *catalog.Catalog, sub models.Submission) []models.Response {
	var out []models.Response
	for _, r := range sub.Responses {
		if !cat.Has(r.ReportName, r.PageName) {
			out = append(out, r)
		}
	}
	return out
}

// last response wins if a key repeats
func indexResponses(rs []models.Response) map[string]models.Response {
	m := make(map[string]models.Response, len(rs))
	for _, r := range rs {
		m[catalog.Key(r.ReportName, r.PageName)] = r
	}
	return m
}
