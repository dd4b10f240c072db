package services

import (
	"bytes"
	"strings"
	"time"

	"github.com/soaringjerry/Informa/internal/models"
	"github.com/soaringjerry/Informa/internal/utils"
)

// utf8BOM lets spreadsheet tools detect the encoding.
const utf8BOM = "\uFEFF"

// esShortDate is how es-ES prints a day: no zero padding, no time.
const esShortDate = "2/1/2006"

// CSVOptions controls header language and the zone dates are printed in.
type CSVOptions struct {
	Lang     string
	Location *time.Location
}

func (o CSVOptions) lang() string {
	if o.Lang == "" {
		return utils.DefaultLocale
	}
	return o.Lang
}

func (o CSVOptions) day(t time.Time) string {
	loc := o.Location
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(esShortDate)
}

// FulfillsLabel renders a verdict the way exports show it.
func FulfillsLabel(f models.FulfillsPurpose) string {
	switch f {
	case models.FulfillsYes:
		return "Sí"
	case models.FulfillsNotUsed:
		return "NO USADA"
	default:
		return "No"
	}
}

func responseHeader(lang string) []string {
	return []string{
		utils.T(lang, "export.name"),
		utils.T(lang, "export.team"),
		utils.T(lang, "export.date"),
		utils.T(lang, "export.report"),
		utils.T(lang, "export.page"),
		utils.T(lang, "export.fulfills"),
		utils.T(lang, "export.purpose"),
	}
}

func flatRecord(r models.FlatResponse, opts CSVOptions) []string {
	return []string{
		r.Name,
		r.Team,
		opts.day(r.Timestamp),
		r.ReportName,
		r.PageName,
		FulfillsLabel(r.FulfillsPurpose),
		r.Purpose,
	}
}

// ExportResponsesCSV renders one row per stored response (sparse export).
func ExportResponsesCSV(rows []models.FlatResponse, opts CSVOptions) []byte {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, flatRecord(r, opts))
	}
	return renderCSV(responseHeader(opts.lang()), records)
}

// ExportReconciledCSV renders one row per reconciled catalog page (complete
// export). Unused pages print as NO USADA.
func ExportReconciledCSV(rows []models.ReconciledRow, opts CSVOptions) []byte {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, flatRecord(r.FlatResponse, opts))
	}
	return renderCSV(responseHeader(opts.lang()), records)
}

// ExportExtraNeedsCSV renders the free-text suggestions of each submission.
// Submissions with a blank suggestion are expected to be filtered by the
// caller; every input submission yields exactly one row.
func ExportExtraNeedsCSV(subs []models.Submission, opts CSVOptions) []byte {
	lang := opts.lang()
	header := []string{
		utils.T(lang, "export.name"),
		utils.T(lang, "export.team"),
		utils.T(lang, "export.date"),
		utils.T(lang, "export.extra_need"),
	}
	records := make([][]string, 0, len(subs))
	for _, s := range subs {
		records = append(records, []string{s.Name, s.Team, opts.day(s.Timestamp), s.ExtraNeed})
	}
	return renderCSV(header, records)
}

// renderCSV writes a BOM, the bare header line and one fully quoted line per
// record, separated by "\n" with no trailing newline. encoding/csv only quotes
// fields that need it, and spreadsheet imports of these files rely on every
// value being quoted.
func renderCSV(header []string, records [][]string) []byte {
	var buf bytes.Buffer
	buf.WriteString(utf8BOM)
	buf.WriteString(strings.Join(header, ","))
	for _, rec := range records {
		buf.WriteByte('\n')
		for i, field := range rec {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(quoteField(field))
		}
	}
	return buf.Bytes()
}

// embedded quotes are doubled
func quoteField(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
