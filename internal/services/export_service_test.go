package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/soaringjerry/Informa/internal/models"
)

func seededExportService(t *testing.T) (*ExportService, *stubSurveyStore) {
	t.Helper()
	store := newStubSurveyStore()
	ctx := context.Background()
	ts := time.Date(2024, 2, 14, 11, 0, 0, 0, time.UTC)
	_ = store.CreateSubmission(ctx, &models.Submission{
		SurveyID: "s1", Name: "Ana María", Team: "Equipo1", Timestamp: ts, ExtraNeed: "informe de margen",
		Responses: []models.Response{
			{ReportName: "Ventas", PageName: "Resumen", FulfillsPurpose: models.FulfillsYes},
			{ReportName: "Ventas", PageName: "Detalle", FulfillsPurpose: models.FulfillsNo, Purpose: "ver stock"},
			{ReportName: "Legado", PageName: "Vieja", FulfillsPurpose: models.FulfillsYes},
		},
	})
	_ = store.CreateSubmission(ctx, &models.Submission{SurveyID: "s2", Name: "Luis", Team: "Equipo2", Timestamp: ts.Add(time.Hour)})

	svc := NewExportService(store, testCatalog(t), time.UTC, nil)
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC) }
	return svc, store
}

func TestExportSparse(t *testing.T) {
	svc, _ := seededExportService(t)
	res, err := svc.ExportCSV(context.Background(), ExportParams{})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if res.Filename != "todas-las-encuestas-2024-03-01.csv" || res.ContentType != "text/csv; charset=utf-8" {
		t.Fatalf("unexpected result meta %+v", res)
	}
	recs := readCSV(t, res.Data)
	if len(recs) != 1+3 || res.Rows != 3 {
		t.Fatalf("records = %d rows = %d, want 4/3", len(recs), res.Rows)
	}
	if recs[1][2] != "14/2/2024" {
		t.Fatalf("date = %q", recs[1][2])
	}
}

func TestExportComplete(t *testing.T) {
	svc, _ := seededExportService(t)
	res, err := svc.ExportCSV(context.Background(), ExportParams{Format: FormatComplete, Lang: "en"})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if res.Filename != "all-surveys-complete-2024-03-01.csv" {
		t.Fatalf("filename = %s", res.Filename)
	}
	recs := readCSV(t, res.Data)
	pages := svc.catalog.PageCount()
	if len(recs) != 1+2*pages {
		t.Fatalf("records = %d, want %d", len(recs), 1+2*pages)
	}
	if recs[0][0] != "Name" {
		t.Fatalf("header not localized: %v", recs[0])
	}
	// s2 is listed first (newest) and used no page at all.
	for _, rec := range recs[1 : 1+pages] {
		if rec[0] != "Luis" || rec[5] != "NO USADA" {
			t.Fatalf("unexpected row %q", rec)
		}
	}
	for _, rec := range recs[1:] {
		if rec[3] == "Legado" {
			t.Fatalf("orphaned response exported: %q", rec)
		}
	}
}

func TestExportExtraNeedsAndSurvey(t *testing.T) {
	svc, _ := seededExportService(t)
	ctx := context.Background()
	res, err := svc.ExportCSV(ctx, ExportParams{Format: FormatExtra})
	if err != nil {
		t.Fatalf("extra needs: %v", err)
	}
	if res.Filename != "sugerencias-informes-2024-03-01.csv" || res.Rows != 1 {
		t.Fatalf("unexpected %+v", res)
	}
	if !strings.HasSuffix(string(res.Data), `"informe de margen"`) {
		t.Fatalf("missing suggestion: %q", res.Data)
	}

	res, err = svc.ExportCSV(ctx, ExportParams{Format: FormatSurvey, SurveyID: "s1"})
	if err != nil {
		t.Fatalf("survey: %v", err)
	}
	if res.Filename != "encuesta-Ana-María-s1.csv" || res.Rows != svc.catalog.PageCount() {
		t.Fatalf("unexpected %+v", res)
	}
	if _, err := svc.ExportSurvey(ctx, "missing", ""); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.ExportCSV(ctx, ExportParams{Format: "xlsx"}); !IsInvalid(err) {
		t.Fatalf("expected invalid format, got %v", err)
	}
}

func TestSlug(t *testing.T) {
	cases := map[string]string{
		"Ana María":   "Ana-María",
		"  a  b\tc ": "a-b-c",
		`x/y:"z"`:     "xyz",
		"   ":         "anonimo",
	}
	for in, want := range cases {
		if got := slug(in); got != want {
			t.Fatalf("slug(%q) = %q, want %q", in, got, want)
		}
	}
}
