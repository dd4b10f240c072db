package services

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/soaringjerry/Informa/internal/models"
)

func readCSV(t *testing.T, b []byte) [][]string {
	t.Helper()
	s := string(b)
	if !strings.HasPrefix(s, utf8BOM) {
		t.Fatalf("missing BOM: %q", s[:min(len(s), 8)])
	}
	r := csv.NewReader(strings.NewReader(strings.TrimPrefix(s, utf8BOM)))
	recs, err := r.ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	return recs
}

func madrid(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Madrid")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	return loc
}

func TestExportResponsesCSVLayout(t *testing.T) {
	ts := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	rows := []models.FlatResponse{
		{Name: "Ana", Team: "Equipo1", Timestamp: ts, ReportName: "Ventas", PageName: "Resumen", FulfillsPurpose: models.FulfillsYes},
		{Name: "Ana", Team: "Equipo1", Timestamp: ts, ReportName: "Ventas", PageName: "Detalle", FulfillsPurpose: models.FulfillsNo, Purpose: "ver stock"},
	}
	b := ExportResponsesCSV(rows, CSVOptions{Location: time.UTC})
	lines := strings.Split(strings.TrimPrefix(string(b), utf8BOM), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3: %q", len(lines), lines)
	}
	if lines[0] != "Nombre,Equipo,Fecha,Informe,Página,¿Cumple su propósito?,Propósito alternativo" {
		t.Fatalf("bad header: %s", lines[0])
	}
	if lines[1] != `"Ana","Equipo1","5/3/2024","Ventas","Resumen","Sí",""` {
		t.Fatalf("bad row: %s", lines[1])
	}
	if lines[2] != `"Ana","Equipo1","5/3/2024","Ventas","Detalle","No","ver stock"` {
		t.Fatalf("bad row: %s", lines[2])
	}
	if strings.HasSuffix(string(b), "\n") {
		t.Fatalf("unexpected trailing newline")
	}
}

func TestExportEscapesQuotesAndSeparators(t *testing.T) {
	rows := []models.FlatResponse{{
		Name:            `Ana "la jefa"`,
		Team:            "Norte, Sur",
		ReportName:      "Ventas",
		PageName:        "Resumen",
		FulfillsPurpose: models.FulfillsNo,
		Purpose:         "línea1\nlínea2",
	}}
	recs := readCSV(t, ExportResponsesCSV(rows, CSVOptions{}))
	if len(recs) != 2 {
		t.Fatalf("records = %d, want 2", len(recs))
	}
	got := recs[1]
	if got[0] != `Ana "la jefa"` || got[1] != "Norte, Sur" || got[6] != "línea1\nlínea2" {
		t.Fatalf("round trip mismatch: %q", got)
	}
}

func TestExportDateUsesLocation(t *testing.T) {
	loc := madrid(t)
	// 23:30 UTC on 31 Dec is already 1 Jan in Madrid.
	ts := time.Date(2023, 12, 31, 23, 30, 0, 0, time.UTC)
	rows := []models.FlatResponse{{Name: "A", Team: "T", Timestamp: ts, ReportName: "R", PageName: "P", FulfillsPurpose: models.FulfillsYes}}
	recs := readCSV(t, ExportResponsesCSV(rows, CSVOptions{Location: loc}))
	if recs[1][2] != "1/1/2024" {
		t.Fatalf("date = %q, want 1/1/2024", recs[1][2])
	}
}

func TestExportReconciledRowCount(t *testing.T) {
	cat := testCatalog(t)
	subs := []models.Submission{
		{SurveyID: "s1", Name: "Ana", Team: "E1", Responses: []models.Response{
			{ReportName: "Ventas", PageName: "Resumen", FulfillsPurpose: models.FulfillsYes},
		}},
		{SurveyID: "s2", Name: "Luis", Team: "E2"},
	}
	rows := ReconcileAll(cat, subs)
	recs := readCSV(t, ExportReconciledCSV(rows, CSVOptions{}))
	if want := 1 + len(subs)*cat.PageCount(); len(recs) != want {
		t.Fatalf("records = %d, want %d", len(recs), want)
	}
	notUsed := 0
	for _, rec := range recs[1:] {
		if rec[5] == "NO USADA" {
			notUsed++
			if rec[6] != "" {
				t.Fatalf("NO USADA row with purpose: %q", rec)
			}
		}
	}
	if notUsed != 2*cat.PageCount()-1 {
		t.Fatalf("NO USADA rows = %d, want %d", notUsed, 2*cat.PageCount()-1)
	}
}

func TestExportExtraNeedsCSV(t *testing.T) {
	ts := time.Date(2024, 11, 20, 9, 0, 0, 0, time.UTC)
	subs := []models.Submission{{Name: "Ana", Team: "E1", Timestamp: ts, ExtraNeed: `informe de "margen"`}}
	b := ExportExtraNeedsCSV(subs, CSVOptions{Lang: "en"})
	lines := strings.Split(strings.TrimPrefix(string(b), utf8BOM), "\n")
	if lines[0] != "Name,Team,Date,Suggestions" {
		t.Fatalf("bad header: %s", lines[0])
	}
	if lines[1] != `"Ana","E1","20/11/2024","informe de ""margen"""` {
		t.Fatalf("bad row: %s", lines[1])
	}
}

func TestExportEmptyIsHeaderOnly(t *testing.T) {
	b := ExportResponsesCSV(nil, CSVOptions{})
	if got := strings.TrimPrefix(string(b), utf8BOM); strings.Contains(got, "\n") {
		t.Fatalf("expected header only, got %q", got)
	}
}

func TestFulfillsLabel(t *testing.T) {
	cases := map[models.FulfillsPurpose]string{
		models.FulfillsYes:     "Sí",
		models.FulfillsNo:      "No",
		models.FulfillsNotUsed: "NO USADA",
	}
	for in, want := range cases {
		if got := FulfillsLabel(in); got != want {
			t.Fatalf("FulfillsLabel(%q) = %q, want %q", in, got, want)
		}
	}
}
