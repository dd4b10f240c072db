package services

import (
	"reflect"
	"testing"
	"time"

	"github.com/soaringjerry/Informa/internal/models"
)

func responses(n int) []models.Response {
	out := make([]models.Response, n)
	for i := range out {
		out[i] = models.Response{ReportName: "Ventas", PageName: string(rune('A' + i)), FulfillsPurpose: models.FulfillsYes}
	}
	return out
}

func TestDedupeKeepsRicherEntry(t *testing.T) {
	t0 := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	in := []models.Submission{
		{SurveyID: "1", Name: "Ana", Team: "Equipo1", Timestamp: t0, Responses: responses(2)},
		{SurveyID: "2", Name: "Ana", Team: "Equipo1", Timestamp: t0.Add(5 * time.Second), Responses: responses(4)},
	}
	out := Dedupe(in)
	if len(out) != 1 {
		t.Fatalf("len = %d, want 1", len(out))
	}
	if out[0].SurveyID != "2" {
		t.Fatalf("kept %s, want richer entry 2", out[0].SurveyID)
	}
}

func TestDedupeTieKeepsFirst(t *testing.T) {
	t0 := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	in := []models.Submission{
		{SurveyID: "1", Name: "Ana", Team: "E", Timestamp: t0, Responses: responses(3)},
		{SurveyID: "2", Name: "Ana", Team: "E", Timestamp: t0.Add(-10 * time.Second), Responses: responses(3)},
	}
	out := Dedupe(in)
	if len(out) != 1 || out[0].SurveyID != "1" {
		t.Fatalf("got %+v, want only entry 1", out)
	}
}

func TestDedupeWindowAndIdentity(t *testing.T) {
	t0 := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	in := []models.Submission{
		{SurveyID: "1", Name: "Ana", Team: "E", Timestamp: t0},
		{SurveyID: "2", Name: "Ana", Team: "E", Timestamp: t0.Add(DedupWindow)},
		{SurveyID: "3", Name: "Ana", Team: "F", Timestamp: t0},
		{SurveyID: "4", Name: "ana", Team: "E", Timestamp: t0},
	}
	out := Dedupe(in)
	if len(out) != 4 {
		t.Fatalf("len = %d, want 4 (window is exclusive, match is exact)", len(out))
	}
	for i := range in {
		if out[i].SurveyID != in[i].SurveyID {
			t.Fatalf("order changed at %d: %s", i, out[i].SurveyID)
		}
	}
}

func TestDedupeMergesBridgedEntries(t *testing.T) {
	t0 := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	// 1 and 2 are 40s apart; 3 sits within the window of both.
	in := []models.Submission{
		{SurveyID: "1", Name: "Ana", Team: "E", Timestamp: t0, Responses: responses(1)},
		{SurveyID: "x", Name: "Luis", Team: "E", Timestamp: t0},
		{SurveyID: "2", Name: "Ana", Team: "E", Timestamp: t0.Add(40 * time.Second), Responses: responses(3)},
		{SurveyID: "3", Name: "Ana", Team: "E", Timestamp: t0.Add(20 * time.Second), Responses: responses(2)},
	}
	out := Dedupe(in)
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(out), out)
	}
	if out[0].SurveyID != "2" || out[1].SurveyID != "x" {
		t.Fatalf("got %s,%s want 2,x", out[0].SurveyID, out[1].SurveyID)
	}
}

func TestDedupeIsIdempotent(t *testing.T) {
	t0 := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	var in []models.Submission
	for i := 0; i < 12; i++ {
		in = append(in, models.Submission{
			SurveyID:  string(rune('a' + i)),
			Name:      []string{"Ana", "Luis"}[i%2],
			Team:      "E",
			Timestamp: t0.Add(time.Duration(i*13) * time.Second),
			Responses: responses(i % 4),
		})
	}
	once := Dedupe(in)
	twice := Dedupe(once)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("not idempotent:\n%+v\n%+v", once, twice)
	}
	for i := range once {
		for j := i + 1; j < len(once); j++ {
			if isDuplicate(once[i], once[j]) {
				t.Fatalf("entries %d and %d are still duplicates", i, j)
			}
		}
	}
}

func TestDedupeEmpty(t *testing.T) {
	if out := Dedupe(nil); len(out) != 0 {
		t.Fatalf("expected empty result, got %v", out)
	}
}
