package services

import (
	"testing"

	"github.com/soaringjerry/Informa/internal/models"
)

func TestCollectorWizardFlow(t *testing.T) {
	c := NewCollector(testCatalog(t))
	if err := c.SetRespondent("  Ana ", "Equipo1 "); err != nil {
		t.Fatalf("SetRespondent: %v", err)
	}
	for _, p := range []string{"Detalle", "Resumen", "Por cliente"} {
		if err := c.SelectPage("Ventas", p); err != nil {
			t.Fatalf("SelectPage %s: %v", p, err)
		}
	}
	c.DeselectPage("Ventas", "Por cliente")
	if err := c.Validate(); !IsInvalid(err) {
		t.Fatalf("unanswered pages should fail validation, got %v", err)
	}
	if err := c.Answer("Ventas", "Detalle", models.FulfillsNo, "  "); !IsInvalid(err) {
		t.Fatalf("blank purpose with no should fail, got %v", err)
	}
	if err := c.Answer("Ventas", "Detalle", models.FulfillsNo, "ver margen"); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if err := c.Answer("Ventas", "Resumen", models.FulfillsYes, ""); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	c.SetExtraNeed("  más detalle por zona ")

	sub, err := c.Submission()
	if err != nil {
		t.Fatalf("Submission: %v", err)
	}
	if sub.Name != "Ana" || sub.Team != "Equipo1" || sub.ExtraNeed != "más detalle por zona" {
		t.Fatalf("respondent not trimmed: %+v", sub)
	}
	if len(sub.Responses) != 2 || sub.Responses[0].PageName != "Detalle" || sub.Responses[1].PageName != "Resumen" {
		t.Fatalf("selection order lost: %+v", sub.Responses)
	}
}

func TestCollectorRejects(t *testing.T) {
	c := NewCollector(testCatalog(t))
	if err := c.SetRespondent("", "E"); !IsInvalid(err) {
		t.Fatalf("blank name accepted")
	}
	if err := c.SelectPage("Ventas", "Inexistente"); !IsInvalid(err) {
		t.Fatalf("unknown page accepted")
	}
	if err := c.Answer("Ventas", "Resumen", models.FulfillsYes, ""); !IsInvalid(err) {
		t.Fatalf("answer to unselected page accepted")
	}
	if err := c.Add(models.Response{ReportName: "Ventas", PageName: "Resumen", FulfillsPurpose: "quizas"}); !IsInvalid(err) {
		t.Fatalf("invalid verdict accepted")
	}
	if err := c.Add(models.Response{ReportName: "Ventas", PageName: "Detalle", FulfillsPurpose: models.FulfillsYes}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := c.Add(models.Response{ReportName: "Ventas", PageName: "Detalle", FulfillsPurpose: models.FulfillsNo, Purpose: "x"}); !IsInvalid(err) {
		t.Fatalf("duplicate pair accepted")
	}
}

func TestCollectorWithoutCatalog(t *testing.T) {
	c := NewCollector(nil)
	_ = c.SetRespondent("Ana", "E")
	if err := c.Add(models.Response{ReportName: "Legado", PageName: "Vieja", FulfillsPurpose: models.FulfillsYes}); err != nil {
		t.Fatalf("nil catalog should accept any pair: %v", err)
	}
	if got := c.Responses(); len(got) != 1 {
		t.Fatalf("responses = %d, want 1", len(got))
	}
}
