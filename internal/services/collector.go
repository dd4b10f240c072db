package services

import (
	"fmt"
	"strings"

	"github.com/soaringjerry/Informa/internal/catalog"
	"github.com/soaringjerry/Informa/internal/models"
)

type pageAnswer struct {
	report   string
	page     string
	fulfills models.FulfillsPurpose
	purpose  string
	answered bool
}

// Collector accumulates one respondent's wizard answers. Pages are kept in the
// order they were first selected; deselecting forgets the answer.
type Collector struct {
	cat       *catalog.Catalog
	name      string
	team      string
	extraNeed string
	order     []string
	pages     map[string]*pageAnswer
}

// NewCollector returns an empty collector. With a nil catalog page membership
// is not checked, which is what legacy imports need.
func NewCollector(cat *catalog.Catalog) *Collector {
	return &Collector{cat: cat, pages: make(map[string]*pageAnswer)}
}

func (c *Collector) SetRespondent(name, team string) error {
	name, team = strings.TrimSpace(name), strings.TrimSpace(team)
	if name == "" || team == "" {
		return NewInvalidError("name and team are required")
	}
	c.name, c.team = name, team
	return nil
}

func (c *Collector) SetExtraNeed(s string) {
	c.extraNeed = strings.TrimSpace(s)
}

// SelectPage marks a page as used. Selecting it again is a no-op.
func (c *Collector) SelectPage(report, page string) error {
	if strings.TrimSpace(report) == "" || strings.TrimSpace(page) == "" {
		return NewInvalidError("report_name and page_name are required")
	}
	if c.cat != nil && !c.cat.Has(report, page) {
		if _, ok := c.cat.Report(report); !ok {
			return NewInvalidError(fmt.Sprintf("unknown report %q", report))
		}
		return NewInvalidError(fmt.Sprintf("unknown page %q in report %q", page, report))
	}
	k := catalog.Key(report, page)
	if _, ok := c.pages[k]; ok {
		return nil
	}
	c.pages[k] = &pageAnswer{report: report, page: page}
	c.order = append(c.order, k)
	return nil
}

func (c *Collector) DeselectPage(report, page string) {
	k := catalog.Key(report, page)
	if _, ok := c.pages[k]; !ok {
		return
	}
	delete(c.pages, k)
	for i, o := range c.order {
		if o == k {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Answer records the verdict for a selected page. The purpose is kept
// verbatim; it is only required when the page does not fulfill its purpose.
func (c *Collector) Answer(report, page string, fulfills models.FulfillsPurpose, purpose string) error {
	a, ok := c.pages[catalog.Key(report, page)]
	if !ok {
		return NewInvalidError(fmt.Sprintf("page %q in report %q is not selected", page, report))
	}
	if !fulfills.Storable() {
		return NewInvalidError(fmt.Sprintf("invalid fulfills_purpose %q", fulfills))
	}
	if fulfills == models.FulfillsNo && strings.TrimSpace(purpose) == "" {
		return NewInvalidError(fmt.Sprintf("purpose is required for %s / %s", report, page))
	}
	a.fulfills, a.purpose, a.answered = fulfills, purpose, true
	return nil
}

// Add selects and answers a page in one step. A pair that is already selected
// and answered is rejected so a submission never carries it twice.
func (c *Collector) Add(r models.Response) error {
	if a, ok := c.pages[catalog.Key(r.ReportName, r.PageName)]; ok && a.answered {
		return NewInvalidError(fmt.Sprintf("duplicate response for %s / %s", r.ReportName, r.PageName))
	}
	if err := c.SelectPage(r.ReportName, r.PageName); err != nil {
		return err
	}
	return c.Answer(r.ReportName, r.PageName, r.FulfillsPurpose, r.Purpose)
}

// Validate checks the collector is ready to submit.
func (c *Collector) Validate() error {
	if c.name == "" || c.team == "" {
		return NewInvalidError("name and team are required")
	}
	for _, k := range c.order {
		if a := c.pages[k]; !a.answered {
			return NewInvalidError(fmt.Sprintf("page %q in report %q has no answer", a.page, a.report))
		}
	}
	return nil
}

// Responses returns the sparse responses in selection order.
func (c *Collector) Responses() []models.Response {
	out := make([]models.Response, 0, len(c.order))
	for _, k := range c.order {
		a := c.pages[k]
		out = append(out, models.Response{
			ReportName:      a.report,
			PageName:        a.page,
			FulfillsPurpose: a.fulfills,
			Purpose:         a.purpose,
		})
	}
	return out
}

// Submission validates and returns the collected submission without id or
// timestamp.
func (c *Collector) Submission() (models.Submission, error) {
	if err := c.Validate(); err != nil {
		return models.Submission{}, err
	}
	return models.Submission{
		Name:      c.name,
		Team:      c.team,
		ExtraNeed: c.extraNeed,
		Responses: c.Responses(),
	}, nil
}
