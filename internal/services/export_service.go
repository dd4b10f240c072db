package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/soaringjerry/Informa/internal/catalog"
	"github.com/soaringjerry/Informa/internal/logger"
	"github.com/soaringjerry/Informa/internal/models"
	"github.com/soaringjerry/Informa/internal/utils"
)

// ExportStore is the read side the exporter needs from persistence.
type ExportStore interface {
	ListSubmissions(ctx context.Context) ([]models.Submission, error)
	ListFlatResponses(ctx context.Context) ([]models.FlatResponse, error)
	ListExtraNeeds(ctx context.Context) ([]models.Submission, error)
	GetSubmission(ctx context.Context, surveyID string) (*models.Submission, error)
}

const (
	FormatSparse   = "sparse"
	FormatComplete = "complete"
	FormatExtra    = "extra_needs"
	FormatSurvey   = "survey"
)

type ExportParams struct {
	Format   string
	SurveyID string
	Lang     string
}

type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
	Rows        int
}

type ExportService struct {
	store   ExportStore
	catalog *catalog.Catalog
	loc     *time.Location
	log     *logger.Logger
	now     func() time.Time
}

func NewExportService(store ExportStore, cat *catalog.Catalog, loc *time.Location, log *logger.Logger) *ExportService {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ExportService{
		store:   store,
		catalog: cat,
		loc:     loc,
		log:     log.With("service", "ExportService"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// ExportCSV dispatches on params.Format; an empty format means sparse.
func (s *ExportService) ExportCSV(ctx context.Context, params ExportParams) (*ExportResult, error) {
	switch params.Format {
	case "", FormatSparse:
		return s.ExportSparse(ctx, params.Lang)
	case FormatComplete:
		return s.ExportComplete(ctx, params.Lang)
	case FormatExtra:
		return s.ExportExtraNeeds(ctx, params.Lang)
	case FormatSurvey:
		return s.ExportSurvey(ctx, params.SurveyID, params.Lang)
	default:
		return nil, NewInvalidError("unsupported format")
	}
}

// ExportSparse emits one row per stored response across all submissions.
func (s *ExportService) ExportSparse(ctx context.Context, lang string) (*ExportResult, error) {
	rows, err := s.store.ListFlatResponses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	data := ExportResponsesCSV(rows, s.opts(lang))
	return s.result(utils.T(lang, "export.file.sparse"), data, len(rows)), nil
}

// ExportComplete reconciles every submission against the catalog and emits
// one row per (submission, catalog page).
func (s *ExportService) ExportComplete(ctx context.Context, lang string) (*ExportResult, error) {
	subs, err := s.store.ListSubmissions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	orphaned := 0
	for _, sub := range subs {
		orphaned += len(OrphanedResponses(s.catalog, sub))
	}
	if orphaned > 0 {
		s.log.Warn("responses not in catalog left out of complete export", "orphaned", orphaned)
	}
	rows := ReconcileAll(s.catalog, subs)
	data := ExportReconciledCSV(rows, s.opts(lang))
	return s.result(utils.T(lang, "export.file.complete"), data, len(rows)), nil
}

// ExportExtraNeeds emits the submissions that left a suggestion.
func (s *ExportService) ExportExtraNeeds(ctx context.Context, lang string) (*ExportResult, error) {
	subs, err := s.store.ListExtraNeeds(ctx)
	if err != nil {
		return nil, fmt.Errorf("list extra needs: %w", err)
	}
	kept := subs[:0:0]
	for _, sub := range subs {
		if strings.TrimSpace(sub.ExtraNeed) != "" {
			kept = append(kept, sub)
		}
	}
	data := ExportExtraNeedsCSV(kept, s.opts(lang))
	return s.result(utils.T(lang, "export.file.extra"), data, len(kept)), nil
}

// ExportSurvey is the complete export of a single submission.
func (s *ExportService) ExportSurvey(ctx context.Context, surveyID, lang string) (*ExportResult, error) {
	if strings.TrimSpace(surveyID) == "" {
		return nil, NewInvalidError("Survey ID not provided")
	}
	sub, err := s.store.GetSubmission(ctx, surveyID)
	if err != nil {
		return nil, fmt.Errorf("get submission: %w", err)
	}
	if sub == nil {
		return nil, NewNotFoundError("survey not found")
	}
	rows := Reconcile(s.catalog, *sub)
	data := ExportReconciledCSV(rows, s.opts(lang))
	name := fmt.Sprintf("%s-%s-%s.csv", utils.T(lang, "export.file.single"), slug(sub.Name), sub.SurveyID)
	return &ExportResult{Filename: name, ContentType: csvContentType, Data: data, Rows: len(rows)}, nil
}

const csvContentType = "text/csv; charset=utf-8"

func (s *ExportService) opts(lang string) CSVOptions {
	return CSVOptions{Lang: lang, Location: s.loc}
}

func (s *ExportService) result(prefix string, data []byte, rows int) *ExportResult {
	return &ExportResult{
		Filename:    fmt.Sprintf("%s-%s.csv", prefix, s.now().Format("2006-01-02")),
		ContentType: csvContentType,
		Data:        data,
		Rows:        rows,
	}
}

var whitespaceRun = regexp.MustCompile(`\s+`)

func slug(name string) string {
	s := whitespaceRun.ReplaceAllString(strings.TrimSpace(name), "-")
	s = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '"', ':', '*', '?', '<', '>', '|':
			return -1
		}
		return r
	}, s)
	if s == "" {
		return "anonimo"
	}
	return s
}
