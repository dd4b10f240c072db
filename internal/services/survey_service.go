package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/soaringjerry/Informa/internal/catalog"
	"github.com/soaringjerry/Informa/internal/logger"
	"github.com/soaringjerry/Informa/internal/models"
)

// MsgMissingFields is returned when a create request lacks its core fields.
const MsgMissingFields = "Missing required fields: name, team, responses"

// SurveyStore abstracts the persistence operations SurveyService needs.
// CreateSubmission writes the submission and all of its responses atomically.
// GetSubmission returns (nil, nil) when the id is unknown.
type SurveyStore interface {
	CreateSubmission(ctx context.Context, sub *models.Submission) error
	ListSubmissions(ctx context.Context) ([]models.Submission, error)
	GetSubmission(ctx context.Context, surveyID string) (*models.Submission, error)
	DeleteSubmission(ctx context.Context, surveyID string) error
	Stats(ctx context.Context) (*models.Stats, error)
}

// CreateSubmissionRequest is the payload of a finished wizard. A nil
// Responses means the field was absent; an empty slice is a valid survey
// where no page was used.
type CreateSubmissionRequest struct {
	Name      string            `json:"name"`
	Team      string            `json:"team"`
	ExtraNeed string            `json:"extra_need"`
	Responses []models.Response `json:"responses"`
}

// SubmissionDetail is a stored submission optionally expanded against the
// catalog.
type SubmissionDetail struct {
	models.Submission
	Pages []models.ReconciledRow `json:"pages,omitempty"`
}

// ImportResult summarises a legacy log import.
type ImportResult struct {
	Read       int      `json:"read"`
	Duplicates int      `json:"duplicates"`
	Skipped    int      `json:"skipped"`
	Imported   int      `json:"imported"`
	SurveyIDs  []string `json:"survey_ids"`
}

type SurveyService struct {
	store       SurveyStore
	catalog     *catalog.Catalog
	log         *logger.Logger
	now         func() time.Time
	idGenerator func() string
}

func NewSurveyService(store SurveyStore, cat *catalog.Catalog, log *logger.Logger) *SurveyService {
	if log == nil {
		log = logger.Nop()
	}
	return &SurveyService{
		store:   store,
		catalog: cat,
		log:     log.With("service", "SurveyService"),
		now:     func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		// v7 ids sort by creation time and stay unique within a millisecond.
		idGenerator: func() string { return uuid.Must(uuid.NewV7()).String() },
	}
}

// Catalog returns the catalog the service validates against.
func (s *SurveyService) Catalog() *catalog.Catalog {
	return s.catalog
}

func (s *SurveyService) CreateSubmission(ctx context.Context, req CreateSubmissionRequest) (*models.Submission, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Team) == "" || req.Responses == nil {
		return nil, NewInvalidError(MsgMissingFields)
	}
	c := NewCollector(s.catalog)
	if err := c.SetRespondent(req.Name, req.Team); err != nil {
		return nil, err
	}
	for _, r := range req.Responses {
		if err := c.Add(r); err != nil {
			return nil, err
		}
	}
	c.SetExtraNeed(req.ExtraNeed)
	sub, err := c.Submission()
	if err != nil {
		return nil, err
	}
	sub.SurveyID = s.idGenerator()
	sub.Timestamp = s.now()
	if err := s.store.CreateSubmission(ctx, &sub); err != nil {
		return nil, fmt.Errorf("create submission: %w", err)
	}
	s.log.Info("submission stored", "survey_id", sub.SurveyID, "team", sub.Team, "responses", len(sub.Responses))
	return &sub, nil
}

// ListSubmissions returns every stored submission with its responses, newest
// first.
func (s *SurveyService) ListSubmissions(ctx context.Context) ([]models.Submission, error) {
	subs, err := s.store.ListSubmissions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	if subs == nil {
		subs = []models.Submission{}
	}
	return subs, nil
}

func (s *SurveyService) GetSubmission(ctx context.Context, surveyID string, complete bool) (*SubmissionDetail, error) {
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
	d := &SubmissionDetail{Submission: *sub}
	if complete {
		d.Pages = Reconcile(s.catalog, *sub)
	}
	return d, nil
}

// DeleteSubmission removes a submission and its responses. Unknown ids are
// not an error.
func (s *SurveyService) DeleteSubmission(ctx context.Context, surveyID string) error {
	if strings.TrimSpace(surveyID) == "" {
		return NewInvalidError("Survey ID not provided")
	}
	if err := s.store.DeleteSubmission(ctx, surveyID); err != nil {
		return fmt.Errorf("delete submission: %w", err)
	}
	s.log.Info("submission deleted", "survey_id", surveyID)
	return nil
}

func (s *SurveyService) GetStats(ctx context.Context) (*models.Stats, error) {
	st, err := s.store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	if st == nil {
		st = &models.Stats{}
	}
	if st.Teams == nil {
		st.Teams = []string{}
	}
	return st, nil
}

// DedupeLegacy collapses near-duplicate entries of a legacy log and returns
// the cleaned log. Every entry must carry a parseable timestamp.
func (s *SurveyService) DedupeLegacy(entries []LegacyEntry) ([]LegacyEntry, error) {
	subs := make([]models.Submission, 0, len(entries))
	for i, e := range entries {
		sub, err := e.ToSubmission()
		if err != nil {
			return nil, err
		}
		// Legacy ids are millisecond clocks and may collide; track by position.
		sub.SurveyID = strconv.Itoa(i)
		subs = append(subs, sub)
	}
	kept := Dedupe(subs)
	out := make([]LegacyEntry, 0, len(kept))
	for _, k := range kept {
		i, _ := strconv.Atoi(k.SurveyID)
		out = append(out, entries[i])
	}
	return out, nil
}

// ImportLegacy validates and dedupes a legacy log, then stores each surviving
// entry under a fresh id, keeping its original timestamp. Entries that cannot
// be converted or fail validation are skipped and logged before dedupe, so an
// unstorable entry never displaces a valid duplicate.
func (s *SurveyService) ImportLegacy(ctx context.Context, entries []LegacyEntry) (*ImportResult, error) {
	res := &ImportResult{Read: len(entries), SurveyIDs: []string{}}
	raw := make([]models.Submission, 0, len(entries))
	collected := make([]models.Submission, 0, len(entries))
	legacyIDs := make([]string, 0, len(entries))
	for _, e := range entries {
		legacy, err := e.ToSubmission()
		if err == nil {
			// Pages may have been renamed since; the catalog is not enforced here.
			var sub models.Submission
			sub, err = collectLegacy(NewCollector(nil), legacy)
			if err == nil {
				sub.Timestamp = legacy.Timestamp
				legacy.SurveyID = strconv.Itoa(len(collected))
				raw = append(raw, legacy)
				collected = append(collected, sub)
				legacyIDs = append(legacyIDs, e.ID)
				continue
			}
		}
		res.Skipped++
		s.log.Warn("legacy entry skipped", "legacy_id", e.ID, "error", err)
	}
	kept := Dedupe(raw)
	res.Duplicates = len(raw) - len(kept)

	for _, k := range kept {
		i, _ := strconv.Atoi(k.SurveyID)
		sub := collected[i]
		sub.SurveyID = s.idGenerator()
		if err := s.store.CreateSubmission(ctx, &sub); err != nil {
			return res, fmt.Errorf("import %s: %w", legacyIDs[i], err)
		}
		res.Imported++
		res.SurveyIDs = append(res.SurveyIDs, sub.SurveyID)
	}
	s.log.Info("legacy log imported", "read", res.Read, "duplicates", res.Duplicates, "skipped", res.Skipped, "imported", res.Imported)
	return res, nil
}

func collectLegacy(c *Collector, legacy models.Submission) (models.Submission, error) {
	if err := c.SetRespondent(legacy.Name, legacy.Team); err != nil {
		return models.Submission{}, err
	}
	for _, r := range legacy.Responses {
		if err := c.Add(r); err != nil {
			return models.Submission{}, err
		}
	}
	c.SetExtraNeed(legacy.ExtraNeed)
	return c.Submission()
}
