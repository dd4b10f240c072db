package api

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/soaringjerry/Informa/internal/models"
)

// memoryStore keeps submissions in process memory. It backs the "memory"
// driver and the HTTP tests; nothing survives a restart.
type memoryStore struct {
	mu       sync.RWMutex
	subs     map[string]*models.Submission
	order    []string
	nextID   int64
	nextResp int64
}

// NewMemoryStore returns an empty in-memory Store.
func NewMemoryStore() Store {
	return newMemoryStore()
}

func newMemoryStore() *memoryStore {
	return &memoryStore{subs: map[string]*models.Submission{}}
}

func (s *memoryStore) CreateSubmission(_ context.Context, sub *models.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.subs[sub.SurveyID]; dup {
		return fmt.Errorf("survey_id %s already exists", sub.SurveyID)
	}
	seen := make(map[string]struct{}, len(sub.Responses))
	for _, r := range sub.Responses {
		if !r.FulfillsPurpose.Storable() {
			return fmt.Errorf("invalid fulfills_purpose %q", r.FulfillsPurpose)
		}
		k := r.ReportName + "\x00" + r.PageName
		if _, dup := seen[k]; dup {
			return fmt.Errorf("duplicate response %s/%s", r.ReportName, r.PageName)
		}
		seen[k] = struct{}{}
	}
	s.nextID++
	sub.ID = s.nextID
	stored := *sub
	stored.Timestamp = sub.Timestamp.UTC()
	stored.Responses = make([]models.Response, len(sub.Responses))
	for i := range sub.Responses {
		s.nextResp++
		sub.Responses[i].ID = s.nextResp
		sub.Responses[i].SurveyID = sub.SurveyID
		stored.Responses[i] = sub.Responses[i]
	}
	s.subs[sub.SurveyID] = &stored
	s.order = append(s.order, sub.SurveyID)
	return nil
}

// newest first; insertion order breaks ties
func (s *memoryStore) sorted() []*models.Submission {
	out := make([]*models.Submission, 0, len(s.subs))
	for i := len(s.order) - 1; i >= 0; i-- {
		if sub, ok := s.subs[s.order[i]]; ok {
			out = append(out, sub)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out
}

func clone(sub *models.Submission) models.Submission {
	c := *sub
	c.Responses = append([]models.Response{}, sub.Responses...)
	return c
}

func (s *memoryStore) ListSubmissions(context.Context) ([]models.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Submission{}
	for _, sub := range s.sorted() {
		out = append(out, clone(sub))
	}
	return out, nil
}

func (s *memoryStore) GetSubmission(_ context.Context, surveyID string) (*models.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.subs[surveyID]
	if !ok {
		return nil, nil
	}
	c := clone(sub)
	return &c, nil
}

func (s *memoryStore) DeleteSubmission(_ context.Context, surveyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subs[surveyID]; !ok {
		return nil
	}
	delete(s.subs, surveyID)
	for i, id := range s.order {
		if id == surveyID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *memoryStore) ListFlatResponses(context.Context) ([]models.FlatResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.FlatResponse{}
	for _, sub := range s.sorted() {
		for _, r := range sub.Responses {
			out = append(out, models.FlatResponse{
				SurveyID:        sub.SurveyID,
				Name:            sub.Name,
				Team:            sub.Team,
				Timestamp:       sub.Timestamp,
				ReportName:      r.ReportName,
				PageName:        r.PageName,
				FulfillsPurpose: r.FulfillsPurpose,
				Purpose:         r.Purpose,
			})
		}
	}
	return out, nil
}

func (s *memoryStore) ListExtraNeeds(context.Context) ([]models.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Submission{}
	for _, sub := range s.sorted() {
		if strings.TrimSpace(sub.ExtraNeed) != "" {
			out = append(out, clone(sub))
		}
	}
	return out, nil
}

func (s *memoryStore) Stats(context.Context) (*models.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := &models.Stats{Teams: []string{}}
	teams := map[string]struct{}{}
	for _, sub := range s.subs {
		st.TotalSurveys++
		if _, ok := teams[sub.Team]; !ok {
			teams[sub.Team] = struct{}{}
			st.Teams = append(st.Teams, sub.Team)
		}
		for _, r := range sub.Responses {
			st.TotalResponses++
			switch r.FulfillsPurpose {
			case models.FulfillsYes:
				st.FulfillsPurposeStats.Si++
			case models.FulfillsNo:
				st.FulfillsPurposeStats.No++
			}
		}
	}
	sort.Strings(st.Teams)
	return st, nil
}
