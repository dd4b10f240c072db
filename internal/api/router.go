package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/soaringjerry/Informa/internal/logger"
	"github.com/soaringjerry/Informa/internal/middleware"
	"github.com/soaringjerry/Informa/internal/models"
	"github.com/soaringjerry/Informa/internal/services"
)

type Router struct {
	surveys *services.SurveyService
	exports *services.ExportService
	log     *logger.Logger
}

func NewRouter(surveys *services.SurveyService, exports *services.ExportService, log *logger.Logger) *Router {
	if log == nil {
		log = logger.Nop()
	}
	return &Router{surveys: surveys, exports: exports, log: log.With("component", "api")}
}

func (rt *Router) Register(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/catalog", rt.handleCatalog)

		r.Route("/surveys", func(r chi.Router) {
			r.Post("/", rt.handleCreate)
			r.Get("/", rt.handleList)

			// Static segments win over {id} in chi.
			r.Get("/export", rt.handleExport(services.FormatSparse))
			r.Get("/export-all", rt.handleExport(services.FormatComplete))
			r.Get("/extra-needs", rt.handleExport(services.FormatExtra))
			r.Get("/stats", rt.handleStats)
			r.Post("/import", rt.handleImport)
			r.Post("/dedupe", rt.handleDedupe)

			r.Get("/{id}", rt.handleGet)
			r.Delete("/{id}", rt.handleDelete)
			r.Get("/{id}/export", rt.handleSurveyExport)
		})
	})
}

// GET /api/catalog
func (rt *Router) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rt.surveys.Catalog())
}

// POST /api/surveys
// {name, team, extra_need?, responses: [{report_name, page_name, fulfills_purpose, purpose}]}
func (rt *Router) handleCreate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name      string          `json:"name"`
		Team      string          `json:"team"`
		ExtraNeed string          `json:"extra_need"`
		Responses json.RawMessage `json:"responses"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, services.MsgMissingFields)
		return
	}
	req := services.CreateSubmissionRequest{Name: body.Name, Team: body.Team, ExtraNeed: body.ExtraNeed}
	raw := bytes.TrimSpace(body.Responses)
	if len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		if raw[0] != '[' {
			writeError(w, http.StatusBadRequest, services.MsgMissingFields)
			return
		}
		req.Responses = []models.Response{}
		if err := json.Unmarshal(raw, &req.Responses); err != nil {
			writeError(w, http.StatusBadRequest, "invalid responses")
			return
		}
	}
	sub, err := rt.surveys.CreateSubmission(r.Context(), req)
	if err != nil {
		writeServiceError(w, rt.log, err, "Failed to save survey")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"survey_id": sub.SurveyID,
		"message":   "Survey saved successfully",
	})
}

// GET /api/surveys
func (rt *Router) handleList(w http.ResponseWriter, r *http.Request) {
	subs, err := rt.surveys.ListSubmissions(r.Context())
	if err != nil {
		writeServiceError(w, rt.log, err, "Failed to fetch surveys")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"surveys": subs})
}

// GET /api/surveys/{id}?view=complete
func (rt *Router) handleGet(w http.ResponseWriter, r *http.Request) {
	complete := strings.EqualFold(r.URL.Query().Get("view"), "complete")
	d, err := rt.surveys.GetSubmission(r.Context(), chi.URLParam(r, "id"), complete)
	if err != nil {
		writeServiceError(w, rt.log, err, "Failed to fetch survey")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"survey": d})
}

// DELETE /api/surveys/{id}
func (rt *Router) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := rt.surveys.DeleteSubmission(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, rt.log, err, "Failed to delete survey")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Survey deleted successfully"})
}

// GET /api/surveys/stats
func (rt *Router) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := rt.surveys.GetStats(r.Context())
	if err != nil {
		writeServiceError(w, rt.log, err, "Failed to fetch statistics")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (rt *Router) handleExport(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := rt.exports.ExportCSV(r.Context(), services.ExportParams{
			Format: format,
			Lang:   middleware.LocaleFromContext(r.Context()),
		})
		if err != nil {
			writeServiceError(w, rt.log, err, "Failed to export data")
			return
		}
		rt.log.Info("export served", "format", format, "rows", res.Rows)
		writeCSV(w, res)
	}
}

// GET /api/surveys/{id}/export
func (rt *Router) handleSurveyExport(w http.ResponseWriter, r *http.Request) {
	res, err := rt.exports.ExportCSV(r.Context(), services.ExportParams{
		Format:   services.FormatSurvey,
		SurveyID: chi.URLParam(r, "id"),
		Lang:     middleware.LocaleFromContext(r.Context()),
	})
	if err != nil {
		writeServiceError(w, rt.log, err, "Failed to export data")
		return
	}
	writeCSV(w, res)
}

// POST /api/surveys/import
// Body is the legacy JSON array.
func (rt *Router) handleImport(w http.ResponseWriter, r *http.Request) {
	entries, err := services.ParseLegacyLog(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeServiceError(w, rt.log, err, "Failed to import surveys")
		return
	}
	res, err := rt.surveys.ImportLegacy(r.Context(), entries)
	if err != nil {
		writeServiceError(w, rt.log, err, "Failed to import surveys")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// POST /api/surveys/dedupe
func (rt *Router) handleDedupe(w http.ResponseWriter, r *http.Request) {
	entries, err := services.ParseLegacyLog(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeServiceError(w, rt.log, err, "Failed to deduplicate surveys")
		return
	}
	cleaned, err := rt.surveys.DedupeLegacy(entries)
	if err != nil {
		writeServiceError(w, rt.log, err, "Failed to deduplicate surveys")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"removed": len(entries) - len(cleaned),
		"surveys": cleaned,
	})
}
