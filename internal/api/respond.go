package api

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"

	"github.com/soaringjerry/Informa/internal/logger"
	"github.com/soaringjerry/Informa/internal/services"
)

const maxBodyBytes = 8 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps typed service errors to 400/404 and hides anything
// else behind fallback.
func writeServiceError(w http.ResponseWriter, log *logger.Logger, err error, fallback string) {
	var se *services.Error
	if errors.As(err, &se) {
		switch se.Kind {
		case services.KindInvalid:
			writeError(w, http.StatusBadRequest, se.Msg)
			return
		case services.KindNotFound:
			writeError(w, http.StatusNotFound, se.Msg)
			return
		}
	}
	log.Error("request failed", "error", err)
	writeError(w, http.StatusInternalServerError, fallback)
}

func writeCSV(w http.ResponseWriter, res *services.ExportResult) {
	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Data)
}
