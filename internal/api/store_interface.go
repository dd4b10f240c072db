package api

import "github.com/soaringjerry/Informa/internal/services"

// Store is everything the HTTP layer needs from persistence. Both the SQL
// store in internal/db and the in-memory store satisfy it.
type Store interface {
	services.SurveyStore
	services.ExportStore
}

var _ Store = (*memoryStore)(nil)
