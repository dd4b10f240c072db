package utils

// DefaultLocale is Spanish: exports and labels were authored for Spanish-speaking respondents.
const DefaultLocale = "es"

// SupportedLocales lists the locales with a full translation table.
var SupportedLocales = []string{"es", "en"}

var translations = map[string]map[string]string{
	"es": {
		"health.ok":            "ok",
		"export.name":          "Nombre",
		"export.team":          "Equipo",
		"export.date":          "Fecha",
		"export.report":        "Informe",
		"export.page":          "Página",
		"export.fulfills":      "¿Cumple su propósito?",
		"export.purpose":       "Propósito alternativo",
		"export.extra_need":    "Sugerencias",
		"export.file.sparse":   "todas-las-encuestas",
		"export.file.complete": "todas-las-encuestas-completas",
		"export.file.extra":    "sugerencias-informes",
		"export.file.single":   "encuesta",
	},
	"en": {
		"health.ok":            "ok",
		"export.name":          "Name",
		"export.team":          "Team",
		"export.date":          "Date",
		"export.report":        "Report",
		"export.page":          "Page",
		"export.fulfills":      "Fulfills its purpose?",
		"export.purpose":       "Alternative purpose",
		"export.extra_need":    "Suggestions",
		"export.file.sparse":   "all-surveys",
		"export.file.complete": "all-surveys-complete",
		"export.file.extra":    "report-suggestions",
		"export.file.single":   "survey",
	},
}

// T returns the translated string for key in locale; falls back to Spanish.
func T(locale, key string) string {
	if m, ok := translations[locale]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if v, ok := translations[DefaultLocale][key]; ok {
		return v
	}
	return key
}
