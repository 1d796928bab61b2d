package models

// UserPreference is a named per-login setting.
type UserPreference struct {
	Login string
	Name  string
	Value string
}

// System-defined preference names.
const (
	PreferenceDefaultReport     = "defaultReport"
	PreferenceDefaultReportDate = "defaultReportDate"
)

// DefaultPreferences maps system preference names to the value used when no
// explicit value is stored. The same defaults apply when the referenced
// login does not exist; a documented quirk the API relies on.
var DefaultPreferences = map[string]string{
	PreferenceDefaultReport:     "1",
	PreferenceDefaultReportDate: "yesterday",
}
