package alarm

// Severity is a notification state key.
type Severity string

// Supported severities.
const (
	SeverityOK               Severity = "ok"
	SeverityAlarm            Severity = "alarm"
	SeverityInsufficientData Severity = "insufficientData"
)

// Severities returns every severity in the order actions are emitted.
func Severities() []Severity {
	return []Severity{SeverityOK, SeverityAlarm, SeverityInsufficientData}
}

// IsSeverity reports whether key names a severity.
func IsSeverity(key string) bool {
	switch Severity(key) {
	case SeverityOK, SeverityAlarm, SeverityInsufficientData:
		return true
	default:
		return false
	}
}
