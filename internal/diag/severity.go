package diag

// Severity ranks a diagnostic. Only SevError makes a run fail; the
// rewriter still emits output in the presence of warnings.
type Severity uint8

const (
	// SevInfo carries context that needs no action.
	SevInfo Severity = iota
	// SevWarning flags suspect input the preprocessor recovered from.
	SevWarning
	// SevError flags input the preprocessor could not make sense of.
	SevError
)

// String returns the uppercase label used in rendered diagnostics.
func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}
