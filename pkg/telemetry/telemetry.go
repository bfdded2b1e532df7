// Package telemetry defines the metrics collaborator of the loader and
// the rule engine. Calls are fire-and-forget: implementations must not
// block or fail the caller.
package telemetry

// Loader error reasons.
const (
	ReasonMissingRequiredFile      = "missing_required_file"
	ReasonParseFailed              = "parse_failed"
	ReasonManifestValidationFailed = "manifest_validation_failed"
	ReasonManifestMissing          = "manifest_missing"
)

// Legacy fallback reasons.
const (
	FallbackKBUnavailable = "kb_unavailable"
	FallbackKBNoMatch     = "kb_no_match"
)

// Recorder receives counters from the core.
type Recorder interface {
	// LoaderError counts a failed or degraded KB load.
	LoaderError(reason string)

	// RuleMatch counts a matched KB-sourced rule. Source is "kb" or
	// "ontology".
	RuleMatch(source, ruleID, level string)

	// LegacyFallback counts a decision that relied on the static rule
	// set.
	LegacyFallback(reason string)
}

// Nop is a Recorder that drops everything.
type Nop struct{}

func (Nop) LoaderError(string)               {}
func (Nop) RuleMatch(string, string, string) {}
func (Nop) LegacyFallback(string)            {}

// OrNop returns r, or Nop when r is nil.
func OrNop(r Recorder) Recorder {
	if r == nil {
		return Nop{}
	}
	return r
}
