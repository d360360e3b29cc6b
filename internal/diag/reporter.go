package diag

import "fmt"

// Reporter is the minimal contract for receiving diagnostics from the
// resolver and splicer. Implementations: BagReporter (collects into a
// Bag), NopReporter (drops everything).
type Reporter interface {
	Report(d Diagnostic)
}

// BagReporter writes every diagnostic into a Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(d)
}

// NopReporter silently discards diagnostics.
type NopReporter struct{}

func (NopReporter) Report(Diagnostic) {}

// Warnf reports a formatted warning against a target.
func Warnf(r Reporter, code Code, target, format string, args ...any) {
	if r == nil {
		return
	}
	r.Report(Diagnostic{
		Severity: SevWarning,
		Code:     code,
		Target:   target,
		Message:  fmt.Sprintf(format, args...),
	})
}

// WarnAtf reports a formatted warning with a source location attached.
func WarnAtf(r Reporter, code Code, target, path string, line int, format string, args ...any) {
	if r == nil {
		return
	}
	r.Report(Diagnostic{
		Severity: SevWarning,
		Code:     code,
		Target:   target,
		Path:     path,
		Line:     line,
		Message:  fmt.Sprintf(format, args...),
	})
}
