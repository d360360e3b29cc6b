package diag

// Diagnostic is one recoverable finding tied to a documented target.
// Target is the qualified name of the callable being processed; Path and
// Line point at the source location when one is known.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Target   string
	Path     string
	Line     int
	Message  string
}
