package memctx

// ValidationError reports malformed input to Assemble: a missing identifier
// or query. Raised before any I/O.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Reason
}
