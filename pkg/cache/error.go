package cache

// Error wraps a cache transport failure. Callers recover locally: a failed
// read is a miss, a failed write is skipped. Never fatal.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return "cache: " + e.Op + " failed"
	}
	return "cache: " + e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}
