package storage

// StorageError wraps a driver failure: the backing store is unreachable or
// returned data the driver could not decode. Fatal to the operation that hit
// it; callers decide on any user-visible fallback.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	if e.Err == nil {
		return "storage: " + e.Op + " failed"
	}
	return "storage: " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NotFoundError is returned when a turn doesn't exist in the store.
type NotFoundError struct {
	ID string
}

func (e NotFoundError) Error() string {
	if e.ID == "" {
		return "turn not found"
	}
	return "turn not found: " + e.ID
}
