package kverr

// OutOfMemory - Custom error to inform that an allocation would not fit the memory available,
// or that a supplied buffer is too small for the requested layout
type OutOfMemory struct {
	msg string
}

// Error - Used to notify that memory is insufficient
func (E OutOfMemory) Error() string {
	if E.msg == "" {
		return "out of memory"
	}
	return E.msg
}

// Is - Matches any OutOfMemory regardless of message
func (E OutOfMemory) Is(target error) bool {
	_, ok := target.(OutOfMemory)
	return ok
}

// NewOutOfMemory - Returns an OutOfMemory with a custom message
func NewOutOfMemory(msg string) OutOfMemory {
	return OutOfMemory{msg: msg}
}

// DuplicateKey - Custom error to inform that a key already exists and the write concern forbids overwriting it
type DuplicateKey struct {
	msg string
}

// Error - Used to notify that the key is already present
func (E DuplicateKey) Error() string {
	if E.msg == "" {
		return "duplicate key"
	}
	return E.msg
}

// NotFound - Custom error to inform that no record was found
type NotFound struct {
	msg string
}

// Error - Used to notify that no record was found
func (E NotFound) Error() string {
	if E.msg == "" {
		return "no record found"
	}
	return E.msg
}

// InvalidPredicate - Custom error to inform that a predicate is of an unsupported kind or malformed
type InvalidPredicate struct {
	msg string
}

// Error - Used to notify that the predicate can't be used
func (E InvalidPredicate) Error() string {
	if E.msg == "" {
		return "invalid predicate"
	}
	return E.msg
}

// Is - Matches any InvalidPredicate regardless of message
func (E InvalidPredicate) Is(target error) bool {
	_, ok := target.(InvalidPredicate)
	return ok
}

// NewInvalidPredicate - Returns an InvalidPredicate with a custom message
func NewInvalidPredicate(msg string) InvalidPredicate {
	return InvalidPredicate{msg: msg}
}

// MapFull - Custom error to inform that the hash map is full and can't take more records
type MapFull struct {
	msg string
}

// Error - Used to notify that the hash map is full
func (E MapFull) Error() string {
	if E.msg == "" {
		return "hash map full"
	}
	return E.msg
}

// NotImplemented - Custom error to inform that an operation is not supported by a backend
type NotImplemented struct {
	msg string
}

// Error - Used to notify that the operation is not implemented
func (E NotImplemented) Error() string {
	if E.msg == "" {
		return "not implemented"
	}
	return E.msg
}

// Destroyed - Custom error to inform that an operation was attempted on a destroyed dictionary
type Destroyed struct {
	msg string
}

// Error - Used to notify that the dictionary no longer exists
func (E Destroyed) Error() string {
	if E.msg == "" {
		return "dictionary destroyed"
	}
	return E.msg
}

// CursorDestroyed - Custom error to inform that a destroyed cursor was used
type CursorDestroyed struct {
	msg string
}

// Error - Used to notify that the cursor was destroyed
func (E CursorDestroyed) Error() string {
	if E.msg == "" {
		return "cursor destroyed"
	}
	return E.msg
}
