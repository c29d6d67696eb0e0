package cursor

// Status - State of a cursor. A cursor only ever moves forward through the states:
// Uninitialized -> Initialized -> Active -> EndOfResults, or collapses directly into EndOfResults or Invalid.
type Status int

const (
	// Uninitialized - The cursor has not been set up
	Uninitialized Status = iota
	// Initialized - The first result is located but not yet consumed
	Initialized
	// Active - At least one result has been returned
	Active
	// EndOfResults - No more results, further calls to Next are no-ops
	EndOfResults
	// Invalid - The cursor failed or was destroyed and can't be used any more
	Invalid
)

// String - Returns the name of the status
func (S Status) String() string {
	switch S {
	case Uninitialized:
		return "uninitialized"
	case Initialized:
		return "initialized"
	case Active:
		return "active"
	case EndOfResults:
		return "end_of_results"
	case Invalid:
		return "invalid"
	}
	return "unknown"
}

// Record - A key and value pair materialized by a cursor. The slices belong to the caller.
type Record struct {
	Key   []byte
	Value []byte
}

// Cursor - Pull iterator over the records of one dictionary matching one predicate
type Cursor interface {
	// Next - Copies the next matching record into record and returns the new status.
	// A returned status of Active means record holds a result.
	Next(record *Record) (status Status, err error)

	// Status - Returns the current status without moving the cursor
	Status() Status

	// Destroy - Releases the cursor, it returns Invalid on any later use
	Destroy()
}

// CopyInto - Copies src into dst, reusing dst if it has the right length, and returns the result
func CopyInto(dst, src []byte) []byte {
	if len(dst) != len(src) {
		dst = make([]byte, len(src))
	}
	_ = copy(dst, src)
	return dst
}
