package kverr

import "fmt"

// FileReadError - Custom error to inform that reading from a file failed
type FileReadError struct {
	Offset int64
	err    error
}

// Error - Used to notify that a read failed
func (E FileReadError) Error() string {
	if E.err == nil {
		return "file read error"
	}
	return fmt.Sprintf("file read error at offset %d: %s", E.Offset, E.err)
}

// Unwrap - Returns the underlying I/O error
func (E FileReadError) Unwrap() error { return E.err }

// Is - Matches any FileReadError regardless of cause
func (E FileReadError) Is(target error) bool {
	_, ok := target.(FileReadError)
	return ok
}

// NewFileReadError - Returns a FileReadError wrapping the cause
func NewFileReadError(offset int64, err error) FileReadError {
	return FileReadError{Offset: offset, err: err}
}

// FileBadSeek - Custom error to inform that positioning in a file failed
type FileBadSeek struct {
	Offset int64
	err    error
}

// Error - Used to notify that a seek failed
func (E FileBadSeek) Error() string {
	if E.err == nil {
		return "file bad seek"
	}
	return fmt.Sprintf("file bad seek to offset %d: %s", E.Offset, E.err)
}

// Unwrap - Returns the underlying I/O error
func (E FileBadSeek) Unwrap() error { return E.err }

// Is - Matches any FileBadSeek regardless of cause
func (E FileBadSeek) Is(target error) bool {
	_, ok := target.(FileBadSeek)
	return ok
}

// NewFileBadSeek - Returns a FileBadSeek wrapping the cause
func NewFileBadSeek(offset int64, err error) FileBadSeek {
	return FileBadSeek{Offset: offset, err: err}
}

// FileWriteError - Custom error to inform that writing sorted output failed
type FileWriteError struct {
	err error
}

// Error - Used to notify that a write failed
func (E FileWriteError) Error() string {
	if E.err == nil {
		return "file write error"
	}
	return fmt.Sprintf("file write error: %s", E.err)
}

// Unwrap - Returns the underlying I/O error
func (E FileWriteError) Unwrap() error { return E.err }

// Is - Matches any FileWriteError regardless of cause
func (E FileWriteError) Is(target error) bool {
	_, ok := target.(FileWriteError)
	return ok
}

// NewFileWriteError - Returns a FileWriteError wrapping the cause
func NewFileWriteError(err error) FileWriteError {
	return FileWriteError{err: err}
}
