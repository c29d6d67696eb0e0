package pagefile

import (
	"fmt"
	"io"
)

// Writer - Packs fixed size values into pages of a fixed size. Values are stored back to back from the start
// of a page, bytes left over at the end of a page are zero padding. The file has no header.
// The writer holds no page buffer, values go straight to the underlying writer.
type Writer struct {
	w             io.Writer
	pageSize      int64
	valueSize     int64
	valuesPerPage int64
	inPage        int64
	numPages      int64
	flushed       bool
}

// NewWriter - Returns a pointer to a new page Writer
//   - w is where pages are written
//   - pageSize is the number of bytes in a page
//   - valueSize is the number of bytes in a value, a page must hold at least one value
func NewWriter(w io.Writer, pageSize, valueSize int64) (writer *Writer, err error) {
	if valueSize <= 0 {
		err = fmt.Errorf("value size must be a positive value higher than 0 (zero)")
		return
	}
	if pageSize < valueSize {
		err = fmt.Errorf("page size %d can't hold a value of size %d", pageSize, valueSize)
		return
	}

	writer = &Writer{
		w:             w,
		pageSize:      pageSize,
		valueSize:     valueSize,
		valuesPerPage: pageSize / valueSize,
	}

	return
}

// ValuesPerPage - Returns the number of values a page holds
func (W *Writer) ValuesPerPage() int64 {
	return W.valuesPerPage
}

// NumPages - Returns the number of pages started so far, including a partially filled last page
func (W *Writer) NumPages() int64 {
	return W.numPages
}

// NumValuesOnLastPage - Returns the number of values on the last page, 0 (zero) if nothing is written
func (W *Writer) NumValuesOnLastPage() int64 {
	if W.numPages == 0 {
		return 0
	}
	if W.inPage == 0 {
		return W.valuesPerPage
	}
	return W.inPage
}

// Write - Appends one value
func (W *Writer) Write(value []byte) (err error) {
	if W.flushed {
		err = fmt.Errorf("page writer already flushed")
		return
	}
	if int64(len(value)) != W.valueSize {
		err = fmt.Errorf("wrong length of value, should be %d", W.valueSize)
		return
	}

	if W.inPage == 0 {
		W.numPages++
	}

	if _, err = W.w.Write(value); err != nil {
		return
	}
	W.inPage++

	if W.inPage == W.valuesPerPage {
		if err = W.pad(W.pageSize - W.valuesPerPage*W.valueSize); err != nil {
			return
		}
		W.inPage = 0
	}

	return
}

// Flush - Pads a partially filled last page to the full page size. Nothing can be written afterwards.
func (W *Writer) Flush() (err error) {
	if W.flushed {
		return
	}
	W.flushed = true

	if W.inPage == 0 {
		return
	}

	return W.pad(W.pageSize - W.inPage*W.valueSize)
}

// pad - Writes n zero bytes
func (W *Writer) pad(n int64) (err error) {
	if n <= 0 {
		return
	}
	_, err = W.w.Write(make([]byte, n))
	return
}

// ReadValues - Reads all values from a page file
//   - r is the page file
//   - pageSize and valueSize are the sizes the file was written with
//   - numPages and numValuesOnLastPage describe the contents as reported by a Writer
func ReadValues(r io.Reader, pageSize, valueSize, numPages, numValuesOnLastPage int64) (values [][]byte, err error) {
	if valueSize <= 0 || pageSize < valueSize {
		err = fmt.Errorf("invalid page size %d for value size %d", pageSize, valueSize)
		return
	}

	valuesPerPage := pageSize / valueSize
	if numPages < 0 {
		err = fmt.Errorf("number of pages must not be negative")
		return
	}
	if numPages > 0 && (numValuesOnLastPage < 1 || numValuesOnLastPage > valuesPerPage) {
		err = fmt.Errorf("number of values on last page must be within [1, %d]", valuesPerPage)
		return
	}

	page := make([]byte, pageSize)

	for p := int64(0); p < numPages; p++ {
		if _, err = io.ReadFull(r, page); err != nil {
			err = fmt.Errorf("error while reading page %d: %s", p, err)
			return
		}

		n := valuesPerPage
		if p == numPages-1 {
			n = numValuesOnLastPage
		}

		for i := int64(0); i < n; i++ {
			value := make([]byte, valueSize)
			_ = copy(value, page[i*valueSize:(i+1)*valueSize])
			values = append(values, value)
		}
	}

	return
}
