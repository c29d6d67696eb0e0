package externalsort

import (
	"fmt"
	"github.com/bits-and-blooms/bitset"
	"github.com/gostonefire/flashkv/compare"
	"github.com/gostonefire/flashkv/config"
	"github.com/gostonefire/flashkv/cursor"
	"github.com/gostonefire/flashkv/internal/logging"
	"github.com/gostonefire/flashkv/internal/storage/pagefile"
	"github.com/gostonefire/flashkv/kverr"
	"io"
	"log/slog"
)

// Conf - Layout of the input page file and the memory the sort may use
type Conf struct {
	PageSize            int64
	ValueSize           int64
	NumPages            int64
	NumValuesOnLastPage int64
	Compare             compare.Func
	BufferBytes         int64
	Logger              *slog.Logger
}

// region - A run of contiguous pages sharing one minimum candidate
type region struct {
	firstPage int64
	numPages  int64
	minimum   []byte
}

// Cursor - Pull iterator emitting the values of a page file in non-decreasing order (flash min-sort).
// Pages are split into regions small enough for one minimum candidate per region to fit the buffer. Each call
// to Next picks the smallest candidate among the valid regions and rescans that region for values equal to it,
// collecting the next larger candidate for the region on the way.
type Cursor struct {
	input          io.ReadSeeker
	output         *pagefile.Writer
	compare        compare.Func
	logger         *slog.Logger
	pageSize       int64
	valueSize      int64
	valuesPerPage  int64
	numPages       int64
	valuesOnLast   int64
	pagesPerRegion int64
	regions        []region
	valid          *bitset.BitSet
	current        []byte
	scratch        []byte
	hasCurrent     bool
	curRegion      int64
	page           int64
	valueInPage    int64
	offset         int64
	status         cursor.Status
	err            error
}

// Init - Sets up a sort over the page file and runs the initialization pass, reading every page once.
//   - conf describes the page file and the buffer available
//   - input is the page file, it is read from the start regardless of its current position
//   - output is optional, if given all emitted values are also written to it as a page file of the same layout
//
// It returns:
//   - c is the cursor in status cursor.Initialized
//   - err is kverr.OutOfMemory if the buffer can't hold the minimal layout (no I/O is done in that case),
//     kverr.FileReadError or kverr.FileBadSeek for I/O failures, or a standard error for invalid parameters
func Init(conf Conf, input io.ReadSeeker, output io.Writer) (c *Cursor, err error) {
	if conf.ValueSize <= 0 {
		err = fmt.Errorf("value size must be a positive value higher than 0 (zero)")
		return
	}
	if conf.PageSize < conf.ValueSize {
		err = fmt.Errorf("page size %d can't hold a value of size %d", conf.PageSize, conf.ValueSize)
		return
	}
	if conf.NumPages < 0 {
		err = fmt.Errorf("number of pages must not be negative")
		return
	}
	valuesPerPage := conf.PageSize / conf.ValueSize
	if conf.NumPages > 0 && (conf.NumValuesOnLastPage < 1 || conf.NumValuesOnLastPage > valuesPerPage) {
		err = fmt.Errorf("number of values on last page must be within [1, %d]", valuesPerPage)
		return
	}
	if input == nil {
		err = fmt.Errorf("input must not be nil")
		return
	}

	bitmapBytes := (conf.NumPages + 7) / 8
	if conf.BufferBytes < 3*conf.ValueSize+bitmapBytes {
		err = kverr.NewOutOfMemory(fmt.Sprintf("buffer of %d bytes is less than the minimum %d bytes",
			conf.BufferBytes, 3*conf.ValueSize+bitmapBytes))
		return
	}

	if conf.Compare == nil {
		conf.Compare = compare.Bytes
	}

	cur := &Cursor{
		input:         input,
		compare:       conf.Compare,
		logger:        logging.OrNoop(conf.Logger),
		pageSize:      conf.PageSize,
		valueSize:     conf.ValueSize,
		valuesPerPage: valuesPerPage,
		numPages:      conf.NumPages,
		valuesOnLast:  conf.NumValuesOnLastPage,
		current:       make([]byte, conf.ValueSize),
		scratch:       make([]byte, conf.ValueSize),
		offset:        -1,
		status:        cursor.Uninitialized,
	}

	cur.layout(conf.BufferBytes, bitmapBytes)

	if output != nil {
		if cur.output, err = pagefile.NewWriter(output, conf.PageSize, conf.ValueSize); err != nil {
			return
		}
	}

	if err = cur.initialPass(); err != nil {
		return
	}

	cur.status = cursor.Initialized

	cur.logger.Debug("sort initialized",
		"numPages", cur.numPages,
		"pagesPerRegion", cur.pagesPerRegion,
		"regions", len(cur.regions),
		"bufferBytes", conf.BufferBytes,
	)

	c = cur
	return
}

// InitFromConfig - Sets up a sort with page size, value size and buffer taken from the sort section of cfg.
// If logger is nil a logger is built from the log section.
func InitFromConfig(cfg *config.Config, numPages, numValuesOnLastPage int64, cmp compare.Func,
	input io.ReadSeeker, output io.Writer, logger *slog.Logger) (c *Cursor, err error) {

	if cfg == nil {
		cfg = config.Default()
	}

	return Init(Conf{
		PageSize:            cfg.Sort.PageSize,
		ValueSize:           cfg.Sort.ValueSize,
		NumPages:            numPages,
		NumValuesOnLastPage: numValuesOnLastPage,
		Compare:             cmp,
		BufferBytes:         cfg.Sort.BufferBytes,
		Logger:              logging.OrFromConfig(logger, cfg.Log),
	}, input, output)
}

// Status - Returns the current status of the cursor
func (C *Cursor) Status() cursor.Status {
	return C.status
}

// Regions - Returns the number of regions the pages are split into
func (C *Cursor) Regions() int {
	return len(C.regions)
}

// PagesPerRegion - Returns the number of pages in each region, the last region may have fewer
func (C *Cursor) PagesPerRegion() int64 {
	return C.pagesPerRegion
}

// Next - Copies the next value in sort order into value.
//   - value has to be of the value size
//
// It returns:
//   - status is cursor.Active if value holds a result, cursor.EndOfResults when all values are emitted
//   - err is kverr.FileReadError, kverr.FileBadSeek or kverr.FileWriteError, after which the cursor is
//     cursor.Invalid and keeps returning the same error, or kverr.CursorDestroyed after Destroy
func (C *Cursor) Next(value []byte) (status cursor.Status, err error) {
	switch C.status {
	case cursor.Uninitialized, cursor.EndOfResults:
		status = C.status
		return

	case cursor.Invalid:
		status = C.status
		err = C.err
		return
	}

	if int64(len(value)) != C.valueSize {
		status = C.status
		err = fmt.Errorf("wrong length of value, should be %d", C.valueSize)
		return
	}

	for {
		if !C.hasCurrent && !C.selectCurrent() {
			C.status = cursor.EndOfResults
			status = C.status
			return
		}

		var found bool
		if found, err = C.scanRegion(); err != nil {
			C.fail(err)
			status = C.status
			return
		}

		if found {
			break
		}

		// Region exhausted for current, pick the next smallest candidate
		C.hasCurrent = false
	}

	// Equal under the comparator doesn't mean equal bytes, emit what was read
	_ = copy(value, C.scratch)

	if C.output != nil {
		if err = C.output.Write(C.scratch); err != nil {
			C.fail(kverr.NewFileWriteError(err))
			err = C.err
			status = C.status
			return
		}
	}

	C.status = cursor.Active
	status = C.status

	return
}

// Destroy - Releases candidate slots and the validity bits and flushes the output page file if any.
// The cursor returns cursor.Invalid from then on.
func (C *Cursor) Destroy() (err error) {
	if C.output != nil {
		if ferr := C.output.Flush(); ferr != nil {
			err = kverr.NewFileWriteError(ferr)
		}
		C.output = nil
	}

	C.regions = nil
	C.valid = nil
	C.current = nil
	C.scratch = nil
	C.input = nil
	C.status = cursor.Invalid
	C.err = kverr.CursorDestroyed{}

	return
}

// fail - Makes the cursor permanently invalid with err
func (C *Cursor) fail(err error) {
	C.status = cursor.Invalid
	C.err = err
	C.logger.Warn("sort aborted", "error", err)
}

// layout - Splits the pages into regions so that one candidate per region plus the current and scratch
// slots and the validity bits fit the buffer
func (C *Cursor) layout(bufferBytes, bitmapBytes int64) {
	if C.numPages == 0 {
		C.valid = bitset.New(0)
		return
	}

	C.pagesPerRegion = ceilDiv(C.numPages*C.valueSize+bitmapBytes, bufferBytes-2*C.valueSize)
	numRegions := ceilDiv(C.numPages, C.pagesPerRegion)

	C.regions = make([]region, numRegions)
	for r := int64(0); r < numRegions; r++ {
		first := r * C.pagesPerRegion
		C.regions[r] = region{
			firstPage: first,
			numPages:  min(C.pagesPerRegion, C.numPages-first),
			minimum:   make([]byte, C.valueSize),
		}
	}

	C.valid = bitset.New(uint(numRegions))
}

// initialPass - Reads all pages once and records the minimum of every region
func (C *Cursor) initialPass() (err error) {
	for r := range C.regions {
		reg := &C.regions[r]
		for p := reg.firstPage; p < reg.firstPage+reg.numPages; p++ {
			for i := int64(0); i < C.valuesIn(p); i++ {
				if err = C.readValue(p, i, C.scratch); err != nil {
					return
				}
				if !C.valid.Test(uint(r)) || C.compare(C.scratch, reg.minimum) < 0 {
					_ = copy(reg.minimum, C.scratch)
					C.valid.Set(uint(r))
				}
			}
		}
	}

	return
}

// selectCurrent - Takes the smallest candidate among the valid regions as current, invalidates its region and
// positions the scan at the start of it. It returns false if no region is valid.
func (C *Cursor) selectCurrent() bool {
	best := -1
	for r, ok := C.valid.NextSet(0); ok; r, ok = C.valid.NextSet(r + 1) {
		if best < 0 || C.compare(C.regions[r].minimum, C.regions[best].minimum) < 0 {
			best = int(r)
		}
	}
	if best < 0 {
		return false
	}

	_ = copy(C.current, C.regions[best].minimum)
	C.valid.Clear(uint(best))
	C.hasCurrent = true
	C.curRegion = int64(best)
	C.page = C.regions[best].firstPage
	C.valueInPage = 0

	return true
}

// scanRegion - Continues the scan of the current region from the saved position. It stops right after a value
// equal to current and returns true, leaving that value in scratch. Values greater than current are candidates for the next minimum of the
// region. It returns false when the end of the region is reached.
func (C *Cursor) scanRegion() (found bool, err error) {
	reg := &C.regions[C.curRegion]
	end := reg.firstPage + reg.numPages

	for ; C.page < end; C.page, C.valueInPage = C.page+1, 0 {
		for ; C.valueInPage < C.valuesIn(C.page); C.valueInPage++ {
			if err = C.readValue(C.page, C.valueInPage, C.scratch); err != nil {
				return
			}

			cmp := C.compare(C.scratch, C.current)
			if cmp == 0 {
				C.valueInPage++
				found = true
				return
			}

			if cmp > 0 && (!C.valid.Test(uint(C.curRegion)) || C.compare(C.scratch, reg.minimum) < 0) {
				_ = copy(reg.minimum, C.scratch)
				C.valid.Set(uint(C.curRegion))
			}
		}
	}

	return
}

// valuesIn - Returns the number of values stored in page p
func (C *Cursor) valuesIn(p int64) int64 {
	if p == C.numPages-1 {
		return C.valuesOnLast
	}
	return C.valuesPerPage
}

// readValue - Reads value i of page p into dst, seeking only when the value isn't next in line
func (C *Cursor) readValue(p, i int64, dst []byte) (err error) {
	offset := p*C.pageSize + i*C.valueSize

	if offset != C.offset {
		if _, err = C.input.Seek(offset, io.SeekStart); err != nil {
			err = kverr.NewFileBadSeek(offset, err)
			return
		}
		C.offset = offset
	}

	if _, err = io.ReadFull(C.input, dst); err != nil {
		err = kverr.NewFileReadError(offset, err)
		C.offset = -1
		return
	}
	C.offset += C.valueSize

	return
}

func ceilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}
