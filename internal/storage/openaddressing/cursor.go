package openaddressing

import (
	"errors"
	"fmt"
	"github.com/gostonefire/flashkv/cursor"
	"github.com/gostonefire/flashkv/internal/model"
	"github.com/gostonefire/flashkv/kverr"
	"github.com/gostonefire/flashkv/predicate"
)

// Cursor - Pull iterator over the records of a HashMap that satisfy a predicate.
// The cursor walks slots current+1 up to and including anchor (wrapping around), so each slot is visited at
// most once during the life of the cursor. It holds its own copy of the predicate but does not own the map,
// which must outlive it.
type Cursor struct {
	hashMap   *HashMap
	predicate predicate.Predicate
	status    cursor.Status
	anchor    int64
	current   int64
}

// Find - Creates a cursor over all records whose key satisfies the predicate.
// An equality predicate is resolved with one probe walk, range and all records predicates need a full scan
// since the table is unordered.
//   - p is the predicate, its bounds are copied so the caller may discard it right away
//
// It returns:
//   - c is the cursor, in status Initialized if a first result is located or EndOfResults if there is none
//   - err is kverr.InvalidPredicate for unsupported or malformed predicates, or another error if the map is unusable
func (Q *HashMap) Find(p predicate.Predicate) (c *Cursor, err error) {
	if err = Q.checkAlive(); err != nil {
		return
	}

	var cur *Cursor

	switch pred := p.(type) {
	case predicate.Equality:
		if err = Q.checkBound("equality key", pred.Key); err != nil {
			return
		}
		cur = &Cursor{hashMap: Q, predicate: pred.Clone(), status: cursor.Uninitialized}

		var slot int64
		slot, err = Q.probingForGet(cur.predicate.(predicate.Equality).Key)
		if err != nil {
			if !errors.Is(err, kverr.NotFound{}) {
				return
			}
			err = nil
			cur.status = cursor.EndOfResults
			break
		}
		cur.anchor = slot
		cur.current = slot
		cur.status = cursor.Initialized

	case predicate.Range:
		if err = Q.checkBound("range lower bound", pred.Lower); err != nil {
			return
		}
		if err = Q.checkBound("range upper bound", pred.Upper); err != nil {
			return
		}
		cur = Q.newScanCursor(pred.Clone())

	case predicate.AllRecords:
		cur = Q.newScanCursor(pred.Clone())

	default:
		err = kverr.NewInvalidPredicate(fmt.Sprintf("unsupported predicate %T", p))
		return
	}

	Q.logger.Debug("cursor created", "id", Q.id, "predicate", p.Kind(), "status", cur.status.String())

	c = cur
	return
}

// newScanCursor - Creates a cursor positioned before the first slot and scans for the first result
func (Q *HashMap) newScanCursor(p predicate.Predicate) (c *Cursor) {
	c = &Cursor{
		hashMap:   Q,
		predicate: p,
		status:    cursor.Initialized,
		anchor:    Q.capacity - 1,
		current:   -1,
	}

	if !c.scan() {
		c.status = cursor.EndOfResults
	}

	return
}

// checkBound - Checks that a predicate bound has the key length
func (Q *HashMap) checkBound(name string, bound []byte) (err error) {
	if int64(len(bound)) != Q.keyLength {
		err = kverr.NewInvalidPredicate(fmt.Sprintf("%s has length %d, should be %d", name, len(bound), Q.keyLength))
	}
	return
}

// Status - Returns the current status of the cursor
func (C *Cursor) Status() cursor.Status {
	return C.status
}

// Next - Copies the next record satisfying the predicate into record.
//   - record receives key and value, its slices are reused if they have the right lengths
//
// It returns:
//   - status is cursor.Active if record holds a result, otherwise the unchanged terminal status
//   - err is kverr.CursorDestroyed if the cursor was destroyed or kverr.Destroyed if the map was destroyed
func (C *Cursor) Next(record *cursor.Record) (status cursor.Status, err error) {
	switch C.status {
	case cursor.Uninitialized, cursor.EndOfResults:
		status = C.status
		return

	case cursor.Invalid:
		status = C.status
		err = kverr.CursorDestroyed{}
		return
	}

	if record == nil {
		status = C.status
		err = fmt.Errorf("record must not be nil")
		return
	}

	if err = C.hashMap.checkAlive(); err != nil {
		C.invalidate()
		status = C.status
		return
	}

	if C.status == cursor.Active {
		if !C.scan() {
			C.status = cursor.EndOfResults
			status = C.status
			return
		}
	}

	// An initialized cursor consumes its pre-located slot, unless it has been vacated since
	bucket := &C.hashMap.buckets[C.current]
	if bucket.State != model.RecordOccupied {
		C.status = cursor.EndOfResults
		status = C.status
		return
	}

	record.Key = cursor.CopyInto(record.Key, bucket.Key)
	record.Value = cursor.CopyInto(record.Value, bucket.Value)

	C.status = cursor.Active
	status = C.status

	return
}

// Destroy - Releases the predicate copy and the reference to the map. The cursor returns cursor.Invalid from
// then on.
func (C *Cursor) Destroy() {
	C.invalidate()
}

// invalidate - Drops everything the cursor holds and makes it invalid
func (C *Cursor) invalidate() {
	C.predicate = nil
	C.hashMap = nil
	C.status = cursor.Invalid
}

// scan - Moves current forward to the next occupied slot satisfying the predicate. It never passes the anchor.
// It returns false when the anchor has been reached without a match.
func (C *Cursor) scan() bool {
	Q := C.hashMap

	for C.current != C.anchor {
		C.current = (C.current + 1) % Q.capacity

		bucket := &Q.buckets[C.current]
		if bucket.State != model.RecordOccupied {
			continue
		}

		if C.predicate.Matches(bucket.Key, Q.compare) {
			return true
		}
	}

	return false
}
