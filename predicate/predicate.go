package predicate

import (
	"fmt"
	"github.com/gostonefire/flashkv/compare"
	"github.com/gostonefire/flashkv/kverr"
)

// Kind - The kind of selection a predicate performs
type Kind int

const (
	// KindEquality - Selects the record with a key equal to a given key
	KindEquality Kind = iota
	// KindRange - Selects records with keys between a lower and an upper bound (both inclusive)
	KindRange
	// KindAllRecords - Selects every record
	KindAllRecords
)

// Predicate - A selection criterion bound to a cursor.
// Implementations own their bound bytes, Clone returns a deep copy that shares nothing with the original.
type Predicate interface {
	Kind() Kind
	Matches(key []byte, cmp compare.Func) bool
	Clone() Predicate
}

// Equality - Selects the record whose key equals Key
type Equality struct {
	Key []byte
}

// Kind - Returns KindEquality
func (E Equality) Kind() Kind { return KindEquality }

// Matches - Returns true if key equals the predicate key
func (E Equality) Matches(key []byte, cmp compare.Func) bool {
	return cmp(key, E.Key) == 0
}

// Clone - Returns a copy owning its own key bytes
func (E Equality) Clone() Predicate {
	return Equality{Key: clone(E.Key)}
}

// Range - Selects records with Lower <= key <= Upper
type Range struct {
	Lower []byte
	Upper []byte
}

// Kind - Returns KindRange
func (R Range) Kind() Kind { return KindRange }

// Matches - Returns true if key is within the bounds (inclusive)
func (R Range) Matches(key []byte, cmp compare.Func) bool {
	return cmp(key, R.Lower) >= 0 && cmp(key, R.Upper) <= 0
}

// Clone - Returns a copy owning its own bound bytes
func (R Range) Clone() Predicate {
	return Range{Lower: clone(R.Lower), Upper: clone(R.Upper)}
}

// AllRecords - Selects every record
type AllRecords struct{}

// Kind - Returns KindAllRecords
func (A AllRecords) Kind() Kind { return KindAllRecords }

// Matches - Always true
func (A AllRecords) Matches([]byte, compare.Func) bool { return true }

// Clone - Returns an AllRecords
func (A AllRecords) Clone() Predicate { return AllRecords{} }

// Build - Builds a predicate of the given kind from raw key sized bound buffers.
//   - kind is the kind of predicate
//   - bounds are one key for KindEquality, a lower and an upper bound for KindRange and nothing for KindAllRecords
//
// It returns:
//   - predicate which owns copies of the bounds
//   - err of type kverr.InvalidPredicate if kind is unknown or the number of bounds doesn't fit the kind
func Build(kind Kind, bounds ...[]byte) (predicate Predicate, err error) {
	switch kind {
	case KindEquality:
		if len(bounds) != 1 {
			err = kverr.NewInvalidPredicate(fmt.Sprintf("equality predicate takes 1 key, got %d", len(bounds)))
			return
		}
		predicate = Equality{Key: clone(bounds[0])}

	case KindRange:
		if len(bounds) != 2 {
			err = kverr.NewInvalidPredicate(fmt.Sprintf("range predicate takes 2 bounds, got %d", len(bounds)))
			return
		}
		predicate = Range{Lower: clone(bounds[0]), Upper: clone(bounds[1])}

	case KindAllRecords:
		if len(bounds) != 0 {
			err = kverr.NewInvalidPredicate(fmt.Sprintf("all records predicate takes no bounds, got %d", len(bounds)))
			return
		}
		predicate = AllRecords{}

	default:
		err = kverr.NewInvalidPredicate(fmt.Sprintf("unsupported predicate kind %d", kind))
	}

	return
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	c := make([]byte, len(b))
	_ = copy(c, b)
	return c
}
