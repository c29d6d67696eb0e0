package compare

import (
	"bytes"
	"encoding/binary"
)

// Func - Compares two fixed length byte sequences and returns a negative number if a < b, zero if a == b and a
// positive number if a > b. Both slices are always of the length given when the dictionary (or sort) was created.
type Func func(a, b []byte) int

// KeyType - Describes how key bytes are to be interpreted when no custom comparator is given
type KeyType int

const (
	// NumericSigned - Little endian two's complement integers of 1, 2, 4 or 8 bytes
	NumericSigned KeyType = iota
	// NumericUnsigned - Little endian unsigned integers of 1, 2, 4 or 8 bytes
	NumericUnsigned
	// CharArray - Raw bytes compared lexicographically over the full length
	CharArray
	// NullTerminatedString - Bytes compared lexicographically up to the first zero byte
	NullTerminatedString
)

// String - Returns the name of the key type
func (K KeyType) String() string {
	switch K {
	case NumericSigned:
		return "numeric_signed"
	case NumericUnsigned:
		return "numeric_unsigned"
	case CharArray:
		return "char_array"
	case NullTerminatedString:
		return "null_terminated_string"
	}
	return "unknown"
}

// ForKeyType - Returns the built-in comparator for the key type.
// Numeric types with a size other than 1, 2, 4 or 8 bytes fall back to an unsigned little endian comparison
// over the full length.
func ForKeyType(keyType KeyType, size int) Func {
	switch keyType {
	case NumericSigned:
		switch size {
		case 1, 2, 4, 8:
			return SignedInt
		}
		return UnsignedLittleEndian
	case NumericUnsigned:
		return UnsignedLittleEndian
	case NullTerminatedString:
		return NullTerminated
	default:
		return Bytes
	}
}

// Bytes - Lexicographic comparison over the full length
func Bytes(a, b []byte) int {
	return bytes.Compare(a, b)
}

// NullTerminated - Lexicographic comparison up to the first zero byte in either slice
func NullTerminated(a, b []byte) int {
	return bytes.Compare(untilNull(a), untilNull(b))
}

// SignedInt - Compares little endian signed integers of 1, 2, 4 or 8 bytes
func SignedInt(a, b []byte) int {
	x, y := signed(a), signed(b)
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

// UnsignedLittleEndian - Compares little endian unsigned integers of any (equal) length
func UnsignedLittleEndian(a, b []byte) int {
	for i := len(a) - 1; i >= 0; i-- {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Int32 - Convenience comparator for 4 byte little endian signed integers
func Int32(a, b []byte) int {
	x, y := int32(binary.LittleEndian.Uint32(a)), int32(binary.LittleEndian.Uint32(b))
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

func signed(a []byte) int64 {
	switch len(a) {
	case 1:
		return int64(int8(a[0]))
	case 2:
		return int64(int16(binary.LittleEndian.Uint16(a)))
	case 4:
		return int64(int32(binary.LittleEndian.Uint32(a)))
	default:
		return int64(binary.LittleEndian.Uint64(a))
	}
}

func untilNull(a []byte) []byte {
	if i := bytes.IndexByte(a, 0); i >= 0 {
		return a[:i]
	}
	return a
}
