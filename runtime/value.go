package runtime

import "math"

// Value represents a Beatrice value using NaN-boxing.
//
// All values are represented as 64-bit IEEE 754 doubles. Non-float values
// are encoded in the NaN (Not-a-Number) space using the quiet NaN prefix
// and tag bits to distinguish types.
//
// Encoding scheme:
//   - Float: Native IEEE 754 double (if not a NaN, it's a float)
//   - SmallInt: Quiet NaN + tagInt + 48-bit signed payload
//   - Object: Quiet NaN + tagObject + registry ID
//   - String: Quiet NaN + tagString + registry ID
//   - Function: Quiet NaN + tagFunction + registry ID
//   - Special: Quiet NaN + tagSpecial + special ID (undefined/null/true/false)
//
// Objects, strings, and functions are registry IDs rather than raw pointers
// so that a Value can escape into host data structures without pinning heap
// objects behind an integer the Go GC cannot see.
type Value uint64

// NaN-boxing constants
const (
	// Quiet NaN prefix: exponent all 1s, quiet bit set, sign bit 0
	// 0x7FF8_0000_0000_0000
	nanBits uint64 = 0x7FF8000000000000

	// Tag mask: 3 bits within the NaN mantissa space
	tagMask uint64 = 0x0007000000000000

	// Payload mask: 48 bits for int/id
	payloadMask uint64 = 0x0000FFFFFFFFFFFF

	// Tag values (shifted into position)
	tagObject   uint64 = 0x0001000000000000 // heap object registry ID
	tagInt      uint64 = 0x0002000000000000 // 48-bit signed integer
	tagSpecial  uint64 = 0x0003000000000000 // undefined, null, true, false
	tagString   uint64 = 0x0004000000000000 // interned string ID
	tagFunction uint64 = 0x0005000000000000 // function registry ID

	// Sign bit for 48-bit integer sign extension
	intSignBit uint64 = 0x0000800000000000

	// Mask for sign extension
	intSignExtend uint64 = 0xFFFF000000000000
)

// Special value payloads
const (
	specialUndefined uint64 = 0
	specialNull      uint64 = 1
	specialTrue      uint64 = 2
	specialFalse     uint64 = 3
)

// Pre-defined special values
const (
	Undefined Value = Value(nanBits | tagSpecial | specialUndefined)
	Null      Value = Value(nanBits | tagSpecial | specialNull)
	True      Value = Value(nanBits | tagSpecial | specialTrue)
	False     Value = Value(nanBits | tagSpecial | specialFalse)
)

// SmallInt range (48-bit signed)
const (
	MaxSmallInt int64 = (1 << 47) - 1
	MinSmallInt int64 = -(1 << 47)
)

// ---------------------------------------------------------------------------
// Type checking
// ---------------------------------------------------------------------------

// IsFloat returns true if v represents a float64 value.
// A value is a float if it's not one of our tagged NaN values.
// This includes regular numbers, infinities, and "real" NaN values.
func (v Value) IsFloat() bool {
	bits := uint64(v)

	if (bits & 0x7FF0000000000000) != 0x7FF0000000000000 {
		// Exponent is not all 1s, so it's a regular float
		return true
	}

	// Exponent is all 1s. Infinity has mantissa == 0 (ignoring sign bit).
	mantissa := bits & 0x000FFFFFFFFFFFFF
	if mantissa == 0 {
		return true
	}

	// It's a NaN. Signaling NaNs (quiet bit clear) are treated as floats.
	if (bits & nanBits) != nanBits {
		return true
	}

	// Quiet NaN with no tag bits is a "real" NaN, still a float.
	return bits&tagMask == 0
}

// IsSmallInt returns true if v represents a small integer.
func (v Value) IsSmallInt() bool {
	return (uint64(v) & (nanBits | tagMask)) == (nanBits | tagInt)
}

// IsObject returns true if v represents a heap object.
func (v Value) IsObject() bool {
	return (uint64(v) & (nanBits | tagMask)) == (nanBits | tagObject)
}

// IsString returns true if v represents an interned string.
func (v Value) IsString() bool {
	return (uint64(v) & (nanBits | tagMask)) == (nanBits | tagString)
}

// IsFunction returns true if v represents a function.
func (v Value) IsFunction() bool {
	return (uint64(v) & (nanBits | tagMask)) == (nanBits | tagFunction)
}

// IsUndefined returns true if v is the undefined value.
func (v Value) IsUndefined() bool {
	return v == Undefined
}

// IsNull returns true if v is the null value.
func (v Value) IsNull() bool {
	return v == Null
}

// IsNullOrUndefined returns true if v is null or undefined. This is the
// "no receiver" test used by Global this-mode resolution.
func (v Value) IsNullOrUndefined() bool {
	return v == Null || v == Undefined
}

// IsBool returns true if v is true or false.
func (v Value) IsBool() bool {
	return v == True || v == False
}

// IsSpecial returns true if v is undefined, null, true, or false.
func (v Value) IsSpecial() bool {
	return (uint64(v) & (nanBits | tagMask)) == (nanBits | tagSpecial)
}

// ---------------------------------------------------------------------------
// Float operations
// ---------------------------------------------------------------------------

// Float64 returns v as a float64.
// Panics if v is not a float.
func (v Value) Float64() float64 {
	if !v.IsFloat() {
		panic("Value.Float64: not a float")
	}
	return math.Float64frombits(uint64(v))
}

// FromFloat64 creates a Value from a float64.
func FromFloat64(f float64) Value {
	return Value(math.Float64bits(f))
}

// ---------------------------------------------------------------------------
// SmallInt operations
// ---------------------------------------------------------------------------

// SmallInt returns v as an int64.
// Panics if v is not a small integer.
func (v Value) SmallInt() int64 {
	if !v.IsSmallInt() {
		panic("Value.SmallInt: not a small integer")
	}
	payload := uint64(v) & payloadMask

	// Sign extend from 48 bits to 64 bits
	if (payload & intSignBit) != 0 {
		payload |= intSignExtend
	}
	return int64(payload)
}

// FromSmallInt creates a Value from an int64.
// Panics if n is outside the SmallInt range.
func FromSmallInt(n int64) Value {
	if n > MaxSmallInt || n < MinSmallInt {
		panic("FromSmallInt: value out of range")
	}
	return Value(nanBits | tagInt | (uint64(n) & payloadMask))
}

// ---------------------------------------------------------------------------
// Registry ID operations
// ---------------------------------------------------------------------------

// ObjectID returns the object registry ID encoded in v.
// Panics if v is not an object.
func (v Value) ObjectID() uint32 {
	if !v.IsObject() {
		panic("Value.ObjectID: not an object")
	}
	return uint32(uint64(v) & payloadMask)
}

// FromObjectID creates a Value from an object registry ID.
func FromObjectID(id uint32) Value {
	return Value(nanBits | tagObject | uint64(id))
}

// StringID returns the string registry ID encoded in v.
// Panics if v is not a string.
func (v Value) StringID() uint32 {
	if !v.IsString() {
		panic("Value.StringID: not a string")
	}
	return uint32(uint64(v) & payloadMask)
}

// FromStringID creates a Value from a string registry ID.
func FromStringID(id uint32) Value {
	return Value(nanBits | tagString | uint64(id))
}

// FunctionID returns the function registry ID encoded in v.
// Panics if v is not a function.
func (v Value) FunctionID() uint32 {
	if !v.IsFunction() {
		panic("Value.FunctionID: not a function")
	}
	return uint32(uint64(v) & payloadMask)
}

// FromFunctionID creates a Value from a function registry ID.
func FromFunctionID(id uint32) Value {
	return Value(nanBits | tagFunction | uint64(id))
}

// ---------------------------------------------------------------------------
// Cells (mutable boxes for captured bindings)
// ---------------------------------------------------------------------------

// Cell is a heap-allocated mutable container for a single Value. Lexical
// bindings are cells so that every closure capturing a binding observes
// writes made through any other closure over the same scope.
type Cell struct {
	value Value
}

// NewCell creates a cell holding the given value.
func NewCell(v Value) *Cell {
	return &Cell{value: v}
}

// Get returns the value stored in the cell.
func (c *Cell) Get() Value {
	return c.value
}

// Set stores a value in the cell.
func (c *Cell) Set(v Value) {
	c.value = v
}

// ---------------------------------------------------------------------------
// Boolean operations
// ---------------------------------------------------------------------------

// Bool returns v as a bool.
// Panics if v is not true or false.
func (v Value) Bool() bool {
	switch v {
	case True:
		return true
	case False:
		return false
	default:
		panic("Value.Bool: not a boolean")
	}
}

// FromBool creates a Value from a bool.
func FromBool(b bool) Value {
	if b {
		return True
	}
	return False
}

// IsTruthy returns true if v is considered "truthy" in conditionals.
// false, undefined, null, 0, -0, and NaN are falsy; everything else is
// truthy. (Empty strings are resolved by the string table, which the
// surrounding engine owns; the registry exposes the check.)
func (v Value) IsTruthy() bool {
	switch {
	case v == False || v == Undefined || v == Null:
		return false
	case v.IsSmallInt():
		return v.SmallInt() != 0
	case v.IsFloat():
		f := v.Float64()
		return f != 0 && !math.IsNaN(f)
	}
	return true
}
