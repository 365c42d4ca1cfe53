// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package jsonb

// Opcode tags the datum that follows it in a JSONB payload stream. For the
// fixed-width scalar opcodes (ints, unsigned ints, floats) the low nibble is
// the payload width in bytes: Opcode&0x0F == payload length. This is a wire
// convention, not an accident of the Go encoding, and EnumNext relies on it
// to size every fixed-width record without a lookup table.
type Opcode uint8

const (
	OpInvalid Opcode = 0x00 // sentinel; also suppresses the opcode write in appendRaw

	OpBeginObject Opcode = 0x10
	OpEndObject   Opcode = 0x11
	OpBeginArray  Opcode = 0x12
	OpEndArray    Opcode = 0x13

	OpNull  Opcode = 0x20
	OpTrue  Opcode = 0x21
	OpFalse Opcode = 0x22

	OpItem   Opcode = 0x30 // object key: NUL-terminated name, then one value record
	OpString Opcode = 0x40 // NUL-terminated UTF-8

	OpBin8  Opcode = 0x51 // length in 1 byte, then raw bytes
	OpBin16 Opcode = 0x52 // length in 2 bytes LE
	OpBin24 Opcode = 0x53 // length in 3 bytes LE
	OpBin32 Opcode = 0x54 // length in 4 bytes LE

	OpInt8  Opcode = 0x61
	OpInt16 Opcode = 0x62
	OpInt32 Opcode = 0x64
	OpInt64 Opcode = 0x68

	OpUint8  Opcode = 0x71
	OpUint16 Opcode = 0x72
	OpUint32 Opcode = 0x74
	OpUint64 Opcode = 0x78

	OpFloat  Opcode = 0x84
	OpDouble Opcode = 0x88
)

// fixedWidth reports the payload length, in bytes, of a fixed-width scalar
// opcode (int/uint/float/double). It is the low nibble of the opcode value,
// per the wire convention documented on Opcode. Returns (0, false) for
// opcodes whose payload length is not encoded in the opcode byte itself
// (structural opcodes, STRING, ITEM, BIN*).
func (op Opcode) fixedWidth() (int, bool) {
	switch op {
	case OpInt8, OpInt16, OpInt32, OpInt64,
		OpUint8, OpUint16, OpUint32, OpUint64,
		OpFloat, OpDouble:
		return int(op & 0x0F), true
	default:
		return 0, false
	}
}

// binLenFieldWidth reports how many little-endian bytes encode the length
// field for a BIN* opcode.
func (op Opcode) binLenFieldWidth() (int, bool) {
	switch op {
	case OpBin8:
		return 1, true
	case OpBin16:
		return 2, true
	case OpBin24:
		return 3, true
	case OpBin32:
		return 4, true
	default:
		return 0, false
	}
}

// String implements fmt.Stringer for debugging and cmd/jsonbcat's printer.
func (op Opcode) String() string {
	switch op {
	case OpInvalid:
		return "INVALID"
	case OpBeginObject:
		return "BEGIN_OBJECT"
	case OpEndObject:
		return "END_OBJECT"
	case OpBeginArray:
		return "BEGIN_ARRAY"
	case OpEndArray:
		return "END_ARRAY"
	case OpNull:
		return "NULL"
	case OpTrue:
		return "TRUE"
	case OpFalse:
		return "FALSE"
	case OpItem:
		return "ITEM"
	case OpString:
		return "STRING"
	case OpBin8:
		return "BIN8"
	case OpBin16:
		return "BIN16"
	case OpBin24:
		return "BIN24"
	case OpBin32:
		return "BIN32"
	case OpInt8:
		return "INT8"
	case OpInt16:
		return "INT16"
	case OpInt32:
		return "INT32"
	case OpInt64:
		return "INT64"
	case OpUint8:
		return "UINT8"
	case OpUint16:
		return "UINT16"
	case OpUint32:
		return "UINT32"
	case OpUint64:
		return "UINT64"
	case OpFloat:
		return "FLOAT"
	case OpDouble:
		return "DOUBLE"
	default:
		return "UNKNOWN"
	}
}

// binOpcodeFor returns the smallest BIN* opcode whose length field can hold n.
func binOpcodeFor(n int) (Opcode, bool) {
	switch {
	case n < 0:
		return OpInvalid, false
	case n <= 0xFF:
		return OpBin8, true
	case n <= 0xFFFF:
		return OpBin16, true
	case n <= 0xFFFFFF:
		return OpBin24, true
	case int64(n) <= 0xFFFFFFFF:
		return OpBin32, true
	default:
		return OpInvalid, false
	}
}
