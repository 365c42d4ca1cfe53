// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package jsonb

import (
	"encoding/binary"
	"math"
)

// Typed getters look a field up by name at the top level (via
// GetObjectItem) and coerce whatever numeric opcode is stored there into
// the requested width/signedness, rather than requiring an exact opcode
// match. A missing key, or a key present with a non-numeric type, yields
// the type's zero value.

// GetString returns the string at name, or "" if name is missing or not a
// STRING.
func (r *Reader) GetString(name string) string {
	if !r.GetObjectItem(name) || r.curOp != OpString {
		return ""
	}
	return string(r.curVal)
}

// GetErr is an alias for GetString("err"), the conventional field SOI2C
// peripherals use to report an application-level error string alongside an
// otherwise successful transaction.
func (r *Reader) GetErr() string { return r.GetString("err") }

// GetBin returns the raw bytes at name, or nil if name is missing or not a
// BIN8/16/24/32. The returned slice aliases the reader's internal buffer
// and is only valid until the next Parse call.
func (r *Reader) GetBin(name string) []byte {
	if !r.GetObjectItem(name) {
		return nil
	}
	switch r.curOp {
	case OpBin8, OpBin16, OpBin24, OpBin32:
		return r.curVal
	default:
		return nil
	}
}

// GetBool returns true iff name is present and its stored type is TRUE;
// FALSE, NULL, any other type, or a missing key all yield false.
func (r *Reader) GetBool(name string) bool {
	return r.GetObjectItem(name) && r.curOp == OpTrue
}

// GetNull reports whether name is present and its stored type is NULL.
func (r *Reader) GetNull(name string) bool {
	return r.GetObjectItem(name) && r.curOp == OpNull
}

// asInt64 coerces the current record's value to int64 across every numeric
// opcode, via the largest-precision type for the opcode then cast down.
// Non-numeric opcodes and missing fields report false.
func (r *Reader) asInt64() (int64, bool) {
	switch r.curOp {
	case OpInt8:
		return int64(int8(r.curVal[0])), true
	case OpInt16:
		return int64(int16(binary.LittleEndian.Uint16(r.curVal))), true
	case OpInt32:
		return int64(int32(binary.LittleEndian.Uint32(r.curVal))), true
	case OpInt64:
		return int64(binary.LittleEndian.Uint64(r.curVal)), true
	case OpUint8:
		return int64(r.curVal[0]), true
	case OpUint16:
		return int64(binary.LittleEndian.Uint16(r.curVal)), true
	case OpUint32:
		return int64(binary.LittleEndian.Uint32(r.curVal)), true
	case OpUint64:
		return int64(binary.LittleEndian.Uint64(r.curVal)), true
	case OpFloat:
		return int64(math.Float32frombits(binary.LittleEndian.Uint32(r.curVal))), true
	case OpDouble:
		return int64(math.Float64frombits(binary.LittleEndian.Uint64(r.curVal))), true
	default:
		return 0, false
	}
}

// asFloat64 coerces the current record's value to float64 across every
// numeric opcode, the floating-point counterpart of asInt64.
func (r *Reader) asFloat64() (float64, bool) {
	switch r.curOp {
	case OpInt8:
		return float64(int8(r.curVal[0])), true
	case OpInt16:
		return float64(int16(binary.LittleEndian.Uint16(r.curVal))), true
	case OpInt32:
		return float64(int32(binary.LittleEndian.Uint32(r.curVal))), true
	case OpInt64:
		return float64(int64(binary.LittleEndian.Uint64(r.curVal))), true
	case OpUint8:
		return float64(r.curVal[0]), true
	case OpUint16:
		return float64(binary.LittleEndian.Uint16(r.curVal)), true
	case OpUint32:
		return float64(binary.LittleEndian.Uint32(r.curVal)), true
	case OpUint64:
		return float64(binary.LittleEndian.Uint64(r.curVal)), true
	case OpFloat:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(r.curVal))), true
	case OpDouble:
		return math.Float64frombits(binary.LittleEndian.Uint64(r.curVal)), true
	default:
		return 0, false
	}
}

// GetInt8 returns name's value coerced to int8, or 0 if missing or
// non-numeric.
func (r *Reader) GetInt8(name string) int8 {
	if !r.GetObjectItem(name) {
		return 0
	}
	v, _ := r.asInt64()
	return int8(v)
}

// GetInt16 returns name's value coerced to int16, or 0 if missing or
// non-numeric.
func (r *Reader) GetInt16(name string) int16 {
	if !r.GetObjectItem(name) {
		return 0
	}
	v, _ := r.asInt64()
	return int16(v)
}

// GetInt32 returns name's value coerced to int32, or 0 if missing or
// non-numeric.
func (r *Reader) GetInt32(name string) int32 {
	if !r.GetObjectItem(name) {
		return 0
	}
	v, _ := r.asInt64()
	return int32(v)
}

// GetInt64 returns name's value coerced to int64, or 0 if missing or
// non-numeric. Accepts the full 64-bit range.
func (r *Reader) GetInt64(name string) int64 {
	if !r.GetObjectItem(name) {
		return 0
	}
	v, _ := r.asInt64()
	return v
}

// GetUint8 returns name's value coerced to uint8, or 0 if missing or
// non-numeric.
func (r *Reader) GetUint8(name string) uint8 {
	if !r.GetObjectItem(name) {
		return 0
	}
	v, _ := r.asInt64()
	return uint8(v)
}

// GetUint16 returns name's value coerced to uint16, or 0 if missing or
// non-numeric.
func (r *Reader) GetUint16(name string) uint16 {
	if !r.GetObjectItem(name) {
		return 0
	}
	v, _ := r.asInt64()
	return uint16(v)
}

// GetUint32 returns name's value coerced to uint32, or 0 if missing or
// non-numeric.
func (r *Reader) GetUint32(name string) uint32 {
	if !r.GetObjectItem(name) {
		return 0
	}
	v, _ := r.asInt64()
	return uint32(v)
}

// GetUint64 returns name's value coerced to uint64, or 0 if missing or
// non-numeric. Accepts the full 64-bit range.
func (r *Reader) GetUint64(name string) uint64 {
	if !r.GetObjectItem(name) {
		return 0
	}
	v, _ := r.asInt64()
	return uint64(v)
}

// GetFloat returns name's value coerced to float32, or 0 if missing or
// non-numeric.
func (r *Reader) GetFloat(name string) float32 {
	if !r.GetObjectItem(name) {
		return 0
	}
	v, _ := r.asFloat64()
	return float32(v)
}

// GetDouble returns name's value coerced to float64, or 0 if missing or
// non-numeric.
func (r *Reader) GetDouble(name string) float64 {
	if !r.GetObjectItem(name) {
		return 0
	}
	v, _ := r.asFloat64()
	return v
}
