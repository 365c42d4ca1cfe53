// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package jsonb

import (
	"encoding/binary"
	"math"

	"code.hybscloud.com/jsonb/internal/lebytes"
)

const (
	frameHeader      = "{:"
	frameTrailer     = ":}"
	frameTerminator  = '\n'
	frameSignatureSz = len(frameHeader) + len(frameTrailer) + 1
)

// Writer builds a JSONB payload into a caller-supplied buffer, then seals it
// into a transport-ready frame in place. A Writer is single-use: once sealed
// by FormatEnd it must not be reused for further appends. It is not safe for
// concurrent use.
//
// Append methods (AddNull, AddString, AddInt32, ...) never return an error.
// A failed append, out of room with no GrowFunc or a GrowFunc that refuses,
// latches the overrun flag; every subsequent append and FormatEnd become
// silent no-ops, so a caller builds a whole record and checks once at the end.
type Writer struct {
	buf     []byte
	used    int
	overrun bool
	errFlag bool
	grow    GrowFunc
}

// NewWriter returns a Writer that appends into buf. len(buf) is the starting
// capacity; buf's existing contents (if any) are ignored and overwritten.
// A nil buf is accepted only if opts supplies a GrowFunc, otherwise the
// Writer starts with its error flag already latched.
func NewWriter(buf []byte, opts ...Option) *Writer {
	o := defaultOptions
	for _, fn := range opts {
		fn(&o)
	}
	w := &Writer{buf: buf, grow: o.GrowFunc}
	if buf == nil && w.grow == nil {
		w.errFlag = true
	}
	return w
}

// Bytes returns the bytes appended so far. Before FormatEnd this is the raw
// payload; after a successful FormatEnd it is the sealed, transport-ready
// frame.
func (w *Writer) Bytes() []byte { return w.buf[:w.used] }

// Len returns the number of bytes appended so far.
func (w *Writer) Len() int { return w.used }

// Cap returns the writer's current backing capacity.
func (w *Writer) Cap() int { return len(w.buf) }

// Overrun reports whether an append has been dropped for lack of room.
func (w *Writer) Overrun() bool { return w.overrun }

// appendRaw writes op (unless op is OpInvalid, which writes no tag byte;
// used internally to append trailing payload bytes of a multi-call record,
// e.g. the NUL after a string or the data after a BIN length field) followed
// by payload. It grows the buffer via w.grow if necessary and re-checks
// capacity after the callback returns instead of trusting its return value.
func (w *Writer) appendRaw(op Opcode, payload []byte) {
	if w.overrun || w.errFlag {
		return
	}
	need := w.used + len(payload)
	if op != OpInvalid {
		need++
	}
	if need > len(w.buf) {
		if w.grow != nil {
			w.buf = w.grow(w.buf, need)
		}
		if need > len(w.buf) {
			w.overrun = true
			return
		}
	}
	if op != OpInvalid {
		w.buf[w.used] = byte(op)
		w.used++
	}
	w.used += copy(w.buf[w.used:need], payload)
}

func (w *Writer) AddObjectBegin() { w.appendRaw(OpBeginObject, nil) }
func (w *Writer) AddObjectEnd()   { w.appendRaw(OpEndObject, nil) }
func (w *Writer) AddArrayBegin()  { w.appendRaw(OpBeginArray, nil) }
func (w *Writer) AddArrayEnd()    { w.appendRaw(OpEndArray, nil) }

func (w *Writer) AddNull()  { w.appendRaw(OpNull, nil) }
func (w *Writer) AddTrue()  { w.appendRaw(OpTrue, nil) }
func (w *Writer) AddFalse() { w.appendRaw(OpFalse, nil) }

// AddBool appends TRUE or FALSE depending on v.
func (w *Writer) AddBool(v bool) {
	if v {
		w.AddTrue()
	} else {
		w.AddFalse()
	}
}

// AddString appends s as a NUL-terminated STRING record. s must not itself
// contain a NUL byte; this is a caller contract the Writer does not enforce.
func (w *Writer) AddString(s string) {
	w.appendRaw(OpString, []byte(s))
	w.appendRaw(OpInvalid, []byte{0})
}

// AddStringLen appends the first n bytes of s as a NUL-terminated STRING
// record, without checking whether s contains NULs before index n. An n
// outside [0, len(s)] appends nothing and latches the error flag. It exists for callers copying out of a non-NUL-terminated
// source buffer of known length rather than a Go string with a trusted len.
func (w *Writer) AddStringLen(s string, n int) {
	if n < 0 || n > len(s) {
		w.errFlag = true
		return
	}
	w.appendRaw(OpString, []byte(s[:n]))
	w.appendRaw(OpInvalid, []byte{0})
}

// AddBin appends b as a length-prefixed BIN record, choosing the narrowest
// BIN8/16/24/32 opcode that can hold len(b).
func (w *Writer) AddBin(b []byte) {
	op, ok := binOpcodeFor(len(b))
	if !ok {
		w.errFlag = true
		return
	}
	width, _ := op.binLenFieldWidth()
	var lenBuf [4]byte
	putUintLE(lenBuf[:width], uint64(len(b)))
	w.appendRaw(op, lenBuf[:width])
	w.appendRaw(OpInvalid, b)
}

func putUintLE(b []byte, v uint64) {
	switch len(b) {
	case 1:
		b[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(b, uint16(v))
	case 3:
		lebytes.PutUint24(b, uint32(v))
	case 4:
		binary.LittleEndian.PutUint32(b, uint32(v))
	}
}

// AddInt8 appends a signed 8-bit integer record.
func (w *Writer) AddInt8(v int8) { w.appendRaw(OpInt8, []byte{byte(v)}) }

// AddInt16 appends a signed 16-bit integer record, little-endian.
func (w *Writer) AddInt16(v int16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], uint16(v))
	w.appendRaw(OpInt16, b[:])
}

// AddInt32 appends a signed 32-bit integer record, little-endian.
func (w *Writer) AddInt32(v int32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(v))
	w.appendRaw(OpInt32, b[:])
}

// AddInt64 appends a signed 64-bit integer record, little-endian. Unlike the
// narrower source this package descends from, this accepts the full 64-bit
// range: the record's fixed width is already 8 bytes on the wire (the low
// nibble of OpInt64 says so), only the old API truncated the value before
// ever reaching the buffer.
func (w *Writer) AddInt64(v int64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(v))
	w.appendRaw(OpInt64, b[:])
}

// AddUint8 appends an unsigned 8-bit integer record.
func (w *Writer) AddUint8(v uint8) { w.appendRaw(OpUint8, []byte{v}) }

// AddUint16 appends an unsigned 16-bit integer record, little-endian.
func (w *Writer) AddUint16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.appendRaw(OpUint16, b[:])
}

// AddUint32 appends an unsigned 32-bit integer record, little-endian.
func (w *Writer) AddUint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.appendRaw(OpUint32, b[:])
}

// AddUint64 appends an unsigned 64-bit integer record, little-endian. See
// AddInt64's comment: the full 64-bit range is accepted, not just the low 32.
func (w *Writer) AddUint64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.appendRaw(OpUint64, b[:])
}

// AddFloat appends a 32-bit IEEE-754 float record, little-endian.
func (w *Writer) AddFloat(v float32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
	w.appendRaw(OpFloat, b[:])
}

// AddDouble appends a 64-bit IEEE-754 float record, little-endian.
func (w *Writer) AddDouble(v float64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
	w.appendRaw(OpDouble, b[:])
}

// AddItemToObject appends an object-member key. The value record for this
// member is whatever the next Add call appends; AddItemToObject only ever
// writes the key half of the pair. Must be called between AddObjectBegin and
// the matching AddObjectEnd.
func (w *Writer) AddItemToObject(name string) {
	w.appendRaw(OpItem, []byte(name))
	w.appendRaw(OpInvalid, []byte{0})
}

// AddStringToObject is AddItemToObject(name) followed by AddString(v).
func (w *Writer) AddStringToObject(name, v string) { w.AddItemToObject(name); w.AddString(v) }

// AddBinToObject is AddItemToObject(name) followed by AddBin(v).
func (w *Writer) AddBinToObject(name string, v []byte) { w.AddItemToObject(name); w.AddBin(v) }

// AddBoolToObject is AddItemToObject(name) followed by AddBool(v).
func (w *Writer) AddBoolToObject(name string, v bool) { w.AddItemToObject(name); w.AddBool(v) }

// AddNullToObject is AddItemToObject(name) followed by AddNull().
func (w *Writer) AddNullToObject(name string) { w.AddItemToObject(name); w.AddNull() }

// AddTrueToObject is AddItemToObject(name) followed by AddTrue().
func (w *Writer) AddTrueToObject(name string) { w.AddItemToObject(name); w.AddTrue() }

// AddFalseToObject is AddItemToObject(name) followed by AddFalse().
func (w *Writer) AddFalseToObject(name string) { w.AddItemToObject(name); w.AddFalse() }

// AddInt8ToObject is AddItemToObject(name) followed by AddInt8(v).
func (w *Writer) AddInt8ToObject(name string, v int8) { w.AddItemToObject(name); w.AddInt8(v) }

// AddInt16ToObject is AddItemToObject(name) followed by AddInt16(v).
func (w *Writer) AddInt16ToObject(name string, v int16) { w.AddItemToObject(name); w.AddInt16(v) }

// AddInt32ToObject is AddItemToObject(name) followed by AddInt32(v).
func (w *Writer) AddInt32ToObject(name string, v int32) { w.AddItemToObject(name); w.AddInt32(v) }

// AddInt64ToObject is AddItemToObject(name) followed by AddInt64(v).
func (w *Writer) AddInt64ToObject(name string, v int64) { w.AddItemToObject(name); w.AddInt64(v) }

// AddUint8ToObject is AddItemToObject(name) followed by AddUint8(v).
func (w *Writer) AddUint8ToObject(name string, v uint8) { w.AddItemToObject(name); w.AddUint8(v) }

// AddUint16ToObject is AddItemToObject(name) followed by AddUint16(v).
func (w *Writer) AddUint16ToObject(name string, v uint16) { w.AddItemToObject(name); w.AddUint16(v) }

// AddUint32ToObject is AddItemToObject(name) followed by AddUint32(v).
func (w *Writer) AddUint32ToObject(name string, v uint32) { w.AddItemToObject(name); w.AddUint32(v) }

// AddUint64ToObject is AddItemToObject(name) followed by AddUint64(v).
func (w *Writer) AddUint64ToObject(name string, v uint64) { w.AddItemToObject(name); w.AddUint64(v) }

// AddFloatToObject is AddItemToObject(name) followed by AddFloat(v).
func (w *Writer) AddFloatToObject(name string, v float32) { w.AddItemToObject(name); w.AddFloat(v) }

// AddDoubleToObject is AddItemToObject(name) followed by AddDouble(v).
func (w *Writer) AddDoubleToObject(name string, v float64) { w.AddItemToObject(name); w.AddDouble(v) }

// AddArrayToObject is AddItemToObject(name) followed by AddArrayBegin(). The
// caller still owes the matching AddArrayEnd.
func (w *Writer) AddArrayToObject(name string) { w.AddItemToObject(name); w.AddArrayBegin() }

// AddObjectToObject is AddItemToObject(name) followed by AddObjectBegin().
// The caller still owes the matching AddObjectEnd.
func (w *Writer) AddObjectToObject(name string) { w.AddItemToObject(name); w.AddObjectBegin() }

// FormatEnd seals the appended payload into a transport-ready frame:
// "{:" + COBS(payload, forbidden='\n') + ":}" + "\n", written in place over
// the same buffer. It reports whether sealing succeeded; false means either
// an earlier append had already latched overrun/error, or the buffer has no
// room left for the frame signature and worst-case COBS overhead.
//
// In place: the raw payload currently occupies buf[0:used]. FormatEnd
// computes headroom, the worst-case number of extra bytes COBS encoding
// could add to a payload this buffer could ever hold, then shifts the
// payload up by headroom+len(frameHeader) bytes and COBS-encodes it back
// down into the space that shift just freed. Because COBS is encoded
// strictly left to right and its output position never outruns its input
// position by more than the worst-case overhead, encoding into a region
// that starts headroom bytes behind the shifted payload can never read a
// byte the encoder has not already consumed. No second buffer is ever
// allocated.
func (w *Writer) FormatEnd() bool {
	if w.overrun || w.errFlag {
		return false
	}
	capacity := len(w.buf)
	budget := capacity - frameSignatureSz
	headroom := budget - GuaranteedFit(budget)
	if w.used+headroom > budget {
		return false
	}

	shiftBy := headroom + len(frameHeader)
	copy(w.buf[shiftBy:shiftBy+w.used], w.buf[:w.used])

	copy(w.buf[0:len(frameHeader)], frameHeader)
	encLen := Encode(w.buf[len(frameHeader):], w.buf[shiftBy:shiftBy+w.used], frameTerminator)

	trailerAt := len(frameHeader) + encLen
	copy(w.buf[trailerAt:trailerAt+len(frameTrailer)], frameTrailer)
	termAt := trailerAt + len(frameTrailer)
	w.buf[termAt] = frameTerminator
	w.used = termAt + 1
	return true
}
