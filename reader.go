// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package jsonb

import (
	"encoding/binary"

	"code.hybscloud.com/jsonb/internal/lebytes"
)

// Reader walks a parsed JSONB payload record by record. Unlike a tree
// parser, it never builds an in-memory document: Parse only unwraps the
// frame and undoes the COBS stuffing in place. Two independent ways to read
// the result are offered:
//
//   - Enum/EnumNext is a single flat, forward-only walk over every record in
//     the stream, structural BEGIN/END tags included as ordinary records.
//     FirstInContainer tells the caller when the record just read is the
//     first member of its object/array (or the first record of the stream),
//     and Depth reports the running nesting level, so a caller that wants a
//     tree view need not count BEGIN/END tags itself.
//   - GetObjectItem(name), and the typed getters built on it, are a
//     by-name convenience that always rescans from the first member of the
//     outermost object, stopping at depth 1 (it does not look inside
//     nested objects/arrays); this is the cJSON-style "get me this field"
//     shortcut, independent of whatever Enum/EnumNext cursor state exists.
//
// There are no error returns anywhere on Reader. Record-level failures are
// reported as false/zero-value results; Err distinguishes "the cursor
// reached the natural end of the stream" (EnumNext false, Err() false) from
// "the stream is malformed" (false, Err() true). A Reader is not safe for
// concurrent use.
type Reader struct {
	buf     []byte
	errFlag bool

	pos              int
	curOp            Opcode
	curVal           []byte
	curDepth         int
	lastOp           Opcode
	firstInContainer bool
	depth            int
}

// NewReader returns a Reader with no payload loaded. Call Parse before any
// other method.
func NewReader() *Reader { return &Reader{} }

// Parse drops leading control bytes (< 0x20) from frame and collapses a
// trailing run of them to one byte (see trimControl), then validates and
// strips the "{:" header and ":}\n" trailer, then COBS-decodes
// the body in place, and positions the cursor at the first top-level record
// (equivalent to calling Enum() immediately after). It reports whether frame
// was a well-formed JSONB frame; it does not validate that the decoded
// payload is well-formed JSONB (a truncated or corrupt payload is instead
// caught lazily, record by record, as EnumNext/GetObjectItem walk it).
func (r *Reader) Parse(frame []byte) bool {
	r.errFlag = false
	r.buf = nil

	frame = trimControl(frame)
	if len(frame) < frameSignatureSz {
		return false
	}
	if string(frame[:len(frameHeader)]) != frameHeader {
		return false
	}
	body := frame[len(frameHeader):]
	end := len(body)
	if end == 0 || body[end-1] != frameTerminator {
		return false
	}
	end--
	if end < len(frameTrailer) || string(body[end-len(frameTrailer):end]) != frameTrailer {
		return false
	}

	encoded := body[:end-len(frameTrailer)]
	n := Decode(encoded, encoded, frameTerminator)
	r.buf = encoded[:n]
	r.Enum()
	return true
}

// trimControl drops leading control bytes (< 0x20) entirely and collapses a
// trailing run of them to at most one, the stray bytes a frame picks up when
// frames are concatenated back to back on the wire. Collapsing rather than
// stripping the trailing run leaves the frame's own mandatory terminator in
// place for the header/trailer checks that follow.
func trimControl(b []byte) []byte {
	for len(b) > 0 && b[0] < 0x20 {
		b = b[1:]
	}
	end := len(b)
	for end > 0 && b[end-1] < 0x20 {
		end--
	}
	if end < len(b) {
		end++
	}
	return b[:end]
}

// Enum resets the enumeration cursor to the first record in the payload and
// clears the last-opcode sentinel, restarting EnumNext from the beginning.
// It also clears a latched malformed-stream error: since the stream is a
// flat byte sequence, re-walking from the start after a failed record will
// rediscover the same failure at the same offset if it is real.
func (r *Reader) Enum() {
	r.pos = 0
	r.lastOp = OpInvalid
	r.depth = 0
	r.errFlag = false
}

// EnumNext decodes the next record in the flat opcode stream into the
// current-record state (read via Opcode/GetXxx-style accessors below) and
// advances the cursor past it. It reports false at the clean end of the
// buffer (Err() stays false) and on a malformed record (Err() becomes
// true). FirstInContainer reports whether this record is the first child
// of a composite, i.e. the previous record was BEGIN_OBJECT, BEGIN_ARRAY,
// or Enum's initial sentinel.
func (r *Reader) EnumNext() bool {
	if r.errFlag || r.pos >= len(r.buf) {
		return false
	}
	op, val, next, ok := r.decodeAt(r.pos)
	if !ok {
		r.errFlag = true
		return false
	}
	if op == OpEndObject || op == OpEndArray {
		r.depth--
	}
	r.curDepth = r.depth
	if op == OpBeginObject || op == OpBeginArray {
		r.depth++
	}
	r.firstInContainer = r.lastOp == OpInvalid || r.lastOp == OpBeginObject || r.lastOp == OpBeginArray
	r.curOp = op
	r.curVal = val
	r.lastOp = op
	r.pos = next
	return true
}

// FirstInContainer reports whether the record last returned by EnumNext is
// the first member of its enclosing object/array.
func (r *Reader) FirstInContainer() bool { return r.firstInContainer }

// Opcode reports the current record's opcode. Meaningful only after a
// successful EnumNext or GetObjectItem call.
func (r *Reader) Opcode() Opcode { return r.curOp }

// Err reports whether the reader has latched a malformed-stream error. Once
// set, every further EnumNext call returns false until Enum is called again.
func (r *Reader) Err() bool { return r.errFlag }

// Depth reports the nesting depth of the record last returned by EnumNext:
// 0 for the outermost object/array's own BEGIN/END tags, 1 for their direct
// children, and so on. It exists for cmd/jsonbcat's pretty-printer to indent
// nested structures; the flat EnumNext walk already carries this
// information implicitly via FirstInContainer, Depth just keeps a running
// count instead of making every caller reconstruct it.
func (r *Reader) Depth() int { return r.curDepth }

// GetObjectItem scans the members of the outermost object for one named
// name, considering only records at depth 1 (immediate children of the
// root object) and skipping over, rather than descending into, any nested
// object/array value along the way. On a match it loads that value into the
// current-record state read by Opcode and the CurrentXxx accessors, without
// moving the EnumNext cursor; it reports
// false if name is absent before the outermost END_OBJECT, or if the
// stream is malformed (Err() distinguishes the two).
func (r *Reader) GetObjectItem(name string) bool {
	if r.errFlag || len(r.buf) == 0 || Opcode(r.buf[0]) != OpBeginObject {
		r.errFlag = true
		return false
	}
	pos := 1
	for {
		if pos >= len(r.buf) {
			r.errFlag = true
			return false
		}
		op := Opcode(r.buf[pos])
		if op == OpEndObject {
			return false
		}
		if op != OpItem {
			r.errFlag = true
			return false
		}
		_, key, valPos, ok := r.decodeAt(pos)
		if !ok {
			r.errFlag = true
			return false
		}
		if string(key) == name {
			return r.readAt(valPos)
		}
		next, ok := r.skipValue(valPos)
		if !ok {
			r.errFlag = true
			return false
		}
		pos = next
	}
}

// readAt decodes the record at pos into the current-record state without
// moving the walking cursor (r.pos), used by GetObjectItem so a by-name
// lookup never disturbs an in-progress EnumNext walk.
func (r *Reader) readAt(pos int) bool {
	op, val, _, ok := r.decodeAt(pos)
	if !ok {
		r.errFlag = true
		return false
	}
	r.curOp = op
	r.curVal = val
	return true
}

// decodeAt parses the record at byte offset pos, returning its opcode, its
// payload slice (nil for the structural/null/bool opcodes, which carry no
// payload), and the offset immediately following the record's own bytes.
// For BEGIN_OBJECT/BEGIN_ARRAY, next points at the first nested member (or
// the matching END tag if the composite is empty). It does not skip the
// composite's contents; skipValue does that.
func (r *Reader) decodeAt(pos int) (op Opcode, val []byte, next int, ok bool) {
	if pos < 0 || pos >= len(r.buf) {
		return 0, nil, 0, false
	}
	op = Opcode(r.buf[pos])
	p := pos + 1
	switch op {
	case OpBeginObject, OpEndObject, OpBeginArray, OpEndArray, OpNull, OpTrue, OpFalse:
		return op, nil, p, true
	case OpItem, OpString:
		end := p
		for end < len(r.buf) && r.buf[end] != 0 {
			end++
		}
		if end >= len(r.buf) {
			return 0, nil, 0, false
		}
		return op, r.buf[p:end], end + 1, true
	case OpBin8, OpBin16, OpBin24, OpBin32:
		width, _ := op.binLenFieldWidth()
		if p+width > len(r.buf) {
			return 0, nil, 0, false
		}
		n := int(getUintLE(r.buf[p : p+width]))
		p += width
		if n < 0 || p+n > len(r.buf) {
			return 0, nil, 0, false
		}
		return op, r.buf[p : p+n], p + n, true
	default:
		width, known := op.fixedWidth()
		if !known || p+width > len(r.buf) {
			return 0, nil, 0, false
		}
		return op, r.buf[p : p+width], p + width, true
	}
}

// skipValue returns the offset just past the complete value starting at
// pos, descending into nested composites to find the matching END tag. A
// BEGIN_OBJECT/BEGIN_ARRAY is not a fixed-width record; its extent is
// whatever it takes to reach balance, so skipping it requires walking its
// children, unlike every other opcode.
func (r *Reader) skipValue(pos int) (int, bool) {
	op, _, next, ok := r.decodeAt(pos)
	if !ok {
		return 0, false
	}
	if op != OpBeginObject && op != OpBeginArray {
		return next, true
	}
	depth := 1
	for depth > 0 {
		childOp, _, childNext, childOk := r.decodeAt(next)
		if !childOk {
			return 0, false
		}
		switch childOp {
		case OpBeginObject, OpBeginArray:
			depth++
		case OpEndObject, OpEndArray:
			depth--
		}
		next = childNext
	}
	return next, true
}

// GetItemName returns the current record's key if it is an ITEM, else "".
// Most callers reach a value through GetObjectItem instead; this is for
// code walking an object manually with Enum/EnumNext, such as
// cmd/jsonbcat's printer.
func (r *Reader) GetItemName() string {
	if r.errFlag || r.curOp != OpItem {
		return ""
	}
	return string(r.curVal)
}

// CurrentString returns the current record's value as a string if it is a
// STRING, else "". Unlike GetString(name) it does not perform a lookup; it
// reads whatever EnumNext or GetObjectItem last positioned the cursor on.
func (r *Reader) CurrentString() string {
	if r.errFlag || r.curOp != OpString {
		return ""
	}
	return string(r.curVal)
}

// CurrentBytes returns the current record's raw bytes if it is a
// BIN8/16/24/32, else nil.
func (r *Reader) CurrentBytes() []byte {
	switch r.curOp {
	case OpBin8, OpBin16, OpBin24, OpBin32:
		return r.curVal
	default:
		return nil
	}
}

// CurrentInt returns the current record's value coerced to int64 across
// every numeric opcode, or 0 if the current record is not numeric.
func (r *Reader) CurrentInt() int64 {
	v, _ := r.asInt64()
	return v
}

// CurrentUint returns the current record's value coerced to uint64 across
// every numeric opcode, or 0 if the current record is not numeric.
func (r *Reader) CurrentUint() uint64 {
	v, _ := r.asInt64()
	return uint64(v)
}

// CurrentFloat returns the current record's value coerced to float64 across
// every numeric opcode, or 0 if the current record is not numeric.
func (r *Reader) CurrentFloat() float64 {
	v, _ := r.asFloat64()
	return v
}

func getUintLE(b []byte) uint64 {
	switch len(b) {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(b))
	case 3:
		return uint64(lebytes.Uint24(b))
	case 4:
		return uint64(binary.LittleEndian.Uint32(b))
	default:
		return 0
	}
}
