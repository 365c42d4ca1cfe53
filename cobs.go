// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package jsonb

// Package-level COBS (Consistent Overhead Byte Stuffing) codec.
//
// Stuffing rewrites src so that no output byte equals forbidden. The classic
// algorithm is defined against a forbidden byte of 0x00; to support an
// arbitrary forbidden byte, every output byte (length codes and copied data
// alike) is XORed with forbidden, which maps the usual 0x00 sentinel onto
// whatever byte was asked to be excluded. JSONB always calls this with
// forbidden = '\n' so a sealed frame is safe to terminate with a bare
// newline, but the codec itself is oblivious to that convention.
//
// Encoded overhead is at most one length-code byte per up to 254 data bytes,
// plus one final length-code byte.

const cobsMaxBlock = 0xFF // a length code of 0xFF means "254 data bytes, no terminating zero"

// EncodedLength returns len(Encode(src, 0)) without allocating the output.
// It is used to budget frame headroom before committing to an encode.
func EncodedLength(src []byte) int {
	if len(src) == 0 {
		return 1
	}
	n := 1 // the code byte that will precede the first block
	run := 0
	for _, b := range src {
		if b == 0 {
			n++
			run = 0
			continue
		}
		run++
		n++
		if run == cobsMaxBlock-1 {
			n++
			run = 0
		}
	}
	return n
}

// GuaranteedFit returns the largest raw payload size that is guaranteed to
// fit in cap bytes after COBS encoding: worst case is one length-code byte
// per 254 data bytes, plus one final length-code byte. Clamped at 0.
func GuaranteedFit(capBytes int) int {
	if capBytes <= 0 {
		return 0
	}
	overhead := 1 + capBytes/254 + 1
	fit := capBytes - overhead
	if fit < 0 {
		return 0
	}
	return fit
}

// Encode COBS-stuffs src so the result contains no byte equal to forbidden.
// dst must have room for EncodedLength(src) bytes; Encode does not allocate.
// Unlike Decode, Encode cannot run in place: it writes each length-code slot
// before reading the bytes that slot covers. dst may overlap src only when dst
// starts at least the worst-case overhead bytes before src, as FormatEnd
// arranges.
func Encode(dst, src []byte, forbidden byte) int {
	if len(src) == 0 {
		dst[0] = 0x01 ^ forbidden
		return 1
	}

	di := 0         // next write index in dst
	codeAt := 0     // index in dst of the length code currently being built
	dst[codeAt] = 0 // placeholder, fixed up by flush()
	di++
	code := byte(1)

	flush := func() {
		dst[codeAt] = code ^ forbidden
	}

	for _, b := range src {
		if b == 0 {
			flush()
			codeAt = di
			dst[codeAt] = 0
			di++
			code = 1
			continue
		}
		dst[di] = b ^ forbidden
		di++
		code++
		if code == cobsMaxBlock {
			flush()
			codeAt = di
			dst[codeAt] = 0
			di++
			code = 1
		}
	}
	flush()

	return di
}

// Decode reverses Encode. It may run in place (dst == src) because the
// decoded length never exceeds the encoded length. Decode does not validate
// that src was well-formed COBS output; malformed input produces a short or
// garbled decode rather than an error, caught downstream by Reader's own
// record validation.
func Decode(dst, src []byte, forbidden byte) int {
	si := 0
	di := 0
	for si < len(src) {
		code := src[si] ^ forbidden
		si++
		if code == 0 {
			break
		}
		n := int(code) - 1
		if n > len(src)-si {
			n = len(src) - si
		}
		for i := 0; i < n; i++ {
			dst[di] = src[si+i] ^ forbidden
			di++
		}
		si += n
		if code != cobsMaxBlock && si < len(src) {
			dst[di] = 0
			di++
		}
	}
	return di
}
