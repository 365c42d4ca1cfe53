// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package lebytes provides little-endian integer helpers for widths
// encoding/binary does not ship, namely the 3-byte (24-bit) length field
// used by the JSONB BIN24 opcode. JSONB is defined for little-endian IEEE
// hosts only (no byte-order selection), so unlike a general-purpose codec
// this package hardcodes the order rather than taking one as a parameter.
package lebytes
