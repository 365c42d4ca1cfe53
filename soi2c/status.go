// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package soi2c

// Status is the outcome of a Transact call: one of a fixed set of status
// codes covering configuration, local buffer sizing, the wire itself, and
// peripheral desync.
type Status uint8

const (
	// OK is returned by a clean transmit-only (NO_RESPONSE) call and by a
	// receive that completes on a newline before the poll budget expires.
	OK Status = 0
	// CONFIG reports a programmer error: a nil callback or a buffer too
	// small to ever hold a request (cap < 5). Not retryable.
	CONFIG Status = 1
	// TERMINATOR reports that buf contains no newline, so no request
	// length could be determined. Not retryable without fixing the call site.
	TERMINATOR Status = 2
	// TXBufferOverflow reports that the request plus one byte of shift
	// headroom does not fit in the supplied buffer.
	TXBufferOverflow Status = 3
	// RXBufferOverflow reports that the receive accumulator ran out of
	// room and GrowFunc was absent or could not provide enough.
	RXBufferOverflow Status = 4
	// IOTransmit reports that the injected TransmitFunc returned an error.
	IOTransmit Status = 5
	// IOReceive reports that the injected ReceiveFunc returned an error
	// (other than ErrWouldBlock, which is retried transparently).
	IOReceive Status = 6
	// IOTimeout reports that the 5-second receive poll budget was
	// exhausted without a newline-terminated reply. Retryable.
	IOTimeout Status = 7
	// IOBadSizeReturned reports that ReceiveFunc returned a different
	// chunk size than it was asked for, which desynchronizes the wire
	// protocol's running byte count. A Reset may recover the peripheral.
	IOBadSizeReturned Status = 8
)

func (s Status) String() string {
	switch s {
	case OK:
		return "OK"
	case CONFIG:
		return "CONFIG"
	case TERMINATOR:
		return "TERMINATOR"
	case TXBufferOverflow:
		return "TX_BUFFER_OVERFLOW"
	case RXBufferOverflow:
		return "RX_BUFFER_OVERFLOW"
	case IOTransmit:
		return "IO_TRANSMIT"
	case IOReceive:
		return "IO_RECEIVE"
	case IOTimeout:
		return "IO_TIMEOUT"
	case IOBadSizeReturned:
		return "IO_BAD_SIZE_RETURNED"
	default:
		return "UNKNOWN"
	}
}

// Flags modify a single Transact call.
type Flags uint16

const (
	// NoResponse makes Transact fire-and-forget: it transmits the request
	// and returns OK without entering the receive phase.
	NoResponse Flags = 0x0001
	// IgnoreResponse makes Transact receive and scan for the terminating
	// newline as usual, but discard the payload instead of appending it to
	// the accumulator. Used by Reset to flush a pending reply.
	IgnoreResponse Flags = 0x0002
)
