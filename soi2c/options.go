// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package soi2c

import "time"

// TransmitFunc issues one I²C write transaction of data to the peripheral
// at addr. data is at most 1+maxChunk bytes during the request phase (a
// length-prefix byte plus up to 250 payload bytes) or exactly 2 bytes
// during the receive phase's read-ticket poll.
type TransmitFunc func(addr byte, data []byte) error

// ReceiveFunc issues one I²C read transaction, filling into completely. It
// may return ErrWouldBlock to mean no bytes are ready on the wire yet;
// Transact treats that as an idle poll and retries after the 50 ms poll
// interval rather than failing. Any other error is fatal to the transaction.
type ReceiveFunc func(addr byte, into []byte) error

// DelayFunc blocks for approximately d. SOI2C is synchronous: every
// suspension point in Transact goes through this callback or through
// Transmit/Receive, never through an internal sleep of its own.
type DelayFunc func(d time.Duration)

// GrowFunc is consulted when the receive accumulator needs more room than
// its current buffer provides. Same contract as jsonb.GrowFunc: return a
// buffer of at least the requested size with existing bytes preserved, or
// an unchanged/too-small buffer to refuse.
type GrowFunc func(buf []byte, needed int) []byte

// Options configures a Context.
type Options struct {
	Address byte
	Grow    GrowFunc
}

// Option configures a Context constructed by NewContext.
type Option func(*Options)

// WithAddress overrides the I²C peripheral address. The zero value (the
// default) resolves to 0x17, the Notecard's address, at Transact time.
func WithAddress(addr byte) Option {
	return func(o *Options) { o.Address = addr }
}

// WithGrowFunc installs a buffer-growth callback for the receive phase.
func WithGrowFunc(fn GrowFunc) Option {
	return func(o *Options) { o.Grow = fn }
}
