// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package soi2c implements a half-duplex, chunked request/response
// transaction engine over an I²C-like link. It ships a newline-terminated
// JSONB request and reassembles the newline-terminated reply. It never
// parses JSONB opcodes itself, only scans for the 0x0A frame terminator
// byte that every sealed jsonb frame ends with.
//
// A Context is caller-owned and single-threaded: like a jsonb.Writer, it
// holds no global state, and nothing in this package spawns a goroutine.
// Every suspension point runs through the injected TransmitFunc, ReceiveFunc,
// or DelayFunc; the package itself never sleeps.
package soi2c

import (
	"bytes"
	"errors"
	"time"
)

const (
	defaultAddress = 0x17
	maxChunk       = 250
	pollBudget     = 5000 * time.Millisecond
	pollInterval   = 50 * time.Millisecond
)

// Context drives transactions against one I²C peripheral. The zero value is
// not usable; construct with NewContext.
type Context struct {
	address  byte
	transmit TransmitFunc
	receive  ReceiveFunc
	delay    DelayFunc
	grow     GrowFunc
}

// NewContext returns a Context that drives transactions through transmit,
// receive, and delay. A nil transmit or receive is accepted here; Transact
// reports CONFIG rather than panicking, so a Context can be constructed
// before its transport is wired up.
func NewContext(transmit TransmitFunc, receive ReceiveFunc, delay DelayFunc, opts ...Option) *Context {
	o := Options{}
	for _, fn := range opts {
		fn(&o)
	}
	return &Context{
		address:  o.Address,
		transmit: transmit,
		receive:  receive,
		delay:    delay,
		grow:     o.Grow,
	}
}

func (c *Context) resolvedAddress() byte {
	if c.address == 0 {
		return defaultAddress
	}
	return c.address
}

// Transact sends the newline-terminated request found in *buf and, unless
// flags includes NoResponse, polls for a newline-terminated reply. It
// reports how many reply bytes were written to the front of *buf and a
// Status describing the outcome. The count is 0 for NoResponse, for
// IgnoreResponse, and for failures before the receive phase; a failure
// during the receive phase reports the bytes accumulated up to that point.
//
// *buf is mutated in place: the request is shifted to make headroom for
// per-chunk length prefixes during transmit, then the buffer is reused from
// offset 0 as the receive accumulator. If a GrowFunc was supplied and the
// accumulator outgrows the buffer's original capacity, *buf is reassigned
// to the grown buffer. Callers read the result from *buf after the call,
// not from a copy of the slice taken beforehand.
func (c *Context) Transact(buf *[]byte, flags Flags) (int, Status) {
	if c.transmit == nil || c.receive == nil || c.delay == nil || len(*buf) < 5 {
		return 0, CONFIG
	}
	nl := bytes.IndexByte(*buf, '\n')
	if nl < 0 {
		return 0, TERMINATOR
	}
	return c.transact(buf, nl+1, flags)
}

// Reset issues a 25-byte request whose first byte is '\n' as an
// IgnoreResponse transaction, flushing any reply the peripheral has queued
// from a prior, abandoned transaction.
func (c *Context) Reset() (int, Status) {
	if c.transmit == nil || c.receive == nil || c.delay == nil {
		return 0, CONFIG
	}
	buf := make([]byte, 26) // 25-byte request + 1 byte of shift headroom
	buf[0] = '\n'
	return c.transact(&buf, 25, IgnoreResponse)
}

func (c *Context) transact(buf *[]byte, reqLen int, flags Flags) (int, Status) {
	addr := c.resolvedAddress()

	if reqLen+1 > len(*buf) {
		return 0, TXBufferOverflow
	}
	copy((*buf)[1:1+reqLen], (*buf)[:reqLen])

	if status := c.transmitChunks(addr, *buf, reqLen); status != OK {
		return 0, status
	}
	if flags&NoResponse != 0 {
		return 0, OK
	}
	return c.receiveUntilNewline(addr, buf, flags)
}

// transmitChunks sends the reqLen bytes already shifted to buf[1:1+reqLen]
// in chunks of at most maxChunk bytes. Each chunk is prefixed, in place, by
// its own length byte at buf[0]; after a chunk is sent the remainder is
// shifted back down so buf[0] is free for the next chunk's prefix. No
// second buffer is ever allocated for this.
func (c *Context) transmitChunks(addr byte, buf []byte, reqLen int) Status {
	remaining := reqLen
	for remaining > 0 {
		chunk := remaining
		if chunk > maxChunk {
			chunk = maxChunk
		}
		buf[0] = byte(chunk)
		if err := c.transmit(addr, buf[0:1+chunk]); err != nil {
			return IOTransmit
		}
		c.delay(250 * time.Millisecond)
		remaining -= chunk
		if remaining > 0 {
			copy(buf[1:1+remaining], buf[1+chunk:1+chunk+remaining])
		}
	}
	return OK
}

// receiveUntilNewline polls the peripheral for its reply, accumulating
// bytes at the front of *buf (growing it via c.grow if configured) until a
// newline is seen and the peripheral reports nothing further available, the
// poll budget is exhausted, or an error occurs.
func (c *Context) receiveUntilNewline(addr byte, buf *[]byte, flags Flags) (int, Status) {
	used := 0
	requestedLen := 0
	seenNewline := false
	budget := pollBudget

	for {
		need := used + 2 + requestedLen
		if need > len(*buf) {
			if c.grow != nil {
				*buf = c.grow(*buf, need)
			}
			if need > len(*buf) {
				// No GrowFunc, or it refused. Clamp to whatever room is
				// left; only report overflow once room hits 0 with more
				// still expected.
				room := len(*buf) - used - 2
				if room < 0 {
					room = 0
				}
				if requestedLen > 0 && room == 0 {
					return used, RXBufferOverflow
				}
				requestedLen = room
			}
		}

		if err := c.transmit(addr, []byte{0, byte(requestedLen)}); err != nil {
			return used, IOTransmit
		}
		c.delay(time.Millisecond)

		chunk := (*buf)[used : used+2+requestedLen]
		for {
			err := c.receive(addr, chunk)
			if err == nil {
				break
			}
			if !errors.Is(err, ErrWouldBlock) {
				return used, IOReceive
			}
			if budget <= 0 {
				return used, IOTimeout
			}
			c.delay(pollInterval)
			budget -= pollInterval
		}

		available := int(chunk[0])
		returned := int(chunk[1])
		if returned != requestedLen {
			return used, IOBadSizeReturned
		}

		payload := chunk[2 : 2+returned]
		if bytes.IndexByte(payload, '\n') >= 0 {
			seenNewline = true
		}
		if flags&IgnoreResponse == 0 && returned > 0 {
			copy((*buf)[used:used+returned], payload)
			used += returned
		}

		requestedLen = available
		if requestedLen > 0 {
			continue
		}
		if seenNewline {
			return used, OK
		}
		if budget <= 0 {
			return used, IOTimeout
		}
		c.delay(pollInterval)
		budget -= pollInterval
	}
}
