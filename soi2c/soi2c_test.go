// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package soi2c_test

import (
	"errors"
	"testing"
	"time"

	"code.hybscloud.com/jsonb/soi2c"
)

func noDelay(time.Duration) {}

// scriptedLink answers Transmit in full and serves Receive from a
// preloaded reply, chunked maxChunk bytes at a time, mimicking the
// read-ticket wire protocol by hand rather than through a JSONB payload.
// soi2c never looks inside the bytes it carries.
type scriptedLink struct {
	sent     [][]byte
	reply    []byte
	maxChunk int
	rxErrs   []error // consumed in order by Receive before it succeeds
}

func (s *scriptedLink) transmit(addr byte, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	s.sent = append(s.sent, cp)
	return nil
}

func (s *scriptedLink) receive(addr byte, into []byte) error {
	if len(s.rxErrs) > 0 {
		err := s.rxErrs[0]
		s.rxErrs = s.rxErrs[1:]
		return err
	}
	requestedLen := len(into) - 2
	returned := requestedLen
	if returned > len(s.reply) {
		returned = len(s.reply)
	}
	into[1] = byte(returned)
	copy(into[2:2+returned], s.reply[:returned])
	s.reply = s.reply[returned:]

	available := len(s.reply)
	if s.maxChunk > 0 && available > s.maxChunk {
		available = s.maxChunk
	}
	into[0] = byte(available)
	return nil
}

func TestTransact_ConfigOnMissingCallbacks(t *testing.T) {
	ctx := soi2c.NewContext(nil, nil, nil)
	buf := []byte("ping\n")
	_, status := ctx.Transact(&buf, 0)
	if status != soi2c.CONFIG {
		t.Fatalf("status = %v, want CONFIG", status)
	}
}

func TestTransact_TerminatorWhenNoNewline(t *testing.T) {
	link := &scriptedLink{}
	ctx := soi2c.NewContext(link.transmit, link.receive, noDelay)
	buf := []byte("no newline here")
	_, status := ctx.Transact(&buf, 0)
	if status != soi2c.TERMINATOR {
		t.Fatalf("status = %v, want TERMINATOR", status)
	}
}

func TestTransact_TxBufferOverflowWithoutShiftHeadroom(t *testing.T) {
	link := &scriptedLink{}
	ctx := soi2c.NewContext(link.transmit, link.receive, noDelay)
	buf := []byte("ping\n") // exactly reqLen bytes, zero shift headroom
	_, status := ctx.Transact(&buf, 0)
	if status != soi2c.TXBufferOverflow {
		t.Fatalf("status = %v, want TXBufferOverflow", status)
	}
}

func TestTransact_NoResponseShortCircuitsToOK(t *testing.T) {
	link := &scriptedLink{}
	ctx := soi2c.NewContext(link.transmit, link.receive, noDelay)
	buf := make([]byte, 16)
	copy(buf, "ping\n")
	n, status := ctx.Transact(&buf, soi2c.NoResponse)
	if status != soi2c.OK {
		t.Fatalf("status = %v, want OK", status)
	}
	if n != 0 {
		t.Fatalf("n = %d, want 0", n)
	}
}

func TestTransact_ChunksLongRequests(t *testing.T) {
	link := &scriptedLink{reply: []byte("ok\n")}
	ctx := soi2c.NewContext(link.transmit, link.receive, noDelay)

	payload := make([]byte, 300)
	for i := range payload {
		payload[i] = 'a'
	}
	payload = append(payload, '\n')

	buf := make([]byte, len(payload)+64)
	copy(buf, payload)

	n, status := ctx.Transact(&buf, 0)
	if status != soi2c.OK {
		t.Fatalf("status = %v, want OK", status)
	}
	if string(buf[:n]) != "ok\n" {
		t.Fatalf("reply = %q, want %q", buf[:n], "ok\n")
	}

	// A 301-byte request exceeds the 250-byte chunk cap, so it must have
	// gone out as at least two transmit calls (excluding read tickets).
	chunks := 0
	for _, s := range link.sent {
		if len(s) != 2 || s[0] != 0 {
			chunks++
		}
	}
	if chunks < 2 {
		t.Fatalf("expected the request to be split into >=2 chunks, got %d", chunks)
	}
}

func TestTransact_ReceivePollsThroughWouldBlock(t *testing.T) {
	link := &scriptedLink{
		reply:  []byte("ok\n"),
		rxErrs: []error{soi2c.ErrWouldBlock, soi2c.ErrWouldBlock},
	}
	ctx := soi2c.NewContext(link.transmit, link.receive, noDelay)
	buf := make([]byte, 64)
	copy(buf, "ping\n")

	n, status := ctx.Transact(&buf, 0)
	if status != soi2c.OK {
		t.Fatalf("status = %v, want OK", status)
	}
	if string(buf[:n]) != "ok\n" {
		t.Fatalf("reply = %q, want %q", buf[:n], "ok\n")
	}
}

func TestTransact_ReceiveErrorIsIOReceiveNotIOTransmit(t *testing.T) {
	link := &scriptedLink{
		reply:  []byte("ok\n"),
		rxErrs: []error{errors.New("bus fault")},
	}
	ctx := soi2c.NewContext(link.transmit, link.receive, noDelay)
	buf := make([]byte, 64)
	copy(buf, "ping\n")

	_, status := ctx.Transact(&buf, 0)
	if status != soi2c.IOReceive {
		t.Fatalf("status = %v, want IOReceive (not IOTransmit)", status)
	}
}

func TestTransact_BadSizeReturned(t *testing.T) {
	link := &scriptedLink{}
	ctx := soi2c.NewContext(
		link.transmit,
		func(addr byte, into []byte) error {
			// Always reports more bytes available, and claims to return one
			// byte fewer than requested (clamped at zero for the first,
			// zero-length poll).
			requestedLen := len(into) - 2
			returned := requestedLen - 1
			if returned < 0 {
				returned = 0
			}
			into[0] = 5
			into[1] = byte(returned)
			return nil
		},
		noDelay,
	)
	buf := make([]byte, 64)
	copy(buf, "ping\n")

	_, status := ctx.Transact(&buf, 0)
	if status != soi2c.IOBadSizeReturned {
		t.Fatalf("status = %v, want IOBadSizeReturned", status)
	}
}

func TestTransact_IgnoreResponseStillDetectsNewline(t *testing.T) {
	link := &scriptedLink{reply: []byte("ok\n"), maxChunk: 1}
	ctx := soi2c.NewContext(link.transmit, link.receive, noDelay)
	buf := make([]byte, 64)
	copy(buf, "ping\n")

	n, status := ctx.Transact(&buf, soi2c.IgnoreResponse)
	if status != soi2c.OK {
		t.Fatalf("status = %v, want OK", status)
	}
	if n != 0 {
		t.Fatalf("n = %d, want 0 (IgnoreResponse suppresses copying the payload)", n)
	}
}

func TestReset_SendsTwentyFiveByteNewlinePrefixedRequest(t *testing.T) {
	link := &scriptedLink{reply: []byte("ok\n")}
	ctx := soi2c.NewContext(link.transmit, link.receive, noDelay)

	_, status := ctx.Reset()
	if status != soi2c.OK {
		t.Fatalf("status = %v, want OK", status)
	}
	if len(link.sent) == 0 {
		t.Fatal("expected Reset to transmit at least once")
	}
	first := link.sent[0]
	if len(first) != 26 {
		t.Fatalf("first transmit was %d bytes, want 26 (1 length byte + 25 request bytes)", len(first))
	}
	if first[0] != 25 {
		t.Fatalf("chunk length byte = %d, want 25", first[0])
	}
	if first[1] != '\n' {
		t.Fatalf("request's first byte = %q, want '\\n'", first[1])
	}
}

func TestWithAddress_OverridesDefault(t *testing.T) {
	var seenAddr byte
	link := &scriptedLink{reply: []byte("ok\n")}
	transmit := func(addr byte, data []byte) error {
		seenAddr = addr
		return link.transmit(addr, data)
	}
	ctx := soi2c.NewContext(transmit, link.receive, noDelay, soi2c.WithAddress(0x42))
	buf := make([]byte, 64)
	copy(buf, "ping\n")
	if _, status := ctx.Transact(&buf, 0); status != soi2c.OK {
		t.Fatalf("status = %v, want OK", status)
	}
	if seenAddr != 0x42 {
		t.Fatalf("address = 0x%02x, want 0x42", seenAddr)
	}
}

func TestTransact_RXBufferOverflowWithoutGrowFunc(t *testing.T) {
	longReply := make([]byte, 200)
	for i := range longReply {
		longReply[i] = 'a'
	}
	longReply = append(longReply, '\n')
	link := &scriptedLink{reply: longReply}
	ctx := soi2c.NewContext(link.transmit, link.receive, noDelay)

	buf := make([]byte, 16) // far too small to hold the reply, no GrowFunc
	copy(buf, "ping\n")

	_, status := ctx.Transact(&buf, 0)
	if status != soi2c.RXBufferOverflow {
		t.Fatalf("status = %v, want RXBufferOverflow", status)
	}
}

func TestTransact_GrowFuncExpandsReceiveAccumulator(t *testing.T) {
	longReply := make([]byte, 200)
	for i := range longReply {
		longReply[i] = 'b'
	}
	longReply = append(longReply, '\n')
	link := &scriptedLink{reply: longReply}

	grow := func(buf []byte, needed int) []byte {
		b := make([]byte, needed*2)
		copy(b, buf)
		return b
	}
	ctx := soi2c.NewContext(link.transmit, link.receive, noDelay, soi2c.WithGrowFunc(grow))

	buf := make([]byte, 16)
	copy(buf, "ping\n")

	n, status := ctx.Transact(&buf, 0)
	if status != soi2c.OK {
		t.Fatalf("status = %v, want OK", status)
	}
	if n != len(longReply) {
		t.Fatalf("n = %d, want %d", n, len(longReply))
	}
}
