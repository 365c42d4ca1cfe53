// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package jsonb_test

import (
	"testing"

	jb "code.hybscloud.com/jsonb"
)

func sealedDoc(t *testing.T, build func(w *jb.Writer)) []byte {
	t.Helper()
	buf := make([]byte, 512)
	w := jb.NewWriter(buf)
	build(w)
	if !w.FormatEnd() {
		t.Fatalf("FormatEnd failed, overrun=%v", w.Overrun())
	}
	out := make([]byte, w.Len())
	copy(out, w.Bytes())
	return out
}

func TestReader_Parse_RejectsMalformedFrames(t *testing.T) {
	cases := [][]byte{
		nil,
		[]byte("too short"),
		[]byte("{:garbage without trailer\n"),
		[]byte("no header at all:}\n"),
		[]byte("{:missing trailing newline:}"),
	}
	for i, c := range cases {
		r := jb.NewReader()
		if r.Parse(c) {
			t.Fatalf("case %d: Parse(%q) = true, want false", i, c)
		}
	}
}

func TestReader_Parse_TrimsLeadingAndTrailingControlBytes(t *testing.T) {
	frame := sealedDoc(t, func(w *jb.Writer) {
		w.AddObjectBegin()
		w.AddStringToObject("k", "v")
		w.AddObjectEnd()
	})
	padded := append([]byte{0x0A, 0x00}, frame...)
	padded = append(padded, 0x0A)

	r := jb.NewReader()
	if !r.Parse(padded) {
		t.Fatal("Parse on a frame padded with stray leading/trailing control bytes = false, want true")
	}
	if got := r.GetString("k"); got != "v" {
		t.Fatalf("GetString(k) = %q, want %q", got, "v")
	}
}

func TestReader_EnumNext_FlatWalkWithFirstInContainer(t *testing.T) {
	frame := sealedDoc(t, func(w *jb.Writer) {
		w.AddObjectBegin()
		w.AddItemToObject("a")
		w.AddInt32(1)
		w.AddArrayToObject("list")
		w.AddString("x")
		w.AddString("y")
		w.AddArrayEnd()
		w.AddObjectEnd()
	})

	r := jb.NewReader()
	if !r.Parse(frame) {
		t.Fatal("parse failed")
	}

	type step struct {
		op    jb.Opcode
		first bool
		depth int
	}
	want := []step{
		{jb.OpBeginObject, true, 0},
		{jb.OpItem, true, 1},
		{jb.OpInt32, false, 1},
		{jb.OpItem, false, 1},
		{jb.OpBeginArray, false, 1},
		{jb.OpString, true, 2},
		{jb.OpString, false, 2},
		{jb.OpEndArray, false, 1},
		{jb.OpEndObject, false, 0},
	}

	var got []step
	for r.EnumNext() {
		got = append(got, step{r.Opcode(), r.FirstInContainer(), r.Depth()})
	}
	if r.Err() {
		t.Fatal("unexpected malformed-stream error")
	}
	if len(got) != len(want) {
		t.Fatalf("got %d records, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("record %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestReader_Enum_RewindsCursor(t *testing.T) {
	frame := sealedDoc(t, func(w *jb.Writer) {
		w.AddObjectBegin()
		w.AddStringToObject("k", "v")
		w.AddObjectEnd()
	})
	r := jb.NewReader()
	if !r.Parse(frame) {
		t.Fatal("parse failed")
	}
	var first []jb.Opcode
	for r.EnumNext() {
		first = append(first, r.Opcode())
	}
	r.Enum()
	var second []jb.Opcode
	for r.EnumNext() {
		second = append(second, r.Opcode())
	}
	if len(first) != len(second) {
		t.Fatalf("rewound walk produced %d records, want %d", len(second), len(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("record %d differs after rewind: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestReader_GetObjectItem_OnlyTopLevelIndependentOfCursor(t *testing.T) {
	frame := sealedDoc(t, func(w *jb.Writer) {
		w.AddObjectBegin()
		w.AddObjectToObject("nested")
		w.AddStringToObject("name", "inner")
		w.AddObjectEnd()
		w.AddStringToObject("name", "outer")
		w.AddObjectEnd()
	})
	r := jb.NewReader()
	if !r.Parse(frame) {
		t.Fatal("parse failed")
	}
	// Advance the EnumNext cursor partway through the stream first.
	r.EnumNext()
	r.EnumNext()

	if got := r.GetString("name"); got != "outer" {
		t.Fatalf("GetString(name) = %q, want %q (top-level only, skipping nested)", got, "outer")
	}
}

func TestReader_GetObjectItem_MissingKey(t *testing.T) {
	frame := sealedDoc(t, func(w *jb.Writer) {
		w.AddObjectBegin()
		w.AddStringToObject("present", "yes")
		w.AddObjectEnd()
	})
	r := jb.NewReader()
	if !r.Parse(frame) {
		t.Fatal("parse failed")
	}
	if r.GetObjectItem("absent") {
		t.Fatal("GetObjectItem(absent) = true, want false")
	}
	if r.Err() {
		t.Fatal("a missing key is not a malformed stream")
	}
}
