// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command jsonbcat parses a sealed JSONB frame and prints its record stream,
// one record per line, indented by nesting depth.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"code.hybscloud.com/jsonb"
)

func main() {
	var filename = flag.String("file", "", "path to a file holding one sealed JSONB frame (default: stdin)")
	flag.Parse()

	data, err := readInput(*filename)
	if err != nil {
		fmt.Fprintln(os.Stderr, "jsonbcat:", err)
		os.Exit(1)
	}

	if err := cat(os.Stdout, data); err != nil {
		fmt.Fprintln(os.Stderr, "jsonbcat:", err)
		os.Exit(1)
	}
}

func readInput(filename string) ([]byte, error) {
	if filename == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(filename)
}

func cat(w io.Writer, frame []byte) error {
	r := jsonb.NewReader()
	if !r.Parse(frame) {
		return fmt.Errorf("malformed jsonb frame")
	}

	out := bufio.NewWriter(w)
	defer out.Flush()

	for r.EnumNext() {
		indent(out, r.Depth())
		op := r.Opcode()
		fmt.Fprint(out, op)
		if first := r.FirstInContainer(); first {
			fmt.Fprint(out, " (first)")
		}
		if s := valueString(r); s != "" {
			fmt.Fprintf(out, " %s", s)
		}
		fmt.Fprintln(out)
	}
	if r.Err() {
		return fmt.Errorf("malformed record stream")
	}
	return nil
}

func indent(w io.Writer, depth int) {
	for i := 0; i < depth; i++ {
		fmt.Fprint(w, "  ")
	}
}

// valueString renders the payload of the opcode last decoded by EnumNext,
// for opcodes whose payload is worth showing at a glance. Structural and
// composite opcodes render as empty, their tag alone being the whole story.
func valueString(r *jsonb.Reader) string {
	switch r.Opcode() {
	case jsonb.OpItem:
		return fmt.Sprintf("%q:", r.GetItemName())
	case jsonb.OpString:
		return fmt.Sprintf("%q", r.CurrentString())
	case jsonb.OpBin8, jsonb.OpBin16, jsonb.OpBin24, jsonb.OpBin32:
		return fmt.Sprintf("(%d bytes)", len(r.CurrentBytes()))
	case jsonb.OpInt8, jsonb.OpInt16, jsonb.OpInt32, jsonb.OpInt64:
		return fmt.Sprintf("%d", r.CurrentInt())
	case jsonb.OpUint8, jsonb.OpUint16, jsonb.OpUint32, jsonb.OpUint64:
		return fmt.Sprintf("%d", r.CurrentUint())
	case jsonb.OpFloat, jsonb.OpDouble:
		return fmt.Sprintf("%g", r.CurrentFloat())
	default:
		return ""
	}
}
