// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package jsonb

// GrowFunc is the capability callback a Writer consults when an append needs
// more room than the current buffer provides. It is handed the current
// buffer and the total size needed (in bytes, including what is already
// used) and returns a buffer whose length is at least that size, with the existing
// bytes preserved. Returning a buffer that is still too small is a refusal:
// the Writer latches overrun and drops the append, exactly as if no GrowFunc
// had been supplied at all.
//
// There is no default GrowFunc. On a fixed single-buffer target, the usual
// embedded use case, callers simply omit WithGrowFunc.
type GrowFunc func(buf []byte, needed int) []byte

// Options configures a Writer.
type Options struct {
	GrowFunc GrowFunc
}

var defaultOptions = Options{}

// Option configures a Writer constructed by NewWriter.
type Option func(*Options)

// WithGrowFunc installs a buffer-growth callback. The Writer re-reads the
// returned buffer's length and capacity after every call instead of caching
// them, since the callback may reallocate.
func WithGrowFunc(fn GrowFunc) Option {
	return func(o *Options) { o.GrowFunc = fn }
}
