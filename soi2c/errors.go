// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package soi2c

import "code.hybscloud.com/iox"

// ErrWouldBlock is provided as a package-level alias so callers implementing
// ReceiveFunc don't need to import iox directly. It is not itself a
// transaction failure; see ReceiveFunc's doc comment.
var ErrWouldBlock = iox.ErrWouldBlock
