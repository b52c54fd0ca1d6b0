// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package util

import (
	"errors"
	"fmt"
	"syscall"
)

// AddrError reports an address that does not fit in the 32-bit address space.
type AddrError struct {
	Addr uint64
}

func (e *AddrError) Error() string {
	return fmt.Sprintf("address %#x does not fit in 32 bits", e.Addr)
}

// ExitCode returns the exit status that describes err: the OS error number
// if err wraps one, 1 otherwise and 0 for nil err.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var errno syscall.Errno
	if errors.As(err, &errno) && errno != 0 {
		return int(errno)
	}
	return 1
}
