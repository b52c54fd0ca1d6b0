// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package util

import (
	"io"

	"github.com/marcinbor85/gohex"
)

// WriteHex writes data to w in the Intel HEX format, 16 bytes per record.
// The first byte of data is placed at addr. The start linear address record
// is set to entry.
func WriteHex(w io.Writer, addr, entry uint32, data []byte) error {
	if end := uint64(addr) + uint64(len(data)); end > 1<<32 {
		return &AddrError{Addr: end - 1}
	}
	mem := gohex.NewMemory()
	mem.SetStartAddress(entry)
	if err := mem.AddBinary(addr, data); err != nil {
		return err
	}
	return mem.DumpIntelHex(w, 16)
}
