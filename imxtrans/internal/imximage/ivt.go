// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package imximage lays out boot images for the i.MX 6 boot ROM.
package imximage

// IVTHeader is the IVT header word: tag 0xd1, big-endian length 0x0020,
// version 0x41.
const IVTHeader = 0x412000d1

const (
	ivtSize      = 8 * 4
	bootDataSize = 3 * 4
)

// IVT is the Image Vector Table. All pointers are absolute addresses.
type IVT struct {
	Header   uint32
	Entry    uint32 // address of the first application instruction
	R1       uint32
	DCD      uint32
	BootData uint32
	Self     uint32
	CSF      uint32 // 0 if there is no signature data
	R2       uint32
}

// BootData tells the boot ROM where to copy the image and how much of it.
type BootData struct {
	Start  uint32 // load address of the first byte of the image
	Length uint32
	Plugin uint32
}
