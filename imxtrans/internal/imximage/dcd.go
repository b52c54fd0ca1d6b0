// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package imximage

import (
	"bytes"
	"encoding/binary"
)

const (
	dcdTag       = 0xd2
	dcdVersion   = 0x40
	dcdWriteData = 0xcc
	dcdWrite32   = 0x04
)

type regWrite struct {
	Addr uint32
	Val  uint32
}

// ddr3Config configures the clocks, IOMUX and MMDC of an i.MX6ULL board with
// 512 MiB of DDR3 (MT41K256M16) running at 400 MHz.
var ddr3Config = [...]regWrite{
	// CCM: enable all clock gates.
	{0x020c4068, 0xffffffff},
	{0x020c406c, 0xffffffff},
	{0x020c4070, 0xffffffff},
	{0x020c4074, 0xffffffff},
	{0x020c4078, 0xffffffff},
	{0x020c407c, 0xffffffff},
	{0x020c4080, 0xffffffff},

	// IOMUX: DDR pads.
	{0x020e04b4, 0x000c0000},
	{0x020e04ac, 0x00000000},
	{0x020e027c, 0x00000030},
	{0x020e0250, 0x00000030},
	{0x020e024c, 0x00000030},
	{0x020e0490, 0x00000030},
	{0x020e0288, 0x000c0030},
	{0x020e0270, 0x00000000},
	{0x020e0260, 0x00000030},
	{0x020e0264, 0x00000030},
	{0x020e04a0, 0x00000030},
	{0x020e0494, 0x00020000},
	{0x020e0280, 0x00000030},
	{0x020e0284, 0x00000030},
	{0x020e04b0, 0x00020000},
	{0x020e0498, 0x00000030},
	{0x020e04a4, 0x00000030},
	{0x020e0244, 0x00000030},
	{0x020e0248, 0x00000030},

	// MMDC: calibration.
	{0x021b001c, 0x00008000},
	{0x021b0800, 0xa1390003},
	{0x021b080c, 0x00000004},
	{0x021b083c, 0x41640158},
	{0x021b0848, 0x40403237},
	{0x021b0850, 0x40403c33},
	{0x021b081c, 0x33333333},
	{0x021b0820, 0x33333333},
	{0x021b082c, 0xf3333333},
	{0x021b0830, 0xf3333333},
	{0x021b08c0, 0x00944009},
	{0x021b08b8, 0x00000800},

	// MMDC: timing and mode registers.
	{0x021b0004, 0x0002002d},
	{0x021b0008, 0x1b333030},
	{0x021b000c, 0x676b52f3},
	{0x021b0010, 0xb66d0b63},
	{0x021b0014, 0x01ff00db},
	{0x021b0018, 0x00201740},
	{0x021b001c, 0x00008000},
	{0x021b002c, 0x000026d2},
	{0x021b0030, 0x006b1023},
	{0x021b0040, 0x0000004f},
	{0x021b0000, 0x84180000},
	{0x021b0890, 0x00400000},
	{0x021b001c, 0x02008032},
	{0x021b001c, 0x00008033},
	{0x021b001c, 0x00048031},
	{0x021b001c, 0x15208030},
	{0x021b001c, 0x04008040},
	{0x021b0020, 0x00000800},
	{0x021b0818, 0x00000227},
	{0x021b0004, 0x0002552d},
	{0x021b0404, 0x00011006},
	{0x021b001c, 0x00000000},
}

// DCD is the Device Configuration Data table written after the Boot Data.
// Unlike the IVT the DCD is big-endian.
var DCD = makeDCD(ddr3Config[:])

func makeDCD(regs []regWrite) []byte {
	const hdrSize = 4
	cmdSize := hdrSize + len(regs)*8
	size := hdrSize + cmdSize
	buf := bytes.NewBuffer(make([]byte, 0, size))

	buf.Write([]byte{dcdTag, byte(size >> 8), byte(size), dcdVersion})
	buf.Write([]byte{dcdWriteData, byte(cmdSize >> 8), byte(cmdSize), dcdWrite32})
	binary.Write(buf, binary.BigEndian, regs)
	return buf.Bytes()
}
