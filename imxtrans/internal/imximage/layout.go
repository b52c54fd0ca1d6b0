// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package imximage

const (
	// AlignSize is the size of the block the application and the signature
	// data are padded to.
	AlignSize = 0x400
	alignMask = AlignSize - 1
)

// Default configuration.
const (
	DefaultAppAddr      = 0x87800000
	DefaultOffset       = 0x400
	DefaultInitLoadSize = 0x1000
)

// Config describes where the image is placed on the boot device and in
// the memory.
type Config struct {
	AppAddr      uint32 // where the application must be loaded to
	Offset       uint32 // offset of the IVT from the beginning of the image
	InitLoadSize uint32 // size of the region before the application
	CSFAddr      uint32

	// CSFAlways makes IVT.CSF equal to CSFAddr even if there is no
	// signature data.
	CSFAlways bool
}

// DefaultConfig returns the configuration used by the imxtrans command if
// no options are given.
func DefaultConfig() Config {
	return Config{
		AppAddr:      DefaultAppAddr,
		Offset:       DefaultOffset,
		InitLoadSize: DefaultInitLoadSize,
	}
}

// Align rounds n up to the multiple of AlignSize.
func Align(n uint32) uint32 {
	if n&alignMask == 0 {
		return n
	}
	return (n + AlignSize) &^ alignMask
}

// Layout contains all computed header records and the sizes of the regions
// of the image.
type Layout struct {
	IVT      IVT
	BootData BootData

	Offset       uint32
	InitLoadSize uint32
	AppLen       uint32
	AppAligned   uint32
	CSFLen       uint32
	CSFAligned   uint32
	HasCSF       bool
}

// NewLayout computes the image layout for the application of appLen bytes
// and the optional signature data of csfLen bytes.
//
// The start of the image is AppAddr-InitLoadSize computed modulo 2^32, so
// InitLoadSize > AppAddr silently wraps around.
func NewLayout(cfg Config, appLen uint32, hasCSF bool, csfLen uint32) *Layout {
	if !hasCSF {
		csfLen = 0
	}
	l := &Layout{
		Offset:       cfg.Offset,
		InitLoadSize: cfg.InitLoadSize,
		AppLen:       appLen,
		AppAligned:   Align(appLen),
		CSFLen:       csfLen,
		CSFAligned:   Align(csfLen),
		HasCSF:       hasCSF,
	}
	bd := &l.BootData
	bd.Start = cfg.AppAddr - cfg.InitLoadSize
	bd.Length = cfg.InitLoadSize + l.AppAligned + l.CSFAligned

	ivt := &l.IVT
	ivt.Header = IVTHeader
	ivt.Entry = cfg.AppAddr
	ivt.Self = bd.Start + cfg.Offset
	ivt.BootData = ivt.Self + ivtSize
	ivt.DCD = ivt.BootData + bootDataSize
	if hasCSF || cfg.CSFAlways {
		ivt.CSF = cfg.CSFAddr
	}
	return l
}

// HeaderEnd returns the offset of the first byte after the DCD table.
func (l *Layout) HeaderEnd() int64 {
	return int64(l.Offset) + ivtSize + bootDataSize + int64(len(DCD))
}

// Size returns the size of the whole image. It is equal to BootData.Length
// if Check reports no error.
func (l *Layout) Size() int64 {
	return int64(l.InitLoadSize) + int64(l.AppAligned) + int64(l.CSFAligned)
}

// MaxSize is the largest image size BootData.Length can describe.
const MaxSize = 1<<32 - 1

// Check returns ErrBackward if the header records do not fit in the initial
// load region and ErrTooLarge if the image size does not fit in
// BootData.Length.
func (l *Layout) Check() error {
	if l.HeaderEnd() > int64(l.InitLoadSize) {
		return ErrBackward
	}
	if l.Size() > MaxSize {
		return ErrTooLarge
	}
	return nil
}

// MaxPayload is the largest application or signature size that still
// aligns within 32 bits.
const MaxPayload = 1<<32 - AlignSize

// PayloadLen checks the size of a payload and returns it as uint32.
func PayloadLen(n int64) (uint32, error) {
	if n < 0 || n > MaxPayload {
		return 0, ErrTooLarge
	}
	return uint32(n), nil
}
