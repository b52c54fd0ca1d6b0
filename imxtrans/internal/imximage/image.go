// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package imximage

import (
	"encoding/binary"
	"io"

	"github.com/cespare/xxhash"
	"github.com/sirupsen/logrus"
)

// Payload is a variable-length part of the image: the application or the
// signature data.
type Payload struct {
	R   io.Reader
	Len uint32 // number of bytes R must provide
}

// Image is a boot image ready to be written.
type Image struct {
	Layout *Layout
	App    Payload
	CSF    *Payload // nil if there is no signature data
	Log    logrus.FieldLogger
}

// New computes the layout of the image that consists of the app and the
// optional csf. The log may be nil.
func New(cfg Config, app Payload, csf *Payload, log logrus.FieldLogger) *Image {
	if log == nil {
		l := logrus.New()
		l.Out = io.Discard
		log = l
	}
	var csfLen uint32
	if csf != nil {
		csfLen = csf.Len
	}
	img := &Image{
		Layout: NewLayout(cfg, app.Len, csf != nil, csfLen),
		App:    app,
		CSF:    csf,
		Log:    log,
	}
	img.logLayout()
	return img
}

func (img *Image) logLayout() {
	l, log := img.Layout, img.Log
	log.Debugf("boot_data.start: %#x", l.BootData.Start)
	log.Debugf("origin app len: %#x, aligned len: %#x", l.AppLen, l.AppAligned)
	log.Debugf("origin csf len: %#x, aligned len: %#x", l.CSFLen, l.CSFAligned)
	log.Debugf("length of image: %#x", l.BootData.Length)
	log.Debugf("ivt.entry: %#x", l.IVT.Entry)
	log.Debugf("ivt.self: %#x", l.IVT.Self)
	log.Debugf("ivt.boot_data: %#x", l.IVT.BootData)
	log.Debugf("ivt.dcd: %#x", l.IVT.DCD)
	log.Debugf("ivt.csf: %#x", l.IVT.CSF)
}

// WriteTo writes the image to w. If w implements io.Seeker the padding
// before the IVT and after the DCD table may be skipped using Seek. Nothing
// is written if the layout does not pass Check.
func (img *Image) WriteTo(w io.Writer) (int64, error) {
	if err := img.Layout.Check(); err != nil {
		return 0, err
	}
	pw := NewPadWriter(w)
	err := img.write(pw)
	return pw.Pos(), err
}

func (img *Image) write(pw *PadWriter) error {
	l, log := img.Layout, img.Log
	if !pw.Seekable() {
		log.Debug("cannot seek the output, padding with zeros")
	}
	if err := pw.PadTo(int64(l.Offset)); err != nil {
		return err
	}
	log.Debugf("position after offset: %#x", pw.Pos())
	if err := binary.Write(pw, binary.LittleEndian, &l.IVT); err != nil {
		return err
	}
	if err := binary.Write(pw, binary.LittleEndian, &l.BootData); err != nil {
		return err
	}
	if _, err := pw.Write(DCD); err != nil {
		return err
	}
	if err := pw.PadTo(int64(l.InitLoadSize)); err != nil {
		return err
	}
	log.Debugf("position after header: %#x", pw.Pos())
	if err := img.writePayload(pw, "app", img.App, l.AppAligned); err != nil {
		return err
	}
	if img.CSF != nil {
		if err := img.writePayload(pw, "csf", *img.CSF, l.CSFAligned); err != nil {
			return err
		}
	}
	log.Debugf("image size: %#x", pw.Pos())
	return nil
}

// writePayload copies p to pw in 1 KiB chunks and pads it to aligned bytes.
func (img *Image) writePayload(pw *PadWriter, name string, p Payload, aligned uint32) error {
	h := xxhash.New()
	buf := make([]byte, 1024)
	n, err := io.CopyBuffer(
		struct{ io.Writer }{pw},
		io.TeeReader(io.LimitReader(p.R, int64(p.Len)), h),
		buf,
	)
	if err != nil {
		return err
	}
	if n != int64(p.Len) {
		return ErrLength
	}
	if _, err := io.ReadFull(p.R, buf[:1]); err == nil {
		return ErrLength
	}
	img.Log.Debugf("%s: %d bytes, xxh64: %016x", name, n, h.Sum64())
	return pw.Pad(int64(aligned) - n)
}
