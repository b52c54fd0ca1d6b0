// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package imximage

import (
	"errors"
	"io"
)

var (
	// ErrBackward is returned if the output position would have to move
	// backward, which happens when the header does not fit before the
	// application.
	ErrBackward = errors.New("imximage: cannot move the output position backward")

	// ErrLength is returned if a payload reader provides fewer or more bytes
	// than its declared length.
	ErrLength = errors.New("imximage: payload length differs from the declared one")

	// ErrTooLarge is returned if a payload or the whole image does not fit
	// in the 32-bit lengths of the boot data.
	ErrTooLarge = errors.New("imximage: length does not fit in 32 bits")
)

const zeroBlockSize = 4096

var zeroBlock [zeroBlockSize]byte

// PadWriter is an io.Writer that tracks its position and can move it forward
// filling the gap with zeros. If the underlying writer implements io.Seeker
// and seeking works the gaps are skipped using Seek.
type PadWriter struct {
	w    io.Writer
	s    io.Seeker // nil if w is not seekable
	base int64     // position of the underlying seeker at creation time
	pos  int64
}

// NewPadWriter returns a PadWriter positioned at 0.
func NewPadWriter(w io.Writer) *PadWriter {
	pw := &PadWriter{w: w}
	if s, ok := w.(io.Seeker); ok {
		if base, err := s.Seek(0, io.SeekCurrent); err == nil {
			pw.s = s
			pw.base = base
		}
	}
	return pw
}

// Seekable reports whether the gaps are skipped using Seek.
func (pw *PadWriter) Seekable() bool {
	return pw.s != nil
}

// Pos returns the number of bytes written or skipped so far.
func (pw *PadWriter) Pos() int64 {
	return pw.pos
}

func (pw *PadWriter) Write(p []byte) (n int, err error) {
	n, err = pw.w.Write(p)
	pw.pos += int64(n)
	if err == nil && n != len(p) {
		err = io.ErrShortWrite
	}
	return
}

// PadTo moves the position to pos. It returns ErrBackward if pos is less
// than the current position.
func (pw *PadWriter) PadTo(pos int64) error {
	if pos < pw.pos {
		return ErrBackward
	}
	if pos == pw.pos {
		return nil
	}
	if pw.s != nil {
		// Write the last byte of the gap so the file is never shorter than
		// the position.
		if _, err := pw.s.Seek(pw.base+pos-1, io.SeekStart); err == nil {
			prev := pw.pos
			pw.pos = pos - 1
			if _, err := pw.Write(zeroBlock[:1]); err != nil {
				return err
			}
			cur, err := pw.s.Seek(0, io.SeekCurrent)
			if err == nil && cur == pw.base+pos {
				return nil
			}
			// The write did not land where the seek pointed (O_APPEND).
			// All previous writes were sequential so the single zero byte
			// follows them. Fill the rest of the gap after it.
			pw.s = nil
			pw.pos = prev + 1
			return pw.Pad(pos - pw.pos)
		}
		pw.s = nil
	}
	return pw.Pad(pos - pw.pos)
}

// Pad writes n zero bytes.
func (pw *PadWriter) Pad(n int64) error {
	for n > 0 {
		m := int64(len(zeroBlock))
		if m > n {
			m = n
		}
		k, err := pw.Write(zeroBlock[:m])
		n -= int64(k)
		if err != nil {
			return err
		}
	}
	return nil
}
