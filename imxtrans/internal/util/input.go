// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package util

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/embeddedgo/imx/imxtrans/internal/imximage"
	"github.com/hashicorp/errwrap"
	"github.com/sirupsen/logrus"
)

// Input is an opened input file.
type Input struct {
	io.Reader
	Size int64

	// Addr is the load address of the first byte of the input. It is known
	// only for the ELF and Intel HEX files.
	Addr    uint32
	HasAddr bool

	c io.Closer
}

// Close closes the underlying file, if any.
func (in *Input) Close() error {
	if in.c == nil {
		return nil
	}
	return in.c.Close()
}

// OpenRaw opens the named file and measures its size.
func OpenRaw(name string) (*Input, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &Input{Reader: f, Size: fi.Size(), c: f}, nil
}

// OpenApp opens the application file. The ELF (.elf) and Intel HEX (.hex,
// .ihex) files are converted to the binary form, filling gaps between
// sections with zeros. Other files are read as is.
func OpenApp(name string, log logrus.FieldLogger) (*Input, error) {
	var (
		ss   Sections
		err  error
		what string
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".elf":
		what = "readelf"
		ss, err = ReadELF(name, log)
	case ".hex", ".ihex":
		what = "readhex"
		ss, err = ReadHex(name)
	default:
		return OpenRaw(name)
	}
	if err != nil {
		return nil, errwrap.Wrapf(what+": {{err}}", err)
	}
	ss.SortByPaddr()
	for i, s := range ss {
		log.Debugf("%s: %d: Paddr: %#x DataLen: %d", what, i, s.Paddr, len(s.Data))
	}
	if ss[0].Paddr > 0xffffffff {
		return nil, errwrap.Wrapf(
			what+": {{err}}", &AddrError{Addr: ss[0].Paddr},
		)
	}
	size := ss.Size()
	if size > imximage.MaxPayload {
		return nil, errwrap.Wrapf(what+": {{err}}", imximage.ErrTooLarge)
	}
	buf := bytes.NewBuffer(make([]byte, 0, size))
	if _, err := ss.Flatten(buf, 0); err != nil {
		return nil, errwrap.Wrapf(what+": {{err}}", err)
	}
	return &Input{
		Reader:  buf,
		Size:    int64(buf.Len()),
		Addr:    uint32(ss[0].Paddr),
		HasAddr: true,
	}, nil
}
