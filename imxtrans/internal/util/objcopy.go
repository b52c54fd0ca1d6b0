// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package util

import (
	"debug/elf"
	"errors"
	"io"
	"os"
	"sort"

	"github.com/marcinbor85/gohex"
	"github.com/sirupsen/logrus"
)

type Section struct {
	Paddr uint64 // phisical location of the section in the memory
	Data  []byte // section data
}

type Sections []*Section

// ReadELF reads the loadable sections of the program and returns them as
// a slice. The order of the returned sections is unspecified.
func ReadELF(name string, log logrus.FieldLogger) (Sections, error) {
	r, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	f, err := elf.NewFile(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ss := make(Sections, 0, 16)
	for i, s := range f.Sections {
		if s.Type != elf.SHT_PROGBITS || s.Flags&elf.SHF_ALLOC == 0 {
			if k := i + 1; k < len(f.Sections) && len(ss) != 0 {
				ns := f.Sections[k]
				if ns.Type == elf.SHT_PROGBITS && ns.Flags&elf.SHF_ALLOC != 0 {
					log.Warnf(
						"readelf: skipping section '%s' (%d bytes)",
						s.Name, s.Size,
					)
				}
			}
			continue
		}
		data, err := s.Data()
		if err != nil {
			return nil, err
		}
		if len(data) == 0 {
			continue
		}
		paddr := s.Addr
		for _, p := range f.Progs {
			if p.Type != elf.PT_LOAD {
				continue
			}
			if p.Off <= s.Offset && s.Offset < p.Off+p.Filesz {
				paddr = p.Paddr + s.Offset - p.Off
				break
			}
		}
		ss = append(ss, &Section{paddr, data})
	}
	if len(ss) == 0 {
		return nil, errors.New("no loadable sections")
	}
	return ss, nil
}

// ReadHex reads the Intel HEX file and returns its data segments as a slice
// of sections.
func ReadHex(name string) (Sections, error) {
	r, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	mem := gohex.NewMemory()
	if err := mem.ParseIntelHex(r); err != nil {
		return nil, err
	}
	segs := mem.GetDataSegments()
	if len(segs) == 0 {
		return nil, errors.New("no data records")
	}
	ss := make(Sections, len(segs))
	for i, seg := range segs {
		ss[i] = &Section{uint64(seg.Address), seg.Data}
	}
	return ss, nil
}

// SortByPaddr sorts sections according to the Paddr field.
func (ss Sections) SortByPaddr() {
	sort.Slice(
		ss,
		func(i, j int) bool {
			return ss[i].Paddr < ss[j].Paddr
		},
	)
}

// Size returns the number of bytes written by Flatten.
func (ss Sections) Size() int64 {
	if len(ss) == 0 {
		return 0
	}
	ss.SortByPaddr()
	last := ss[len(ss)-1]
	return int64(last.Paddr-ss[0].Paddr) + int64(len(last.Data))
}

// Flatten flattens sections by writting their data to the provided io.Writer
// according to the Paddr field (before writting the sections are sorted using
// SortPaddr method). The gaps between sections are filled using the pad byte.
func (ss Sections) Flatten(w io.Writer, pad byte) (n int, err error) {
	if len(ss) == 0 {
		return
	}
	ss.SortByPaddr()
	pa := ss[0].Paddr
	n, err = w.Write(ss[0].Data)
	if err != nil {
		return
	}
	pa += uint64(n)
	var padCache []byte
	for _, s := range ss[1:] {
		if s.Paddr < pa {
			err = errors.New("flatten: overlaping sections")
			return
		}
		m := int(s.Paddr - pa)
		if m != 0 {
			m, err = w.Write(PadBytes(&padCache, m, pad))
			n += m
			if err != nil {
				return
			}
			pa += uint64(m)
		}
		m, err = w.Write(s.Data)
		n += m
		if err != nil {
			return
		}
		pa += uint64(m)
	}
	return
}

// PadBytes returns the slice containing n byte equal b.
func PadBytes(cache *[]byte, n int, b byte) []byte {
	if len(*cache) < n {
		*cache = make([]byte, n)
		for i := range *cache {
			(*cache)[i] = b
		}
	}
	return (*cache)[:n]
}
