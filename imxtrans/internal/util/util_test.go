// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package util

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"github.com/hashicorp/errwrap"
	"github.com/sirupsen/logrus"
)

func quietLog() *logrus.Logger {
	log := logrus.New()
	log.Out = io.Discard
	return log
}

func TestExitCode(t *testing.T) {
	_, openErr := os.Open(filepath.Join(t.TempDir(), "missing"))
	tests := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{errors.New("plain"), 1},
		{syscall.EINVAL, int(syscall.EINVAL)},
		{openErr, int(syscall.ENOENT)},
		{errwrap.Wrapf("open app: {{err}}", openErr), int(syscall.ENOENT)},
	}
	for _, tt := range tests {
		if got := ExitCode(tt.err); got != tt.want {
			t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestFlatten(t *testing.T) {
	ss := Sections{
		{Paddr: 0x1008, Data: []byte{5, 6}},
		{Paddr: 0x1000, Data: []byte{1, 2, 3}},
	}
	var buf bytes.Buffer
	n, err := ss.Flatten(&buf, 0xff)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{1, 2, 3, 0xff, 0xff, 0xff, 0xff, 0xff, 5, 6}
	if n != len(want) || !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("Flatten: n=%d data=% x, want % x", n, buf.Bytes(), want)
	}
	if ss.Size() != int64(len(want)) {
		t.Errorf("Size() = %d, want %d", ss.Size(), len(want))
	}
}

func TestFlattenOverlap(t *testing.T) {
	ss := Sections{
		{Paddr: 0x1000, Data: []byte{1, 2, 3}},
		{Paddr: 0x1002, Data: []byte{4}},
	}
	if _, err := ss.Flatten(io.Discard, 0); err == nil {
		t.Error("overlapping sections flattened without error")
	}
}

func TestHexRoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte{0xde, 0xad, 0xbe, 0xef}, 100)
	name := filepath.Join(t.TempDir(), "app.hex")
	f, err := os.Create(name)
	if err != nil {
		t.Fatal(err)
	}
	if err := WriteHex(f, 0x87800000, 0x87800000, data); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	in, err := OpenApp(name, quietLog())
	if err != nil {
		t.Fatal(err)
	}
	defer in.Close()
	if !in.HasAddr || in.Addr != 0x87800000 {
		t.Errorf("addr = %#x (%t), want 0x87800000", in.Addr, in.HasAddr)
	}
	if in.Size != int64(len(data)) {
		t.Errorf("size = %d, want %d", in.Size, len(data))
	}
	got, err := io.ReadAll(in)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Error("data mismatch")
	}
}

func TestWriteHexRecords(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHex(&buf, 0x877ff000, 0x87800000, make([]byte, 32)); err != nil {
		t.Fatal(err)
	}
	lines := strings.Fields(buf.String())
	if len(lines) < 4 {
		t.Fatalf("too few records:\n%s", buf.String())
	}
	for _, l := range lines {
		if l[0] != ':' {
			t.Errorf("bad record %q", l)
		}
	}
	if last := lines[len(lines)-1]; !strings.EqualFold(last, ":00000001FF") {
		t.Errorf("last record %q, want EOF record", last)
	}
}

func TestWriteHexOverflow(t *testing.T) {
	var ae *AddrError
	err := WriteHex(io.Discard, 0xfffffff0, 0, make([]byte, 0x20))
	if !errors.As(err, &ae) {
		t.Errorf("err = %v, want *AddrError", err)
	}
}

func TestOpenAppRaw(t *testing.T) {
	name := filepath.Join(t.TempDir(), "app.bin")
	data := []byte("raw application")
	if err := os.WriteFile(name, data, 0o666); err != nil {
		t.Fatal(err)
	}
	in, err := OpenApp(name, quietLog())
	if err != nil {
		t.Fatal(err)
	}
	defer in.Close()
	if in.HasAddr {
		t.Error("raw input reports an address")
	}
	if in.Size != int64(len(data)) {
		t.Errorf("size = %d, want %d", in.Size, len(data))
	}
	got, _ := io.ReadAll(in)
	if !bytes.Equal(got, data) {
		t.Error("data mismatch")
	}
}

func TestOpenAppBadELF(t *testing.T) {
	name := filepath.Join(t.TempDir(), "app.elf")
	if err := os.WriteFile(name, []byte("not an elf file"), 0o666); err != nil {
		t.Fatal(err)
	}
	_, err := OpenApp(name, quietLog())
	if err == nil || !strings.HasPrefix(err.Error(), "readelf: ") {
		t.Errorf("err = %v, want readelf error", err)
	}
}

func TestOpenMissing(t *testing.T) {
	_, err := OpenRaw(filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want ErrNotExist", err)
	}
}
