// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Imxtrans makes the i.MX 6 boot image from the application binary.
//
// The image starts with the Image Vector Table, the Boot Data and the
// Device Configuration Data table, placed at the IVT offset in the initial
// load region. The application follows the initial load region and is
// padded to 1 KiB. The optional certificate and signature data follows the
// application and is padded to 1 KiB too.
package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/embeddedgo/imx/imxtrans/internal/imximage"
	"github.com/embeddedgo/imx/imxtrans/internal/util"
	"github.com/hashicorp/errwrap"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/xyproto/env/v2"
)

const exitInval = int(syscall.EINVAL)

type options struct {
	img     imximage.Config
	appFile string
	csfFile string
	outFile string
	format  string
	verbose bool
}

func usage(w io.Writer, cmd string, fs *pflag.FlagSet) {
	fmt.Fprintf(w, "Usage:\n  %s [OPTIONS] APP\n", cmd)
	io.WriteString(w, `
Makes the i.MX 6 boot image from the APP file (raw binary, ELF or Intel HEX)
and writes it to the standard output or to the file given by the -x option.
Numeric options are hexadecimal; the attached form (-e87800000) is accepted.

Options:
`)
	io.WriteString(w, fs.FlagUsages())
	fmt.Fprintf(w, "\nExample:\n  %s -e87800000 -xu-boot.imx u-boot.bin\n", cmd)
}

func parseArgs(cmd string, args []string, stderr io.Writer) (*options, error) {
	o := new(options)
	fs := pflag.NewFlagSet(cmd, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { usage(stderr, cmd, fs) }
	fs.SortFlags = false

	defs := imximage.DefaultConfig()
	var err error
	for _, d := range []struct {
		env string
		p   *uint32
	}{
		{"IMXTRANS_ENTRY", &defs.AppAddr},
		{"IMXTRANS_OFFSET", &defs.Offset},
		{"IMXTRANS_INIT_SIZE", &defs.InitLoadSize},
		{"IMXTRANS_CSF_ADDR", &defs.CSFAddr},
	} {
		if err != nil {
			break
		}
		*d.p, err = envHex(d.env, *d.p)
	}

	fs.VarP(
		newHexValue(defs.AppAddr, &o.img.AppAddr), "entry", "e",
		"application entry point (load address)",
	)
	fs.VarP(
		newHexValue(defs.Offset, &o.img.Offset), "offset", "o",
		"IVT offset from the beginning of the boot device",
	)
	fs.VarP(
		newHexValue(defs.InitLoadSize, &o.img.InitLoadSize), "init-size", "i",
		"initial load region size",
	)
	fs.StringVarP(
		&o.csfFile, "csf", "c", "",
		"certificates and signatures `file`",
	)
	fs.VarP(
		newHexValue(defs.CSFAddr, &o.img.CSFAddr), "csf-addr", "s",
		"address of the certificates and signatures",
	)
	fs.BoolVarP(
		&o.img.CSFAlways, "csf-always", "a", false,
		"write the CSF address to the IVT even without -c",
	)
	fs.StringVarP(
		&o.outFile, "out", "x", "",
		"output `file` (default standard output)",
	)
	fs.StringVarP(
		&o.format, "format", "f", "bin",
		"output `format`: bin or hex (Intel HEX)",
	)
	fs.BoolVarP(
		&o.verbose, "verbose", "v", env.Bool("IMXTRANS_VERBOSE"),
		"print the computed layout to the standard error",
	)

	if err == nil {
		err = fs.Parse(args)
	}
	if err != nil {
		if !errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(stderr, "%s: %v\n", cmd, err)
			fs.Usage()
		}
		return nil, err
	}
	switch {
	case fs.NArg() != 1:
		err = errors.New("exactly one APP file required")
	case o.format != "bin" && o.format != "hex":
		err = fmt.Errorf("unknown output format %q", o.format)
	}
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", cmd, err)
		fs.Usage()
		return nil, err
	}
	o.appFile = fs.Arg(0)
	return o, nil
}

func newLogger(w io.Writer, verbose bool) *logrus.Logger {
	log := logrus.New()
	log.Out = w
	log.Formatter = &logrus.TextFormatter{DisableTimestamp: true}
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

func writeImage(o *options, stdout io.Writer, log *logrus.Logger) (err error) {
	log.Debugf("address of app in memory: %#x", o.img.AppAddr)
	log.Debugf("offset of IVT: %#x", o.img.Offset)
	log.Debugf("initial load region size: %#x", o.img.InitLoadSize)
	log.Debugf("path to certificates and signature file: %s", o.csfFile)
	log.Debugf("path to application: %s", o.appFile)
	if o.outFile != "" {
		log.Debugf("path to output file: %s", o.outFile)
	} else {
		log.Debug("path to output file: stdout")
	}

	app, err := util.OpenApp(o.appFile, log)
	if err != nil {
		return err
	}
	defer app.Close()
	if app.HasAddr && app.Addr != o.img.AppAddr {
		log.Warnf(
			"%s: load address %#x differs from the entry point %#x",
			o.appFile, app.Addr, o.img.AppAddr,
		)
	}
	appLen, err := imximage.PayloadLen(app.Size)
	if err != nil {
		return errwrap.Wrapf(o.appFile+": {{err}}", err)
	}
	var csf *imximage.Payload
	if o.csfFile != "" {
		in, err := util.OpenRaw(o.csfFile)
		if err != nil {
			return err
		}
		defer in.Close()
		n, err := imximage.PayloadLen(in.Size)
		if err != nil {
			return errwrap.Wrapf(o.csfFile+": {{err}}", err)
		}
		csf = &imximage.Payload{R: in, Len: n}
	}
	img := imximage.New(o.img, imximage.Payload{R: app, Len: appLen}, csf, log)
	if err := img.Layout.Check(); err != nil {
		l := img.Layout
		return errwrap.Wrapf(fmt.Sprintf(
			"layout (header end %#x, image size %#x): ", l.HeaderEnd(), l.Size(),
		)+"{{err}}", err)
	}

	w := stdout
	if o.outFile != "" {
		var f *os.File
		if f, err = os.Create(o.outFile); err != nil {
			return err
		}
		defer func() {
			if e := f.Close(); err == nil && e != nil {
				err = e
			}
		}()
		w = f
	} else if f, ok := stdout.(*os.File); ok && o.format == "bin" &&
		(isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		log.Warn("writing the binary image to a terminal")
	}

	if o.format == "hex" {
		buf := bytes.NewBuffer(make([]byte, 0, img.Layout.Size()))
		if _, err = img.WriteTo(buf); err != nil {
			return errwrap.Wrapf("write image: {{err}}", err)
		}
		l := img.Layout
		err = util.WriteHex(w, l.BootData.Start, l.IVT.Entry, buf.Bytes())
		if err != nil {
			return errwrap.Wrapf("dumpintelhex: {{err}}", err)
		}
		return nil
	}
	if _, err = img.WriteTo(w); err != nil {
		return errwrap.Wrapf("write image: {{err}}", err)
	}
	return nil
}

func run(args []string, stdout, stderr io.Writer) int {
	cmd := filepath.Base(args[0])
	o, err := parseArgs(cmd, args[1:], stderr)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return exitInval
	}
	log := newLogger(stderr, o.verbose)
	if err := writeImage(o, stdout, log); err != nil {
		log.Error(err)
		return util.ExitCode(err)
	}
	return 0
}

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}
