// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xyproto/env/v2"
)

// parseHex parses a 32-bit hexadecimal number with an optional 0x prefix.
func parseHex(s string) (uint32, error) {
	if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	if s == "" {
		return 0, errors.New("empty hex number")
	}
	u, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok {
			err = ne.Err
		}
		return 0, fmt.Errorf("bad hex number %q: %v", s, err)
	}
	return uint32(u), nil
}

// hexValue is a pflag.Value that holds a hexadecimal uint32.
type hexValue uint32

func newHexValue(val uint32, p *uint32) *hexValue {
	*p = val
	return (*hexValue)(p)
}

func (h *hexValue) Set(s string) error {
	u, err := parseHex(s)
	if err != nil {
		return err
	}
	*h = hexValue(u)
	return nil
}

func (h *hexValue) String() string { return fmt.Sprintf("%#x", uint32(*h)) }

func (h *hexValue) Type() string { return "hex" }

// envHex returns the value of the named environment variable or def if the
// variable is not set.
func envHex(name string, def uint32) (uint32, error) {
	s := strings.TrimSpace(env.Str(name))
	if s == "" {
		return def, nil
	}
	u, err := parseHex(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %v", name, err)
	}
	return u, nil
}
