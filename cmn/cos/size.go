// Package cos provides common low-level types and utilities for all fgfs packages.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package cos

import (
	"fmt"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// IEC (binary) units
const (
	KiB = 1024
	MiB = 1024 * KiB
	GiB = 1024 * MiB
	TiB = 1024 * GiB
	PiB = 1024 * TiB
)

var iecSuffixes = [...]struct {
	sfx  string
	mult int64
}{
	{"PIB", PiB}, {"TIB", TiB}, {"GIB", GiB}, {"MIB", MiB}, {"KIB", KiB},
	{"P", PiB}, {"T", TiB}, {"G", GiB}, {"M", MiB}, {"K", KiB},
	{"B", 1},
}

// SizeIEC is a byte count that (un)marshals as a human readable string, e.g. "16GiB"
type SizeIEC int64

func (siz SizeIEC) MarshalJSON() ([]byte, error) { return jsoniter.Marshal(siz.String()) }
func (siz SizeIEC) String() string               { return ToSizeIEC(int64(siz), 0) }

func (siz *SizeIEC) UnmarshalJSON(b []byte) error {
	var val string
	if err := jsoniter.Unmarshal(b, &val); err != nil {
		// plain number
		var n int64
		if errN := jsoniter.Unmarshal(b, &n); errN != nil {
			return err
		}
		*siz = SizeIEC(n)
		return nil
	}
	n, err := ParseSize(val)
	*siz = SizeIEC(n)
	return err
}

// yaml.v3 Unmarshaler
func (siz *SizeIEC) UnmarshalYAML(unmarshal func(any) error) error {
	var val string
	if err := unmarshal(&val); err != nil {
		return err
	}
	n, err := ParseSize(val)
	*siz = SizeIEC(n)
	return err
}

func ToSizeIEC(b int64, digits int) string {
	switch {
	case b >= PiB:
		return fmt.Sprintf("%.*f%s", digits, float64(b)/float64(PiB), "PiB")
	case b >= TiB:
		return fmt.Sprintf("%.*f%s", digits, float64(b)/float64(TiB), "TiB")
	case b >= GiB:
		return fmt.Sprintf("%.*f%s", digits, float64(b)/float64(GiB), "GiB")
	case b >= MiB:
		return fmt.Sprintf("%.*f%s", digits, float64(b)/float64(MiB), "MiB")
	case b >= KiB:
		return fmt.Sprintf("%.*f%s", digits, float64(b)/float64(KiB), "KiB")
	default:
		return fmt.Sprintf("%dB", b)
	}
}

// ParseSize accepts IEC suffixes (KiB..PiB, or the short K..P form) and raw byte counts.
func ParseSize(size string) (int64, error) {
	s := strings.ToUpper(strings.TrimSpace(size))
	if s == "" {
		return 0, nil
	}
	mult := int64(1)
	for _, e := range iecSuffixes {
		if strings.HasSuffix(s, e.sfx) {
			s, mult = strings.TrimSpace(strings.TrimSuffix(s, e.sfx)), e.mult
			break
		}
	}
	if strings.IndexByte(s, '.') >= 0 {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("ParseSize %q: %w", size, err)
		}
		return int64(f * float64(mult)), nil
	}
	val, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("ParseSize %q: %w", size, err)
	}
	if val < 0 {
		return 0, fmt.Errorf("ParseSize %q: negative size", size)
	}
	return val * mult, nil
}
