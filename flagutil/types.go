package flagutil

import (
	"errors"
	"strconv"
	"strings"
)

// SizeFlag parses a byte count with an optional binary suffix, such as
// "4096", "64K", "16M" or "1G". This type implements the flag.Value
// interface.
type SizeFlag struct {
	val int64
}

func (f *SizeFlag) Bytes() int64 {
	return f.val
}

func (f *SizeFlag) Set(v string) error {
	s := strings.TrimSpace(v)
	if s == "" {
		return errors.New("empty size")
	}
	var shift uint
	switch s[len(s)-1] {
	case 'k', 'K':
		shift, s = 10, s[:len(s)-1]
	case 'm', 'M':
		shift, s = 20, s[:len(s)-1]
	case 'g', 'G':
		shift, s = 30, s[:len(s)-1]
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	if n < 0 {
		return errors.New("negative size")
	}
	f.val = n << shift
	return nil
}

func (f *SizeFlag) String() string {
	return strconv.FormatInt(f.val, 10)
}
