package multibase

import (
	"fmt"
	"math/big"
	"strings"
)

// octal packs the input into 3-bit groups, most significant
// bit first, zero filling the final group
type octal struct{}

func (octal) encode(data []byte) string {
	var sb strings.Builder
	sb.Grow((len(data)*8 + 2) / 3)

	var acc uint32
	var n uint
	for _, b := range data {
		acc = acc<<8 | uint32(b)
		n += 8
		for n >= 3 {
			n -= 3
			sb.WriteByte('0' + byte(acc>>n&7))
		}
	}
	if n > 0 {
		sb.WriteByte('0' + byte(acc<<(3-n)&7))
	}
	return sb.String()
}

func (octal) decode(s string) ([]byte, error) {
	size := len(s) * 3 / 8
	if (size*8+2)/3 != len(s) {
		return nil, fmt.Errorf("invalid octal length: %d", len(s))
	}

	out := make([]byte, 0, size)
	var acc uint32
	var n uint
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '7' {
			return nil, fmt.Errorf("invalid octal symbol %q at %d", c, i)
		}
		acc = acc<<3 | uint32(c-'0')
		n += 3
		if n >= 8 {
			n -= 8
			out = append(out, byte(acc>>n))
		}
		acc &= 1<<n - 1
	}
	if acc != 0 {
		return nil, fmt.Errorf("non-zero trailing octal bits")
	}
	return out, nil
}

// decimal treats the input as a big-endian integer, leading
// zero bytes are kept as leading '0' digits
type decimal struct{}

func (decimal) encode(data []byte) string {
	zeros := 0
	for zeros < len(data) && data[zeros] == 0 {
		zeros++
	}

	s := strings.Repeat("0", zeros)
	if zeros < len(data) {
		s += new(big.Int).SetBytes(data[zeros:]).String()
	}
	return s
}

func (decimal) decode(s string) ([]byte, error) {
	zeros := 0
	for zeros < len(s) && s[zeros] == '0' {
		zeros++
	}

	out := make([]byte, zeros)
	if zeros == len(s) {
		return out, nil
	}

	for i := zeros; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return nil, fmt.Errorf("invalid decimal symbol %q at %d", s[i], i)
		}
	}
	n, ok := new(big.Int).SetString(s[zeros:], 10)
	if !ok {
		return nil, fmt.Errorf("invalid decimal input")
	}
	return append(out, n.Bytes()...), nil
}
